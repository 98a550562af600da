package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"time"

	"github.com/SonOfTheSea21/dialect-app/internal/models"
	"github.com/SonOfTheSea21/dialect-app/internal/storage"

	"github.com/gin-gonic/gin"
)

// Anything below this is not a real recording; rejecting it up front saves
// a blob write and a counter bump.
const MinAudioBytes = 5000

var ErrAudioTooShort = errors.New("audio too short")

// SubmissionResult is what both the HTTP and the websocket pipelines hand
// back after a submission is accepted.
type SubmissionResult struct {
	BlobPath string             `json:"blob_path"`
	Stat     models.UserStat    `json:"user_stat"`
	Next     *models.Assignment `json:"next_assignment,omitempty"`
	Done     bool               `json:"done"`
}

// PostSubmission godoc
// @Summary      Submit a recording
// @Description  Uploads the audio blob, then commits the submission to the ledger.
// @Tags         Recording
// @Accept       multipart/form-data
// @Produce      json
// @Param        audio       formData file   true  "WAV recording (>= 5000 bytes)"
// @Param        sentence_id formData string true  "Sentence id from a prior assignment"
// @Param        user        formData string false "Volunteer label (default guest)"
// @Success      200 {object} handler.SubmissionResult
// @Failure      400 {object} handler.ErrorResponse "Missing fields or audio too short"
// @Failure      404 {object} handler.ErrorResponse "Unknown sentence id"
// @Failure      502 {object} handler.ErrorResponse "Upload or store failure"
// @Router       /api/submissions [post]
func (a *API) PostSubmission(c *gin.Context) {
	sentenceID := c.PostForm("sentence_id")
	if sentenceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sentence_id is required"})
		return
	}
	userID := c.DefaultPostForm("user", DefaultUserID)

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open audio upload"})
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read audio upload"})
		return
	}

	ctx := c.Request.Context()

	sent, err := a.Store.FindSentence(ctx, sentenceID)
	if err != nil {
		if errors.Is(err, storage.ErrSentenceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown sentence id"})
			return
		}
		log.Printf("PostSubmission(): failed to resolve sentence %s: %v", sentenceID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "store unavailable, try again"})
		return
	}

	result, err := a.processSubmission(ctx, models.AssignmentFromSentence(sent), userID, audio)
	if err != nil {
		if errors.Is(err, ErrAudioTooShort) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "audio too short, please record again"})
			return
		}
		log.Printf("PostSubmission(): submission for sentence %s by %s failed: %v", sentenceID, userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to save recording, please retry"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// processSubmission is the one pipeline both transports go through:
// size gate -> blob upload -> ledger -> next assignment. The ledger write
// never runs before the upload has returned, and never runs at all once
// the caller is gone.
func (a *API) processSubmission(ctx context.Context, asg *models.Assignment, userID string, audio []byte) (*SubmissionResult, error) {
	if len(audio) < MinAudioBytes {
		return nil, fmt.Errorf("processSubmission(): %d bytes: %w", len(audio), ErrAudioTooShort)
	}

	name := submissionFilename(asg, userID, time.Now().In(a.Timezone))
	blobPath := path.Join(asg.Split, asg.DatasetSource, asg.Region, name)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("processSubmission(): caller gone before upload: %w", err)
	}
	if err := a.Blobs.Upload(ctx, audio, blobPath); err != nil {
		// No ledger mutation on a failed upload; the sentence stays
		// selectable for a retry by any session.
		return nil, fmt.Errorf("processSubmission(): upload %s: %w", blobPath, err)
	}
	if err := ctx.Err(); err != nil {
		// Orphaned blob, acceptable; a counted submission with a
		// disconnected caller is not.
		return nil, fmt.Errorf("processSubmission(): caller gone after upload: %w", err)
	}

	stat, err := a.Ledger.RecordSubmission(ctx, asg.SentenceID, userID)
	if err != nil {
		return nil, fmt.Errorf("processSubmission(): %w", err)
	}

	next, err := a.Selector.NextAssignment(ctx, asg.Region)
	if err != nil {
		return nil, fmt.Errorf("processSubmission(): %w", err)
	}

	return &SubmissionResult{
		BlobPath: blobPath,
		Stat:     stat,
		Next:     next,
		Done:     next == nil,
	}, nil
}

// {dataset_source}_{region}_{split}_{sentenceID}_{userID}_{timestamp}.wav
func submissionFilename(asg *models.Assignment, userID string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%s_%s_%s.wav",
		asg.DatasetSource, asg.Region, asg.Split, asg.SentenceID, userID,
		now.Format("20060102_150405"))
}
