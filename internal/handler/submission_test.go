package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/SonOfTheSea21/dialect-app/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartSubmission(t *testing.T, sentenceID, user string, audio []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if sentenceID != "" {
		require.NoError(t, w.WriteField("sentence_id", sentenceID))
	}
	if user != "" {
		require.NoError(t, w.WriteField("user", user))
	}
	fw, err := w.CreateFormFile("audio", "clip.wav")
	require.NoError(t, err)
	_, err = fw.Write(audio)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func postSubmission(router http.Handler, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/submissions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPostSubmissionHappyPath(t *testing.T) {
	var events []string
	store := newMemStore(&events,
		testSentence("s1", "barisal", "test", 0, 1),
		testSentence("s2", "barisal", "train", 0, 1),
	)
	blobs := newMemBlobs(&events)
	router := newTestRouter(newTestAPI(store, blobs))

	body, ct := multipartSubmission(t, "s1", "u1", validAudio())
	rec := postSubmission(router, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result SubmissionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Stat.Count)
	assert.Equal(t, "u1", result.Stat.UserID)
	require.NotNil(t, result.Next)
	assert.Equal(t, "s2", result.Next.SentenceID, "test split exhausted, train is next")
	assert.False(t, result.Done)

	// Blob landed under {split}/{dataset_source}/{region}/
	assert.Len(t, blobs.objects, 1)
	assert.Regexp(t,
		regexp.MustCompile(`^test/common_voice/barisal/common_voice_barisal_test_s1_u1_\d{8}_\d{6}\.wav$`),
		result.BlobPath)

	// Upload strictly precedes both ledger writes
	require.Len(t, events, 3)
	assert.Regexp(t, "^upload:", events[0])
	assert.Equal(t, "increment:s1", events[1])
	assert.Equal(t, "upsert:u1", events[2])
}

func TestPostSubmissionDefaultsToGuest(t *testing.T) {
	store := newMemStore(nil, testSentence("s1", "barisal", "test", 0, 1))
	router := newTestRouter(newTestAPI(store, newMemBlobs(nil)))

	body, ct := multipartSubmission(t, "s1", "", validAudio())
	rec := postSubmission(router, body, ct)
	require.Equal(t, http.StatusOK, rec.Code)

	stat, err := store.FindUser(context.Background(), DefaultUserID)
	require.NoError(t, err)
	assert.Equal(t, 1, stat.Count)
}

func TestPostSubmissionRejectsShortAudio(t *testing.T) {
	var events []string
	store := newMemStore(&events, testSentence("s1", "barisal", "test", 0, 1))
	blobs := newMemBlobs(&events)
	router := newTestRouter(newTestAPI(store, blobs))

	body, ct := multipartSubmission(t, "s1", "u1", make([]byte, MinAudioBytes-1))
	rec := postSubmission(router, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Nothing was written anywhere
	assert.Empty(t, blobs.objects)
	assert.Empty(t, events)
	sent, err := store.FindSentence(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, sent.RecordingCount)
}

func TestPostSubmissionUnknownSentence(t *testing.T) {
	store := newMemStore(nil)
	router := newTestRouter(newTestAPI(store, newMemBlobs(nil)))

	body, ct := multipartSubmission(t, "ghost", "u1", validAudio())
	rec := postSubmission(router, body, ct)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostSubmissionMissingFields(t *testing.T) {
	store := newMemStore(nil, testSentence("s1", "barisal", "test", 0, 1))
	router := newTestRouter(newTestAPI(store, newMemBlobs(nil)))

	// no sentence_id
	body, ct := multipartSubmission(t, "", "u1", validAudio())
	rec := postSubmission(router, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// no audio part at all
	plain := &bytes.Buffer{}
	w := multipart.NewWriter(plain)
	require.NoError(t, w.WriteField("sentence_id", "s1"))
	require.NoError(t, w.Close())
	rec = postSubmission(router, plain, w.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostSubmissionUploadFailureSkipsLedger(t *testing.T) {
	var events []string
	store := newMemStore(&events, testSentence("s1", "barisal", "test", 0, 1))
	blobs := newMemBlobs(&events)
	blobs.err = errBlobDown
	router := newTestRouter(newTestAPI(store, blobs))

	body, ct := multipartSubmission(t, "s1", "u1", validAudio())
	rec := postSubmission(router, body, ct)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	// No counter moved, the sentence stays selectable for a retry
	sent, err := store.FindSentence(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, sent.RecordingCount)
	assert.Empty(t, store.users)
}

func TestSubmissionFilenameConvention(t *testing.T) {
	asg := &models.Assignment{
		SentenceID:    "s9",
		Region:        "barisal",
		Split:         "test",
		DatasetSource: "common_voice",
	}
	at := time.Date(2026, 8, 30, 14, 5, 9, 0, time.UTC)

	name := submissionFilename(asg, "u1", at)
	assert.Equal(t, "common_voice_barisal_test_s9_u1_20260830_140509.wav", name)
}
