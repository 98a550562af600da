package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/SonOfTheSea21/dialect-app/internal/models"

	"github.com/gin-gonic/gin"
)

type SeedResponse struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// SeedSentences godoc
// @Summary      Bulk import sentence rows
// @Description  Appends new sentence rows to the store; ids already present are skipped.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     AdminKey
// @Param        request body []models.SentenceRecord true "Rows to add"
// @Success      200 {object} handler.SeedResponse
// @Failure      400 {object} handler.ErrorResponse "Malformed rows"
// @Failure      403 {object} handler.ErrorResponse "Bad admin key"
// @Failure      502 {object} handler.ErrorResponse "Store failure"
// @Router       /admin/sentences [post]
func (a *API) SeedSentences(c *gin.Context) {
	rawData, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	var records []models.SentenceRecord
	if err := json.Unmarshal(rawData, &records); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	for i, r := range records {
		if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.Region) == "" || strings.TrimSpace(r.SentenceText) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id, region and sentence_text are required on every row"})
			return
		}
		if r.Split != "test" && r.Split != "train" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "split must be test or train"})
			return
		}
		if r.TargetCount < 1 {
			records[i].TargetCount = 1
		}
		if r.RecordingCount < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "recording_count cannot be negative"})
			return
		}
	}

	added, err := a.Store.AppendSentences(c.Request.Context(), records)
	if err != nil {
		log.Printf("SeedSentences(): append failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to add sentences"})
		return
	}

	c.JSON(http.StatusOK, SeedResponse{Added: added, Skipped: len(records) - added})
}
