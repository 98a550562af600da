package handler

import (
	"log"
	"net/http"

	"github.com/SonOfTheSea21/dialect-app/internal/models"

	"github.com/gin-gonic/gin"
)

// AssignmentResponse wraps the next sentence to record. Done is true, with
// a nil assignment, once every sentence in the region has met its quota.
type AssignmentResponse struct {
	Done       bool               `json:"done"`
	Assignment *models.Assignment `json:"assignment,omitempty"`
}

// GetAssignment godoc
// @Summary      Next recording assignment
// @Description  Picks the next pending sentence for a region, test split first.
// @Tags         Recording
// @Produce      json
// @Param        region query string true "Region to record for (case-sensitive)"
// @Success      200 {object} handler.AssignmentResponse
// @Failure      400 {object} handler.ErrorResponse "Missing region"
// @Failure      502 {object} handler.ErrorResponse "Store unavailable"
// @Router       /api/assignment [get]
func (a *API) GetAssignment(c *gin.Context) {
	region := c.Query("region")
	if region == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "region is required; use the link provided by your admin"})
		return
	}

	asg, err := a.Selector.NextAssignment(c.Request.Context(), region)
	if err != nil {
		log.Printf("GetAssignment(): selection failed for region %s: %v", region, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "store unavailable, try again"})
		return
	}

	c.JSON(http.StatusOK, AssignmentResponse{Done: asg == nil, Assignment: asg})
}
