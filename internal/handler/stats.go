package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/SonOfTheSea21/dialect-app/internal/models"
	"github.com/SonOfTheSea21/dialect-app/internal/session"
	"github.com/SonOfTheSea21/dialect-app/internal/storage"

	"github.com/gin-gonic/gin"
)

type UserStatsResponse struct {
	UserID    string  `json:"user_id"`
	Count     int     `json:"count"`
	Milestone int     `json:"milestone"`
	Percent   float64 `json:"percent"`
}

type RegionProgressResponse struct {
	Region   string `json:"region"`
	Recorded int    `json:"recorded"`
	Target   int    `json:"target"`
	Complete bool   `json:"complete"`
}

// GetUserStats godoc
// @Summary      Volunteer contribution stats
// @Description  Persisted count plus the next 100-recording milestone.
// @Tags         Stats
// @Produce      json
// @Param        user path string true "Volunteer label"
// @Success      200 {object} handler.UserStatsResponse
// @Failure      502 {object} handler.ErrorResponse "Store unavailable"
// @Router       /api/users/{user}/stats [get]
func (a *API) GetUserStats(c *gin.Context) {
	userID := c.Param("user")

	stat, err := a.Store.FindUser(c.Request.Context(), userID)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			log.Printf("GetUserStats(): failed to read stats for %s: %v", userID, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "store unavailable, try again"})
			return
		}
		// No row yet means no contributions yet, not a failure
		stat = models.UserStat{UserID: userID}
	}

	milestone, percent := session.Progress(stat.Count)
	c.JSON(http.StatusOK, UserStatsResponse{
		UserID:    userID,
		Count:     stat.Count,
		Milestone: milestone,
		Percent:   percent,
	})
}

// GetRegionProgress godoc
// @Summary      Region quota progress
// @Description  Total recordings collected vs. the summed quota for one region.
// @Tags         Stats
// @Produce      json
// @Param        region path string true "Region name (case-sensitive)"
// @Success      200 {object} handler.RegionProgressResponse
// @Failure      404 {object} handler.ErrorResponse "Unknown region"
// @Failure      502 {object} handler.ErrorResponse "Store unavailable"
// @Router       /api/regions/{region}/progress [get]
func (a *API) GetRegionProgress(c *gin.Context) {
	region := c.Param("region")

	records, err := a.Store.FetchAllSentences(c.Request.Context())
	if err != nil {
		log.Printf("GetRegionProgress(): snapshot failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "store unavailable, try again"})
		return
	}

	recorded, target, found := 0, 0, false
	for _, r := range records {
		if r.Region != region {
			continue
		}
		found = true
		recorded += r.RecordingCount
		target += r.TargetCount
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown region"})
		return
	}

	c.JSON(http.StatusOK, RegionProgressResponse{
		Region:   region,
		Recorded: recorded,
		Target:   target,
		Complete: recorded >= target,
	})
}
