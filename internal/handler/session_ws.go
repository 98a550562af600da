package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/SonOfTheSea21/dialect-app/internal/models"
	"github.com/SonOfTheSea21/dialect-app/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Upgrade HTTP connection to WebSocket
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Frames pushed to the client over a recording session.
type sessionFrame struct {
	Type       string             `json:"type"` // assignment | result | error
	Done       bool               `json:"done,omitempty"`
	Assignment *models.Assignment `json:"assignment,omitempty"`
	BlobPath   string             `json:"blob_path,omitempty"`
	Total      int                `json:"total,omitempty"`
	Milestone  int                `json:"milestone,omitempty"`
	Percent    float64            `json:"percent,omitempty"`
	Message    string             `json:"message,omitempty"`
}

// HandleRecordSession godoc
// @Summary      Live recording session
// @Description  WebSocket loop: the server pushes assignment frames, the client
// @Description  answers each with one binary audio frame, the server uploads,
// @Description  commits the ledger and pushes the result plus the next assignment.
// @Description  Connect with the `ws://` or `wss://` scheme, not plain HTTP.
// @Tags         WebSocket
// @Param        region query string true  "Region to record for"
// @Param        user   query string false "Volunteer label (default guest)"
// @Success      101 {string} string "Switching Protocols"
// @Failure      400 {object} handler.ErrorResponse "Missing region"
// @Router       /ws/record [get]
func (a *API) HandleRecordSession(c *gin.Context) {
	region := c.Query("region")
	if region == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "region is required"})
		return
	}
	userID := c.DefaultQuery("user", DefaultUserID)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("HandleRecordSession(): failed to upgrade to WebSocket for %s: %v", userID, err)
		return
	}
	defer conn.Close()

	a.runRecordSession(context.Background(), conn, region, userID)
}

func (a *API) runRecordSession(ctx context.Context, conn *websocket.Conn, region, userID string) {
	sessionID := uuid.New().String()
	log.Printf("runRecordSession(): session %s started, user: %s, region: %s", sessionID, userID, region)

	// Session cache lives exactly as long as this connection
	cache, err := session.NewCache(ctx, a.Store, userID)
	if err != nil {
		log.Printf("runRecordSession(): failed to seed session cache for %s: %v", userID, err)
		conn.WriteJSON(sessionFrame{Type: "error", Message: "store unavailable, reconnect later"})
		return
	}

	current, err := a.Selector.NextAssignment(ctx, region)
	if err != nil {
		log.Printf("runRecordSession(): initial selection failed for %s: %v", region, err)
		conn.WriteJSON(sessionFrame{Type: "error", Message: "store unavailable, reconnect later"})
		return
	}
	if err := conn.WriteJSON(sessionFrame{Type: "assignment", Done: current == nil, Assignment: current}); err != nil {
		log.Printf("runRecordSession(): failed to send assignment to %s: %v", userID, err)
		return
	}
	if current == nil {
		log.Printf("runRecordSession(): region %s already complete", region)
		return
	}

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("runRecordSession(): session %s closed: %v", sessionID, err)
			return
		}
		if messageType != websocket.BinaryMessage {
			log.Printf("runRecordSession(): ignoring message type %d from %s", messageType, userID)
			continue
		}

		result, err := a.processSubmission(ctx, current, userID, message)
		if err != nil {
			if errors.Is(err, ErrAudioTooShort) {
				conn.WriteJSON(sessionFrame{Type: "error", Message: "audio too short, please record again"})
				continue
			}
			log.Printf("runRecordSession(): submission failed in session %s: %v", sessionID, err)
			conn.WriteJSON(sessionFrame{Type: "error", Message: "failed to save recording, please retry"})
			continue
		}

		cache.Advance()
		milestone, percent := cache.Progress()
		if err := conn.WriteJSON(sessionFrame{
			Type:      "result",
			BlobPath:  result.BlobPath,
			Total:     cache.Total(),
			Milestone: milestone,
			Percent:   percent,
		}); err != nil {
			log.Printf("runRecordSession(): failed to send result to %s: %v", userID, err)
			return
		}

		current = result.Next
		if err := conn.WriteJSON(sessionFrame{Type: "assignment", Done: current == nil, Assignment: current}); err != nil {
			log.Printf("runRecordSession(): failed to send assignment to %s: %v", userID, err)
			return
		}
		if current == nil {
			log.Printf("runRecordSession(): region %s complete, session %s finished with %d recordings",
				region, sessionID, cache.Increments)
			return
		}
	}
}
