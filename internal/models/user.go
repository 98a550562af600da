package models

import "time"

// Per-volunteer contribution counter. The user_id is a free-form label
// chosen by the volunteer; there are no accounts behind it.
type UserStat struct {
	UserID     string    `json:"user_id"`
	Count      int       `json:"count"`
	LastActive time.Time `json:"last_active"`
}
