package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/SonOfTheSea21/dialect-app/internal/storage"
)

// Cache is the per-connection overlay over a volunteer's persisted count.
// It reads the store once at session start and then counts locally, so the
// UI stays responsive without a read after every submission. Discarded on
// disconnect; the persisted count is the source of truth for the next
// session.
type Cache struct {
	UserID        string
	BaselineCount int
	Increments    int
}

// NewCache seeds the baseline from the store. An unknown user is a normal
// first session (baseline 0); a store failure is an error so it can never
// masquerade as a fresh user.
func NewCache(ctx context.Context, store storage.Adapter, userID string) (*Cache, error) {
	stat, err := store.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return &Cache{UserID: userID}, nil
		}
		return nil, fmt.Errorf("NewCache(): read baseline for %q: %w", userID, err)
	}
	return &Cache{UserID: userID, BaselineCount: stat.Count}, nil
}

// Advance records one accepted submission locally.
func (c *Cache) Advance() {
	c.Increments++
}

func (c *Cache) Total() int {
	return c.BaselineCount + c.Increments
}

func (c *Cache) Progress() (milestone int, percent float64) {
	return Progress(c.Total())
}

// Progress maps a running total onto the next 100-recording milestone and
// the fraction of the way there. Landing exactly on a milestone shows a
// full bar rather than an empty one.
func Progress(total int) (milestone int, percent float64) {
	milestone = 100 * (total/100 + 1)
	percent = float64(total%100) / 100
	if total > 0 && total%100 == 0 {
		percent = 1.0
	}
	return milestone, percent
}
