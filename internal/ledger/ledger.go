package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/SonOfTheSea21/dialect-app/internal/models"
	"github.com/SonOfTheSea21/dialect-app/internal/storage"
)

// Ledger commits accepted submissions: the sentence's global counter first,
// then the volunteer's personal counter. Callers must have durably uploaded
// the audio blob before calling RecordSubmission; an orphaned blob is
// acceptable, a counted submission without a blob is not.
type Ledger struct {
	store storage.Adapter
}

func New(store storage.Adapter) *Ledger {
	return &Ledger{store: store}
}

// RecordSubmission runs two independent writes with no cross-record
// transaction. If the user update fails after the sentence counter has
// advanced, the error says so: stats are advisory, the global counter is
// the authoritative one, and no compensation write is attempted.
func (l *Ledger) RecordSubmission(ctx context.Context, sentenceID, userID string) (models.UserStat, error) {
	newCount, err := l.store.IncrementSentenceCount(ctx, sentenceID)
	if err != nil {
		if errors.Is(err, storage.ErrSentenceNotFound) {
			// The id came from a selector snapshot, so a missing row is an
			// unexpected store mutation, never a first-contribution case.
			return models.UserStat{}, fmt.Errorf("RecordSubmission(): sentence %q vanished from store: %w", sentenceID, err)
		}
		return models.UserStat{}, fmt.Errorf("RecordSubmission(): increment sentence %q: %w", sentenceID, err)
	}

	stat, err := l.store.IncrementOrCreateUser(ctx, userID)
	if err != nil {
		return models.UserStat{}, fmt.Errorf(
			"RecordSubmission(): sentence %q counted (now %d) but user %q stat update failed: %w",
			sentenceID, newCount, userID, err)
	}

	log.Printf("RecordSubmission(): sentence %s -> %d, user %s -> %d", sentenceID, newCount, userID, stat.Count)
	return stat, nil
}
