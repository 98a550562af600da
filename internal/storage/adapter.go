package storage

import (
	"context"
	"errors"

	"github.com/SonOfTheSea21/dialect-app/internal/models"
)

// A missing sentence id during a ledger update is always a caller bug (the
// id came from a prior snapshot), so it carries its own sentinel instead of
// sharing a code path with the benign first-contribution case.
var (
	ErrSentenceNotFound = errors.New("sentence not found")
	ErrUserNotFound     = errors.New("user not found")
)

// Adapter is the contract against the shared tabular store. Implementations
// must make IncrementSentenceCount and IncrementOrCreateUser safe against
// lost updates when called from many goroutines or processes at once.
type Adapter interface {
	// FetchAllSentences returns a read snapshot of every sentence row, in
	// store order. Staleness is bounded by the backend's refresh policy.
	FetchAllSentences(ctx context.Context) ([]models.SentenceRecord, error)

	// FindSentence resolves one row by id. Returns ErrSentenceNotFound.
	FindSentence(ctx context.Context, id string) (models.SentenceRecord, error)

	// IncrementSentenceCount bumps recording_count by one and returns the
	// new value. The increment never pushes recording_count past
	// target_count; at quota it is a no-op returning the current count.
	// Returns ErrSentenceNotFound for an unknown id.
	IncrementSentenceCount(ctx context.Context, id string) (int, error)

	// FindUser returns ErrUserNotFound for an unknown user_id.
	FindUser(ctx context.Context, userID string) (models.UserStat, error)

	// IncrementOrCreateUser atomically creates the row with count=1 on
	// first contribution, otherwise bumps count and refreshes last_active.
	IncrementOrCreateUser(ctx context.Context, userID string) (models.UserStat, error)

	// AppendSentences adds new rows, skipping ids already present, and
	// returns how many were added.
	AppendSentences(ctx context.Context, records []models.SentenceRecord) (int, error)
}

// BlobStore persists raw audio under a hierarchical path
// ({split}/{dataset_source}/{region}/{filename}). Creating the containing
// collection must be idempotent, and uploading a path that already holds an
// object is a no-op.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, path string) error
}
