package selector

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/SonOfTheSea21/dialect-app/internal/models"
	"github.com/SonOfTheSea21/dialect-app/internal/storage"
)

// Splits are drained in this order: a region's train sentences only become
// assignable once its test sentences are done.
var DefaultSplitPriority = []string{"test", "train"}

// Selector picks the next pending sentence for a region. It holds no state
// and takes no reservations, so two sessions may be handed the same
// sentence; the random pick keeps that collision rare.
type Selector struct {
	store  storage.Adapter
	splits []string
	intn   func(int) int
}

func New(store storage.Adapter) *Selector {
	return &Selector{
		store:  store,
		splits: DefaultSplitPriority,
		intn:   rand.IntN,
	}
}

// NextAssignment returns (nil, nil) when no sentence in the region has
// remaining quota; that is the region-complete signal, not an error. Store
// failures come back as errors so callers never mistake an outage for a
// finished region.
func (s *Selector) NextAssignment(ctx context.Context, region string) (*models.Assignment, error) {
	records, err := s.store.FetchAllSentences(ctx)
	if err != nil {
		return nil, fmt.Errorf("NextAssignment(): fetch snapshot: %w", err)
	}

	for _, split := range s.splits {
		var pending []models.SentenceRecord
		for _, r := range records {
			if r.Region == region && r.Split == split && r.Pending() {
				pending = append(pending, r)
			}
		}
		if len(pending) == 0 {
			continue
		}
		// Uniform pick spreads concurrent volunteers across the pending
		// set instead of piling them onto one row.
		return models.AssignmentFromSentence(pending[s.intn(len(pending))]), nil
	}
	return nil, nil
}
