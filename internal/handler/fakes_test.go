package handler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SonOfTheSea21/dialect-app/internal/ledger"
	"github.com/SonOfTheSea21/dialect-app/internal/models"
	"github.com/SonOfTheSea21/dialect-app/internal/selector"
	"github.com/SonOfTheSea21/dialect-app/internal/storage"

	"github.com/gin-gonic/gin"
)

// memStore implements storage.Adapter in memory and appends every mutation
// to events so tests can assert ordering against the blob store.
type memStore struct {
	mu        sync.Mutex
	sentences []*models.SentenceRecord
	users     map[string]*models.UserStat
	events    *[]string
	fetchErr  error
}

func newMemStore(events *[]string, records ...models.SentenceRecord) *memStore {
	s := &memStore{users: make(map[string]*models.UserStat), events: events}
	for _, r := range records {
		rr := r
		s.sentences = append(s.sentences, &rr)
	}
	return s
}

func (s *memStore) log(event string) {
	if s.events != nil {
		*s.events = append(*s.events, event)
	}
}

func (s *memStore) FetchAllSentences(ctx context.Context) ([]models.SentenceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	out := make([]models.SentenceRecord, 0, len(s.sentences))
	for _, r := range s.sentences {
		out = append(out, *r)
	}
	return out, nil
}

func (s *memStore) FindSentence(ctx context.Context, id string) (models.SentenceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.sentences {
		if r.ID == id {
			return *r, nil
		}
	}
	return models.SentenceRecord{}, storage.ErrSentenceNotFound
}

func (s *memStore) IncrementSentenceCount(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.sentences {
		if r.ID != id {
			continue
		}
		if r.RecordingCount < r.TargetCount {
			r.RecordingCount++
		}
		s.log("increment:" + id)
		return r.RecordingCount, nil
	}
	return 0, storage.ErrSentenceNotFound
}

func (s *memStore) FindUser(ctx context.Context, userID string) (models.UserStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return models.UserStat{}, storage.ErrUserNotFound
	}
	return *u, nil
}

func (s *memStore) IncrementOrCreateUser(ctx context.Context, userID string) (models.UserStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		u = &models.UserStat{UserID: userID}
		s.users[userID] = u
	}
	u.Count++
	u.LastActive = time.Now()
	s.log("upsert:" + userID)
	return *u, nil
}

func (s *memStore) AppendSentences(ctx context.Context, records []models.SentenceRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, r := range records {
		exists := false
		for _, have := range s.sentences {
			if have.ID == r.ID {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		rr := r
		s.sentences = append(s.sentences, &rr)
		added++
	}
	return added, nil
}

// memBlobs records uploads in memory.
type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	events  *[]string
	err     error
}

func newMemBlobs(events *[]string) *memBlobs {
	return &memBlobs{objects: make(map[string][]byte), events: events}
}

func (b *memBlobs) Upload(ctx context.Context, data []byte, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	if _, ok := b.objects[path]; !ok {
		b.objects[path] = data
	}
	if b.events != nil {
		*b.events = append(*b.events, "upload:"+path)
	}
	return nil
}

var errBlobDown = errors.New("blob store unreachable")

func newTestAPI(store storage.Adapter, blobs storage.BlobStore) *API {
	return &API{
		Store:    store,
		Blobs:    blobs,
		Selector: selector.New(store),
		Ledger:   ledger.New(store),
		Timezone: time.UTC,
	}
}

func newTestRouter(api *API) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/assignment", api.GetAssignment)
	router.POST("/api/submissions", api.PostSubmission)
	router.GET("/api/users/:user/stats", api.GetUserStats)
	router.GET("/api/regions/:region/progress", api.GetRegionProgress)
	router.GET("/ws/record", api.HandleRecordSession)
	router.POST("/admin/sentences", api.SeedSentences)
	return router
}

func testSentence(id, region, split string, count, target int) models.SentenceRecord {
	return models.SentenceRecord{
		Region:         region,
		SentenceText:   "sentence " + id,
		ID:             id,
		RecordingCount: count,
		TargetCount:    target,
		Split:          split,
		DatasetSource:  "common_voice",
	}
}

func validAudio() []byte {
	return make([]byte, MinAudioBytes)
}
