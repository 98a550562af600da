package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/SonOfTheSea21/dialect-app/internal/models"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	sentencesSheet = "sentences"
	usersSheet     = "users"
)

// SheetStore keeps the tabular data in a Google Spreadsheet, mirroring the
// original deployment. The Sheets API offers no compare-and-swap, so all
// read-modify-write mutations are serialized behind mu; that protects a
// single process only, which is why the sqlite Store is the default backend.
type SheetStore struct {
	svc           *sheets.Service
	spreadsheetID string

	mu sync.Mutex
}

func NewSheetStore(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("NewSheetStore(): failed to create sheets client: %w", err)
	}
	return &SheetStore{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (s *SheetStore) FetchAllSentences(ctx context.Context) ([]models.SentenceRecord, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, sentencesSheet+"!A2:G").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("FetchAllSentences(): %w", err)
	}

	records := make([]models.SentenceRecord, 0, len(resp.Values))
	for i, row := range resp.Values {
		r, err := parseSentenceRow(row)
		if err != nil {
			return nil, fmt.Errorf("FetchAllSentences(): row %d: %w", i+2, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *SheetStore) FindSentence(ctx context.Context, id string) (models.SentenceRecord, error) {
	records, err := s.FetchAllSentences(ctx)
	if err != nil {
		return models.SentenceRecord{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return models.SentenceRecord{}, ErrSentenceNotFound
}

func (s *SheetStore) IncrementSentenceCount(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-read inside the critical section so the increment applies to the
	// freshest value this process can see.
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, sentencesSheet+"!A2:G").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("IncrementSentenceCount(): %w", err)
	}

	for i, row := range resp.Values {
		r, err := parseSentenceRow(row)
		if err != nil || r.ID != id {
			continue
		}
		if r.RecordingCount >= r.TargetCount {
			return r.RecordingCount, nil // at quota, no-op
		}
		newCount := r.RecordingCount + 1
		cell := fmt.Sprintf("%s!D%d", sentencesSheet, i+2)
		_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, cell, &sheets.ValueRange{
			Values: [][]interface{}{{newCount}},
		}).ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return 0, fmt.Errorf("IncrementSentenceCount(): update %s: %w", cell, err)
		}
		return newCount, nil
	}
	return 0, ErrSentenceNotFound
}

func (s *SheetStore) FindUser(ctx context.Context, userID string) (models.UserStat, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, usersSheet+"!A2:C").
		Context(ctx).Do()
	if err != nil {
		return models.UserStat{}, fmt.Errorf("FindUser(): %w", err)
	}
	for _, row := range resp.Values {
		stat, ok := parseUserRow(row)
		if ok && stat.UserID == userID {
			return stat, nil
		}
	}
	return models.UserStat{}, ErrUserNotFound
}

func (s *SheetStore) IncrementOrCreateUser(ctx context.Context, userID string) (models.UserStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Format(timeLayout)

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, usersSheet+"!A2:C").
		Context(ctx).Do()
	if err != nil {
		return models.UserStat{}, fmt.Errorf("IncrementOrCreateUser(): %w", err)
	}

	for i, row := range resp.Values {
		stat, ok := parseUserRow(row)
		if !ok || stat.UserID != userID {
			continue
		}
		stat.Count++
		cells := fmt.Sprintf("%s!B%d:C%d", usersSheet, i+2, i+2)
		_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, cells, &sheets.ValueRange{
			Values: [][]interface{}{{stat.Count, now}},
		}).ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return models.UserStat{}, fmt.Errorf("IncrementOrCreateUser(): update %s: %w", cells, err)
		}
		stat.LastActive, _ = time.Parse(timeLayout, now)
		return stat, nil
	}

	// First contribution, append a fresh row
	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, usersSheet+"!A2:C", &sheets.ValueRange{
		Values: [][]interface{}{{userID, 1, now}},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return models.UserStat{}, fmt.Errorf("IncrementOrCreateUser(): append: %w", err)
	}
	parsed, _ := time.Parse(timeLayout, now)
	return models.UserStat{UserID: userID, Count: 1, LastActive: parsed}, nil
}

func (s *SheetStore) AppendSentences(ctx context.Context, records []models.SentenceRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.FetchAllSentences(ctx)
	if err != nil {
		return 0, fmt.Errorf("AppendSentences(): %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[r.ID] = true
	}

	var rows [][]interface{}
	for _, r := range records {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		rows = append(rows, []interface{}{
			r.Region, r.SentenceText, r.ID, r.RecordingCount, r.TargetCount, r.Split, r.DatasetSource,
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, sentencesSheet+"!A2:G", &sheets.ValueRange{
		Values: rows,
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("AppendSentences(): append: %w", err)
	}
	return len(rows), nil
}

// Columns are positional: region, sentence_text, id, recording_count,
// target_count, split, dataset_source.
func parseSentenceRow(row []interface{}) (models.SentenceRecord, error) {
	var r models.SentenceRecord
	if len(row) < 7 {
		return r, fmt.Errorf("expected 7 columns, got %d", len(row))
	}
	r.Region = cellString(row[0])
	r.SentenceText = cellString(row[1])
	r.ID = cellString(row[2])
	var err error
	if r.RecordingCount, err = cellInt(row[3]); err != nil {
		return r, fmt.Errorf("recording_count: %w", err)
	}
	if r.TargetCount, err = cellInt(row[4]); err != nil {
		return r, fmt.Errorf("target_count: %w", err)
	}
	r.Split = cellString(row[5])
	r.DatasetSource = cellString(row[6])
	return r, nil
}

func parseUserRow(row []interface{}) (models.UserStat, bool) {
	if len(row) < 3 {
		return models.UserStat{}, false
	}
	count, err := cellInt(row[1])
	if err != nil {
		return models.UserStat{}, false
	}
	stat := models.UserStat{UserID: cellString(row[0]), Count: count}
	stat.LastActive, _ = time.Parse(timeLayout, cellString(row[2]))
	return stat, true
}

func cellString(v interface{}) string {
	return strings.TrimSpace(fmt.Sprint(v))
}

func cellInt(v interface{}) (int, error) {
	s := cellString(v)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return int(f), nil
}
