package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/SonOfTheSea21/dialect-app/internal/models"

	_ "modernc.org/sqlite"
)

// SQLite stores times as plain strings
const timeLayout = "2006-01-02 15:04:05"

// Store is the sqlite-backed Adapter. One Store is shared by every request
// handler; *sql.DB serializes access as needed.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("Open(): failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("Open(): failed to connect to database: %w", err)
	}

	createSentencesTable := `
	CREATE TABLE IF NOT EXISTS sentences (
			"region" TEXT NOT NULL,
			"sentence_text" TEXT NOT NULL,
			"id" TEXT PRIMARY KEY,
			"recording_count" INTEGER NOT NULL DEFAULT 0,
			"target_count" INTEGER NOT NULL DEFAULT 1,
			"split" TEXT NOT NULL,
			"dataset_source" TEXT NOT NULL
	);`
	createUsersTable := `
	CREATE TABLE IF NOT EXISTS users (
			"user_id" TEXT PRIMARY KEY,
			"count" INTEGER NOT NULL DEFAULT 0,
			"last_active" TEXT NOT NULL
	);`

	if _, err := db.Exec(createSentencesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("Open(): failed to create sentences table: %w", err)
	}
	if _, err := db.Exec(createUsersTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("Open(): failed to create users table: %w", err)
	}
	log.Printf("Open(): sqlite store ready at %s", path)

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) FetchAllSentences(ctx context.Context) ([]models.SentenceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT region, sentence_text, id, recording_count, target_count, split, dataset_source
		FROM sentences
		ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("FetchAllSentences(): %w", err)
	}
	defer rows.Close()

	var records []models.SentenceRecord
	for rows.Next() {
		var r models.SentenceRecord
		if err := rows.Scan(&r.Region, &r.SentenceText, &r.ID, &r.RecordingCount,
			&r.TargetCount, &r.Split, &r.DatasetSource); err != nil {
			return nil, fmt.Errorf("FetchAllSentences(): scan: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) FindSentence(ctx context.Context, id string) (models.SentenceRecord, error) {
	var r models.SentenceRecord
	row := s.db.QueryRowContext(ctx, `
		SELECT region, sentence_text, id, recording_count, target_count, split, dataset_source
		FROM sentences WHERE id = ?`, id)
	if err := row.Scan(&r.Region, &r.SentenceText, &r.ID, &r.RecordingCount,
		&r.TargetCount, &r.Split, &r.DatasetSource); err != nil {
		if err == sql.ErrNoRows {
			return r, ErrSentenceNotFound
		}
		return r, fmt.Errorf("FindSentence(): %w", err)
	}
	return r, nil
}

// The guard clause keeps recording_count <= target_count enforced inside the
// store, so concurrent increments can neither lose updates nor overshoot
// the quota.
func (s *Store) IncrementSentenceCount(ctx context.Context, id string) (int, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sentences SET recording_count = recording_count + 1
		WHERE id = ? AND recording_count < target_count`, id)
	if err != nil {
		return 0, fmt.Errorf("IncrementSentenceCount(): %w", err)
	}

	var count int
	row := s.db.QueryRowContext(ctx, `SELECT recording_count FROM sentences WHERE id = ?`, id)
	if err := row.Scan(&count); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrSentenceNotFound
		}
		return 0, fmt.Errorf("IncrementSentenceCount(): %w", err)
	}
	return count, nil
}

func (s *Store) FindUser(ctx context.Context, userID string) (models.UserStat, error) {
	var stat models.UserStat
	var lastActive string
	row := s.db.QueryRowContext(ctx, `SELECT user_id, count, last_active FROM users WHERE user_id = ?`, userID)
	if err := row.Scan(&stat.UserID, &stat.Count, &lastActive); err != nil {
		if err == sql.ErrNoRows {
			return stat, ErrUserNotFound
		}
		return stat, fmt.Errorf("FindUser(): %w", err)
	}
	stat.LastActive, _ = time.Parse(timeLayout, lastActive)
	return stat, nil
}

func (s *Store) IncrementOrCreateUser(ctx context.Context, userID string) (models.UserStat, error) {
	now := time.Now()
	var stat models.UserStat
	var lastActive string
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users(user_id, count, last_active) VALUES(?, 1, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			count = count + 1,
			last_active = excluded.last_active
		RETURNING user_id, count, last_active`, userID, now.Format(timeLayout))
	if err := row.Scan(&stat.UserID, &stat.Count, &lastActive); err != nil {
		return stat, fmt.Errorf("IncrementOrCreateUser(): %w", err)
	}
	stat.LastActive, _ = time.Parse(timeLayout, lastActive)
	return stat, nil
}

func (s *Store) AppendSentences(ctx context.Context, records []models.SentenceRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("AppendSentences(): begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sentences(region, sentence_text, id, recording_count, target_count, split, dataset_source)
		VALUES(?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("AppendSentences(): prepare: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, r := range records {
		res, err := stmt.ExecContext(ctx, r.Region, r.SentenceText, r.ID,
			r.RecordingCount, r.TargetCount, r.Split, r.DatasetSource)
		if err != nil {
			return 0, fmt.Errorf("AppendSentences(): insert %s: %w", r.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("AppendSentences(): commit: %w", err)
	}
	return added, nil
}
