// Package store handles SQLite persistence of results and certificates.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typecheck/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Fixed-width timestamps keep lexical order equal to time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for typing test data.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS test_results (
			id TEXT PRIMARY KEY,
			identity_key TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			words_typed INTEGER NOT NULL,
			duration_seconds INTEGER NOT NULL,
			lang TEXT NOT NULL,
			exam_name TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS certificates (
			number TEXT PRIMARY KEY,
			user_email TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			issued_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_test_results_created_at ON test_results(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_test_results_identity ON test_results(identity_key);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveResult stores a finalized score and returns the written record.
func (s *Store) SaveResult(ctx context.Context, identityKey string, score model.ScoreResult, meta model.ResultMeta) (model.TestResultRecord, error) {
	ts := meta.CompletedAt
	if ts.IsZero() {
		ts = s.now()
	}
	rec := model.TestResultRecord{
		ID:              uuid.NewString(),
		IdentityKey:     identityKey,
		WPM:             score.WPM,
		AccuracyPercent: score.AccuracyPercent,
		WordsTyped:      score.WordsTyped,
		DurationSeconds: meta.DurationSeconds,
		Lang:            meta.Lang,
		ExamName:        meta.ExamName,
		Timestamp:       ts,
	}
	if err := s.InsertResult(ctx, rec); err != nil {
		return model.TestResultRecord{}, err
	}
	return rec, nil
}

// InsertResult writes a complete record. A missing ID is generated and a
// zero timestamp is replaced with the current time.
func (s *Store) InsertResult(ctx context.Context, rec model.TestResultRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO test_results (id, identity_key, wpm, accuracy, words_typed, duration_seconds, lang, exam_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.IdentityKey,
		rec.WPM,
		rec.AccuracyPercent,
		rec.WordsTyped,
		rec.DurationSeconds,
		rec.Lang,
		rec.ExamName,
		rec.Timestamp.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// ListResults returns results matching filter, oldest first.
func (s *Store) ListResults(ctx context.Context, filter model.ResultFilter) ([]model.TestResultRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.IdentityKey != "" {
		clauses = append(clauses, "identity_key = ?")
		args = append(args, filter.IdentityKey)
	}
	if filter.Lang != "" {
		clauses = append(clauses, "lang = ?")
		args = append(args, filter.Lang)
	}
	if filter.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, identity_key, wpm, accuracy, words_typed, duration_seconds, lang, exam_name, created_at
		FROM test_results
		WHERE %s
		ORDER BY created_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.TestResultRecord
	for rows.Next() {
		var rec model.TestResultRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.IdentityKey, &rec.WPM, &rec.AccuracyPercent, &rec.WordsTyped,
			&rec.DurationSeconds, &rec.Lang, &rec.ExamName, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		rec.Timestamp = parsed
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.Last > 0 && len(results) > filter.Last {
		results = results[len(results)-filter.Last:]
	}
	return results, nil
}

// SaveCertificate writes a certificate. Numbers are unique; writing an
// existing number fails.
func (s *Store) SaveCertificate(ctx context.Context, rec model.CertificateRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO certificates (number, user_email, wpm, accuracy, issued_at) VALUES (?, ?, ?, ?, ?)`,
		rec.Number,
		rec.UserEmail,
		rec.WPM,
		rec.AccuracyPercent,
		rec.Date.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

// GetCertificate looks up a certificate by number.
func (s *Store) GetCertificate(ctx context.Context, number string) (model.CertificateRecord, error) {
	var rec model.CertificateRecord
	var issuedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT number, user_email, wpm, accuracy, issued_at FROM certificates WHERE number = ?`,
		strings.TrimSpace(number),
	).Scan(&rec.Number, &rec.UserEmail, &rec.WPM, &rec.AccuracyPercent, &issuedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CertificateRecord{}, ErrNotFound
	}
	if err != nil {
		return model.CertificateRecord{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, issuedAt)
	if err != nil {
		return model.CertificateRecord{}, err
	}
	rec.Date = parsed
	return rec, nil
}
