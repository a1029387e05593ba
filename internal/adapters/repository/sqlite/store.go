// Package sqlite provides a SQLite-backed record store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/primeapi/internal/adapters/repository"
	"github.com/okian/primeapi/internal/adapters/repository/sqlite/migrations"
	"github.com/okian/primeapi/internal/domain/model"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists classified records in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var (
	_ repository.Store    = (*Store)(nil)
	_ repository.Appender = (*Store)(nil)
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to stamp appended records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens a SQLite record store and applies embedded migrations.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	s := &Store{sqlDB: sqlDB, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// column maps a key to its column name. Only these two names ever reach SQL text.
func column(key model.Key) (string, error) {
	switch key {
	case model.KeyValue:
		return "value", nil
	case model.KeyRank:
		return "rank", nil
	}
	return "", fmt.Errorf("%w: %q", repository.ErrInvalidKey, key)
}

func direction(dir model.Direction) string {
	if dir == model.Descending {
		return "DESC"
	}
	return "ASC"
}

func scanRecords(rows *sql.Rows) ([]model.Record, error) {
	defer rows.Close()
	out := []model.Record{}
	for rows.Next() {
		var rec model.Record
		var recordedAt int64
		if err := rows.Scan(&rec.Value, &rec.Rank, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.RecordedAt = fromMillis(recordedAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// FindExtremal returns the first record ordered by key in dir.
func (s *Store) FindExtremal(ctx context.Context, key model.Key, dir model.Direction) (model.Record, error) {
	col, err := column(key)
	if err != nil {
		return model.Record{}, err
	}
	var rec model.Record
	var recordedAt int64
	err = s.sqlDB.QueryRowContext(ctx,
		`SELECT value, rank, recorded_at FROM numbers ORDER BY `+col+` `+direction(dir)+` LIMIT 1`,
	).Scan(&rec.Value, &rec.Rank, &recordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, repository.ErrNotFound
	}
	if err != nil {
		return model.Record{}, fmt.Errorf("find extremal %s %s: %w", col, direction(dir), err)
	}
	rec.RecordedAt = fromMillis(recordedAt)
	return rec, nil
}

// FindRange returns up to limit records with key in [lo, hi] sorted by key.
func (s *Store) FindRange(ctx context.Context, key model.Key, lo, hi int64, dir model.Direction, limit int) ([]model.Record, error) {
	col, err := column(key)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		return nil, repository.ErrInvalidLimit
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT value, rank, recorded_at FROM numbers
		 WHERE `+col+` BETWEEN ? AND ?
		 ORDER BY `+col+` `+direction(dir)+`
		 LIMIT ?`,
		lo, hi, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("find range: %w", err)
	}
	return scanRecords(rows)
}

// SampleRange draws up to size records with key in [lo, hi] using SQLite's
// random ordering, so every matching row is equally likely and none repeats.
func (s *Store) SampleRange(ctx context.Context, key model.Key, lo, hi int64, size int) ([]model.Record, error) {
	col, err := column(key)
	if err != nil {
		return nil, err
	}
	if size < 1 {
		return nil, repository.ErrInvalidLimit
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT value, rank, recorded_at FROM numbers
		 WHERE `+col+` BETWEEN ? AND ?
		 ORDER BY RANDOM()
		 LIMIT ?`,
		lo, hi, size,
	)
	if err != nil {
		return nil, fmt.Errorf("sample range: %w", err)
	}
	return scanRecords(rows)
}

// FindExactMatch looks up every value in one statement. The values travel as
// a single JSON array parameter, which keeps large batches under SQLite's
// bound-parameter limit.
func (s *Store) FindExactMatch(ctx context.Context, values []int64) ([]model.Record, error) {
	if len(values) == 0 {
		return []model.Record{}, nil
	}
	payload, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode values: %w", err)
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT value, rank, recorded_at FROM numbers
		 WHERE value IN (SELECT value FROM json_each(?))
		 ORDER BY value`,
		string(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("find exact match: %w", err)
	}
	return scanRecords(rows)
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM numbers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Append inserts records in one transaction after checking they extend the
// current maximum in both value and rank.
func (s *Store) Append(ctx context.Context, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var lastValue, lastRank int64
	err = tx.QueryRowContext(ctx,
		`SELECT value, rank FROM numbers ORDER BY value DESC LIMIT 1`,
	).Scan(&lastValue, &lastRank)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read current max: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO numbers (value, rank, recorded_at) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare append: %w", err)
	}
	defer stmt.Close()

	stamp := toMillis(s.now())
	for _, r := range records {
		if r.Rank < 1 || (lastRank > 0 && (r.Value <= lastValue || r.Rank <= lastRank)) {
			return fmt.Errorf("%w: value %d rank %d", repository.ErrNotMonotonic, r.Value, r.Rank)
		}
		recordedAt := stamp
		if !r.RecordedAt.IsZero() {
			recordedAt = toMillis(r.RecordedAt)
		}
		if _, err := stmt.ExecContext(ctx, r.Value, r.Rank, recordedAt); err != nil {
			if isConstraintViolation(err) {
				return fmt.Errorf("%w: value %d rank %d", repository.ErrNotMonotonic, r.Value, r.Rank)
			}
			return fmt.Errorf("insert record %d: %w", r.Value, err)
		}
		lastValue, lastRank = r.Value, r.Rank
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY,
			sqlite3lib.SQLITE_CONSTRAINT_UNIQUE,
			sqlite3lib.SQLITE_CONSTRAINT_CHECK:
			return true
		}
	}
	return false
}
