package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/serroba/link-ledger/internal/shortener"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLiteEventStore keeps the event log in a local SQLite database.
type SQLiteEventStore struct {
	db *sql.DB
}

// NewSQLiteEventStore opens dsn and creates the link_events table if needed.
func NewSQLiteEventStore(ctx context.Context, dsn string) (*SQLiteEventStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// One connection serializes appends, so the next-seq check and the
	// insert never interleave between writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	return &SQLiteEventStore{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS link_events (
		seq         INTEGER PRIMARY KEY,
		event_id    TEXT NOT NULL UNIQUE,
		kind        TEXT NOT NULL,
		slug        TEXT NOT NULL,
		url         TEXT,
		occurred_at INTEGER NOT NULL
	);
	`
	_, err := db.ExecContext(ctx, query)

	return err
}

func (s *SQLiteEventStore) Append(ctx context.Context, record shortener.Record) error {
	query := `INSERT INTO link_events (seq, event_id, kind, slug, url, occurred_at)
			  SELECT ?, ?, ?, ?, ?, ?
			  WHERE (SELECT COUNT(*) FROM link_events) = ?
			  ON CONFLICT (event_id) DO NOTHING`

	result, err := s.db.ExecContext(ctx, query,
		int64(record.Seq),
		record.ID.String(),
		string(record.Kind),
		string(record.Slug),
		nullableString(record.URL),
		record.OccurredAt.UnixNano(),
		int64(record.Seq),
	)
	if err != nil {
		return err
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if inserted == 1 {
		return nil
	}

	var stored bool

	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM link_events WHERE seq = ? AND event_id = ?)`,
		int64(record.Seq), record.ID.String(),
	).Scan(&stored)
	if err != nil {
		return err
	}

	return appendOutcome(stored, record)
}

func (s *SQLiteEventStore) Load(ctx context.Context) ([]shortener.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, event_id, kind, slug, url, occurred_at FROM link_events ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []shortener.Record

	for rows.Next() {
		var (
			record     shortener.Record
			seq        int64
			url        sql.NullString
			occurredAt int64
		)

		if err := rows.Scan(&seq, &record.ID, &record.Kind, &record.Slug, &url, &occurredAt); err != nil {
			return nil, err
		}

		record.Seq = uint64(seq)
		record.URL = shortener.URL(url.String)
		record.OccurredAt = time.Unix(0, occurredAt).UTC()

		records = append(records, record)
	}

	return records, rows.Err()
}

func (s *SQLiteEventStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Shutdown closes the database.
func (s *SQLiteEventStore) Shutdown() error {
	return s.db.Close()
}
