package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/link-ledger/internal/shortener"
)

const schema = `
	CREATE TABLE IF NOT EXISTS link_events (
		seq         BIGINT PRIMARY KEY,
		event_id    UUID NOT NULL UNIQUE,
		kind        TEXT NOT NULL,
		slug        TEXT NOT NULL,
		url         TEXT,
		occurred_at TIMESTAMPTZ NOT NULL
	)
`

// PostgresEventStore is a PostgreSQL implementation of shortener.EventStore.
// A record is inserted only at the next free seq; re-sending a stored event id is a no-op.
type PostgresEventStore struct {
	pool *pgxpool.Pool
}

// NewPostgresEventStore creates a new PostgreSQL-backed event store.
func NewPostgresEventStore(pool *pgxpool.Pool) *PostgresEventStore {
	return &PostgresEventStore{pool: pool}
}

// EnsureSchema creates the link_events table if it does not exist.
func (p *PostgresEventStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schema)

	return err
}

func (p *PostgresEventStore) Append(ctx context.Context, record shortener.Record) error {
	query := `
		INSERT INTO link_events (seq, event_id, kind, slug, url, occurred_at)
		SELECT $1::bigint, $2::uuid, $3::text, $4::text, $5::text, $6::timestamptz
		WHERE (SELECT COUNT(*) FROM link_events) = $1::bigint
		ON CONFLICT (event_id) DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query,
		int64(record.Seq),
		record.ID,
		string(record.Kind),
		string(record.Slug),
		nullableString(record.URL),
		record.OccurredAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 1 {
		return nil
	}

	var stored bool

	err = p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM link_events WHERE seq = $1 AND event_id = $2)`,
		int64(record.Seq), record.ID,
	).Scan(&stored)
	if err != nil {
		return err
	}

	return appendOutcome(stored, record)
}

func (p *PostgresEventStore) Load(ctx context.Context) ([]shortener.Record, error) {
	query := `
		SELECT seq, event_id, kind, slug, url, occurred_at
		FROM link_events
		ORDER BY seq
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []shortener.Record

	for rows.Next() {
		var (
			record shortener.Record
			seq    int64
			url    *string
		)

		if err := rows.Scan(&seq, &record.ID, &record.Kind, &record.Slug, &url, &record.OccurredAt); err != nil {
			return nil, err
		}

		record.Seq = uint64(seq)

		if url != nil {
			record.URL = shortener.URL(*url)
		}

		records = append(records, record)
	}

	return records, rows.Err()
}

func (p *PostgresEventStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Shutdown closes the connection pool.
func (p *PostgresEventStore) Shutdown() error {
	p.pool.Close()

	return nil
}

func nullableString(u shortener.URL) *string {
	if u == "" {
		return nil
	}

	str := string(u)

	return &str
}
