// Package store holds the durable event store backends.
package store

import (
	"context"
	"fmt"

	"github.com/serroba/link-ledger/internal/shortener"
)

// EventStore is a shortener.EventStore that can report its own health.
type EventStore interface {
	shortener.EventStore
	Ping(ctx context.Context) error
}

// appendOutcome resolves a conditional insert that wrote nothing. The record
// is already stored when its event id sits at its seq; any other row there
// is a conflicting writer.
func appendOutcome(stored bool, record shortener.Record) error {
	if stored {
		return nil
	}

	return fmt.Errorf("%w: seq %d is not the next free position", shortener.ErrLogOutOfOrder, record.Seq)
}

var (
	_ EventStore = (*shortener.EventLog)(nil)
	_ EventStore = (*RedisEventStore)(nil)
	_ EventStore = (*PostgresEventStore)(nil)
	_ EventStore = (*SQLiteEventStore)(nil)
)
