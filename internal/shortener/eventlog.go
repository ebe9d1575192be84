package shortener

import (
	"context"
	"fmt"
	"sync"
)

// EventStore persists the event log. Implementations only append and read back
// in order; the Service decides what gets appended.
//
// Append accepts a record only at the next free seq. Appending a record whose
// ID is already stored at that seq succeeds without writing it twice.
type EventStore interface {
	Append(ctx context.Context, record Record) error
	Load(ctx context.Context) ([]Record, error)
}

// EventLog is the in-memory EventStore used by default.
type EventLog struct {
	mu      sync.RWMutex
	records []Record
}

// NewEventLog creates an empty in-memory event log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

func (l *EventLog) Append(_ context.Context, record Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := uint64(len(l.records))

	switch {
	case record.Seq == next:
		l.records = append(l.records, record)

		return nil
	case record.Seq < next && l.records[record.Seq].ID == record.ID:
		return nil
	default:
		return fmt.Errorf("%w: append seq %d, next is %d", ErrLogOutOfOrder, record.Seq, next)
	}
}

// Load returns a copy of every record in append order.
func (l *EventLog) Load(_ context.Context) ([]Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Record, len(l.records))
	copy(out, l.records)

	return out, nil
}

// Ping always succeeds; it lets the in-memory log stand in for a health-checked backend.
func (l *EventLog) Ping(_ context.Context) error {
	return nil
}

// Compile-time check.
var _ EventStore = (*EventLog)(nil)
