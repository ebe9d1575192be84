package shortener

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// maxGenerateAttempts bounds how many generated slugs are tried before a
// create without an explicit slug gives up with ErrSlugAlreadyInUse.
const maxGenerateAttempts = 5

// DefaultStoreTimeout bounds each event store call made while the write lock is held.
const DefaultStoreTimeout = 5 * time.Second

// CommandHandler is the write side of the service.
type CommandHandler interface {
	// CreateShortLink binds slug to url. An empty slug is generated.
	CreateShortLink(ctx context.Context, url URL, slug Slug) (ShortLink, error)
	// Redirect resolves slug and counts the redirect.
	Redirect(ctx context.Context, slug Slug) (ShortLink, error)
}

// QueryHandler is the read side of the service.
type QueryHandler interface {
	GetStats(ctx context.Context, slug Slug) (Stats, error)
}

// Option configures a Service.
type Option func(*Service)

// WithEventStore replaces the in-memory event log.
func WithEventStore(store EventStore) Option {
	return func(s *Service) {
		s.events = store
	}
}

// WithSlugGenerator replaces CounterGenerator.
func WithSlugGenerator(gen SlugGenerator) Option {
	return func(s *Service) {
		s.generate = gen
	}
}

// WithURLValidator checks URLs on create. Without it URLs are stored as given.
func WithURLValidator(validate URLValidator) Option {
	return func(s *Service) {
		s.validate = validate
	}
}

// WithReservedSlugs marks slugs that are never bound, neither on request nor by the generator.
func WithReservedSlugs(slugs ...Slug) Option {
	return func(s *Service) {
		for _, slug := range slugs {
			s.reserved[slug] = struct{}{}
		}
	}
}

// WithStoreTimeout bounds every event store call a command makes.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.storeTimeout = d
	}
}

// WithClock sets the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service is the event-sourced URL shortener. One lock covers the event log
// append and the projection update, so every command is a single critical section.
//
// A failed append leaves the service stale: the store may hold the record
// even though the call reported an error. The next command reloads the log
// before doing anything else.
type Service struct {
	mu         sync.RWMutex
	events     EventStore
	projection *Projection
	seq        uint64
	stale      bool

	generate     SlugGenerator
	reserved     map[Slug]struct{}
	validate     URLValidator
	now          func() time.Time
	storeTimeout time.Duration
}

// NewService creates a service with an empty log and an empty projection.
func NewService(opts ...Option) *Service {
	s := &Service{
		events:       NewEventLog(),
		projection:   NewProjection(),
		generate:     CounterGenerator,
		reserved:     make(map[Slug]struct{}),
		now:          time.Now,
		storeTimeout: DefaultStoreTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) CreateShortLink(ctx context.Context, url URL, slug Slug) (ShortLink, error) {
	if s.validate != nil {
		if err := s.validate(url); err != nil {
			return ShortLink{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.resync(ctx); err != nil {
		return ShortLink{}, err
	}

	resolved, err := s.resolveSlug(slug)
	if err != nil {
		return ShortLink{}, err
	}

	link := ShortLink{Slug: resolved, URL: url}
	if err := s.commit(ctx, LinkCreated{Link: link}); err != nil {
		return ShortLink{}, err
	}

	return link, nil
}

// resolveSlug returns a free slug. Caller holds s.mu.
func (s *Service) resolveSlug(slug Slug) (Slug, error) {
	if slug != "" {
		if s.taken(slug) {
			return "", ErrSlugAlreadyInUse
		}

		return slug, nil
	}

	for attempt := range uint64(maxGenerateAttempts) {
		candidate := s.generate(s.seq + attempt)
		if candidate != "" && !s.taken(candidate) {
			return candidate, nil
		}
	}

	return "", ErrSlugAlreadyInUse
}

func (s *Service) taken(slug Slug) bool {
	if _, ok := s.reserved[slug]; ok {
		return true
	}

	return s.projection.Contains(slug)
}

func (s *Service) Redirect(ctx context.Context, slug Slug) (ShortLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.resync(ctx); err != nil {
		return ShortLink{}, err
	}

	stats, ok := s.projection.Lookup(slug)
	if !ok {
		return ShortLink{}, ErrSlugNotFound
	}

	if err := s.commit(ctx, RedirectCountIncremented{Slug: slug}); err != nil {
		return ShortLink{}, err
	}

	return stats.Link, nil
}

func (s *Service) GetStats(_ context.Context, slug Slug) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.projection.Lookup(slug)
	if !ok {
		return Stats{}, ErrSlugNotFound
	}

	return stats, nil
}

// commit appends e to the log and then applies it to the projection.
// The event has already been validated against the projection, so Apply
// cannot fail once the append succeeded. Caller holds s.mu.
func (s *Service) commit(ctx context.Context, e Event) error {
	record := NewRecord(s.seq, e, s.now())

	appendCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.events.Append(appendCtx, record); err != nil {
		s.stale = true

		return fmt.Errorf("append %s event: %w", e.Kind(), err)
	}

	if err := s.projection.Apply(e); err != nil {
		// Unreachable while the lock discipline holds.
		panic(fmt.Sprintf("projection diverged from event log: %v", err))
	}

	s.seq++

	return nil
}

// resync reloads the log after a failed append. Caller holds s.mu.
func (s *Service) resync(ctx context.Context) error {
	if !s.stale {
		return nil
	}

	loadCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.replay(loadCtx); err != nil {
		return fmt.Errorf("resync after failed append: %w", err)
	}

	s.stale = false

	return nil
}

// Restore rebuilds the projection by folding every record in the event store.
// The current state is kept if the log cannot be loaded or is inconsistent.
func (s *Service) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.replay(ctx); err != nil {
		return err
	}

	s.stale = false

	return nil
}

// replay folds the stored log into a fresh projection and swaps it in.
// Caller holds s.mu.
func (s *Service) replay(ctx context.Context) error {
	records, err := s.events.Load(ctx)
	if err != nil {
		return fmt.Errorf("load event log: %w", err)
	}

	projection := NewProjection()

	for i, record := range records {
		if record.Seq != uint64(i) {
			return fmt.Errorf("%w: record %d has seq %d", ErrLogOutOfOrder, i, record.Seq)
		}

		e, err := record.Event()
		if err != nil {
			return err
		}

		if err := projection.Apply(e); err != nil {
			return fmt.Errorf("replay seq %d: %w", record.Seq, err)
		}
	}

	s.projection = projection
	s.seq = uint64(len(records))

	return nil
}

// EventCount returns the number of events committed through this service.
func (s *Service) EventCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.seq
}

// LinkCount returns the number of live short links.
func (s *Service) LinkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.projection.Len()
}

// Compile-time checks.
var (
	_ CommandHandler = (*Service)(nil)
	_ QueryHandler   = (*Service)(nil)
)
