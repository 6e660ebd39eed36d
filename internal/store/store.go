package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"sjsage522/filmwaiver/internal/discount"
	"sjsage522/filmwaiver/internal/source"
	"sjsage522/filmwaiver/logger"
	"sjsage522/filmwaiver/services/publisher"
)

// Origin tags reported alongside the records
const (
	OriginCache = "cache"
	OriginStale = "stale_cache"
)

const (
	// DefaultTTL is the freshness window of a snapshot
	DefaultTTL = 5 * time.Minute

	refreshKey     = "refresh"
	publishKey     = "snapshot"
	publishTimeout = 5 * time.Second
)

// Result is what a read of the store returns
type Result struct {
	Records   []discount.Record
	Origin    string
	FetchedAt time.Time
}

type snapshot struct {
	records   []discount.Record
	fetchedAt time.Time
}

// Store holds at most one snapshot of records and refreshes it through its
// source once the snapshot is older than TTL. Failed refreshes leave the
// previous snapshot in place. A source reporting no records is cached as an
// empty snapshot unless earlier records exist.
type Store struct {
	source    source.Source
	ttl       time.Duration
	publisher publisher.Publisher

	mu   sync.RWMutex
	snap *snapshot

	group singleflight.Group
	now   func() time.Time
	log   *logger.Logger
}

// New creates an empty store. A nil publisher disables snapshot publishing.
func New(src source.Source, ttl time.Duration, pub publisher.Publisher) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if pub == nil {
		pub = publisher.Nop{}
	}
	return &Store{
		source:    src,
		ttl:       ttl,
		publisher: pub,
		now:       time.Now,
		log:       logger.ForStore(),
	}
}

// Get returns the current snapshot when it is fresh and refreshes it
// otherwise. On refresh failure the previous records (possibly none) are
// returned with Origin OriginStale together with the error.
func (s *Store) Get(ctx context.Context) (Result, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()

	if snap != nil && s.now().Sub(snap.fetchedAt) < s.ttl {
		return Result{Records: snap.records, Origin: OriginCache, FetchedAt: snap.fetchedAt}, nil
	}

	return s.Refresh(ctx)
}

// Refresh loads a new snapshot regardless of the current one's age.
// Concurrent callers share a single load, which runs detached from the
// callers' cancellation.
func (s *Store) Refresh(ctx context.Context) (Result, error) {
	ch := s.group.DoChan(refreshKey, func() (interface{}, error) {
		return s.load(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return s.stale(), res.Err
		}
		return res.Val.(Result), nil
	case <-ctx.Done():
		return s.stale(), ctx.Err()
	}
}

func (s *Store) load(ctx context.Context) (Result, error) {
	start := s.now()
	records, err := s.source.Load(ctx)
	if err != nil && errors.Is(err, source.ErrNoRecords) && s.Len() == 0 {
		s.log.Info().Err(err).Str("origin", s.source.Origin()).Msg("Source has no records, caching empty snapshot")
		records, err = []discount.Record{}, nil
	}
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("origin", s.source.Origin()).
			Msg("Refresh failed, keeping previous snapshot")
		return Result{}, err
	}

	snap := &snapshot{records: discount.Clean(records), fetchedAt: s.now()}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.log.Info().
		Str("origin", s.source.Origin()).
		Int("records", len(snap.records)).
		Dur("duration", snap.fetchedAt.Sub(start)).
		Msg("Snapshot refreshed")

	s.publish(ctx, snap)

	return Result{Records: snap.records, Origin: s.source.Origin(), FetchedAt: snap.fetchedAt}, nil
}

func (s *Store) publish(ctx context.Context, snap *snapshot) {
	payload, err := json.Marshal(snap.records)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode snapshot")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, publishKey, payload); err != nil {
		s.log.Warn().Err(err).Msg("Failed to publish snapshot")
	}
}

func (s *Store) stale() Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return Result{Records: []discount.Record{}, Origin: OriginStale}
	}
	return Result{Records: s.snap.records, Origin: OriginStale, FetchedAt: s.snap.fetchedAt}
}

// Age returns the age of the current snapshot, ok is false when there is none
func (s *Store) Age() (age time.Duration, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return 0, false
	}
	return s.now().Sub(s.snap.fetchedAt), true
}

// Len returns the number of records in the current snapshot
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return 0
	}
	return len(s.snap.records)
}
