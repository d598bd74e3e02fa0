package history

import (
	"io"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/spec-kit/loto-fleet/internal/store"
)

const feedCacheKey = "history_feed"

// Service serves the aggregated history feed, caching the flattened result
// between fleet mutations.
type Service struct {
	fleet *store.FleetStore
	cache *gocache.Cache
	ttl   time.Duration
}

// NewService constructs the history service. A non-positive ttl disables
// caching.
func NewService(fleet *store.FleetStore, ttl time.Duration) *Service {
	var c *gocache.Cache
	if ttl > 0 {
		c = gocache.New(ttl, 2*ttl)
	}
	return &Service{fleet: fleet, cache: c, ttl: ttl}
}

// Feed returns the globally time-ordered history feed.
func (s *Service) Feed() []TaggedEntry {
	if s.cache != nil {
		if cached, found := s.cache.Get(feedCacheKey); found {
			return cached.([]TaggedEntry)
		}
	}
	entries := Flatten(s.fleet.List())
	if s.cache != nil {
		s.cache.Set(feedCacheKey, entries, s.ttl)
	}
	return entries
}

// WriteCSV streams the current feed as a CSV export.
func (s *Service) WriteCSV(w io.Writer) error {
	return WriteCSV(w, ToTable(s.Feed()))
}

// Invalidate drops the cached feed; called after every fleet mutation.
func (s *Service) Invalidate() {
	if s.cache != nil {
		s.cache.Delete(feedCacheKey)
	}
}
