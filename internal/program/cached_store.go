package program

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/2beens/kadjot/internal/auth"
	"github.com/2beens/kadjot/internal/telemetry/metrics"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

// CachedStore keeps active programs in memory. Every program lifecycle
// change goes through it, so invalidation on start, update and reset is
// enough to keep it consistent within one process.
type CachedStore struct {
	Store
	cache   *freecache.Cache
	ttl     time.Duration
	metrics *metrics.Manager
}

func NewCachedStore(store Store, cache *freecache.Cache, ttl time.Duration, metricsManager *metrics.Manager) *CachedStore {
	return &CachedStore{
		Store:   store,
		cache:   cache,
		ttl:     ttl,
		metrics: metricsManager,
	}
}

func (s *CachedStore) countCache(result string) {
	if s.metrics != nil {
		s.metrics.CounterProgramCache.WithLabelValues(result).Inc()
	}
}

func (s *CachedStore) ActiveProgram(ctx context.Context, owner auth.Owner) (*Program, error) {
	cacheKey := []byte(owner.Key())
	if programBytes, err := s.cache.Get(cacheKey); err == nil {
		var p Program
		if err := json.Unmarshal(programBytes, &p); err == nil {
			s.countCache("hit")
			return &p, nil
		}
		log.Errorf("cached program of %s is corrupt, dropping it", owner)
		s.cache.Del(cacheKey)
	} else if !errors.Is(err, freecache.ErrNotFound) {
		log.Errorf("get cached program of %s: %s", owner, err)
	}

	s.countCache("miss")
	p, err := s.Store.ActiveProgram(ctx, owner)
	if err != nil {
		return nil, err
	}

	programBytes, err := json.Marshal(p)
	if err != nil {
		log.Errorf("marshal program %d for cache: %s", p.ID, err)
		return p, nil
	}
	if err := s.cache.Set(cacheKey, programBytes, int(s.ttl.Seconds())); err != nil {
		log.Errorf("cache program %d: %s", p.ID, err)
	}

	return p, nil
}

func (s *CachedStore) invalidate(owner auth.Owner) {
	s.cache.Del([]byte(owner.Key()))
}

func (s *CachedStore) StartProgram(ctx context.Context, owner auth.Owner, newProgram NewProgram) (*Program, error) {
	defer s.invalidate(owner)
	return s.Store.StartProgram(ctx, owner, newProgram)
}

func (s *CachedStore) UpdateProgram(ctx context.Context, owner auth.Owner, id int, update Update) (*Program, error) {
	defer s.invalidate(owner)
	return s.Store.UpdateProgram(ctx, owner, id, update)
}

func (s *CachedStore) ResetProgram(ctx context.Context, owner auth.Owner) (*Program, error) {
	defer s.invalidate(owner)
	return s.Store.ResetProgram(ctx, owner)
}
