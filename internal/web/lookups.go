package web

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/qchem/gausscat/internal/datastore/repository"
	"github.com/qchem/gausscat/internal/events"
	"github.com/qchem/gausscat/internal/logger"
	"github.com/qchem/gausscat/internal/models"
)

// DefaultLookupTTL applies when the settings leave the cache TTL unset.
const DefaultLookupTTL = 5 * time.Minute

// LookupLoader fetches the dropdown list of one entity.
type LookupLoader func(ctx context.Context) ([]models.Simple, error)

// LookupCache keeps dropdown lists in memory. Writes invalidate the
// affected entity through Invalidate, or through the publisher returned by
// Publisher for writes made by the repositories.
type LookupCache struct {
	cache   *cache.Cache
	loaders map[string]LookupLoader
	log     logger.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewLookupCache creates a cache with the given TTL.
func NewLookupCache(ttl time.Duration, log logger.Logger) *LookupCache {
	if ttl <= 0 {
		ttl = DefaultLookupTTL
	}
	if log == nil {
		log = logger.NewDiscard()
	}
	return &LookupCache{
		cache:   cache.New(ttl, ttl*2),
		loaders: make(map[string]LookupLoader),
		log:     log,
	}
}

// Register adds the loader for entity.
func (l *LookupCache) Register(entity string, loader LookupLoader) {
	l.loaders[entity] = loader
}

// registerRepository adds a loader backed by repo.
func registerRepository[T entities.Record](l *LookupCache, repo repository.Repository[T], simple func(T) models.Simple) {
	l.Register(repo.Entity(), func(ctx context.Context) ([]models.Simple, error) {
		rows, err := repo.GetAll(ctx, repository.Filter{})
		if err != nil {
			return nil, err
		}
		return models.Records(rows, simple), nil
	})
}

// Get returns the cached list for entity, loading it on a miss.
func (l *LookupCache) Get(ctx context.Context, entity string) ([]models.Simple, error) {
	if cached, found := l.cache.Get(entity); found {
		l.hits.Add(1)
		return cached.([]models.Simple), nil
	}
	l.misses.Add(1)

	loader, ok := l.loaders[entity]
	if !ok {
		return nil, fmt.Errorf("no lookup registered for %s", entity)
	}
	items, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	l.cache.Set(entity, items, cache.DefaultExpiration)
	return items, nil
}

// Invalidate drops the cached list for entity.
func (l *LookupCache) Invalidate(entity string) {
	l.cache.Delete(entity)
}

// Stats reports hits and misses since creation.
func (l *LookupCache) Stats() (hits, misses int64) {
	return l.hits.Load(), l.misses.Load()
}

// Publisher returns an events.Publisher that invalidates the written entity
// before handing the event to next. The invalidation does not depend on the
// bus accepting the event, so a full buffer cannot leave stale dropdowns.
// next may be nil.
func (l *LookupCache) Publisher(next events.Publisher) events.Publisher {
	return &invalidatingPublisher{cache: l, next: next}
}

type invalidatingPublisher struct {
	cache *LookupCache
	next  events.Publisher
}

func (p *invalidatingPublisher) TryPublish(ev events.ChangeEvent) bool {
	p.cache.Invalidate(ev.Entity)
	p.cache.log.Debug("lookup invalidated",
		logger.String("entity", ev.Entity),
		logger.String("op", string(ev.Op)))
	if p.next == nil {
		return true
	}
	return p.next.TryPublish(ev)
}
