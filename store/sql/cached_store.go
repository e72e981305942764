package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-hybridauth/core"
)

const storageCacheKeyPrefix = "go-hybridauth::storage::v1"

// CachedStorage is a read-through cache in front of any core.Storage. Writes
// go to the base storage first and then invalidate the cached entry.
//
// Instances in one process that share a cache service and scope also share
// the index of cached keys, so DeleteMatch on any of them drops entries read
// through the others. A cache shared between processes is not supported.
type CachedStorage struct {
	base  core.Storage
	cache repositorycache.CacheService
	scope string
	index *keyIndex
}

type keyIndex struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

type keyIndexID struct {
	cache repositorycache.CacheService
	scope string
}

var keyIndexes sync.Map

func newKeyIndex() *keyIndex {
	return &keyIndex{keys: map[string]struct{}{}}
}

func sharedKeyIndex(cache repositorycache.CacheService, scope string) *keyIndex {
	if !reflect.TypeOf(cache).Comparable() {
		return newKeyIndex()
	}
	index, _ := keyIndexes.LoadOrStore(keyIndexID{cache: cache, scope: scope}, newKeyIndex())
	return index.(*keyIndex)
}

type cachedValue struct {
	Value string
	Found bool
}

// NewCachedStorage wraps base. scope separates cache entries of stores that
// share one cache service, usually the session id.
func NewCachedStorage(base core.Storage, cacheService repositorycache.CacheService, scope string) (*CachedStorage, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base storage is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: storage cache service is required")
	}
	scope = strings.TrimSpace(scope)
	if scope == "" {
		scope = DefaultSession
	}
	return &CachedStorage{
		base:  base,
		cache: cacheService,
		scope: scope,
		index: sharedKeyIndex(cacheService, scope),
	}, nil
}

// StorageCacheKey returns go-hybridauth::storage::v1::<scope>::<key> with both
// segments URL-path escaped.
func StorageCacheKey(scope, key string) string {
	return strings.Join([]string{storageCacheKeyPrefix, url.PathEscape(scope), url.PathEscape(key)}, "::")
}

func (s *CachedStorage) Get(ctx context.Context, key string) (string, bool, error) {
	cacheKey := StorageCacheKey(s.scope, key)
	cached, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (cachedValue, error) {
		value, found, fetchErr := s.base.Get(ctx, key)
		if fetchErr != nil {
			return cachedValue{}, fetchErr
		}
		return cachedValue{Value: value, Found: found}, nil
	})
	if err != nil {
		return "", false, err
	}
	s.track(key)
	return cached.Value, cached.Found, nil
}

func (s *CachedStorage) Set(ctx context.Context, key string, value string) error {
	if err := s.base.Set(ctx, key, value); err != nil {
		return err
	}
	return s.invalidate(ctx, key)
}

func (s *CachedStorage) Delete(ctx context.Context, key string) error {
	if err := s.base.Delete(ctx, key); err != nil {
		return err
	}
	return s.invalidate(ctx, key)
}

func (s *CachedStorage) DeleteMatch(ctx context.Context, prefix string) error {
	if err := s.base.DeleteMatch(ctx, prefix); err != nil {
		return err
	}
	for _, key := range s.trackedWithPrefix(prefix) {
		if err := s.invalidate(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *CachedStorage) invalidate(ctx context.Context, key string) error {
	if err := s.cache.Delete(ctx, StorageCacheKey(s.scope, key)); err != nil {
		return err
	}
	s.index.mu.Lock()
	delete(s.index.keys, key)
	s.index.mu.Unlock()
	return nil
}

func (s *CachedStorage) track(key string) {
	s.index.mu.Lock()
	s.index.keys[key] = struct{}{}
	s.index.mu.Unlock()
}

func (s *CachedStorage) trackedWithPrefix(prefix string) []string {
	s.index.mu.Lock()
	defer s.index.mu.Unlock()
	out := make([]string, 0, len(s.index.keys))
	for key := range s.index.keys {
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	return out
}

var _ core.Storage = (*CachedStorage)(nil)
