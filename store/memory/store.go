package memorystore

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/goliatone/go-hybridauth/core"
)

const DefaultSession = "default"

// Store is an in-process session storage. Several Stores can share one cache
// through ForSession, each seeing only its own session keys.
type Store struct {
	cache   *gocache.Cache
	session string
	ttl     time.Duration
}

type Option func(*Store)

// WithTTL expires entries after ttl. Zero keeps them until deleted.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

func WithSession(session string) Option {
	return func(s *Store) {
		if session = strings.TrimSpace(session); session != "" {
			s.session = session
		}
	}
}

func New(opts ...Option) *Store {
	store := &Store{session: DefaultSession}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	expiration := gocache.NoExpiration
	if store.ttl > 0 {
		expiration = store.ttl
	}
	store.cache = gocache.New(expiration, time.Minute)
	return store
}

// ForSession returns a view of the same cache scoped to another session.
func (s *Store) ForSession(session string) *Store {
	session = strings.TrimSpace(session)
	if session == "" {
		session = DefaultSession
	}
	return &Store{cache: s.cache, session: session, ttl: s.ttl}
}

func (s *Store) Session() string {
	return s.session
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	value, ok := s.cache.Get(s.key(key))
	if !ok {
		return "", false, nil
	}
	text, _ := value.(string)
	return text, true, nil
}

func (s *Store) Set(_ context.Context, key string, value string) error {
	s.cache.Set(s.key(key), value, gocache.DefaultExpiration)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.cache.Delete(s.key(key))
	return nil
}

func (s *Store) DeleteMatch(_ context.Context, prefix string) error {
	full := s.key(prefix)
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, full) {
			s.cache.Delete(key)
		}
	}
	return nil
}

// Clear drops every key of this session.
func (s *Store) Clear(ctx context.Context) error {
	return s.DeleteMatch(ctx, "")
}

func (s *Store) key(key string) string {
	return s.session + ":" + key
}

var _ core.Storage = (*Store)(nil)
