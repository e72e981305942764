package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-hybridauth/core"
)

const (
	DefaultPrefix  = "hybridauth"
	DefaultSession = "default"

	scanCount = 100
)

// Store keeps session state in redis under "<prefix>:<session>:<key>".
type Store struct {
	client  redis.UniversalClient
	prefix  string
	session string
	ttl     time.Duration
}

type Option func(*Store)

func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix = strings.Trim(strings.TrimSpace(prefix), ":"); prefix != "" {
			s.prefix = prefix
		}
	}
}

func WithSession(session string) Option {
	return func(s *Store) {
		if session = strings.TrimSpace(session); session != "" {
			s.session = session
		}
	}
}

// WithTTL sets an expiry on every write. Zero keeps entries until deleted.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

func New(client redis.UniversalClient, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redisstore: client is required")
	}
	store := &Store{
		client:  client,
		prefix:  DefaultPrefix,
		session: DefaultSession,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

// ForSession returns a store sharing the client, scoped to another session.
func (s *Store) ForSession(session string) *Store {
	cloned := *s
	if session = strings.TrimSpace(session); session != "" {
		cloned.session = session
	} else {
		cloned.session = DefaultSession
	}
	return &cloned
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redisstore: ping: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redisstore: get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redisstore: delete %s: %w", key, err)
	}
	return nil
}

// DeleteMatch removes every key of the session starting with prefix. Keys are
// found with SCAN so large keyspaces are not blocked.
func (s *Store) DeleteMatch(ctx context.Context, prefix string) error {
	pattern := escapeGlob(s.key(prefix)) + "*"
	iter := s.client.Scan(ctx, 0, pattern, scanCount).Iterator()
	batch := make([]string, 0, scanCount)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanCount {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redisstore: delete %s*: %w", prefix, err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redisstore: scan %s*: %w", prefix, err)
	}
	if len(batch) > 0 {
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redisstore: delete %s*: %w", prefix, err)
		}
	}
	return nil
}

func (s *Store) key(key string) string {
	return s.prefix + ":" + s.session + ":" + key
}

func escapeGlob(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

var _ core.Storage = (*Store)(nil)
