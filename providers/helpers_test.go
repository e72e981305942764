package providers

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-hybridauth/core"
)

type mapStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func newMapStorage() *mapStorage {
	return &mapStorage{values: map[string]string{}}
}

func (s *mapStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *mapStorage) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *mapStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *mapStorage) DeleteMatch(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.values {
		if strings.HasPrefix(key, prefix) {
			delete(s.values, key)
		}
	}
	return nil
}

func (s *mapStorage) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.values))
	for key := range s.values {
		out = append(out, key)
	}
	return out
}

func redirectTarget(t *testing.T, err error) *url.URL {
	t.Helper()
	target, ok := core.RedirectURL(err)
	if !ok {
		t.Fatalf("expected redirect error, got %v", err)
	}
	parsed, parseErr := url.Parse(target)
	if parseErr != nil {
		t.Fatalf("parse redirect target: %v", parseErr)
	}
	return parsed
}
