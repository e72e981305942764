package devkit

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-hybridauth/core"
)

// RecordingStorage is an in-process core.Storage that keeps an operation log.
type RecordingStorage struct {
	mu     sync.Mutex
	values map[string]string
	ops    []string
}

func NewRecordingStorage() *RecordingStorage {
	return &RecordingStorage{values: map[string]string{}}
}

func (s *RecordingStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, "get:"+key)
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *RecordingStorage) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, "set:"+key)
	s.values[key] = value
	return nil
}

func (s *RecordingStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, "delete:"+key)
	delete(s.values, key)
	return nil
}

func (s *RecordingStorage) DeleteMatch(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, "delete_match:"+prefix)
	for key := range s.values {
		if strings.HasPrefix(key, prefix) {
			delete(s.values, key)
		}
	}
	return nil
}

func (s *RecordingStorage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *RecordingStorage) Operations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ops...)
}

var _ core.Storage = (*RecordingStorage)(nil)
