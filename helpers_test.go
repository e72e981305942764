package hybridauth_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/goliatone/go-hybridauth"
	"github.com/goliatone/go-hybridauth/core"
	"github.com/goliatone/go-hybridauth/providers/devkit"
)

type recordedLog struct {
	level   string
	message string
}

type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]recordedLog
}

func newRecordingLogger() recordingLogger {
	return recordingLogger{mu: &sync.Mutex{}, entries: &[]recordedLog{}}
}

func (l recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, recordedLog{level: level, message: msg})
}

func (l recordingLogger) Trace(msg string, _ ...any) { l.record("trace", msg) }

func (l recordingLogger) Debug(msg string, _ ...any) { l.record("debug", msg) }

func (l recordingLogger) Info(msg string, _ ...any) { l.record("info", msg) }

func (l recordingLogger) Warn(msg string, _ ...any) { l.record("warn", msg) }

func (l recordingLogger) Error(msg string, _ ...any) { l.record("error", msg) }

func (l recordingLogger) Fatal(msg string, _ ...any) { l.record("fatal", msg) }

func (l recordingLogger) WithContext(context.Context) core.Logger { return l }

func (l recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, entry := range *l.entries {
		if entry.level == level {
			total++
		}
	}
	return total
}

// newTestHybridauth builds an orchestrator whose registry maps every name in
// adapters to the fake factory.
func newTestHybridauth(
	t *testing.T,
	raw any,
	fake *devkit.FakeAdapterFactory,
	adapters []string,
	opts ...hybridauth.Option,
) *hybridauth.Hybridauth {
	t.Helper()
	registry := core.NewAdapterRegistry()
	for _, name := range adapters {
		if err := registry.Register(name, fake.Factory()); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	opts = append([]hybridauth.Option{
		hybridauth.WithRegistry(registry),
		hybridauth.WithStorage(devkit.NewRecordingStorage()),
		hybridauth.WithLogger(newRecordingLogger()),
	}, opts...)
	h, err := hybridauth.New(raw, opts...)
	if err != nil {
		t.Fatalf("new hybridauth: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func fakeAdapter(t *testing.T, adapter core.Adapter) *devkit.FakeAdapter {
	t.Helper()
	fake, ok := adapter.(*devkit.FakeAdapter)
	if !ok {
		t.Fatalf("expected *devkit.FakeAdapter, got %T", adapter)
	}
	return fake
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(content)
}
