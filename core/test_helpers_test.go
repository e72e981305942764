package core

import (
	"context"
	"sync"
)

type testAdapter struct {
	id        string
	resolved  ResolvedProviderConfig
	transport HTTPClient
	storage   Storage
	logger    Logger
}

func (a *testAdapter) ID() string { return a.id }

func (a *testAdapter) Authenticate(context.Context) error { return nil }

func (a *testAdapter) IsConnected(context.Context) (bool, error) { return false, nil }

func (a *testAdapter) Disconnect(context.Context) error { return nil }

func testAdapterFactory(cfg ResolvedProviderConfig, transport HTTPClient, storage Storage, logger Logger) (Adapter, error) {
	return &testAdapter{id: cfg.Name, resolved: cfg, transport: transport, storage: storage, logger: logger}, nil
}

type recordedLog struct {
	level   string
	message string
	args    []any
}

type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]recordedLog
}

func newRecordingLogger() recordingLogger {
	return recordingLogger{mu: &sync.Mutex{}, entries: &[]recordedLog{}}
}

func (l recordingLogger) record(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, recordedLog{level: level, message: msg, args: args})
}

func (l recordingLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l recordingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l recordingLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l recordingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l recordingLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l recordingLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l recordingLogger) WithContext(context.Context) Logger { return l }

func (l recordingLogger) levels() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(*l.entries))
	for _, entry := range *l.entries {
		out = append(out, entry.level)
	}
	return out
}

type recordingMetrics struct {
	counters   map[string]int64
	histograms map[string]int
	tags       map[string]map[string]string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		counters:   map[string]int64{},
		histograms: map[string]int{},
		tags:       map[string]map[string]string{},
	}
}

func (m *recordingMetrics) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.counters[name] += value
	m.tags[name] = tags
}

func (m *recordingMetrics) ObserveHistogram(_ context.Context, name string, _ float64, tags map[string]string) {
	m.histograms[name]++
	m.tags[name] = tags
}
