// Package promrecorder exposes orchestrator metrics through Prometheus.
package promrecorder

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/goliatone/go-hybridauth/core"
	"github.com/prometheus/client_golang/prometheus"
)

var labelNames = []string{"operation", "status", "provider"}

var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9_:]`)

// Recorder implements core.MetricsRecorder. Each metric name gets its own
// vector, created and registered on first use, labelled by operation, status
// and provider. Other tags are dropped.
type Recorder struct {
	registerer prometheus.Registerer
	buckets    []float64

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	onError    func(error)
}

type Option func(*Recorder)

// WithBuckets overrides the histogram buckets. Durations are recorded in
// milliseconds.
func WithBuckets(buckets []float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.buckets = append([]float64(nil), buckets...)
		}
	}
}

// WithErrorHandler receives registration failures, which would otherwise be
// dropped.
func WithErrorHandler(fn func(error)) Option {
	return func(r *Recorder) {
		if fn != nil {
			r.onError = fn
		}
	}
}

func New(registerer prometheus.Registerer, opts ...Option) *Recorder {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		registerer: registerer,
		buckets:    prometheus.ExponentialBuckets(5, 2, 12),
		counters:   map[string]*prometheus.CounterVec{},
		histograms: map[string]*prometheus.HistogramVec{},
		onError:    func(error) {},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Recorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	if r == nil || value < 0 {
		return
	}
	vec, err := r.counter(name)
	if err != nil {
		r.onError(err)
		return
	}
	vec.WithLabelValues(labelValues(tags)...).Add(float64(value))
}

func (r *Recorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	if r == nil {
		return
	}
	vec, err := r.histogram(name)
	if err != nil {
		r.onError(err)
		return
	}
	vec.WithLabelValues(labelValues(tags)...).Observe(value)
}

func (r *Recorder) counter(name string) (*prometheus.CounterVec, error) {
	metric := MetricName(name)
	if metric == "" {
		return nil, fmt.Errorf("promrecorder: metric name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if vec, ok := r.counters[metric]; ok {
		return vec, nil
	}
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metric,
		Help: "Count of " + strings.TrimSpace(name) + " events.",
	}, labelNames)
	registered, err := register(r.registerer, vec)
	if err != nil {
		return nil, err
	}
	counter, ok := registered.(*prometheus.CounterVec)
	if !ok {
		return nil, fmt.Errorf("promrecorder: %s is registered with another type", metric)
	}
	r.counters[metric] = counter
	return counter, nil
}

func (r *Recorder) histogram(name string) (*prometheus.HistogramVec, error) {
	metric := MetricName(name)
	if metric == "" {
		return nil, fmt.Errorf("promrecorder: metric name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if vec, ok := r.histograms[metric]; ok {
		return vec, nil
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metric,
		Help:    "Distribution of " + strings.TrimSpace(name) + ".",
		Buckets: r.buckets,
	}, labelNames)
	registered, err := register(r.registerer, vec)
	if err != nil {
		return nil, err
	}
	histogram, ok := registered.(*prometheus.HistogramVec)
	if !ok {
		return nil, fmt.Errorf("promrecorder: %s is registered with another type", metric)
	}
	r.histograms[metric] = histogram
	return histogram, nil
}

// register returns the collector already registered under the same
// descriptor, so two recorders can share one registry.
func register(registerer prometheus.Registerer, collector prometheus.Collector) (prometheus.Collector, error) {
	if err := registerer.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return already.ExistingCollector, nil
		}
		return nil, fmt.Errorf("promrecorder: register collector: %w", err)
	}
	return collector, nil
}

// MetricName maps "hybridauth.authenticate.total" to
// "hybridauth_authenticate_total".
func MetricName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = invalidNameChars.ReplaceAllString(name, "_")
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

func labelValues(tags map[string]string) []string {
	values := make([]string, len(labelNames))
	for i, label := range labelNames {
		values[i] = strings.TrimSpace(tags[label])
	}
	return values
}

var _ core.MetricsRecorder = (*Recorder)(nil)
