package hybridauth

import "github.com/goliatone/go-hybridauth/core"

type builder struct {
	transport       core.HTTPClient
	storage         core.Storage
	logger          core.Logger
	loggerProvider  core.LoggerProvider
	registry        core.Registry
	metricsRecorder core.MetricsRecorder
	hooks           *ExtensionHooks
}

type Option func(*builder)

// WithTransport replaces the retrying HTTP client built from
// transport_options.
func WithTransport(transport core.HTTPClient) Option {
	return func(b *builder) {
		b.transport = transport
	}
}

// WithStorage replaces the in-memory session storage.
func WithStorage(storage core.Storage) Option {
	return func(b *builder) {
		b.storage = storage
	}
}

// WithLogger replaces the logger derived from debug_mode and debug_file.
func WithLogger(logger core.Logger) Option {
	return func(b *builder) {
		b.logger = logger
	}
}

// WithLoggerProvider supplies named loggers; adapters get "hybridauth.<provider>".
func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(b *builder) {
		b.loggerProvider = provider
	}
}

// WithRegistry replaces DefaultRegistry.
func WithRegistry(registry core.Registry) Option {
	return func(b *builder) {
		b.registry = registry
	}
}

// WithMetricsRecorder records operation counters and durations.
func WithMetricsRecorder(recorder core.MetricsRecorder) Option {
	return func(b *builder) {
		b.metricsRecorder = recorder
	}
}

// WithExtensionHooks registers the hooks' adapter packs into the registry
// during New.
func WithExtensionHooks(hooks *ExtensionHooks) Option {
	return func(b *builder) {
		b.hooks = hooks
	}
}
