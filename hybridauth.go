package hybridauth

import (
	"context"
	"errors"
	"io"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-hybridauth/adapters/gologger"
	"github.com/goliatone/go-hybridauth/core"
	memorystore "github.com/goliatone/go-hybridauth/store/memory"
	"github.com/goliatone/go-hybridauth/transport"
)

const loggerName = "hybridauth"

// Hybridauth is the entry point applications use to authenticate against
// the configured providers. Adapters are built fresh for every call and never
// cached; state that must outlive a call lives in the storage collaborator.
type Hybridauth struct {
	config         core.Config
	registry       core.Registry
	transport      core.HTTPClient
	storage        core.Storage
	logger         core.Logger
	loggerProvider core.LoggerProvider
	observer       core.Observer
	closers        []io.Closer
}

// New normalizes raw (a core.Config, a raw map, a file path or a
// core.RawConfigLoader) and wires the collaborators. Omitted collaborators
// fall back to a retrying HTTP client, in-memory storage and a zap logger
// driven by debug_mode.
func New(raw any, opts ...Option) (*Hybridauth, error) {
	cfg, err := core.Normalize(raw)
	if err != nil {
		return nil, err
	}

	b := builder{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&b)
	}

	h := &Hybridauth{config: cfg}

	logger := b.logger
	if logger == nil && b.loggerProvider == nil {
		built, closer, buildErr := gologger.New(cfg.DebugMode, cfg.DebugFile)
		if buildErr != nil {
			return nil, &core.InvalidConfigError{Cause: buildErr}
		}
		logger = built
		h.closers = append(h.closers, closer)
	}
	provider, logger := glog.Resolve(loggerName, b.loggerProvider, logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger(loggerName); named != nil {
			logger = glog.Ensure(named)
		}
	}
	h.logger = logger
	h.loggerProvider = provider

	if b.transport == nil {
		client, buildErr := transport.NewFromConfig(cfg.TransportOptions, logger)
		if buildErr != nil {
			_ = h.Close()
			return nil, &core.InvalidConfigError{Cause: buildErr}
		}
		b.transport = client
	}
	if b.storage == nil {
		b.storage = memorystore.New()
	}
	if b.registry == nil {
		b.registry = DefaultRegistry()
	}
	if err := b.hooks.ApplyAdapterPacks(b.registry); err != nil {
		_ = h.Close()
		return nil, err
	}
	if b.metricsRecorder == nil {
		b.metricsRecorder = core.NopMetricsRecorder{}
	}

	h.registry = b.registry
	h.transport = b.transport
	h.storage = b.storage
	h.observer = core.Observer{Logger: logger, Metrics: b.metricsRecorder}
	return h, nil
}

// Authenticate resolves name, builds its adapter and runs the adapter's
// handshake. A *core.RedirectError means the user agent has to visit the
// provider; call Authenticate again from the callback handler with the
// callback query on ctx.
func (h *Hybridauth) Authenticate(ctx context.Context, name string) (adapter core.Adapter, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"provider": core.CanonicalProviderName(name)}
	defer func() {
		h.observer.Observe(ctx, startedAt, "authenticate", err, fields)
	}()

	h.observer.Log(ctx, "info", "hybridauth authenticate", fields)
	adapter, err = h.GetAdapter(name)
	if err != nil {
		return nil, err
	}
	if err = adapter.Authenticate(ctx); err != nil {
		return nil, err
	}
	return adapter, nil
}

// GetAdapter resolves name and builds a new adapter without touching the
// network. Disabled providers fail before any adapter is constructed.
func (h *Hybridauth) GetAdapter(name string) (core.Adapter, error) {
	resolved, err := core.Resolve(h.config, name)
	if err != nil {
		return nil, err
	}
	return h.registry.Create(resolved, h.collaboratorsFor(resolved.Name))
}

// IsConnectedWith reports whether a fresh adapter for name finds a stored session.
func (h *Hybridauth) IsConnectedWith(ctx context.Context, name string) (connected bool, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"provider": core.CanonicalProviderName(name)}
	defer func() {
		h.observer.Observe(ctx, startedAt, "is_connected", err, fields)
	}()

	adapter, err := h.GetAdapter(name)
	if err != nil {
		return false, err
	}
	return adapter.IsConnected(ctx)
}

// GetConnectedProviders lists, in table order, the providers whose adapter
// reports a connection. Disabled entries are skipped; the first error aborts
// the walk.
func (h *Hybridauth) GetConnectedProviders(ctx context.Context) ([]string, error) {
	connected, err := h.connected(ctx, "get_connected_providers")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(connected))
	for _, entry := range connected {
		names = append(names, entry.name)
	}
	return names, nil
}

// GetConnectedAdapters returns the adapters that reported a connection, keyed
// by provider name. Each returned adapter is the instance that was probed.
func (h *Hybridauth) GetConnectedAdapters(ctx context.Context) (map[string]core.Adapter, error) {
	connected, err := h.connected(ctx, "get_connected_adapters")
	if err != nil {
		return nil, err
	}
	adapters := make(map[string]core.Adapter, len(connected))
	for _, entry := range connected {
		adapters[entry.name] = entry.adapter
	}
	return adapters, nil
}

// Disconnect drops the session state of one provider.
func (h *Hybridauth) Disconnect(ctx context.Context, name string) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"provider": core.CanonicalProviderName(name)}
	defer func() {
		h.observer.Observe(ctx, startedAt, "disconnect", err, fields)
	}()

	adapter, err := h.GetAdapter(name)
	if err != nil {
		return err
	}
	return adapter.Disconnect(ctx)
}

// DisconnectAllAdapters disconnects every connected provider in table order
// and skips the others. The first error aborts the walk.
func (h *Hybridauth) DisconnectAllAdapters(ctx context.Context) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		h.observer.Observe(ctx, startedAt, "disconnect_all", err, fields)
	}()

	disconnected := 0
	for _, name := range h.enabledProviders() {
		adapter, createErr := h.GetAdapter(name)
		if createErr != nil {
			fields["provider"] = name
			return createErr
		}
		connected, probeErr := adapter.IsConnected(ctx)
		if probeErr != nil {
			fields["provider"] = name
			return probeErr
		}
		if !connected {
			continue
		}
		if err = adapter.Disconnect(ctx); err != nil {
			fields["provider"] = name
			return err
		}
		disconnected++
	}
	fields["disconnected"] = disconnected
	return nil
}

// Providers lists the enabled providers in table order.
func (h *Hybridauth) Providers() []string {
	return h.enabledProviders()
}

// Config returns a copy of the normalized configuration.
func (h *Hybridauth) Config() core.Config {
	return h.config.Clone()
}

// Collaborators returns the shared transport, storage and logger.
func (h *Hybridauth) Collaborators() core.Collaborators {
	return core.Collaborators{
		Transport: h.transport,
		Storage:   h.storage,
		Logger:    h.logger,
	}
}

// Close flushes the logger built from debug_file. Injected collaborators are
// left alone.
func (h *Hybridauth) Close() error {
	var errs []error
	for _, closer := range h.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	h.closers = nil
	return errors.Join(errs...)
}

type connectedAdapter struct {
	name    string
	adapter core.Adapter
}

func (h *Hybridauth) connected(ctx context.Context, operation string) (out []connectedAdapter, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		h.observer.Observe(ctx, startedAt, operation, err, fields)
	}()

	for _, name := range h.enabledProviders() {
		adapter, createErr := h.GetAdapter(name)
		if createErr != nil {
			fields["provider"] = name
			return nil, createErr
		}
		connected, probeErr := adapter.IsConnected(ctx)
		if probeErr != nil {
			fields["provider"] = name
			return nil, probeErr
		}
		if connected {
			out = append(out, connectedAdapter{name: name, adapter: adapter})
		}
	}
	fields["connected"] = len(out)
	return out, nil
}

func (h *Hybridauth) enabledProviders() []string {
	names := h.config.ProviderNames()
	enabled := make([]string, 0, len(names))
	for _, name := range names {
		if h.config.Providers[name].Enabled {
			enabled = append(enabled, name)
		}
	}
	return enabled
}

// collaboratorsFor hands each adapter a logger named after its provider when
// a logger provider is configured.
func (h *Hybridauth) collaboratorsFor(name string) core.Collaborators {
	collaborators := h.Collaborators()
	if h.loggerProvider != nil {
		if named := h.loggerProvider.GetLogger(loggerName + "." + name); named != nil {
			collaborators.Logger = named
		}
	}
	return collaborators
}
