package devkit

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-hybridauth/core"
)

// AdapterScript controls what a FakeAdapter reports for one provider.
type AdapterScript struct {
	Connected       bool
	AuthenticateErr error
	IsConnectedErr  error
	DisconnectErr   error
	FactoryErr      error
}

// FakeAdapterFactory produces FakeAdapters and records every call made on
// them, in order, as "<provider>.<operation>".
type FakeAdapterFactory struct {
	mu        sync.Mutex
	scripts   map[string]AdapterScript
	calls     []string
	instances []*FakeAdapter
}

func NewFakeAdapterFactory(scripts map[string]AdapterScript) *FakeAdapterFactory {
	normalized := make(map[string]AdapterScript, len(scripts))
	for name, script := range scripts {
		normalized[core.CanonicalProviderName(name)] = script
	}
	return &FakeAdapterFactory{scripts: normalized}
}

func (f *FakeAdapterFactory) Factory() core.AdapterFactory {
	return func(cfg core.ResolvedProviderConfig, transport core.HTTPClient, storage core.Storage, logger core.Logger) (core.Adapter, error) {
		return f.create(cfg, transport, storage, logger)
	}
}

func (f *FakeAdapterFactory) create(cfg core.ResolvedProviderConfig, transport core.HTTPClient, storage core.Storage, logger core.Logger) (core.Adapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := core.CanonicalProviderName(cfg.Name)
	f.calls = append(f.calls, name+".create")
	script := f.scripts[name]
	if script.FactoryErr != nil {
		return nil, script.FactoryErr
	}
	adapter := &FakeAdapter{
		factory:   f,
		name:      name,
		Resolved:  cfg,
		Transport: transport,
		Storage:   storage,
		Logger:    logger,
	}
	f.instances = append(f.instances, adapter)
	return adapter, nil
}

// SetConnected changes the scripted connection state of a provider.
func (f *FakeAdapterFactory) SetConnected(name string, connected bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := core.CanonicalProviderName(name)
	script := f.scripts[key]
	script.Connected = connected
	f.scripts[key] = script
}

func (f *FakeAdapterFactory) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeAdapterFactory) Instances() []*FakeAdapter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeAdapter(nil), f.instances...)
}

func (f *FakeAdapterFactory) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
	f.instances = nil
}

func (f *FakeAdapterFactory) record(name, operation string) AdapterScript {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name+"."+operation)
	return f.scripts[name]
}

type FakeAdapter struct {
	factory *FakeAdapterFactory
	name    string

	Resolved  core.ResolvedProviderConfig
	Transport core.HTTPClient
	Storage   core.Storage
	Logger    core.Logger
}

func (a *FakeAdapter) ID() string {
	return a.name
}

func (a *FakeAdapter) Authenticate(context.Context) error {
	return a.factory.record(a.name, "authenticate").AuthenticateErr
}

func (a *FakeAdapter) IsConnected(context.Context) (bool, error) {
	script := a.factory.record(a.name, "is_connected")
	if script.IsConnectedErr != nil {
		return false, script.IsConnectedErr
	}
	return script.Connected, nil
}

func (a *FakeAdapter) Disconnect(context.Context) error {
	script := a.factory.record(a.name, "disconnect")
	if script.DisconnectErr != nil {
		return script.DisconnectErr
	}
	a.factory.SetConnected(a.name, false)
	return nil
}

func (a *FakeAdapter) String() string {
	return fmt.Sprintf("devkit.FakeAdapter(%s)", strings.TrimSpace(a.name))
}

var _ core.Adapter = (*FakeAdapter)(nil)
