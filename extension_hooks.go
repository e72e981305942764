package hybridauth

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-hybridauth/core"
)

// AdapterPack is a named set of third-party adapter factories.
type AdapterPack struct {
	Name      string
	Factories map[string]core.AdapterFactory
}

type CommandQueryBundleFactory func(service CommandQueryService) (any, error)

// ExtensionHooks collects adapter packs and command/query bundles contributed
// by downstream packages before the orchestrator is built.
type ExtensionHooks struct {
	mu sync.RWMutex

	adapterPacks map[string]AdapterPack
	bundles      map[string]CommandQueryBundleFactory
}

func NewExtensionHooks() *ExtensionHooks {
	return &ExtensionHooks{
		adapterPacks: map[string]AdapterPack{},
		bundles:      map[string]CommandQueryBundleFactory{},
	}
}

func (h *ExtensionHooks) RegisterAdapterPack(pack AdapterPack) error {
	if h == nil {
		return fmt.Errorf("hybridauth: extension hooks are nil")
	}
	name := strings.TrimSpace(pack.Name)
	if name == "" {
		return fmt.Errorf("hybridauth: adapter pack name is required")
	}
	if len(pack.Factories) == 0 {
		return fmt.Errorf("hybridauth: adapter pack %q has no factories", name)
	}

	normalized := AdapterPack{Name: name, Factories: make(map[string]core.AdapterFactory, len(pack.Factories))}
	for adapter, factory := range pack.Factories {
		if factory == nil {
			return fmt.Errorf("hybridauth: adapter pack %q contains nil factory for %q", name, adapter)
		}
		normalized.Factories[core.CanonicalProviderName(adapter)] = factory
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.adapterPacks[name]; exists {
		return fmt.Errorf("hybridauth: adapter pack %q already registered", name)
	}
	h.adapterPacks[name] = normalized
	return nil
}

func (h *ExtensionHooks) RegisterCommandQueryBundle(
	name string,
	factory CommandQueryBundleFactory,
) error {
	if h == nil {
		return fmt.Errorf("hybridauth: extension hooks are nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("hybridauth: command/query bundle name is required")
	}
	if factory == nil {
		return fmt.Errorf("hybridauth: command/query bundle %q factory is required", name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.bundles[name]; exists {
		return fmt.Errorf("hybridauth: command/query bundle %q already registered", name)
	}
	h.bundles[name] = factory
	return nil
}

// ApplyAdapterPacks registers every pack, in pack name order, into registry.
func (h *ExtensionHooks) ApplyAdapterPacks(registry core.Registry) error {
	if h == nil {
		return nil
	}
	if registry == nil {
		return fmt.Errorf("hybridauth: registry is required")
	}
	for _, pack := range h.AdapterPacks() {
		names := make([]string, 0, len(pack.Factories))
		for name := range pack.Factories {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := registry.Register(name, pack.Factories[name]); err != nil {
				return fmt.Errorf("hybridauth: adapter pack %q: %w", pack.Name, err)
			}
		}
	}
	return nil
}

func (h *ExtensionHooks) BuildCommandQueryBundles(
	service CommandQueryService,
) (map[string]any, error) {
	if h == nil {
		return map[string]any{}, nil
	}
	if service == nil {
		return nil, fmt.Errorf("hybridauth: command/query service is required")
	}

	names := h.BundleNames()
	h.mu.RLock()
	factories := make(map[string]CommandQueryBundleFactory, len(h.bundles))
	for name, factory := range h.bundles {
		factories[name] = factory
	}
	h.mu.RUnlock()

	result := make(map[string]any, len(names))
	for _, name := range names {
		bundle, err := factories[name](service)
		if err != nil {
			return nil, err
		}
		result[name] = bundle
	}
	return result, nil
}

func (h *ExtensionHooks) AdapterPacks() []AdapterPack {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.adapterPacks))
	for name := range h.adapterPacks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]AdapterPack, 0, len(names))
	for _, name := range names {
		pack := h.adapterPacks[name]
		factories := make(map[string]core.AdapterFactory, len(pack.Factories))
		for adapter, factory := range pack.Factories {
			factories[adapter] = factory
		}
		out = append(out, AdapterPack{Name: pack.Name, Factories: factories})
	}
	return out
}

func (h *ExtensionHooks) BundleNames() []string {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.bundles))
	for name := range h.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
