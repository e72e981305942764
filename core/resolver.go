package core

import "strings"

// ResolvedProviderConfig is a per-call copy of a provider entry with callback
// inheritance applied. Name is the canonical table key and Adapter the
// canonical registry name.
type ResolvedProviderConfig struct {
	Name    string
	Adapter string
	ProviderConfig
}

// Resolve looks a provider up by name, ignoring case and surrounding spaces.
func Resolve(cfg Config, name string) (ResolvedProviderConfig, error) {
	key := CanonicalProviderName(name)
	if key == "" {
		return ResolvedProviderConfig{}, &UnknownProviderError{Name: name}
	}
	tableKey, entry, ok := lookupProvider(cfg, key)
	if !ok {
		return ResolvedProviderConfig{}, &UnknownProviderError{Name: name}
	}
	if !entry.Enabled {
		return ResolvedProviderConfig{}, &ProviderDisabledError{Name: CanonicalProviderName(tableKey)}
	}

	resolved := ResolvedProviderConfig{
		Name:           CanonicalProviderName(tableKey),
		ProviderConfig: entry.Clone(),
	}
	resolved.Callback = strings.TrimSpace(resolved.Callback)
	if resolved.Callback == "" {
		resolved.Callback = strings.TrimSpace(cfg.Callback)
	}
	resolved.Adapter = CanonicalProviderName(resolved.ProviderConfig.Adapter)
	if resolved.Adapter == "" {
		resolved.Adapter = resolved.Name
	}
	return resolved, nil
}

func lookupProvider(cfg Config, key string) (string, ProviderConfig, bool) {
	if entry, ok := cfg.Providers[key]; ok {
		return key, entry, true
	}
	for tableKey, entry := range cfg.Providers {
		if CanonicalProviderName(tableKey) == key {
			return tableKey, entry, true
		}
	}
	return "", ProviderConfig{}, false
}
