package core

import (
	"fmt"
	"sort"
	"strings"
)

type DebugMode string

const (
	DebugModeNone  DebugMode = "none"
	DebugModeError DebugMode = "error"
	DebugModeInfo  DebugMode = "info"
	DebugModeDebug DebugMode = "debug"
)

// ParseDebugMode accepts the canonical modes plus the legacy aliases
// "simple" (info), "verbose" (debug) and "false"/"off" (none).
func ParseDebugMode(raw string) (DebugMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none", "false", "off", "0":
		return DebugModeNone, nil
	case "error":
		return DebugModeError, nil
	case "info", "simple", "true":
		return DebugModeInfo, nil
	case "debug", "verbose":
		return DebugModeDebug, nil
	default:
		return "", fmt.Errorf("core: unsupported debug_mode %q", raw)
	}
}

type ProviderConfig struct {
	Enabled         bool              `koanf:"enabled" mapstructure:"enabled"`
	Callback        string            `koanf:"callback" mapstructure:"callback"`
	Adapter         string            `koanf:"adapter" mapstructure:"adapter"`
	Keys            map[string]string `koanf:"keys" mapstructure:"keys"`
	Scope           string            `koanf:"scope" mapstructure:"scope"`
	Endpoints       map[string]string `koanf:"endpoints" mapstructure:"endpoints"`
	AuthorizeParams map[string]string `koanf:"authorize_url_parameters" mapstructure:"authorize_url_parameters"`
	Options         map[string]any    `koanf:"options" mapstructure:"options"`
}

// Key returns a credential value, e.g. "id" or "secret".
func (p ProviderConfig) Key(name string) string {
	return strings.TrimSpace(p.Keys[strings.ToLower(strings.TrimSpace(name))])
}

func (p ProviderConfig) Endpoint(name string) string {
	return strings.TrimSpace(p.Endpoints[strings.ToLower(strings.TrimSpace(name))])
}

// Scopes splits Scope on commas and whitespace.
func (p ProviderConfig) Scopes() []string {
	fields := strings.FieldsFunc(p.Scope, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	seen := map[string]struct{}{}
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		out = append(out, field)
	}
	return out
}

func (p ProviderConfig) Clone() ProviderConfig {
	cloned := p
	cloned.Keys = copyStringMap(p.Keys)
	cloned.Endpoints = copyStringMap(p.Endpoints)
	cloned.AuthorizeParams = copyStringMap(p.AuthorizeParams)
	cloned.Options = copyAnyMap(p.Options)
	return cloned
}

type Config struct {
	DebugMode        DebugMode                 `koanf:"debug_mode" mapstructure:"debug_mode"`
	DebugFile        string                    `koanf:"debug_file" mapstructure:"debug_file"`
	TransportOptions map[string]any            `koanf:"transport_options" mapstructure:"transport_options"`
	Callback         string                    `koanf:"callback" mapstructure:"callback"`
	Providers        map[string]ProviderConfig `koanf:"providers" mapstructure:"providers"`
	ProviderOrder    []string                  `koanf:"provider_order" mapstructure:"provider_order"`
}

func DefaultConfig() Config {
	return Config{
		DebugMode:        DebugModeNone,
		TransportOptions: map[string]any{},
		Providers:        map[string]ProviderConfig{},
	}
}

func (c Config) Validate() error {
	if _, err := ParseDebugMode(string(c.DebugMode)); err != nil {
		return err
	}
	seen := make(map[string]string, len(c.Providers))
	for name := range c.Providers {
		key := CanonicalProviderName(name)
		if key == "" {
			return fmt.Errorf("core: provider name is required")
		}
		if previous, ok := seen[key]; ok {
			return fmt.Errorf("core: provider keys %q and %q collide as %q", previous, name, key)
		}
		seen[key] = name
	}
	return nil
}

// ProviderNames returns the provider table in iteration order: names listed in
// ProviderOrder first, then the remaining keys sorted.
func (c Config) ProviderNames() []string {
	names := make([]string, 0, len(c.Providers))
	listed := make(map[string]struct{}, len(c.Providers))
	canonical := make(map[string]struct{}, len(c.Providers))
	for name := range c.Providers {
		canonical[CanonicalProviderName(name)] = struct{}{}
	}
	for _, name := range c.ProviderOrder {
		key := CanonicalProviderName(name)
		if _, ok := canonical[key]; !ok {
			continue
		}
		if _, dup := listed[key]; dup {
			continue
		}
		listed[key] = struct{}{}
		names = append(names, key)
	}
	rest := make([]string, 0, len(canonical)-len(listed))
	for key := range canonical {
		if _, ok := listed[key]; ok {
			continue
		}
		rest = append(rest, key)
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func (c Config) Clone() Config {
	cloned := c
	cloned.TransportOptions = copyAnyMap(c.TransportOptions)
	cloned.ProviderOrder = append([]string(nil), c.ProviderOrder...)
	cloned.Providers = make(map[string]ProviderConfig, len(c.Providers))
	for name, provider := range c.Providers {
		cloned.Providers[name] = provider.Clone()
	}
	return cloned
}

// canonical rewrites provider keys and the order list to their canonical form.
// Callers must have run Validate first so keys cannot collide.
func (c Config) canonical() Config {
	out := c.Clone()
	out.Providers = make(map[string]ProviderConfig, len(c.Providers))
	for name, provider := range c.Providers {
		out.Providers[CanonicalProviderName(name)] = provider.Clone()
	}
	out.ProviderOrder = out.ProviderNames()
	mode, _ := ParseDebugMode(string(c.DebugMode))
	out.DebugMode = mode
	out.DebugFile = strings.TrimSpace(c.DebugFile)
	out.Callback = strings.TrimSpace(c.Callback)
	if out.TransportOptions == nil {
		out.TransportOptions = map[string]any{}
	}
	return out
}

func CanonicalProviderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func copyStringMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	dst := make(map[string]string, len(src))
	for key, value := range src {
		dst[strings.ToLower(strings.TrimSpace(key))] = value
	}
	return dst
}

func copyAnyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
