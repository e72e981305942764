package core

import (
	"errors"
	"testing"
)

func resolverConfig() Config {
	return Config{
		Callback: "https://app.example/cb",
		Providers: map[string]ProviderConfig{
			"github": {Enabled: true, Keys: map[string]string{"id": "gh"}},
			"google": {Enabled: true, Callback: "https://app.example/google"},
			"gitlab": {Enabled: false},
			"okta":   {Enabled: true, Adapter: "OpenIDConnect"},
		},
	}
}

func TestResolve_CaseInsensitiveLookup(t *testing.T) {
	cfg := resolverConfig()
	for _, name := range []string{"GitHub", "github", "GITHUB", " github "} {
		resolved, err := Resolve(cfg, name)
		if err != nil {
			t.Fatalf("resolve %q: %v", name, err)
		}
		if resolved.Name != "github" {
			t.Fatalf("expected canonical name github, got %q", resolved.Name)
		}
		if resolved.Adapter != "github" {
			t.Fatalf("expected adapter to default to table key, got %q", resolved.Adapter)
		}
	}
}

func TestResolve_CallbackInheritance(t *testing.T) {
	cfg := resolverConfig()
	resolved, err := Resolve(cfg, "github")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Callback != "https://app.example/cb" {
		t.Fatalf("expected global callback, got %q", resolved.Callback)
	}

	resolved, err = Resolve(cfg, "google")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Callback != "https://app.example/google" {
		t.Fatalf("expected provider callback to win, got %q", resolved.Callback)
	}

	cfg.Callback = ""
	resolved, err = Resolve(cfg, "github")
	if err != nil {
		t.Fatalf("resolve without global callback: %v", err)
	}
	if resolved.Callback != "" {
		t.Fatalf("expected empty callback, got %q", resolved.Callback)
	}
}

func TestResolve_UnknownProvider(t *testing.T) {
	_, err := Resolve(resolverConfig(), "myspace")
	if !IsUnknownProvider(err) {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
	var typed *UnknownProviderError
	if !errors.As(err, &typed) || typed.Name != "myspace" {
		t.Fatalf("expected typed unknown provider error, got %#v", err)
	}
}

func TestResolve_DisabledProvider(t *testing.T) {
	_, err := Resolve(resolverConfig(), "GitLab")
	if !IsProviderDisabled(err) {
		t.Fatalf("expected provider disabled error, got %v", err)
	}
	if IsUnknownProvider(err) {
		t.Fatalf("disabled provider must not be reported as unknown")
	}
}

func TestResolve_AdapterOverrideIsCanonical(t *testing.T) {
	resolved, err := Resolve(resolverConfig(), "okta")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Adapter != "openidconnect" {
		t.Fatalf("expected canonical adapter override, got %q", resolved.Adapter)
	}
}

func TestResolve_DoesNotMutateConfig(t *testing.T) {
	cfg := resolverConfig()
	resolved, err := Resolve(cfg, "github")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	resolved.Keys["id"] = "changed"
	if cfg.Providers["github"].Keys["id"] != "gh" {
		t.Fatalf("expected resolved config to be a copy")
	}
	if cfg.Providers["github"].Callback != "" {
		t.Fatalf("expected inheritance not to write back into the table")
	}
}
