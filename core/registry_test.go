package core

import "testing"

func TestAdapterRegistry_NamesSorted(t *testing.T) {
	registry := NewAdapterRegistry()
	for _, name := range []string{"zeta", "Alpha", "beta"} {
		if err := registry.Register(name, testAdapterFactory); err != nil {
			t.Fatalf("register adapter: %v", err)
		}
	}
	got := registry.Names()
	want := []string{"alpha", "beta", "zeta"}
	for idx := range want {
		if got[idx] != want[idx] {
			t.Fatalf("unexpected ordering at index %d: got %v want %v", idx, got, want)
		}
	}
	if !registry.Has("ALPHA") {
		t.Fatalf("expected case-insensitive Has")
	}
}

func TestAdapterRegistry_RejectsInvalidRegistrations(t *testing.T) {
	registry := NewAdapterRegistry()
	if err := registry.Register("github", testAdapterFactory); err != nil {
		t.Fatalf("register adapter: %v", err)
	}
	if err := registry.Register("GitHub", testAdapterFactory); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := registry.Register(" ", testAdapterFactory); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	if err := registry.Register("gitlab", nil); err == nil {
		t.Fatalf("expected nil factory to fail")
	}
}

func TestAdapterRegistry_CreatePassesCollaborators(t *testing.T) {
	registry := NewAdapterRegistry()
	if err := registry.Register("openidconnect", testAdapterFactory); err != nil {
		t.Fatalf("register adapter: %v", err)
	}
	logger := newRecordingLogger()
	collaborators := Collaborators{Logger: logger}
	adapter, err := registry.Create(ResolvedProviderConfig{Name: "okta", Adapter: "openidconnect"}, collaborators)
	if err != nil {
		t.Fatalf("create adapter: %v", err)
	}
	typed, ok := adapter.(*testAdapter)
	if !ok {
		t.Fatalf("unexpected adapter type %T", adapter)
	}
	if typed.ID() != "okta" {
		t.Fatalf("expected adapter to carry the table key, got %q", typed.ID())
	}
	if typed.logger == nil {
		t.Fatalf("expected logger collaborator to be passed")
	}
}

func TestAdapterRegistry_CreateUnknownAdapter(t *testing.T) {
	registry := NewAdapterRegistry()
	_, err := registry.Create(ResolvedProviderConfig{Name: "myspace", Adapter: "myspace"}, Collaborators{})
	if !IsUnknownProvider(err) {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
}

func TestAdapterRegistry_CreateReturnsDistinctInstances(t *testing.T) {
	registry := NewAdapterRegistry()
	if err := registry.Register("github", testAdapterFactory); err != nil {
		t.Fatalf("register adapter: %v", err)
	}
	resolved := ResolvedProviderConfig{Name: "github", Adapter: "github"}
	first, err := registry.Create(resolved, Collaborators{})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := registry.Create(resolved, Collaborators{})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct adapter instances")
	}
}
