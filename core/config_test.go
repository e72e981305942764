package core

import "testing"

func TestParseDebugMode_Aliases(t *testing.T) {
	cases := map[string]DebugMode{
		"":        DebugModeNone,
		"false":   DebugModeNone,
		"none":    DebugModeNone,
		"error":   DebugModeError,
		"simple":  DebugModeInfo,
		"info":    DebugModeInfo,
		"verbose": DebugModeDebug,
		" DEBUG ": DebugModeDebug,
	}
	for raw, want := range cases {
		got, err := ParseDebugMode(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %q, got %q", raw, want, got)
		}
	}
	if _, err := ParseDebugMode("loud"); err == nil {
		t.Fatalf("expected unsupported debug mode to fail")
	}
}

func TestConfig_ProviderNamesUsesOrderThenLexical(t *testing.T) {
	cfg := Config{
		Providers: map[string]ProviderConfig{
			"zeta":   {Enabled: true},
			"Alpha":  {Enabled: true},
			"google": {Enabled: true},
			"github": {Enabled: false},
		},
		ProviderOrder: []string{"Google", "missing", "zeta", "google"},
	}
	got := cfg.ProviderNames()
	want := []string{"google", "zeta", "alpha", "github"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for idx := range want {
		if got[idx] != want[idx] {
			t.Fatalf("unexpected order at %d: got %v want %v", idx, got, want)
		}
	}
}

func TestConfig_ValidateRejectsCollidingKeys(t *testing.T) {
	cfg := Config{Providers: map[string]ProviderConfig{
		"GitHub": {Enabled: true},
		"github": {Enabled: true},
	}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected colliding provider keys to fail validation")
	}
}

func TestConfig_CloneIsDeep(t *testing.T) {
	cfg := Config{
		TransportOptions: map[string]any{"timeout": "5s"},
		Providers: map[string]ProviderConfig{
			"github": {Enabled: true, Keys: map[string]string{"id": "abc"}},
		},
		ProviderOrder: []string{"github"},
	}
	cloned := cfg.Clone()
	cloned.TransportOptions["timeout"] = "1s"
	cloned.Providers["github"].Keys["id"] = "changed"
	cloned.ProviderOrder[0] = "other"

	if cfg.TransportOptions["timeout"] != "5s" {
		t.Fatalf("expected transport options to be copied")
	}
	if cfg.Providers["github"].Keys["id"] != "abc" {
		t.Fatalf("expected provider keys to be copied")
	}
	if cfg.ProviderOrder[0] != "github" {
		t.Fatalf("expected provider order to be copied")
	}
}

func TestProviderConfig_Scopes(t *testing.T) {
	provider := ProviderConfig{Scope: "openid, email profile,email"}
	got := provider.Scopes()
	want := []string{"openid", "email", "profile"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for idx := range want {
		if got[idx] != want[idx] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestProviderConfig_KeyAndEndpointAreCaseInsensitive(t *testing.T) {
	provider := ProviderConfig{
		Keys:      map[string]string{"ID": " client "},
		Endpoints: map[string]string{"authorize_url": "https://idp.example/auth"},
	}.Clone()
	if got := provider.Key("id"); got != "client" {
		t.Fatalf("expected trimmed key, got %q", got)
	}
	if got := provider.Endpoint("AUTHORIZE_URL"); got != "https://idp.example/auth" {
		t.Fatalf("unexpected endpoint %q", got)
	}
}
