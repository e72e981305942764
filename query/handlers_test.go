package query

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-hybridauth/core"
	"github.com/goliatone/go-hybridauth/identity"
)

type stubReader struct {
	connected map[string]bool
	order     []string
	adapters  map[string]core.Adapter
	err       error
}

func (s stubReader) IsConnectedWith(_ context.Context, name string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.connected[name], nil
}

func (s stubReader) GetConnectedProviders(context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []string{}
	for _, name := range s.order {
		if s.connected[name] {
			out = append(out, name)
		}
	}
	return out, nil
}

func (s stubReader) GetAdapter(name string) (core.Adapter, error) {
	adapter, ok := s.adapters[name]
	if !ok {
		return nil, &core.UnknownProviderError{Name: name}
	}
	return adapter, nil
}

type plainAdapter struct {
	id string
}

func (a plainAdapter) ID() string { return a.id }

func (plainAdapter) Authenticate(context.Context) error { return nil }

func (plainAdapter) IsConnected(context.Context) (bool, error) { return true, nil }

func (plainAdapter) Disconnect(context.Context) error { return nil }

type profileAdapter struct {
	plainAdapter
	profile identity.UserProfile
}

func (a profileAdapter) UserProfile(context.Context) (identity.UserProfile, error) {
	return a.profile, nil
}

func TestIsConnectedQuery_DelegatesToReader(t *testing.T) {
	reader := stubReader{connected: map[string]bool{"github": true}}

	connected, err := NewIsConnectedQuery(reader).Query(context.Background(), IsConnectedMessage{Provider: "github"})
	if err != nil {
		t.Fatalf("query is connected: %v", err)
	}
	if !connected {
		t.Fatalf("expected github to be connected")
	}

	connected, err = NewIsConnectedQuery(reader).Query(context.Background(), IsConnectedMessage{Provider: "gitlab"})
	if err != nil {
		t.Fatalf("query is connected: %v", err)
	}
	if connected {
		t.Fatalf("expected gitlab to be disconnected")
	}
}

func TestConnectedProvidersQuery_PreservesOrderAndErrors(t *testing.T) {
	reader := stubReader{
		connected: map[string]bool{"google": true, "github": true},
		order:     []string{"google", "gitlab", "github"},
	}
	names, err := NewConnectedProvidersQuery(reader).Query(context.Background(), ConnectedProvidersMessage{})
	if err != nil {
		t.Fatalf("query connected providers: %v", err)
	}
	if len(names) != 2 || names[0] != "google" || names[1] != "github" {
		t.Fatalf("unexpected connected providers: %v", names)
	}

	expected := errors.New("probe failed")
	_, err = NewConnectedProvidersQuery(stubReader{err: expected}).Query(context.Background(), ConnectedProvidersMessage{})
	if !errors.Is(err, expected) {
		t.Fatalf("expected reader error, got %v", err)
	}
}

func TestUserProfileQuery(t *testing.T) {
	reader := stubReader{adapters: map[string]core.Adapter{
		"github": profileAdapter{
			plainAdapter: plainAdapter{id: "github"},
			profile:      identity.UserProfile{ProviderID: "github", Subject: "42", Email: "octo@example.com"},
		},
		"custom": plainAdapter{id: "custom"},
	}}
	q := NewUserProfileQuery(reader)

	profile, err := q.Query(context.Background(), UserProfileMessage{Provider: "github"})
	if err != nil {
		t.Fatalf("query profile: %v", err)
	}
	if profile.Subject != "42" || profile.Email != "octo@example.com" {
		t.Fatalf("unexpected profile: %#v", profile)
	}

	_, err = q.Query(context.Background(), UserProfileMessage{Provider: "custom"})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.TextCode != core.ErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.ErrorBadInput, rich.TextCode)
	}

	_, err = q.Query(context.Background(), UserProfileMessage{Provider: "missing"})
	if !core.IsUnknownProvider(err) {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
}

func TestQueryMessages_Validate(t *testing.T) {
	err := (IsConnectedMessage{}).Validate()
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", rich.Category)
	}
	if err := (UserProfileMessage{Provider: "github"}).Validate(); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := (ConnectedProvidersMessage{}).Validate(); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
}

func TestQueries_NilReaderReturnsRichError(t *testing.T) {
	var q *IsConnectedQuery
	_, err := q.Query(context.Background(), IsConnectedMessage{Provider: "github"})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
}
