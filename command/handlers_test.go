package command

import (
	"context"
	"errors"
	"net/url"
	"testing"

	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-hybridauth/core"
	"github.com/goliatone/go-hybridauth/providers/devkit"
)

type stubMutatingService struct {
	authenticateFn  func(ctx context.Context, name string) (core.Adapter, error)
	disconnectFn    func(ctx context.Context, name string) error
	disconnectAllFn func(ctx context.Context) error
}

func (s stubMutatingService) Authenticate(ctx context.Context, name string) (core.Adapter, error) {
	return s.authenticateFn(ctx, name)
}

func (s stubMutatingService) Disconnect(ctx context.Context, name string) error {
	return s.disconnectFn(ctx, name)
}

func (s stubMutatingService) DisconnectAllAdapters(ctx context.Context) error {
	return s.disconnectAllFn(ctx)
}

func TestAuthenticateCommand_StoresConnectedResult(t *testing.T) {
	adapter := &devkit.FakeAdapter{}
	svc := stubMutatingService{
		authenticateFn: func(_ context.Context, name string) (core.Adapter, error) {
			if name != "github" {
				t.Fatalf("expected canonical provider github, got %q", name)
			}
			return adapter, nil
		},
	}

	collector := gocmd.NewResult[AuthenticateResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	if err := NewAuthenticateCommand(svc).Execute(ctx, AuthenticateMessage{Provider: " GitHub "}); err != nil {
		t.Fatalf("execute authenticate: %v", err)
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if !result.Connected || result.Provider != "github" || result.RedirectURL != "" {
		t.Fatalf("unexpected result: %#v", result)
	}
	if result.Adapter != adapter {
		t.Fatalf("expected adapter to be returned in result")
	}
}

func TestAuthenticateCommand_RedirectIsAResult(t *testing.T) {
	svc := stubMutatingService{
		authenticateFn: func(_ context.Context, name string) (core.Adapter, error) {
			return nil, &core.RedirectError{Provider: name, URL: "https://github.com/login/oauth/authorize?state=s1"}
		},
	}

	collector := gocmd.NewResult[AuthenticateResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	if err := NewAuthenticateCommand(svc).Execute(ctx, AuthenticateMessage{Provider: "github"}); err != nil {
		t.Fatalf("expected redirect to be reported as result, got %v", err)
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.Connected || result.RedirectURL != "https://github.com/login/oauth/authorize?state=s1" {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestAuthenticateCommand_PassesCallbackQuery(t *testing.T) {
	svc := stubMutatingService{
		authenticateFn: func(ctx context.Context, _ string) (core.Adapter, error) {
			query, ok := core.CallbackQueryFromContext(ctx)
			if !ok {
				t.Fatalf("expected callback query on context")
			}
			if query.Get("code") != "abc" || query.Get("state") != "s1" {
				t.Fatalf("unexpected callback query: %v", query)
			}
			return &devkit.FakeAdapter{}, nil
		},
	}

	err := NewAuthenticateCommand(svc).Execute(context.Background(), AuthenticateMessage{
		Provider:      "github",
		CallbackQuery: url.Values{"code": {"abc"}, "state": {"s1"}},
	})
	if err != nil {
		t.Fatalf("execute authenticate: %v", err)
	}
}

func TestAuthenticateCommand_PropagatesErrors(t *testing.T) {
	svc := stubMutatingService{
		authenticateFn: func(_ context.Context, name string) (core.Adapter, error) {
			return nil, &core.ProviderDisabledError{Name: name}
		},
	}

	err := NewAuthenticateCommand(svc).Execute(context.Background(), AuthenticateMessage{Provider: "google"})
	if !core.IsProviderDisabled(err) {
		t.Fatalf("expected provider disabled error, got %v", err)
	}
}

func TestDisconnectCommands_DelegateToService(t *testing.T) {
	t.Run("disconnect", func(t *testing.T) {
		called := ""
		svc := stubMutatingService{
			disconnectFn: func(_ context.Context, name string) error {
				called = name
				return nil
			},
		}
		if err := NewDisconnectCommand(svc).Execute(context.Background(), DisconnectMessage{Provider: " gitlab "}); err != nil {
			t.Fatalf("execute disconnect: %v", err)
		}
		if called != "gitlab" {
			t.Fatalf("expected disconnect for gitlab, got %q", called)
		}
	})

	t.Run("disconnect all", func(t *testing.T) {
		expected := errors.New("upstream down")
		svc := stubMutatingService{
			disconnectAllFn: func(context.Context) error { return expected },
		}
		err := NewDisconnectAllCommand(svc).Execute(context.Background(), DisconnectAllMessage{})
		if !errors.Is(err, expected) {
			t.Fatalf("expected service error, got %v", err)
		}
	})
}

func TestAuthenticateMessage_ValidateReturnsRichError(t *testing.T) {
	err := (AuthenticateMessage{Provider: "  "}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", rich.Category)
	}
	if rich.TextCode != core.ErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.ErrorBadInput, rich.TextCode)
	}
	if err := (DisconnectAllMessage{}).Validate(); err != nil {
		t.Fatalf("disconnect all message should always validate: %v", err)
	}
}

func TestCommands_NilServiceReturnsRichError(t *testing.T) {
	var cmd *AuthenticateCommand
	err := cmd.Execute(context.Background(), AuthenticateMessage{Provider: "github"})

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal || rich.TextCode != core.ErrorInternal {
		t.Fatalf("unexpected dependency error: %q %q", rich.Category, rich.TextCode)
	}
	if err := NewDisconnectAllCommand(nil).Execute(context.Background(), DisconnectAllMessage{}); err == nil {
		t.Fatalf("expected dependency error for nil service")
	}
}
