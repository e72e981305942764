package core

import (
	"context"
	"fmt"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestRedirectURL(t *testing.T) {
	err := fmt.Errorf("authenticate: %w", &RedirectError{Provider: "github", URL: "https://github.com/login"})
	target, ok := RedirectURL(err)
	if !ok || target != "https://github.com/login" {
		t.Fatalf("expected redirect target, got %q %v", target, ok)
	}
	if _, ok := RedirectURL(fmt.Errorf("plain")); ok {
		t.Fatalf("expected plain error not to be a redirect")
	}
}

func TestCallbackQueryContext(t *testing.T) {
	if _, ok := CallbackQueryFromContext(context.Background()); ok {
		t.Fatalf("expected no callback query on empty context")
	}
	query := url.Values{"code": {"abc"}, "state": {"xyz"}}
	ctx := WithCallbackQuery(context.Background(), query)
	query.Set("code", "mutated")

	got, ok := CallbackQueryFromContext(ctx)
	if !ok {
		t.Fatalf("expected callback query")
	}
	if got.Get("code") != "abc" || got.Get("state") != "xyz" {
		t.Fatalf("unexpected callback query %v", got)
	}
}

func TestWithCallbackRequest_MergesFormPost(t *testing.T) {
	req := httptest.NewRequest("POST", "https://app.example/cb?state=xyz", strings.NewReader("code=abc"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	ctx := WithCallbackRequest(context.Background(), req)
	got, ok := CallbackQueryFromContext(ctx)
	if !ok {
		t.Fatalf("expected callback query")
	}
	if got.Get("code") != "abc" || got.Get("state") != "xyz" {
		t.Fatalf("unexpected callback query %v", got)
	}
}
