package core

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// RedirectError is returned by Authenticate when the user agent has to visit
// the provider before authentication can complete.
type RedirectError struct {
	Provider string
	URL      string
}

func (e *RedirectError) Error() string {
	if e == nil {
		return "core: redirect required"
	}
	return "core: redirect required to " + e.URL
}

// RedirectURL extracts the target of a redirect error.
func RedirectURL(err error) (string, bool) {
	var redirect *RedirectError
	if !errors.As(err, &redirect) || redirect == nil {
		return "", false
	}
	target := strings.TrimSpace(redirect.URL)
	return target, target != ""
}

type callbackQueryKey struct{}

// WithCallbackQuery attaches the query parameters of the provider callback
// request so adapters can complete the handshake.
func WithCallbackQuery(ctx context.Context, query url.Values) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	cloned := url.Values{}
	for key, values := range query {
		cloned[key] = append([]string(nil), values...)
	}
	return context.WithValue(ctx, callbackQueryKey{}, cloned)
}

// WithCallbackRequest is WithCallbackQuery for an inbound *http.Request.
// Form posted callbacks (response_mode=form_post) are merged in.
func WithCallbackRequest(ctx context.Context, req *http.Request) context.Context {
	if req == nil {
		return ctx
	}
	query := url.Values{}
	for key, values := range req.URL.Query() {
		query[key] = append(query[key], values...)
	}
	if req.Method == http.MethodPost {
		if err := req.ParseForm(); err == nil {
			for key, values := range req.PostForm {
				query[key] = append(query[key], values...)
			}
		}
	}
	return WithCallbackQuery(ctx, query)
}

func CallbackQueryFromContext(ctx context.Context) (url.Values, bool) {
	if ctx == nil {
		return nil, false
	}
	query, ok := ctx.Value(callbackQueryKey{}).(url.Values)
	if !ok {
		return nil, false
	}
	return query, true
}
