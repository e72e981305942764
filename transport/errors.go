package transport

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-hybridauth/core"
)

// StatusError converts a non-2xx provider response into a go-errors value
// carrying the status and the provider name.
func StatusError(provider string, resp *http.Response) error {
	if resp == nil || (resp.StatusCode >= 200 && resp.StatusCode < 300) {
		return nil
	}
	category := goerrors.CategoryExternal
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		category = goerrors.CategoryAuth
	case http.StatusForbidden:
		category = goerrors.CategoryAuthz
	case http.StatusTooManyRequests:
		category = goerrors.CategoryRateLimit
	}
	err := core.NewAdapterError(provider, "transport: provider returned "+resp.Status, category, core.ErrorProviderRequestFailed, nil)
	err.WithMetadata(map[string]any{"status": resp.StatusCode})
	return err
}
