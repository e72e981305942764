package google

import (
	"github.com/goliatone/go-hybridauth/core"
	"github.com/goliatone/go-hybridauth/providers"
)

const (
	Name   = "google"
	Issuer = "https://accounts.google.com"
)

const (
	ScopeEmail   = "email"
	ScopeProfile = "profile"
)

// DefaultConfig requests offline access so a refresh token is issued on the
// first consent.
func DefaultConfig() providers.OAuth2Config {
	return providers.OAuth2Config{
		DefaultScopes: []string{ScopeProfile, ScopeEmail},
		Issuer:        Issuer,
		AuthParams: map[string]string{
			"access_type":            "offline",
			"include_granted_scopes": "true",
		},
	}
}

func New(
	cfg core.ResolvedProviderConfig,
	transport core.HTTPClient,
	storage core.Storage,
	logger core.Logger,
) (core.Adapter, error) {
	adapter, err := providers.NewOIDCAdapter(cfg, DefaultConfig(), transport, storage, logger)
	if err != nil {
		return nil, err
	}
	return adapter, nil
}

var _ core.AdapterFactory = New
