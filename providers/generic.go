package providers

import (
	"github.com/goliatone/go-hybridauth/core"
)

const (
	GenericOAuth2Name        = "oauth2"
	GenericOpenIDConnectName = "openidconnect"
)

// NewGenericOAuth2 builds an OAuth2 adapter whose endpoints come entirely from
// the provider entry (authorize_url, access_token_url, user_info_url). Missing
// endpoints surface when authorization starts.
func NewGenericOAuth2(
	cfg core.ResolvedProviderConfig,
	transport core.HTTPClient,
	storage core.Storage,
	logger core.Logger,
) (core.Adapter, error) {
	adapter, err := NewOAuth2Adapter(cfg, OAuth2Config{}, transport, storage, logger)
	if err != nil {
		return nil, err
	}
	return adapter, nil
}

// NewGenericOpenIDConnect builds an OpenID Connect adapter for the issuer in
// endpoints.issuer.
func NewGenericOpenIDConnect(
	cfg core.ResolvedProviderConfig,
	transport core.HTTPClient,
	storage core.Storage,
	logger core.Logger,
) (core.Adapter, error) {
	adapter, err := NewOIDCAdapter(cfg, OAuth2Config{DefaultScopes: []string{"profile", "email"}}, transport, storage, logger)
	if err != nil {
		return nil, err
	}
	return adapter, nil
}
