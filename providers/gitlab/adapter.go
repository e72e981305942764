package gitlab

import (
	"github.com/goliatone/go-hybridauth/core"
	"github.com/goliatone/go-hybridauth/identity"
	"github.com/goliatone/go-hybridauth/providers"
	gitlaboauth "golang.org/x/oauth2/gitlab"
)

const (
	Name        = "gitlab"
	Issuer      = "https://gitlab.com"
	UserInfoURL = "https://gitlab.com/api/v4/user"
)

// DefaultConfig targets gitlab.com. Self-managed instances override
// authorize_url, access_token_url and user_info_url in the provider entry.
func DefaultConfig() providers.OAuth2Config {
	return providers.OAuth2Config{
		Endpoint:      gitlaboauth.Endpoint,
		DefaultScopes: []string{"read_user"},
		UserInfoURL:   UserInfoURL,
		Issuer:        Issuer,
		Normalizer:    identity.NormalizeGitLabProfile,
	}
}

func New(
	cfg core.ResolvedProviderConfig,
	transport core.HTTPClient,
	storage core.Storage,
	logger core.Logger,
) (core.Adapter, error) {
	adapter, err := providers.NewOAuth2Adapter(cfg, DefaultConfig(), transport, storage, logger)
	if err != nil {
		return nil, err
	}
	return adapter, nil
}

var _ core.AdapterFactory = New
