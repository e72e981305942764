package github

import (
	"github.com/goliatone/go-hybridauth/core"
	"github.com/goliatone/go-hybridauth/identity"
	"github.com/goliatone/go-hybridauth/providers"
	githuboauth "golang.org/x/oauth2/github"
)

const (
	Name        = "github"
	Issuer      = "https://github.com"
	UserInfoURL = "https://api.github.com/user"
)

func DefaultConfig() providers.OAuth2Config {
	return providers.OAuth2Config{
		Endpoint:      githuboauth.Endpoint,
		DefaultScopes: []string{"user:email"},
		UserInfoURL:   UserInfoURL,
		Issuer:        Issuer,
		Normalizer:    identity.NormalizeGitHubProfile,
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
