package facebook

import (
	"github.com/goliatone/go-hybridauth/core"
	"github.com/goliatone/go-hybridauth/identity"
	"github.com/goliatone/go-hybridauth/providers"
	facebookoauth "golang.org/x/oauth2/facebook"
)

const (
	Name        = "facebook"
	Issuer      = "https://www.facebook.com"
	UserInfoURL = "https://graph.facebook.com/me?fields=id,name,first_name,last_name,email,link,locale,picture"
)

const (
	ScopeEmail         = "email"
	ScopePublicProfile = "public_profile"
)

// Adapter is the Facebook Login adapter. Facebook does not issue refresh
// tokens; long lived tokens are exchanged by the application.
type Adapter struct {
	*providers.OAuth2Adapter
}

func DefaultConfig() providers.OAuth2Config {
	return providers.OAuth2Config{
		Endpoint:      facebookoauth.Endpoint,
		DefaultScopes: []string{ScopeEmail, ScopePublicProfile},
		UserInfoURL:   UserInfoURL,
		Issuer:        Issuer,
		Normalizer:    identity.NormalizeFacebookProfile,
	}
}

func New(
	cfg core.ResolvedProviderConfig,
	transport core.HTTPClient,
	storage core.Storage,
	logger core.Logger,
) (core.Adapter, error) {
	base, err := providers.NewOAuth2Adapter(cfg, DefaultConfig(), transport, storage, logger)
	if err != nil {
		return nil, err
	}
	return &Adapter{OAuth2Adapter: base}, nil
}

var _ core.AdapterFactory = New
