package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-hybridauth/core"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// OIDCAdapter extends the OAuth2 flow with issuer discovery, a nonce and
// id_token verification. Discovery happens on first use, never in the
// factory, so a missing issuer is reported by the first flow operation.
type OIDCAdapter struct {
	*OAuth2Adapter

	issuer   string
	mu       sync.Mutex
	provider *oidc.Provider
}

func NewOIDCAdapter(
	cfg core.ResolvedProviderConfig,
	defaults OAuth2Config,
	transport core.HTTPClient,
	storage core.Storage,
	logger core.Logger,
) (*OIDCAdapter, error) {
	issuer := strings.TrimRight(strings.TrimSpace(cfg.Endpoint("issuer")), "/")
	if issuer == "" {
		issuer = strings.TrimRight(strings.TrimSpace(defaults.Issuer), "/")
	}
	defaults.Issuer = issuer
	defaults.DefaultScopes = ensureOpenIDScope(defaults.DefaultScopes)

	base, err := NewOAuth2Adapter(cfg, defaults, transport, storage, logger)
	if err != nil {
		return nil, err
	}
	if scopes := base.cfg.Scopes(); len(scopes) > 0 {
		base.cfg.Scope = strings.Join(ensureOpenIDScope(scopes), " ")
	}

	adapter := &OIDCAdapter{OAuth2Adapter: base, issuer: issuer}
	base.endpoint = adapter.discoveredEndpoint
	base.authOptions = adapter.nonceOption
	base.afterExchange = adapter.verifyIDToken
	base.idVerifier = adapter.profileClaims
	base.userInfoURL = adapter.discoveredUserInfoURL
	return adapter, nil
}

func (a *OIDCAdapter) Issuer() string {
	return a.issuer
}

func (a *OIDCAdapter) discover(ctx context.Context) (*oidc.Provider, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.provider != nil {
		return a.provider, nil
	}
	if a.issuer == "" {
		return nil, core.NewAdapterError(a.cfg.Name, "providers: endpoints.issuer is required", goerrors.CategoryBadInput, core.ErrorInvalidConfig, nil)
	}
	provider, err := oidc.NewProvider(oidc.ClientContext(ctx, StandardClient(a.transport)), a.issuer)
	if err != nil {
		return nil, core.NewAdapterError(a.cfg.Name, "providers: openid connect discovery failed", goerrors.CategoryExternal, core.ErrorProviderRequestFailed, err)
	}
	a.provider = provider
	return provider, nil
}

func (a *OIDCAdapter) discoveredEndpoint(ctx context.Context) (oauth2.Endpoint, error) {
	provider, err := a.discover(ctx)
	if err != nil {
		return oauth2.Endpoint{}, err
	}
	return provider.Endpoint(), nil
}

func (a *OIDCAdapter) discoveredUserInfoURL(ctx context.Context) string {
	provider, err := a.discover(ctx)
	if err != nil {
		a.logger.Warn("userinfo endpoint unavailable", "provider", a.cfg.Name, "error", err)
		return ""
	}
	return provider.UserInfoEndpoint()
}

func (a *OIDCAdapter) nonceOption(ctx context.Context) ([]oauth2.AuthCodeOption, error) {
	nonce := uuid.NewString()
	if err := a.storage.Set(ctx, a.key(nonceKeySuffix), nonce); err != nil {
		return nil, fmt.Errorf("providers: store %s nonce: %w", a.cfg.Name, err)
	}
	return []oauth2.AuthCodeOption{oidc.Nonce(nonce)}, nil
}

func (a *OIDCAdapter) verifyIDToken(ctx context.Context, token *oauth2.Token) error {
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || strings.TrimSpace(rawIDToken) == "" {
		return core.NewAdapterError(a.cfg.Name, "providers: token response is missing id_token", goerrors.CategoryExternal, core.ErrorTokenExchangeFailed, nil)
	}
	provider, err := a.discover(ctx)
	if err != nil {
		return err
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: a.cfg.Key("id")})
	idToken, err := verifier.Verify(oidc.ClientContext(ctx, StandardClient(a.transport)), rawIDToken)
	if err != nil {
		return core.NewAdapterError(a.cfg.Name, "providers: id_token verification failed", goerrors.CategoryAuth, core.ErrorTokenExchangeFailed, err)
	}

	expected, found, err := a.storage.Get(ctx, a.key(nonceKeySuffix))
	if err != nil {
		return fmt.Errorf("providers: read %s nonce: %w", a.cfg.Name, err)
	}
	if err := a.storage.Delete(ctx, a.key(nonceKeySuffix)); err != nil {
		return fmt.Errorf("providers: clear %s nonce: %w", a.cfg.Name, err)
	}
	if !found || expected == "" || idToken.Nonce != expected {
		return core.NewAdapterError(a.cfg.Name, "providers: id_token nonce mismatch", goerrors.CategoryAuth, core.ErrorStateMismatch, nil)
	}
	return nil
}

// profileClaims re-checks the stored id_token signature. Expiry is ignored
// because the token was fully verified when it was issued.
func (a *OIDCAdapter) profileClaims(ctx context.Context, _ string, rawIDToken string) (map[string]any, error) {
	provider, err := a.discover(ctx)
	if err != nil {
		return nil, err
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: a.cfg.Key("id"), SkipExpiryCheck: true})
	idToken, err := verifier.Verify(oidc.ClientContext(ctx, StandardClient(a.transport)), rawIDToken)
	if err != nil {
		return nil, err
	}
	claims := map[string]any{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func ensureOpenIDScope(scopes []string) []string {
	out := make([]string, 0, len(scopes)+1)
	out = append(out, oidc.ScopeOpenID)
	for _, scope := range scopes {
		if scope = strings.TrimSpace(scope); scope != "" && scope != oidc.ScopeOpenID {
			out = append(out, scope)
		}
	}
	return out
}
