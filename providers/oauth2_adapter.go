package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-hybridauth/core"
	"github.com/goliatone/go-hybridauth/identity"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	stateKeySuffix = "authorization_state"
	tokenKeySuffix = "access_token"
	nonceKeySuffix = "authorization_nonce"
)

var sessionKeySuffixes = []string{tokenKeySuffix, stateKeySuffix, nonceKeySuffix}

// OAuth2Config holds the adapter defaults for a provider. Values from the
// provider configuration entry take precedence.
type OAuth2Config struct {
	Endpoint      oauth2.Endpoint
	DefaultScopes []string
	UserInfoURL   string
	Issuer        string
	AuthParams    map[string]string
	Normalizer    identity.ProfileNormalizer
	Now           func() time.Time
}

// OAuth2Adapter runs the authorization code grant and keeps the state
// parameter and the token in session storage under "<provider>.<suffix>".
// Credentials and endpoints are checked when the flow starts, not when the
// adapter is built.
type OAuth2Adapter struct {
	cfg       core.ResolvedProviderConfig
	defaults  OAuth2Config
	transport core.HTTPClient
	storage   core.Storage
	logger    core.Logger
	now       func() time.Time

	endpoint      func(ctx context.Context) (oauth2.Endpoint, error)
	authOptions   func(ctx context.Context) ([]oauth2.AuthCodeOption, error)
	afterExchange func(ctx context.Context, token *oauth2.Token) error
	idVerifier    identity.IDTokenVerifier
	userInfoURL   func(ctx context.Context) string
}

func NewOAuth2Adapter(
	cfg core.ResolvedProviderConfig,
	defaults OAuth2Config,
	transport core.HTTPClient,
	storage core.Storage,
	logger core.Logger,
) (*OAuth2Adapter, error) {
	name := core.CanonicalProviderName(cfg.Name)
	if name == "" {
		return nil, fmt.Errorf("providers: provider name is required")
	}
	cfg.Name = name
	if storage == nil {
		return nil, fmt.Errorf("providers: storage is required for provider %q", name)
	}
	if transport == nil {
		transport = http.DefaultClient
	}
	if logger == nil {
		logger = glog.Nop()
	}
	now := defaults.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &OAuth2Adapter{
		cfg:       cfg,
		defaults:  defaults,
		transport: transport,
		storage:   storage,
		logger:    logger,
		now:       now,
	}, nil
}

func (a *OAuth2Adapter) ID() string {
	if a == nil {
		return ""
	}
	return a.cfg.Name
}

func (a *OAuth2Adapter) Config() core.ResolvedProviderConfig {
	return core.ResolvedProviderConfig{
		Name:           a.cfg.Name,
		Adapter:        a.cfg.Adapter,
		ProviderConfig: a.cfg.ProviderConfig.Clone(),
	}
}

// Authenticate starts the flow with a RedirectError when no callback query is
// present, and completes it when the context carries the provider callback.
func (a *OAuth2Adapter) Authenticate(ctx context.Context) error {
	if connected, err := a.IsConnected(ctx); err != nil {
		return err
	} else if connected {
		return nil
	}

	query, _ := core.CallbackQueryFromContext(ctx)
	if denied := strings.TrimSpace(query.Get("error")); denied != "" {
		_ = a.storage.Delete(ctx, a.key(stateKeySuffix))
		message := fmt.Sprintf("providers: %s authorization denied: %s", a.cfg.Name, denied)
		if description := strings.TrimSpace(query.Get("error_description")); description != "" {
			message += " (" + description + ")"
		}
		return core.NewAdapterError(a.cfg.Name, message, goerrors.CategoryAuth, core.ErrorAuthorizationDenied, nil)
	}
	code := strings.TrimSpace(query.Get("code"))
	if code == "" {
		return a.beginAuthorization(ctx)
	}
	return a.completeAuthorization(ctx, code, strings.TrimSpace(query.Get("state")))
}

func (a *OAuth2Adapter) IsConnected(ctx context.Context) (bool, error) {
	token, ok, err := a.loadToken(ctx)
	if err != nil || !ok {
		return false, err
	}
	if token.AccessToken == "" {
		return false, nil
	}
	if !token.Expiry.IsZero() && !a.now().Before(token.Expiry) && token.RefreshToken == "" {
		return false, nil
	}
	return true, nil
}

// Disconnect removes this adapter's own session keys. Provider names may
// contain dots, so a prefix match could reach another provider's entries.
func (a *OAuth2Adapter) Disconnect(ctx context.Context) error {
	for _, suffix := range sessionKeySuffixes {
		if err := a.storage.Delete(ctx, a.key(suffix)); err != nil {
			return fmt.Errorf("providers: clear %s session: %w", a.cfg.Name, err)
		}
	}
	a.logger.Debug("provider disconnected", "provider", a.cfg.Name)
	return nil
}

// AccessToken returns the stored token, refreshing it first when it expired
// and a refresh token is available.
func (a *OAuth2Adapter) AccessToken(ctx context.Context) (core.Token, error) {
	token, ok, err := a.loadToken(ctx)
	if err != nil {
		return core.Token{}, err
	}
	if !ok || token.AccessToken == "" {
		return core.Token{}, a.notConnected()
	}
	if token.Expiry.IsZero() || a.now().Before(token.Expiry) {
		return toCoreToken(token), nil
	}
	if token.RefreshToken == "" {
		return core.Token{}, a.notConnected()
	}

	conf, err := a.oauthConfig(ctx)
	if err != nil {
		return core.Token{}, err
	}
	// Only the refresh token is handed over so expiry is judged by this
	// adapter's clock rather than the one inside x/oauth2.
	source := conf.TokenSource(a.httpContext(ctx), &oauth2.Token{RefreshToken: token.RefreshToken})
	refreshed, err := source.Token()
	if err != nil {
		return core.Token{}, core.NewAdapterError(a.cfg.Name, "providers: token refresh failed", goerrors.CategoryExternal, core.ErrorTokenExchangeFailed, err)
	}
	stored := fromOAuthToken(refreshed)
	if stored.RefreshToken == "" {
		stored.RefreshToken = token.RefreshToken
	}
	if stored.IDToken == "" {
		stored.IDToken = token.IDToken
	}
	if err := a.saveToken(ctx, stored); err != nil {
		return core.Token{}, err
	}
	a.logger.Debug("access token refreshed", "provider", a.cfg.Name)
	return toCoreToken(stored), nil
}

func (a *OAuth2Adapter) UserProfile(ctx context.Context) (identity.UserProfile, error) {
	token, err := a.AccessToken(ctx)
	if err != nil {
		return identity.UserProfile{}, err
	}
	userInfoURL := a.cfg.Endpoint("user_info_url")
	if userInfoURL == "" && a.userInfoURL != nil {
		userInfoURL = a.userInfoURL(ctx)
	}
	if userInfoURL == "" {
		userInfoURL = a.defaults.UserInfoURL
	}
	issuer := a.cfg.Endpoint("issuer")
	if issuer == "" {
		issuer = a.defaults.Issuer
	}
	normalizer := a.defaults.Normalizer
	if normalizer == nil {
		normalizer = identity.NormalizerFor(a.cfg.Adapter)
	}
	resolver := identity.NewResolver(identity.Config{
		HTTPClient:      a.transport,
		IDTokenVerifier: a.idVerifier,
	})
	return resolver.Resolve(ctx, identity.Request{
		ProviderID:  a.cfg.Name,
		Issuer:      issuer,
		UserInfoURL: userInfoURL,
		Token:       token,
		Normalizer:  normalizer,
	})
}

func (a *OAuth2Adapter) beginAuthorization(ctx context.Context) error {
	if strings.TrimSpace(a.cfg.Callback) == "" {
		return core.NewAdapterError(a.cfg.Name, "providers: callback url is required to start authorization", goerrors.CategoryBadInput, core.ErrorCallbackRequired, nil)
	}
	conf, err := a.oauthConfig(ctx)
	if err != nil {
		return err
	}
	state := uuid.NewString()
	if err := a.storage.Set(ctx, a.key(stateKeySuffix), state); err != nil {
		return fmt.Errorf("providers: store %s state: %w", a.cfg.Name, err)
	}

	options := make([]oauth2.AuthCodeOption, 0, len(a.defaults.AuthParams)+len(a.cfg.AuthorizeParams))
	for key, value := range mergeParams(a.defaults.AuthParams, a.cfg.AuthorizeParams) {
		options = append(options, oauth2.SetAuthURLParam(key, value))
	}
	if a.authOptions != nil {
		extra, err := a.authOptions(ctx)
		if err != nil {
			return err
		}
		options = append(options, extra...)
	}

	target := conf.AuthCodeURL(state, options...)
	a.logger.Debug("redirecting to provider", "provider", a.cfg.Name)
	return &core.RedirectError{Provider: a.cfg.Name, URL: target}
}

func (a *OAuth2Adapter) completeAuthorization(ctx context.Context, code, state string) error {
	expected, found, err := a.storage.Get(ctx, a.key(stateKeySuffix))
	if err != nil {
		return fmt.Errorf("providers: read %s state: %w", a.cfg.Name, err)
	}
	if !found || expected == "" || expected != state {
		return core.NewAdapterError(a.cfg.Name, "providers: authorization state mismatch", goerrors.CategoryAuth, core.ErrorStateMismatch, nil)
	}
	if err := a.storage.Delete(ctx, a.key(stateKeySuffix)); err != nil {
		return fmt.Errorf("providers: clear %s state: %w", a.cfg.Name, err)
	}

	conf, err := a.oauthConfig(ctx)
	if err != nil {
		return err
	}
	token, err := conf.Exchange(a.httpContext(ctx), code)
	if err != nil {
		return core.NewAdapterError(a.cfg.Name, "providers: token exchange failed", goerrors.CategoryExternal, core.ErrorTokenExchangeFailed, err)
	}
	if a.afterExchange != nil {
		if err := a.afterExchange(ctx, token); err != nil {
			return err
		}
	}
	if err := a.saveToken(ctx, fromOAuthToken(token)); err != nil {
		return err
	}
	a.logger.Debug("authorization completed", "provider", a.cfg.Name)
	return nil
}

func (a *OAuth2Adapter) oauthConfig(ctx context.Context) (*oauth2.Config, error) {
	endpoint := a.defaults.Endpoint
	if a.endpoint != nil {
		discovered, err := a.endpoint(ctx)
		if err != nil {
			return nil, err
		}
		endpoint = discovered
	}
	if value := a.cfg.Endpoint("authorize_url"); value != "" {
		endpoint.AuthURL = value
	}
	if value := a.cfg.Endpoint("access_token_url"); value != "" {
		endpoint.TokenURL = value
	}
	if endpoint.AuthURL == "" || endpoint.TokenURL == "" {
		return nil, core.NewAdapterError(a.cfg.Name, "providers: authorize_url and access_token_url are required", goerrors.CategoryBadInput, core.ErrorInvalidConfig, nil)
	}
	if a.cfg.Key("id") == "" {
		return nil, core.NewAdapterError(a.cfg.Name, "providers: keys.id is required", goerrors.CategoryBadInput, core.ErrorInvalidConfig, nil)
	}
	scopes := a.cfg.Scopes()
	if len(scopes) == 0 {
		scopes = append([]string(nil), a.defaults.DefaultScopes...)
	}
	return &oauth2.Config{
		ClientID:     a.cfg.Key("id"),
		ClientSecret: a.cfg.Key("secret"),
		Endpoint:     endpoint,
		RedirectURL:  a.cfg.Callback,
		Scopes:       scopes,
	}, nil
}

func (a *OAuth2Adapter) httpContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, StandardClient(a.transport))
}

func (a *OAuth2Adapter) key(suffix string) string {
	return a.cfg.Name + "." + suffix
}

func (a *OAuth2Adapter) notConnected() error {
	return core.NewAdapterError(a.cfg.Name, "providers: "+a.cfg.Name+" is not connected", goerrors.CategoryAuth, core.ErrorNotConnected, nil)
}

type storedToken struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

func (a *OAuth2Adapter) loadToken(ctx context.Context) (storedToken, bool, error) {
	raw, found, err := a.storage.Get(ctx, a.key(tokenKeySuffix))
	if err != nil {
		return storedToken{}, false, fmt.Errorf("providers: read %s token: %w", a.cfg.Name, err)
	}
	if !found || strings.TrimSpace(raw) == "" {
		return storedToken{}, false, nil
	}
	var token storedToken
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return storedToken{}, false, fmt.Errorf("providers: decode %s token: %w", a.cfg.Name, err)
	}
	return token, true, nil
}

func (a *OAuth2Adapter) saveToken(ctx context.Context, token storedToken) error {
	encoded, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("providers: encode %s token: %w", a.cfg.Name, err)
	}
	if err := a.storage.Set(ctx, a.key(tokenKeySuffix), string(encoded)); err != nil {
		return fmt.Errorf("providers: store %s token: %w", a.cfg.Name, err)
	}
	return nil
}

func fromOAuthToken(token *oauth2.Token) storedToken {
	if token == nil {
		return storedToken{}
	}
	stored := storedToken{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry.UTC(),
	}
	if token.Expiry.IsZero() {
		stored.Expiry = time.Time{}
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		stored.IDToken = idToken
	}
	if scope, ok := token.Extra("scope").(string); ok {
		stored.Scope = scope
	}
	return stored
}

func toCoreToken(token storedToken) core.Token {
	out := core.Token{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
		IDToken:      token.IDToken,
		Scopes:       core.ProviderConfig{Scope: token.Scope}.Scopes(),
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		out.ExpiresAt = &expiry
	}
	return out
}

func mergeParams(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range override {
		merged[key] = value
	}
	return merged
}

// StandardClient adapts an HTTPClient to the *http.Client expected by
// x/oauth2 and go-oidc.
func StandardClient(transport core.HTTPClient) *http.Client {
	switch typed := transport.(type) {
	case nil:
		return http.DefaultClient
	case *http.Client:
		return typed
	case interface{ StandardClient() *http.Client }:
		return typed.StandardClient()
	default:
		return &http.Client{Transport: doerRoundTripper{doer: transport}}
	}
}

type doerRoundTripper struct {
	doer core.HTTPClient
}

func (rt doerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt.doer.Do(req)
}

var (
	_ core.Adapter           = (*OAuth2Adapter)(nil)
	_ core.TokenReader       = (*OAuth2Adapter)(nil)
	_ identity.ProfileReader = (*OAuth2Adapter)(nil)
)
