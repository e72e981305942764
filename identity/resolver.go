package identity

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-hybridauth/core"
	"github.com/goliatone/go-hybridauth/transport"
)

const (
	defaultRequestTimeout   = 10 * time.Second
	maxProfileResponseBytes = 1 << 20 // 1 MiB
)

var ErrProfileNotFound = errors.New("identity: profile not found")

type ProfileNotFoundError struct {
	Cause error
}

func (e *ProfileNotFoundError) Error() string {
	if e == nil || e.Cause == nil {
		return ErrProfileNotFound.Error()
	}
	return ErrProfileNotFound.Error() + ": " + e.Cause.Error()
}

func (e *ProfileNotFoundError) Unwrap() error {
	if e == nil {
		return nil
	}
	if e.Cause == nil {
		return ErrProfileNotFound
	}
	return errors.Join(ErrProfileNotFound, e.Cause)
}

func (e *ProfileNotFoundError) ToServiceError() *goerrors.Error {
	message := ErrProfileNotFound.Error()
	if e != nil && e.Cause != nil {
		message = e.Error()
	}
	return goerrors.New(message, goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(core.ErrorProfileNotFound)
}

func profileNotFound(cause error) error {
	return &ProfileNotFoundError{Cause: cause}
}

// IDTokenVerifier returns the verified claims of an id_token.
type IDTokenVerifier func(ctx context.Context, providerID string, idToken string) (map[string]any, error)

type Config struct {
	HTTPClient      core.HTTPClient
	RequestTimeout  time.Duration
	IDTokenVerifier IDTokenVerifier
}

// Resolver builds a UserProfile from an id_token or a userinfo endpoint.
type Resolver struct {
	httpClient      core.HTTPClient
	requestTimeout  time.Duration
	idTokenVerifier IDTokenVerifier
}

func NewResolver(cfg Config) *Resolver {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	return &Resolver{
		httpClient:      httpClient,
		requestTimeout:  requestTimeout,
		idTokenVerifier: cfg.IDTokenVerifier,
	}
}

type Request struct {
	ProviderID  string
	Issuer      string
	UserInfoURL string
	Token       core.Token
	Normalizer  ProfileNormalizer
}

func (r *Resolver) Resolve(ctx context.Context, req Request) (UserProfile, error) {
	if r == nil {
		return UserProfile{}, profileNotFound(nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	providerID := normalizeProviderID(req.ProviderID)

	profile, tokenErr := r.profileFromIDToken(ctx, providerID, req.Issuer, req.Token.IDToken)
	if tokenErr == nil && profile.Subject != "" {
		if req.UserInfoURL == "" || profile.Email != "" {
			return profile, nil
		}
	}

	userInfoURL := strings.TrimSpace(req.UserInfoURL)
	if userInfoURL == "" {
		if profile.Subject != "" {
			return profile, nil
		}
		return UserProfile{}, profileNotFound(tokenErr)
	}

	payload, fetchErr := r.fetchUserInfo(ctx, providerID, userInfoURL, strings.TrimSpace(req.Token.AccessToken))
	if fetchErr != nil {
		if profile.Subject != "" {
			return profile, nil
		}
		return UserProfile{}, profileNotFound(fetchErr)
	}

	issuer := readString(payload["iss"])
	if issuer == "" {
		issuer = strings.TrimSpace(req.Issuer)
	}
	normalizer := req.Normalizer
	if normalizer == nil {
		normalizer = NormalizeOIDCProfile
	}
	fetched := normalizer(providerID, issuer, payload)
	if fetched.Subject == "" {
		return UserProfile{}, profileNotFound(fmt.Errorf("identity: userinfo payload is missing subject"))
	}
	if profile.Subject != "" && profile.Subject != fetched.Subject {
		return UserProfile{}, profileNotFound(fmt.Errorf("identity: userinfo subject does not match id_token"))
	}
	return fetched, nil
}

func (r *Resolver) fetchUserInfo(ctx context.Context, providerID, endpoint, accessToken string) (map[string]any, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("identity: access token is required")
	}
	requestCtx, cancel := context.WithTimeout(ctx, r.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	res, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	body, readErr := io.ReadAll(io.LimitReader(res.Body, maxProfileResponseBytes+1))
	if readErr != nil {
		return nil, fmt.Errorf("identity: read profile response: %w", readErr)
	}
	if int64(len(body)) > maxProfileResponseBytes {
		return nil, fmt.Errorf("identity: profile response exceeds %d bytes", maxProfileResponseBytes)
	}
	if err := transport.StatusError(providerID, res); err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("identity: decode profile response: %w", err)
	}
	return payload, nil
}

func (r *Resolver) profileFromIDToken(ctx context.Context, providerID, issuer, idToken string) (UserProfile, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return UserProfile{}, fmt.Errorf("identity: id_token is required")
	}
	var (
		claims map[string]any
		err    error
	)
	if r.idTokenVerifier != nil {
		claims, err = r.idTokenVerifier(ctx, providerID, idToken)
		if err != nil {
			return UserProfile{}, fmt.Errorf("identity: verify id_token: %w", err)
		}
	} else {
		claims, err = decodeJWTPayload(idToken)
		if err != nil {
			return UserProfile{}, err
		}
	}
	if claimed := readString(claims["iss"]); claimed != "" {
		issuer = claimed
	}
	profile := NormalizeOIDCProfile(providerID, issuer, claims)
	if profile.Subject == "" {
		return UserProfile{}, fmt.Errorf("identity: id_token is missing subject")
	}
	return profile, nil
}

func decodeJWTPayload(token string) (map[string]any, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("identity: invalid id_token format")
	}
	decoded, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("identity: decode id_token payload: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return nil, fmt.Errorf("identity: decode id_token claims: %w", err)
	}
	return payload, nil
}
