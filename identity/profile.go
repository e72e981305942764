package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// UserProfile is the provider independent view of an authenticated user.
type UserProfile struct {
	ProviderID    string
	Issuer        string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	GivenName     string
	FamilyName    string
	DisplayName   string
	ProfileURL    string
	PictureURL    string
	Locale        string
	Raw           map[string]any
}

// ProfileReader is implemented by adapters that can fetch the user profile of
// a connected session.
type ProfileReader interface {
	UserProfile(ctx context.Context) (UserProfile, error)
}

func (p UserProfile) ExternalAccountID() string {
	subject := strings.TrimSpace(p.Subject)
	if subject == "" {
		return ""
	}
	issuer := strings.TrimSpace(p.Issuer)
	if issuer == "" {
		return subject
	}
	return issuer + "|" + subject
}

func (p UserProfile) Map() map[string]any {
	metadata := map[string]any{
		"provider_id":    strings.TrimSpace(p.ProviderID),
		"issuer":         strings.TrimSpace(p.Issuer),
		"subject":        strings.TrimSpace(p.Subject),
		"external_id":    strings.TrimSpace(p.ExternalAccountID()),
		"email":          strings.TrimSpace(p.Email),
		"email_verified": p.EmailVerified,
		"name":           strings.TrimSpace(p.Name),
		"display_name":   strings.TrimSpace(p.DisplayName),
		"profile_url":    strings.TrimSpace(p.ProfileURL),
		"picture_url":    strings.TrimSpace(p.PictureURL),
		"locale":         strings.TrimSpace(p.Locale),
	}
	if len(p.Raw) > 0 {
		metadata["raw"] = copyMap(p.Raw)
	}
	return metadata
}

type ProfileNormalizer func(providerID string, issuer string, payload map[string]any) UserProfile

// NormalizerFor returns the payload normalizer for an adapter name. Unknown
// names are treated as OpenID Connect userinfo payloads.
func NormalizerFor(adapter string) ProfileNormalizer {
	switch normalizeProviderID(adapter) {
	case "github":
		return NormalizeGitHubProfile
	case "gitlab":
		return NormalizeGitLabProfile
	case "facebook":
		return NormalizeFacebookProfile
	default:
		return NormalizeOIDCProfile
	}
}

func NormalizeOIDCProfile(providerID string, issuer string, payload map[string]any) UserProfile {
	profile := UserProfile{
		ProviderID:    normalizeProviderID(providerID),
		Issuer:        strings.TrimSpace(issuer),
		Subject:       readString(payload["sub"]),
		Email:         readString(payload["email"]),
		EmailVerified: readBool(payload["email_verified"]),
		Name:          readString(payload["name"]),
		GivenName:     readString(payload["given_name"]),
		FamilyName:    readString(payload["family_name"]),
		DisplayName:   readString(payload["preferred_username"]),
		ProfileURL:    readString(payload["profile"]),
		PictureURL:    readString(payload["picture"]),
		Locale:        readString(payload["locale"]),
		Raw:           copyMap(payload),
	}
	if profile.Name == "" {
		profile.Name = strings.TrimSpace(profile.GivenName + " " + profile.FamilyName)
	}
	if profile.DisplayName == "" {
		profile.DisplayName = profile.Name
	}
	return profile
}

func NormalizeGitHubProfile(providerID string, issuer string, payload map[string]any) UserProfile {
	subject := readString(payload["id"])
	if subject == "" {
		subject = readString(payload["node_id"])
	}
	login := readString(payload["login"])
	if subject == "" {
		subject = login
	}
	name := readString(payload["name"])
	if name == "" {
		name = login
	}
	return UserProfile{
		ProviderID:  normalizeProviderID(providerID),
		Issuer:      strings.TrimSpace(issuer),
		Subject:     subject,
		Email:       readString(payload["email"]),
		Name:        name,
		DisplayName: login,
		ProfileURL:  readString(payload["html_url"]),
		PictureURL:  readString(payload["avatar_url"]),
		Raw:         copyMap(payload),
	}
}

func NormalizeGitLabProfile(providerID string, issuer string, payload map[string]any) UserProfile {
	username := readString(payload["username"])
	name := readString(payload["name"])
	if name == "" {
		name = username
	}
	email := readString(payload["email"])
	if email == "" {
		email = readString(payload["public_email"])
	}
	return UserProfile{
		ProviderID:    normalizeProviderID(providerID),
		Issuer:        strings.TrimSpace(issuer),
		Subject:       readString(payload["id"]),
		Email:         email,
		EmailVerified: readString(payload["confirmed_at"]) != "",
		Name:          name,
		DisplayName:   username,
		ProfileURL:    readString(payload["web_url"]),
		PictureURL:    readString(payload["avatar_url"]),
		Raw:           copyMap(payload),
	}
}

func NormalizeFacebookProfile(providerID string, issuer string, payload map[string]any) UserProfile {
	picture := ""
	if wrapper, ok := payload["picture"].(map[string]any); ok {
		if data, ok := wrapper["data"].(map[string]any); ok {
			picture = readString(data["url"])
		}
	}
	profile := UserProfile{
		ProviderID: normalizeProviderID(providerID),
		Issuer:     strings.TrimSpace(issuer),
		Subject:    readString(payload["id"]),
		Email:      readString(payload["email"]),
		Name:       readString(payload["name"]),
		GivenName:  readString(payload["first_name"]),
		FamilyName: readString(payload["last_name"]),
		ProfileURL: readString(payload["link"]),
		PictureURL: picture,
		Locale:     readString(payload["locale"]),
		Raw:        copyMap(payload),
	}
	// Facebook only returns verified addresses.
	profile.EmailVerified = profile.Email != ""
	if profile.Name == "" {
		profile.Name = strings.TrimSpace(profile.GivenName + " " + profile.FamilyName)
	}
	profile.DisplayName = profile.Name
	return profile
}

func normalizeProviderID(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

func copyMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return map[string]any{}
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}

func readString(value any) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case fmt.Stringer:
		return strings.TrimSpace(typed.String())
	case json.Number:
		return strings.TrimSpace(typed.String())
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatInt(int64(typed), 10)
	default:
		if value == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(value))
	}
}

func readBool(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		return err == nil && parsed
	case json.Number:
		parsed, err := typed.Int64()
		return err == nil && parsed != 0
	case int:
		return typed != 0
	case int64:
		return typed != 0
	case float64:
		return typed != 0
	default:
		return false
	}
}
