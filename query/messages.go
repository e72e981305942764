package query

import "strings"

const (
	TypeIsConnected        = "hybridauth.query.is_connected"
	TypeConnectedProviders = "hybridauth.query.connected_providers"
	TypeUserProfile        = "hybridauth.query.user_profile"
)

type IsConnectedMessage struct {
	Provider string
}

func (IsConnectedMessage) Type() string { return TypeIsConnected }

func (m IsConnectedMessage) Validate() error {
	return validateProvider(m.Provider)
}

type ConnectedProvidersMessage struct{}

func (ConnectedProvidersMessage) Type() string { return TypeConnectedProviders }

func (ConnectedProvidersMessage) Validate() error { return nil }

type UserProfileMessage struct {
	Provider string
}

func (UserProfileMessage) Type() string { return TypeUserProfile }

func (m UserProfileMessage) Validate() error {
	return validateProvider(m.Provider)
}

func validateProvider(provider string) error {
	if strings.TrimSpace(provider) == "" {
		return queryValidationError("provider", "provider is required")
	}
	return nil
}
