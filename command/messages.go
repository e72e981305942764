package command

import (
	"net/url"
	"strings"
)

const (
	TypeAuthenticate  = "hybridauth.command.authenticate"
	TypeDisconnect    = "hybridauth.command.disconnect"
	TypeDisconnectAll = "hybridauth.command.disconnect_all"
)

// AuthenticateMessage starts or completes the handshake with Provider. A
// non-empty CallbackQuery carries the parameters the provider sent back.
type AuthenticateMessage struct {
	Provider      string
	CallbackQuery url.Values
}

func (AuthenticateMessage) Type() string { return TypeAuthenticate }

func (m AuthenticateMessage) Validate() error {
	return validateProvider(m.Provider)
}

type DisconnectMessage struct {
	Provider string
}

func (DisconnectMessage) Type() string { return TypeDisconnect }

func (m DisconnectMessage) Validate() error {
	return validateProvider(m.Provider)
}

type DisconnectAllMessage struct{}

func (DisconnectAllMessage) Type() string { return TypeDisconnectAll }

func (DisconnectAllMessage) Validate() error { return nil }

func validateProvider(provider string) error {
	if strings.TrimSpace(provider) == "" {
		return commandValidationError("provider", "provider is required")
	}
	return nil
}
