package command

import (
	"context"
	"strings"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-hybridauth/core"
)

// MutatingService is the part of the orchestrator the commands drive.
type MutatingService interface {
	Authenticate(ctx context.Context, name string) (core.Adapter, error)
	Disconnect(ctx context.Context, name string) error
	DisconnectAllAdapters(ctx context.Context) error
}

// AuthenticateResult is stored in the result collector. RedirectURL is set
// when the user agent must visit the provider; Connected once the handshake
// has completed.
type AuthenticateResult struct {
	Provider    string
	RedirectURL string
	Connected   bool
	Adapter     core.Adapter
}

type AuthenticateCommand struct {
	service MutatingService
}

func NewAuthenticateCommand(service MutatingService) *AuthenticateCommand {
	return &AuthenticateCommand{service: service}
}

func (c *AuthenticateCommand) Execute(ctx context.Context, msg AuthenticateMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: authenticate service is required")
	}
	if len(msg.CallbackQuery) > 0 {
		ctx = core.WithCallbackQuery(ctx, msg.CallbackQuery)
	}
	provider := core.CanonicalProviderName(msg.Provider)
	adapter, err := c.service.Authenticate(ctx, provider)
	if err != nil {
		if target, ok := core.RedirectURL(err); ok {
			storeResult(ctx, AuthenticateResult{Provider: provider, RedirectURL: target})
			return nil
		}
		return err
	}
	storeResult(ctx, AuthenticateResult{Provider: provider, Connected: true, Adapter: adapter})
	return nil
}

type DisconnectCommand struct {
	service MutatingService
}

func NewDisconnectCommand(service MutatingService) *DisconnectCommand {
	return &DisconnectCommand{service: service}
}

func (c *DisconnectCommand) Execute(ctx context.Context, msg DisconnectMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: disconnect service is required")
	}
	return c.service.Disconnect(ctx, strings.TrimSpace(msg.Provider))
}

type DisconnectAllCommand struct {
	service MutatingService
}

func NewDisconnectAllCommand(service MutatingService) *DisconnectAllCommand {
	return &DisconnectAllCommand{service: service}
}

func (c *DisconnectAllCommand) Execute(ctx context.Context, _ DisconnectAllMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: disconnect all service is required")
	}
	return c.service.DisconnectAllAdapters(ctx)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
