package hybridauth

import (
	"fmt"

	hacommand "github.com/goliatone/go-hybridauth/command"
	haquery "github.com/goliatone/go-hybridauth/query"
)

// CommandQueryService is the orchestrator surface exposed through
// go-command handlers. *Hybridauth implements it.
type CommandQueryService interface {
	hacommand.MutatingService
	haquery.ConnectionReader
	haquery.AdapterReader
}

type Commands struct {
	Authenticate  *hacommand.AuthenticateCommand
	Disconnect    *hacommand.DisconnectCommand
	DisconnectAll *hacommand.DisconnectAllCommand
}

type Queries struct {
	IsConnected        *haquery.IsConnectedQuery
	ConnectedProviders *haquery.ConnectedProvidersQuery
	UserProfile        *haquery.UserProfileQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("hybridauth: command/query service is required")
	}
	facade := &Facade{service: service}
	facade.commands = Commands{
		Authenticate:  hacommand.NewAuthenticateCommand(service),
		Disconnect:    hacommand.NewDisconnectCommand(service),
		DisconnectAll: hacommand.NewDisconnectAllCommand(service),
	}
	facade.queries = Queries{
		IsConnected:        haquery.NewIsConnectedQuery(service),
		ConnectedProviders: haquery.NewConnectedProvidersQuery(service),
		UserProfile:        haquery.NewUserProfileQuery(service),
	}
	return facade, nil
}

// Facade returns the command/query handlers bound to h.
func (h *Hybridauth) Facade() *Facade {
	facade, _ := NewFacade(h)
	return facade
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

var _ CommandQueryService = (*Hybridauth)(nil)
