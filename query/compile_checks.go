package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-hybridauth/identity"
)

var (
	_ gocmd.Querier[IsConnectedMessage, bool]                 = (*IsConnectedQuery)(nil)
	_ gocmd.Querier[ConnectedProvidersMessage, []string]      = (*ConnectedProvidersQuery)(nil)
	_ gocmd.Querier[UserProfileMessage, identity.UserProfile] = (*UserProfileQuery)(nil)
)
