package query

import (
	"context"

	"github.com/goliatone/go-hybridauth/core"
	"github.com/goliatone/go-hybridauth/identity"
)

type ConnectionReader interface {
	IsConnectedWith(ctx context.Context, name string) (bool, error)
	GetConnectedProviders(ctx context.Context) ([]string, error)
}

type AdapterReader interface {
	GetAdapter(name string) (core.Adapter, error)
}

type IsConnectedQuery struct {
	reader ConnectionReader
}

func NewIsConnectedQuery(reader ConnectionReader) *IsConnectedQuery {
	return &IsConnectedQuery{reader: reader}
}

func (q *IsConnectedQuery) Query(ctx context.Context, msg IsConnectedMessage) (bool, error) {
	if q == nil || q.reader == nil {
		return false, queryDependencyError("query: connection reader is required")
	}
	return q.reader.IsConnectedWith(ctx, msg.Provider)
}

type ConnectedProvidersQuery struct {
	reader ConnectionReader
}

func NewConnectedProvidersQuery(reader ConnectionReader) *ConnectedProvidersQuery {
	return &ConnectedProvidersQuery{reader: reader}
}

func (q *ConnectedProvidersQuery) Query(ctx context.Context, _ ConnectedProvidersMessage) ([]string, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: connection reader is required")
	}
	return q.reader.GetConnectedProviders(ctx)
}

// UserProfileQuery reads the profile of a connected provider. Adapters that
// do not implement identity.ProfileReader are rejected.
type UserProfileQuery struct {
	reader AdapterReader
}

func NewUserProfileQuery(reader AdapterReader) *UserProfileQuery {
	return &UserProfileQuery{reader: reader}
}

func (q *UserProfileQuery) Query(ctx context.Context, msg UserProfileMessage) (identity.UserProfile, error) {
	if q == nil || q.reader == nil {
		return identity.UserProfile{}, queryDependencyError("query: adapter reader is required")
	}
	adapter, err := q.reader.GetAdapter(msg.Provider)
	if err != nil {
		return identity.UserProfile{}, err
	}
	profiles, ok := adapter.(identity.ProfileReader)
	if !ok {
		return identity.UserProfile{}, queryUnsupportedError(adapter.ID(), "query: adapter does not expose user profiles")
	}
	return profiles.UserProfile(ctx)
}
