package core

import (
	"context"
	"net/http"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// HTTPClient is the outbound transport lent to adapters. *http.Client and the
// retrying client in the transport package both satisfy it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Storage holds session scoped state for adapters. Keys are namespaced by the
// adapter, usually "<provider>.<name>".
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	DeleteMatch(ctx context.Context, prefix string) error
}

// Adapter is the per provider protocol implementation driven by the
// orchestrator. Instances are ephemeral; anything that must survive a call
// lives in Storage.
type Adapter interface {
	ID() string
	Authenticate(ctx context.Context) error
	IsConnected(ctx context.Context) (bool, error)
	Disconnect(ctx context.Context) error
}

// AdapterFactory builds an adapter. Factories must not perform network I/O.
type AdapterFactory func(
	cfg ResolvedProviderConfig,
	transport HTTPClient,
	storage Storage,
	logger Logger,
) (Adapter, error)

type Collaborators struct {
	Transport HTTPClient
	Storage   Storage
	Logger    Logger
}

type Registry interface {
	Register(name string, factory AdapterFactory) error
	Has(name string) bool
	Names() []string
	Create(cfg ResolvedProviderConfig, collaborators Collaborators) (Adapter, error)
}

type Token struct {
	AccessToken  string
	TokenType    string
	RefreshToken string
	IDToken      string
	Scopes       []string
	ExpiresAt    *time.Time
}

func (t Token) Expired(now time.Time) bool {
	if t.ExpiresAt == nil {
		return false
	}
	return !now.Before(*t.ExpiresAt)
}

// TokenReader is implemented by adapters that expose their stored credential.
type TokenReader interface {
	AccessToken(ctx context.Context) (Token, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}
