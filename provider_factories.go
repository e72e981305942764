package hybridauth

import (
	"github.com/goliatone/go-hybridauth/core"
	"github.com/goliatone/go-hybridauth/providers"
	"github.com/goliatone/go-hybridauth/providers/github"
	"github.com/goliatone/go-hybridauth/providers/gitlab"
	"github.com/goliatone/go-hybridauth/providers/google"
	"github.com/goliatone/go-hybridauth/providers/meta/facebook"
)

// BuiltinFactories maps every bundled adapter name to its factory.
func BuiltinFactories() map[string]core.AdapterFactory {
	return map[string]core.AdapterFactory{
		github.Name:                        github.New,
		gitlab.Name:                        gitlab.New,
		facebook.Name:                      facebook.New,
		google.Name:                        google.New,
		providers.GenericOAuth2Name:        providers.NewGenericOAuth2,
		providers.GenericOpenIDConnectName: providers.NewGenericOpenIDConnect,
	}
}

// RegisterBuiltins adds the bundled adapters to registry.
func RegisterBuiltins(registry core.Registry) error {
	for name, factory := range BuiltinFactories() {
		if err := registry.Register(name, factory); err != nil {
			return err
		}
	}
	return nil
}

// DefaultRegistry returns a fresh registry holding the bundled adapters.
// Applications register their own adapters on top of it.
func DefaultRegistry() *core.AdapterRegistry {
	registry := core.NewAdapterRegistry()
	if err := RegisterBuiltins(registry); err != nil {
		panic(err)
	}
	return registry
}
