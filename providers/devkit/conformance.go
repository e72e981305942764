package devkit

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-hybridauth/core"
)

// ValidateAdapterConformance checks the factory and adapter contract against
// a fresh session: construction does no I/O, every call builds a new
// instance, the adapter reports its table key and a fresh session is not
// connected.
func ValidateAdapterConformance(
	ctx context.Context,
	factory core.AdapterFactory,
	cfg core.ResolvedProviderConfig,
) error {
	if factory == nil {
		return fmt.Errorf("devkit: adapter factory is required")
	}
	storage := NewRecordingStorage()
	transport := &refusingTransport{}

	first, err := factory(cfg, transport, storage, nil)
	if err != nil {
		return fmt.Errorf("devkit: create adapter: %w", err)
	}
	second, err := factory(cfg, transport, storage, nil)
	if err != nil {
		return fmt.Errorf("devkit: create second adapter: %w", err)
	}
	if first == nil || second == nil {
		return fmt.Errorf("devkit: factory returned a nil adapter")
	}
	if first == second {
		return fmt.Errorf("devkit: factory must return a new adapter per call")
	}
	if transport.calls > 0 {
		return fmt.Errorf("devkit: factory performed %d network calls", transport.calls)
	}
	if got, want := first.ID(), core.CanonicalProviderName(cfg.Name); got != want {
		return fmt.Errorf("devkit: adapter id %q does not match provider %q", got, want)
	}

	connected, err := first.IsConnected(ctx)
	if err != nil {
		return fmt.Errorf("devkit: is connected on empty session: %w", err)
	}
	if connected {
		return fmt.Errorf("devkit: adapter reports connected on an empty session")
	}
	if err := first.Disconnect(ctx); err != nil {
		return fmt.Errorf("devkit: disconnect on empty session: %w", err)
	}
	for _, key := range storage.Keys() {
		if !strings.HasPrefix(key, first.ID()+".") {
			return fmt.Errorf("devkit: storage key %q is outside the %q namespace", key, first.ID())
		}
	}
	return nil
}

// ValidateStorageConformance checks the core.Storage contract.
func ValidateStorageConformance(ctx context.Context, storage core.Storage) error {
	if storage == nil {
		return fmt.Errorf("devkit: storage is required")
	}
	if _, found, err := storage.Get(ctx, "conformance.missing"); err != nil {
		return err
	} else if found {
		return fmt.Errorf("devkit: missing key reported as found")
	}
	for key, value := range map[string]string{
		"conformance.access_token": `{"access_token":"abc"}`,
		"conformance.state":        "xyz",
		"conformancex.state":       "other",
	} {
		if err := storage.Set(ctx, key, value); err != nil {
			return err
		}
	}
	if err := storage.Set(ctx, "conformance.state", "xyz-2"); err != nil {
		return err
	}
	value, found, err := storage.Get(ctx, "conformance.state")
	if err != nil {
		return err
	}
	if !found || value != "xyz-2" {
		return fmt.Errorf("devkit: expected overwritten value xyz-2, got %q (found=%v)", value, found)
	}

	if err := storage.Delete(ctx, "conformance.state"); err != nil {
		return err
	}
	if _, found, err := storage.Get(ctx, "conformance.state"); err != nil {
		return err
	} else if found {
		return fmt.Errorf("devkit: deleted key still present")
	}
	if err := storage.Delete(ctx, "conformance.state"); err != nil {
		return fmt.Errorf("devkit: deleting a missing key must succeed: %w", err)
	}

	if err := storage.DeleteMatch(ctx, "conformance."); err != nil {
		return err
	}
	if _, found, err := storage.Get(ctx, "conformance.access_token"); err != nil {
		return err
	} else if found {
		return fmt.Errorf("devkit: prefixed key survived DeleteMatch")
	}
	value, found, err = storage.Get(ctx, "conformancex.state")
	if err != nil {
		return err
	}
	if !found || value != "other" {
		return fmt.Errorf("devkit: DeleteMatch removed a key outside the prefix")
	}
	return storage.Delete(ctx, "conformancex.state")
}
