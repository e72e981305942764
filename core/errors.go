package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorInvalidConfig         = "HYBRIDAUTH_INVALID_CONFIG"
	ErrorUnknownProvider       = "HYBRIDAUTH_UNKNOWN_PROVIDER"
	ErrorProviderDisabled      = "HYBRIDAUTH_PROVIDER_DISABLED"
	ErrorAuthorizationDenied   = "HYBRIDAUTH_AUTHORIZATION_DENIED"
	ErrorStateMismatch         = "HYBRIDAUTH_STATE_MISMATCH"
	ErrorTokenExchangeFailed   = "HYBRIDAUTH_TOKEN_EXCHANGE_FAILED"
	ErrorCallbackRequired      = "HYBRIDAUTH_CALLBACK_REQUIRED"
	ErrorNotConnected          = "HYBRIDAUTH_NOT_CONNECTED"
	ErrorProfileNotFound       = "HYBRIDAUTH_PROFILE_NOT_FOUND"
	ErrorProviderRequestFailed = "HYBRIDAUTH_PROVIDER_REQUEST_FAILED"
	ErrorBadInput              = "HYBRIDAUTH_BAD_INPUT"
	ErrorInternal              = "HYBRIDAUTH_INTERNAL_ERROR"
)

var (
	ErrInvalidConfig    = errors.New("core: invalid configuration")
	ErrUnknownProvider  = errors.New("core: unknown provider")
	ErrProviderDisabled = errors.New("core: provider disabled")
)

// InvalidConfigError reports a configuration that could not be normalized.
type InvalidConfigError struct {
	Cause error
}

func (e *InvalidConfigError) Error() string {
	if e == nil || e.Cause == nil {
		return ErrInvalidConfig.Error()
	}
	return ErrInvalidConfig.Error() + ": " + e.Cause.Error()
}

func (e *InvalidConfigError) Unwrap() error {
	if e == nil || e.Cause == nil {
		return ErrInvalidConfig
	}
	return errors.Join(ErrInvalidConfig, e.Cause)
}

func (e *InvalidConfigError) ToServiceError() *goerrors.Error {
	return newCoreError(e.Error(), goerrors.CategoryBadInput, ErrorInvalidConfig, nil)
}

type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	if e == nil || strings.TrimSpace(e.Name) == "" {
		return ErrUnknownProvider.Error()
	}
	return ErrUnknownProvider.Error() + ": " + e.Name
}

func (e *UnknownProviderError) Unwrap() error {
	return ErrUnknownProvider
}

func (e *UnknownProviderError) ToServiceError() *goerrors.Error {
	name := ""
	if e != nil {
		name = e.Name
	}
	return newCoreError(e.Error(), goerrors.CategoryNotFound, ErrorUnknownProvider, map[string]any{
		"provider": name,
	})
}

type ProviderDisabledError struct {
	Name string
}

func (e *ProviderDisabledError) Error() string {
	if e == nil || strings.TrimSpace(e.Name) == "" {
		return ErrProviderDisabled.Error()
	}
	return ErrProviderDisabled.Error() + ": " + e.Name
}

func (e *ProviderDisabledError) Unwrap() error {
	return ErrProviderDisabled
}

func (e *ProviderDisabledError) ToServiceError() *goerrors.Error {
	name := ""
	if e != nil {
		name = e.Name
	}
	return newCoreError(e.Error(), goerrors.CategoryAuthz, ErrorProviderDisabled, map[string]any{
		"provider": name,
	})
}

func invalidConfig(cause error) error {
	var existing *InvalidConfigError
	if errors.As(cause, &existing) {
		return existing
	}
	return &InvalidConfigError{Cause: cause}
}

func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

func IsUnknownProvider(err error) bool {
	return errors.Is(err, ErrUnknownProvider)
}

func IsProviderDisabled(err error) bool {
	return errors.Is(err, ErrProviderDisabled)
}

// NewAdapterError builds the rich error returned by built-in adapters.
func NewAdapterError(provider, message string, category goerrors.Category, textCode string, cause error) *goerrors.Error {
	metadata := map[string]any{}
	if provider = strings.TrimSpace(provider); provider != "" {
		metadata["provider"] = provider
	}
	var err *goerrors.Error
	if cause != nil {
		err = goerrors.Wrap(cause, category, message)
	} else {
		err = goerrors.New(message, category)
	}
	err = err.WithCode(httpStatus(category)).WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// ToServiceError maps any error to a go-errors envelope.
func ToServiceError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var mapper interface{ ToServiceError() *goerrors.Error }
	if errors.As(err, &mapper) {
		return mapper.ToServiceError()
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureEnvelope(richErr)
	}
	return ensureEnvelope(goerrors.MapToError(err, goerrors.DefaultErrorMappers()))
}

func newCoreError(message string, category goerrors.Category, textCode string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, category).
		WithCode(httpStatus(category)).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func ensureEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = httpStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = ErrorInternal
	}
	return err
}

func httpStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
