// File: internal/services/provider/errors.go
package provider

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeConfig   ErrorType = "CONFIG"
	ErrTypeNetwork  ErrorType = "NETWORK"
	ErrTypeProvider ErrorType = "PROVIDER"
	ErrTypeModel    ErrorType = "MODEL"
)

// ErrProviderUnavailable is returned by a provider that is missing the
// credential it needs to serve any request.
var ErrProviderUnavailable = errors.New("provider credential is not configured")

type ProviderError struct {
	Type      ErrorType
	Provider  string
	Operation string
	Message   string
	Model     string
	Cause     error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s error in %s: %s (caused by: %v)",
			e.Provider, e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s %s error in %s: %s", e.Provider, e.Type, e.Operation, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

func NewConfigError(provider, msg string) *ProviderError {
	return &ProviderError{Type: ErrTypeConfig, Provider: provider, Operation: "config", Message: msg}
}

func NewNetworkError(provider, operation string, cause error) *ProviderError {
	return &ProviderError{Type: ErrTypeNetwork, Provider: provider, Operation: operation, Message: "request failed", Cause: cause}
}

func NewProviderError(provider, operation, msg string, cause error) *ProviderError {
	return &ProviderError{Type: ErrTypeProvider, Provider: provider, Operation: operation, Message: msg, Cause: cause}
}

func NewModelError(provider, model, msg string) *ProviderError {
	return &ProviderError{Type: ErrTypeModel, Provider: provider, Operation: "model", Model: model, Message: msg}
}

// IsType reports whether err is a ProviderError of the given type.
func IsType(err error, t ErrorType) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Type == t
}
