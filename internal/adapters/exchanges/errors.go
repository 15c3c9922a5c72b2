package exchanges

import (
	"fmt"

	"tentacles/pkg/errors"
)

var (
	// ErrRequestFailed is the generic transport or exchange failure.
	ErrRequestFailed = errors.New("exchange request failed")

	// ErrNotSupported is returned when the operation needs a parameter the caller omitted
	// or the exchange does not offer the feature.
	ErrNotSupported = errors.New("operation not supported by exchange")

	// ErrKeyLookupFailed indicates an expected field or cache entry is missing.
	ErrKeyLookupFailed = errors.New("key lookup failed")

	// ErrNotImplemented flags an exchange mode this adapter refuses to handle (hedge positions).
	ErrNotImplemented = errors.New("not implemented")

	// ErrInvalidRequest indicates validation failures before hitting exchange API.
	ErrInvalidRequest = errors.New("invalid exchange request")
)

// ExchangeError is a non-zero retCode answered by the exchange.
// It matches ErrRequestFailed with errors.Is.
type ExchangeError struct {
	Code    int
	Message string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("bybit error %d: %s", e.Code, e.Message)
}

// Is makes every exchange error a failed request.
func (e *ExchangeError) Is(target error) bool {
	return target == ErrRequestFailed
}

// MissingKey builds a key lookup failure for the given field.
func MissingKey(key string) error {
	return errors.Wrapf(ErrKeyLookupFailed, "%q", key)
}

// ErrorType labels the error for metrics.
func (e *ExchangeError) ErrorType() string {
	if e.Code == 10006 || e.Code == 10018 {
		return "rate_limited"
	}
	return "exchange"
}
