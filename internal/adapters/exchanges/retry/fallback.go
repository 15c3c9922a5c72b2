package retry

import (
	"context"

	"tentacles/internal/adapters/exchanges"
	"tentacles/pkg/errors"
)

// Fallback retries a failed exchange call with one extra distinguishing parameter.
// Bybit keeps conditional orders in a separate category, so a lookup that fails
// as a regular order is repeated once tagged as a conditional order.
type Fallback struct {
	// Param is added on retry; calls that already carry it are never retried.
	Param string
	Value any
	// MaxAttempts counts the first call. Zero means 2.
	MaxAttempts int
	// Retryable decides which errors trigger the fallback. Defaults to ErrRequestFailed.
	Retryable func(error) bool
	// OnFallback is called before each retry.
	OnFallback func(err error)
}

func (f Fallback) maxAttempts() int {
	if f.MaxAttempts <= 0 {
		return 2
	}
	return f.MaxAttempts
}

func (f Fallback) retryable(err error) bool {
	if f.Retryable != nil {
		return f.Retryable(err)
	}
	return errors.Is(err, exchanges.ErrRequestFailed)
}

// DoFallback runs fn with params, then with params plus the fallback parameter
// when the first attempt fails with a retryable error. The last error is returned unchanged.
func DoFallback[T any](ctx context.Context, f Fallback, params exchanges.Params, fn func(ctx context.Context, params exchanges.Params) (T, error)) (T, error) {
	if params == nil {
		params = exchanges.Params{}
	}
	for attempt := 1; ; attempt++ {
		result, err := fn(ctx, params)
		if err == nil {
			return result, nil
		}
		if attempt >= f.maxAttempts() || params.Has(f.Param) || !f.retryable(err) || ctx.Err() != nil {
			return result, err
		}
		if f.OnFallback != nil {
			f.OnFallback(err)
		}
		params = params.Clone()
		params[f.Param] = f.Value
	}
}
