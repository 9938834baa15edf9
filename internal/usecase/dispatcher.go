package usecase

import (
	"context"
	"errors"
	"time"
)

const (
	maxCallAttempts = 3
	retryBaseDelay  = 250 * time.Millisecond
)

// CallDispatcher wraps one provider with bounded exponential backoff.
type CallDispatcher struct {
	Provider CallProvider

	baseDelay time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewCallDispatcher(provider CallProvider) *CallDispatcher {
	return &CallDispatcher{
		Provider:  provider,
		baseDelay: retryBaseDelay,
		sleep:     sleepContext,
	}
}

// Dispatch attempts the call up to maxCallAttempts times, waiting
// baseDelay << attempt between attempts. Missing configuration fails fast:
// no amount of retrying makes a credential appear. The backoff wait aborts
// when the context is canceled.
func (d *CallDispatcher) Dispatch(ctx context.Context, req CallRequest) (*CallResult, error) {
	var lastErr error

	for attempt := 1; attempt <= maxCallAttempts; attempt++ {
		result, err := d.Provider.CreateCall(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			return nil, err
		}
		if attempt == maxCallAttempts {
			break
		}

		if err := d.sleep(ctx, d.baseDelay<<attempt); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
