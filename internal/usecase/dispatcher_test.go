package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestDispatchSucceedsFirstAttempt(t *testing.T) {
	provider := new(MockCallProvider)
	provider.On("CreateCall", mock.Anything, mock.Anything).
		Return(&CallResult{CallID: "call-1"}, nil).Once()

	d, delays := newTestDispatcher(provider)

	result, err := d.Dispatch(context.Background(), CallRequest{To: "+919876543210"})

	assert.NoError(t, err)
	assert.Equal(t, "call-1", result.CallID)
	assert.Empty(t, *delays)
	provider.AssertExpectations(t)
}

func TestDispatchRetriesWithBackoff(t *testing.T) {
	provider := new(MockCallProvider)
	provider.On("CreateCall", mock.Anything, mock.Anything).
		Return(nil, errors.New("gateway timeout")).Twice()
	provider.On("CreateCall", mock.Anything, mock.Anything).
		Return(&CallResult{CallID: "call-2"}, nil).Once()

	d, delays := newTestDispatcher(provider)

	result, err := d.Dispatch(context.Background(), CallRequest{To: "+919876543210"})

	assert.NoError(t, err)
	assert.Equal(t, "call-2", result.CallID)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 1000 * time.Millisecond}, *delays)
	provider.AssertExpectations(t)
}

func TestDispatchExhaustsAttempts(t *testing.T) {
	provider := new(MockCallProvider)
	provider.On("CreateCall", mock.Anything, mock.Anything).
		Return(nil, errors.New("provider down")).Times(3)

	d, delays := newTestDispatcher(provider)

	result, err := d.Dispatch(context.Background(), CallRequest{To: "+919876543210"})

	assert.Nil(t, result)
	assert.EqualError(t, err, "provider down")
	// No sleep after the last attempt.
	assert.Len(t, *delays, 2)
	provider.AssertExpectations(t)
}

func TestDispatchConfigErrorFailsFast(t *testing.T) {
	provider := new(MockCallProvider)
	provider.On("CreateCall", mock.Anything, mock.Anything).
		Return(nil, &ConfigError{Provider: "exotel", Key: "EXOTEL_API_KEY"}).Once()

	d, delays := newTestDispatcher(provider)

	_, err := d.Dispatch(context.Background(), CallRequest{To: "+919876543210"})

	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, *delays)
	provider.AssertNumberOfCalls(t, "CreateCall", 1)
}

func TestDispatchAbortsOnCanceledContext(t *testing.T) {
	provider := new(MockCallProvider)
	provider.On("CreateCall", mock.Anything, mock.Anything).
		Return(nil, errors.New("gateway timeout")).Once()

	d := NewCallDispatcher(provider)
	d.sleep = func(ctx context.Context, dur time.Duration) error {
		return context.Canceled
	}

	_, err := d.Dispatch(context.Background(), CallRequest{To: "+919876543210"})

	assert.ErrorIs(t, err, context.Canceled)
	provider.AssertNumberOfCalls(t, "CreateCall", 1)
}
