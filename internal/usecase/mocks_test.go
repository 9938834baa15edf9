package usecase

import (
	"context"
	"net/http"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/candleco/callback-service/internal/entity"
	"github.com/candleco/callback-service/internal/infra/queue"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) Update(ctx context.Context, leadID string, update entity.LeadUpdate) (*entity.Lead, error) {
	args := m.Called(ctx, leadID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) AppendEvent(ctx context.Context, leadID string, event entity.LeadEvent) error {
	args := m.Called(ctx, leadID, event)
	return args.Error(0)
}

func (m *MockLeadRepository) List(ctx context.Context) ([]*entity.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) GetByID(ctx context.Context, leadID string) (*entity.Lead, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

type MockCallProvider struct {
	mock.Mock
}

func (m *MockCallProvider) Name() string {
	return "mock"
}

func (m *MockCallProvider) CreateCall(ctx context.Context, req CallRequest) (*CallResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CallResult), args.Error(1)
}

func (m *MockCallProvider) VerifyWebhookSignature(r *http.Request, rawBody []byte) bool {
	args := m.Called(r, rawBody)
	return args.Bool(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishCallEvent(ctx context.Context, payload queue.CallEventPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendInterestedLead(name, phone, contact string) error {
	args := m.Called(name, phone, contact)
	return args.Error(0)
}

// newTestDispatcher swaps the real backoff sleep for a recorder so retry
// tests run instantly.
func newTestDispatcher(provider CallProvider) (*CallDispatcher, *[]time.Duration) {
	delays := &[]time.Duration{}
	d := NewCallDispatcher(provider)
	d.sleep = func(ctx context.Context, dur time.Duration) error {
		*delays = append(*delays, dur)
		return nil
	}
	return d, delays
}
