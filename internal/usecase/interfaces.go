package usecase

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/candleco/callback-service/internal/entity"
	"github.com/candleco/callback-service/internal/infra/queue"
)

// LeadRepository is satisfied by both store backends. Create is conditional
// on the id not existing; AppendEvent and Update are atomic per call, but
// concurrent updates against the same lead are last-write-wins by contract.
type LeadRepository interface {
	Create(ctx context.Context, lead *entity.Lead) error
	Update(ctx context.Context, leadID string, update entity.LeadUpdate) (*entity.Lead, error)
	AppendEvent(ctx context.Context, leadID string, event entity.LeadEvent) error
	List(ctx context.Context) ([]*entity.Lead, error)
	GetByID(ctx context.Context, leadID string) (*entity.Lead, error)
}

// CallContext travels with the call and comes back in webhooks so the
// callback can be tied to a lead.
type CallContext struct {
	LeadID string `json:"leadId"`
	Name   string `json:"name"`
}

type CallRequest struct {
	To         string
	From       string
	Context    CallContext
	WebhookURL string
}

type CallResult struct {
	CallID string
	Raw    json.RawMessage
}

// CallProvider is the capability every telephony vendor client implements.
type CallProvider interface {
	Name() string
	CreateCall(ctx context.Context, req CallRequest) (*CallResult, error)
	VerifyWebhookSignature(r *http.Request, rawBody []byte) bool
}

type EventPublisherInterface interface {
	PublishCallEvent(ctx context.Context, payload queue.CallEventPayload) error
}

type NotifierInterface interface {
	SendInterestedLead(name, phone, contact string) error
}
