package usecase

import (
	"context"
	"log"
	"strings"

	"github.com/candleco/callback-service/internal/entity"
	"github.com/candleco/callback-service/internal/infra/queue"
)

type EnquireInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Consent bool   `json:"consent"`
}

type EnquireOutput struct {
	LeadID  string `json:"leadId"`
	Message string `json:"message"`
}

// EnquireUseCase persists a call request and dispatches the outbound call.
type EnquireUseCase struct {
	Repo               LeadRepository
	Dispatcher         *CallDispatcher
	Events             EventPublisherInterface
	WebhookBase        string
	DefaultCountryCode string
}

func NewEnquireUseCase(
	repo LeadRepository,
	dispatcher *CallDispatcher,
	events EventPublisherInterface,
	webhookBase string,
	defaultCountryCode string,
) *EnquireUseCase {
	return &EnquireUseCase{
		Repo:               repo,
		Dispatcher:         dispatcher,
		Events:             events,
		WebhookBase:        webhookBase,
		DefaultCountryCode: defaultCountryCode,
	}
}

func (uc *EnquireUseCase) Execute(ctx context.Context, input EnquireInput) (*EnquireOutput, error) {
	if strings.TrimSpace(input.Phone) == "" {
		return nil, &ValidationError{"phone", "is required"}
	}
	if !input.Consent {
		return nil, &ValidationError{"consent", "must be provided to receive a call"}
	}

	phone, err := entity.NormalizePhone(input.Phone, uc.DefaultCountryCode)
	if err != nil {
		return nil, &ValidationError{"phone", "must be a valid phone number"}
	}

	lead := entity.NewLead(strings.TrimSpace(input.Name), phone)
	if err := uc.Repo.Create(ctx, lead); err != nil {
		return nil, &StorageError{Op: "create", Err: err}
	}

	if err := dispatchAndRecord(ctx, uc.Repo, uc.Dispatcher, uc.Events, uc.WebhookBase, lead, "enquire"); err != nil {
		return nil, &DispatchError{LeadID: lead.LeadID, Err: err}
	}

	return &EnquireOutput{
		LeadID:  lead.LeadID,
		Message: "Call queued - we will try to reach you in a few minutes.",
	}, nil
}

// dispatchAndRecord runs the retry loop and persists the outcome. The lead
// already exists at this point: on failure it survives as call_failed with
// the error message attached, there is no rollback of the created record.
func dispatchAndRecord(
	ctx context.Context,
	repo LeadRepository,
	dispatcher *CallDispatcher,
	events EventPublisherInterface,
	webhookBase string,
	lead *entity.Lead,
	origin string,
) error {
	result, err := dispatcher.Dispatch(ctx, CallRequest{
		To:         lead.Phone,
		Context:    CallContext{LeadID: lead.LeadID, Name: lead.Name},
		WebhookURL: webhookBase + "/webhook",
	})
	if err != nil {
		status := entity.StatusCallFailed
		message := err.Error()
		if _, updErr := repo.Update(ctx, lead.LeadID, entity.LeadUpdate{
			Status:       &status,
			ErrorMessage: &message,
		}); updErr != nil {
			log.Printf("failed to record dispatch failure for lead %s: %v", lead.LeadID, updErr)
		}
		return err
	}

	status := entity.StatusCallQueued
	if _, err := repo.Update(ctx, lead.LeadID, entity.LeadUpdate{
		Status:         &status,
		ProviderCallID: &result.CallID,
	}); err != nil {
		// The call is already in flight; the caller still sees a failure.
		return &StorageError{Op: "update", Err: err}
	}

	if events != nil {
		evt := queue.CallEventPayload{
			LeadID:    lead.LeadID,
			EventType: "call.dispatched",
			Status:    entity.StatusCallQueued,
			Provider:  dispatcher.Provider.Name(),
			CallID:    result.CallID,
			Origin:    origin,
		}
		if err := events.PublishCallEvent(ctx, evt); err != nil {
			log.Printf("failed to publish call event for lead %s: %v", lead.LeadID, err)
		}
	}
	return nil
}
