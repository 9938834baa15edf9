package usecase

import (
	"context"
	"errors"
)

// RetryCallUseCase re-dispatches the call for a lead already on file,
// triggered from the admin surface.
type RetryCallUseCase struct {
	Repo        LeadRepository
	Dispatcher  *CallDispatcher
	Events      EventPublisherInterface
	WebhookBase string
}

func NewRetryCallUseCase(
	repo LeadRepository,
	dispatcher *CallDispatcher,
	events EventPublisherInterface,
	webhookBase string,
) *RetryCallUseCase {
	return &RetryCallUseCase{
		Repo:        repo,
		Dispatcher:  dispatcher,
		Events:      events,
		WebhookBase: webhookBase,
	}
}

func (uc *RetryCallUseCase) Execute(ctx context.Context, leadID string) (*EnquireOutput, error) {
	lead, err := uc.Repo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, &StorageError{Op: "get", Err: err}
	}

	if err := dispatchAndRecord(ctx, uc.Repo, uc.Dispatcher, uc.Events, uc.WebhookBase, lead, "admin_retry"); err != nil {
		return nil, &DispatchError{LeadID: leadID, Err: err}
	}

	return &EnquireOutput{LeadID: leadID, Message: "Call retried successfully"}, nil
}
