package handlers

import (
	"context"
	"net/http"

	"github.com/candleco/callback-service/internal/entity"
	"github.com/candleco/callback-service/internal/usecase"
)

// stubRepository is an in-memory usecase.LeadRepository for handler tests.
type stubRepository struct {
	leads map[string]*entity.Lead

	created  int
	appended int
	updated  int

	listErr   error
	createErr error
	appendErr error
	getErr    error
	updateErr error
}

func newStubRepository(leads ...*entity.Lead) *stubRepository {
	byID := map[string]*entity.Lead{}
	for _, lead := range leads {
		byID[lead.LeadID] = lead
	}
	return &stubRepository{leads: byID}
}

func (s *stubRepository) Create(ctx context.Context, lead *entity.Lead) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.leads[lead.LeadID]; ok {
		return usecase.ErrDuplicateLead
	}
	s.leads[lead.LeadID] = lead
	s.created++
	return nil
}

func (s *stubRepository) Update(ctx context.Context, leadID string, update entity.LeadUpdate) (*entity.Lead, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	lead, ok := s.leads[leadID]
	if !ok {
		return nil, usecase.ErrLeadNotFound
	}
	update.Apply(lead)
	s.updated++
	return lead, nil
}

func (s *stubRepository) AppendEvent(ctx context.Context, leadID string, event entity.LeadEvent) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	lead, ok := s.leads[leadID]
	if !ok {
		return usecase.ErrLeadNotFound
	}
	lead.Events = append(lead.Events, event)
	s.appended++
	return nil
}

func (s *stubRepository) List(ctx context.Context) ([]*entity.Lead, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	leads := make([]*entity.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		leads = append(leads, lead)
	}
	return leads, nil
}

func (s *stubRepository) GetByID(ctx context.Context, leadID string) (*entity.Lead, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	lead, ok := s.leads[leadID]
	if !ok {
		return nil, usecase.ErrLeadNotFound
	}
	return lead, nil
}

// stubProvider is a usecase.CallProvider with canned answers.
type stubProvider struct {
	callID     string
	callErr    error
	calls      int
	signatures bool
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) CreateCall(ctx context.Context, req usecase.CallRequest) (*usecase.CallResult, error) {
	s.calls++
	if s.callErr != nil {
		return nil, s.callErr
	}
	return &usecase.CallResult{CallID: s.callID}, nil
}

func (s *stubProvider) VerifyWebhookSignature(r *http.Request, rawBody []byte) bool {
	return s.signatures
}
