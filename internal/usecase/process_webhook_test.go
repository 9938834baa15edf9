package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/candleco/callback-service/internal/entity"
	"github.com/candleco/callback-service/internal/infra/queue"
)

func newWebhookUC(repo *MockLeadRepository) *ProcessWebhookUseCase {
	return NewProcessWebhookUseCase(repo, nil, nil, nil)
}

func TestProcessWebhookNoLeadID(t *testing.T) {
	repo := new(MockLeadRepository)
	uc := newWebhookUC(repo)

	body := []byte(`{"CallStatus":"completed"}`)
	result, err := uc.Execute(context.Background(), body, "application/json")

	assert.NoError(t, err)
	assert.False(t, result.Known)
	repo.AssertNotCalled(t, "AppendEvent", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessWebhookUnknownLead(t *testing.T) {
	repo := new(MockLeadRepository)
	uc := newWebhookUC(repo)

	repo.On("GetByID", mock.Anything, "lead-404").Return(nil, ErrLeadNotFound).Once()

	body := []byte(`{"leadId":"lead-404","CallStatus":"completed"}`)
	result, err := uc.Execute(context.Background(), body, "application/json")

	assert.NoError(t, err)
	assert.False(t, result.Known)
	assert.Equal(t, "lead-404", result.LeadID)
	repo.AssertNotCalled(t, "AppendEvent", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessWebhookCompletedCall(t *testing.T) {
	repo := new(MockLeadRepository)
	uc := newWebhookUC(repo)

	lead := entity.NewLead("Priya", "+919876543210")
	repo.On("GetByID", mock.Anything, lead.LeadID).Return(lead, nil).Once()

	repo.On("AppendEvent", mock.Anything, lead.LeadID, mock.MatchedBy(func(e entity.LeadEvent) bool {
		return e.EventType == "call.completed" && e.ReceivedAt != "" && len(e.Payload) > 0
	})).Return(nil).Once()

	repo.On("Update", mock.Anything, lead.LeadID, mock.MatchedBy(func(u entity.LeadUpdate) bool {
		return u.Status != nil && *u.Status == entity.StatusCompleted &&
			u.ProviderCallID != nil && *u.ProviderCallID == "exo-call-9" &&
			u.RecordingURL != nil && *u.RecordingURL == "https://recordings.example.com/9.mp3" &&
			u.CallDuration != nil && *u.CallDuration == "42"
	})).Return(lead, nil).Once()

	payload := map[string]any{
		"CallStatus":   "completed",
		"CallSid":      "exo-call-9",
		"RecordingUrl": "https://recordings.example.com/9.mp3",
		"Duration":     "42",
		"CustomField":  `{"leadId":"` + lead.LeadID + `"}`,
	}
	body, _ := json.Marshal(payload)

	result, err := uc.Execute(context.Background(), body, "application/json")

	assert.NoError(t, err)
	assert.True(t, result.Known)
	assert.Equal(t, "call.completed", result.EventType)
	repo.AssertExpectations(t)
}

func TestProcessWebhookFormEncodedBody(t *testing.T) {
	repo := new(MockLeadRepository)
	uc := newWebhookUC(repo)

	lead := entity.NewLead("Priya", "+919876543210")
	repo.On("GetByID", mock.Anything, lead.LeadID).Return(lead, nil).Once()
	repo.On("AppendEvent", mock.Anything, lead.LeadID, mock.MatchedBy(func(e entity.LeadEvent) bool {
		return e.EventType == "call.busy"
	})).Return(nil).Once()
	repo.On("Update", mock.Anything, lead.LeadID, mock.MatchedBy(func(u entity.LeadUpdate) bool {
		return u.Status != nil && *u.Status == entity.StatusBusy
	})).Return(lead, nil).Once()

	body := []byte("CallStatus=busy&leadId=" + lead.LeadID)

	result, err := uc.Execute(context.Background(), body, "application/x-www-form-urlencoded")

	assert.NoError(t, err)
	assert.True(t, result.Known)
	assert.Equal(t, "call.busy", result.EventType)
	repo.AssertExpectations(t)
}

func TestProcessWebhookConsentWithdrawn(t *testing.T) {
	repo := new(MockLeadRepository)
	uc := newWebhookUC(repo)

	lead := entity.NewLead("Priya", "+919876543210")
	repo.On("GetByID", mock.Anything, lead.LeadID).Return(lead, nil).Once()
	repo.On("AppendEvent", mock.Anything, lead.LeadID, mock.Anything).Return(nil).Once()
	repo.On("Update", mock.Anything, lead.LeadID, mock.MatchedBy(func(u entity.LeadUpdate) bool {
		return u.Status != nil && *u.Status == entity.StatusDNC &&
			u.Consent != nil && !*u.Consent
	})).Return(lead, nil).Once()

	body := []byte(`{"event":"consent_withdrawn","context":{"leadId":"` + lead.LeadID + `"}}`)

	result, err := uc.Execute(context.Background(), body, "application/json")

	assert.NoError(t, err)
	assert.True(t, result.Known)
	assert.Equal(t, "consent_withdrawn", result.EventType)
	repo.AssertExpectations(t)
}

func TestProcessWebhookTruncatesTranscription(t *testing.T) {
	repo := new(MockLeadRepository)
	uc := newWebhookUC(repo)

	lead := entity.NewLead("Priya", "+919876543210")
	long := strings.Repeat("क", 2500)

	repo.On("GetByID", mock.Anything, lead.LeadID).Return(lead, nil).Once()
	repo.On("AppendEvent", mock.Anything, lead.LeadID, mock.Anything).Return(nil).Once()
	repo.On("Update", mock.Anything, lead.LeadID, mock.MatchedBy(func(u entity.LeadUpdate) bool {
		if u.Transcription == nil {
			return false
		}
		runes := []rune(*u.Transcription)
		return len(runes) == 2000
	})).Return(lead, nil).Once()

	payload := map[string]any{
		"event":         "call.completed",
		"leadId":        lead.LeadID,
		"transcription": map[string]any{"text": long},
	}
	body, _ := json.Marshal(payload)

	_, err := uc.Execute(context.Background(), body, "application/json")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestProcessWebhookAppendFailure(t *testing.T) {
	repo := new(MockLeadRepository)
	uc := newWebhookUC(repo)

	lead := entity.NewLead("Priya", "+919876543210")
	repo.On("GetByID", mock.Anything, lead.LeadID).Return(lead, nil).Once()
	repo.On("AppendEvent", mock.Anything, lead.LeadID, mock.Anything).
		Return(assert.AnError).Once()

	body := []byte(`{"event":"call.completed","leadId":"` + lead.LeadID + `"}`)

	_, err := uc.Execute(context.Background(), body, "application/json")

	var storeErr *StorageError
	assert.ErrorAs(t, err, &storeErr)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessWebhookInterestedContactNotifies(t *testing.T) {
	repo := new(MockLeadRepository)
	notifier := new(MockNotifier)
	events := new(MockEventPublisher)
	uc := NewProcessWebhookUseCase(repo, events, notifier, nil)

	lead := entity.NewLead("Priya", "+919876543210")
	repo.On("GetByID", mock.Anything, lead.LeadID).Return(lead, nil).Once()
	repo.On("AppendEvent", mock.Anything, lead.LeadID, mock.Anything).Return(nil).Once()
	repo.On("Update", mock.Anything, lead.LeadID, mock.Anything).Return(lead, nil).Once()
	events.On("PublishCallEvent", mock.Anything, mock.MatchedBy(func(p queue.CallEventPayload) bool {
		return p.Origin == "webhook" && p.EventType == "call.completed"
	})).Return(nil).Once()
	notifier.On("SendInterestedLead", "Priya", "+919876543210", "evenings after 6pm").
		Return(nil).Once()

	payload := map[string]any{
		"event":    "call.completed",
		"leadId":   lead.LeadID,
		"metadata": map[string]any{"interested_contact": "evenings after 6pm"},
	}
	body, _ := json.Marshal(payload)

	_, err := uc.Execute(context.Background(), body, "application/json")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestNormalizeProviderEvent(t *testing.T) {
	assert.Equal(t, "call.created", normalizeProviderEvent("queued"))
	assert.Equal(t, "call.no_answer", normalizeProviderEvent("no-answer"))
	assert.Equal(t, "call.completed", normalizeProviderEvent("COMPLETED"))
	// Unmapped values pass through verbatim.
	assert.Equal(t, "something_else", normalizeProviderEvent("something_else"))
}
