package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Lead status lifecycle. queued and call_queued are set by the intake/retry
// path; everything else is derived from provider webhooks. dnc is terminal
// and reachable from any state via consent withdrawal.
const (
	StatusQueued     = "queued"
	StatusCallQueued = "call_queued"

	StatusCallCreated = "call_created"
	StatusRinging     = "ringing"
	StatusInProgress  = "in_progress"
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
	StatusBusy        = "busy"
	StatusNoAnswer    = "no_answer"
	StatusCanceled    = "canceled"

	StatusCallFailed = "call_failed"
	StatusDNC        = "dnc"
)

// DefaultName is used when the enquiry form left the name blank.
const DefaultName = "Guest"

// LeadEvent is one entry of the append-only webhook history.
type LeadEvent struct {
	ReceivedAt string          `json:"receivedAt"`
	EventType  string          `json:"eventType"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type Lead struct {
	LeadID           string `json:"leadId"`
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Consent          bool   `json:"consent"`
	ConsentTimestamp string `json:"consentTimestamp,omitempty"`
	Status           string `json:"status"`
	CreatedAt        string `json:"createdAt"`
	UpdatedAt        string `json:"updatedAt"`

	Events []LeadEvent `json:"events"`

	// Filled opportunistically by webhook processing.
	ProviderCallID    string `json:"providerCallId,omitempty"`
	Transcription     string `json:"transcription,omitempty"`
	RecordingURL      string `json:"recordingUrl,omitempty"`
	CallDuration      string `json:"callDuration,omitempty"`
	ErrorMessage      string `json:"errorMessage,omitempty"`
	InterestedContact string `json:"interestedContact,omitempty"`
}

// NewLead builds a fresh lead with consent already confirmed by the caller.
func NewLead(name, phone string) *Lead {
	now := time.Now().UTC().Format(time.RFC3339)
	if name == "" {
		name = DefaultName
	}
	return &Lead{
		LeadID:           uuid.New().String(),
		Name:             name,
		Phone:            phone,
		Consent:          true,
		ConsentTimestamp: now,
		Status:           StatusQueued,
		CreatedAt:        now,
		UpdatedAt:        now,
		Events:           []LeadEvent{},
	}
}

// LeadUpdate is a typed partial update. Only non-nil fields are written;
// each store backend turns this into its own atomic field merge and stamps
// updatedAt itself.
type LeadUpdate struct {
	Status            *string
	Consent           *bool
	ProviderCallID    *string
	Transcription     *string
	RecordingURL      *string
	CallDuration      *string
	ErrorMessage      *string
	InterestedContact *string
}

// IsZero reports whether the update carries no fields at all.
func (u LeadUpdate) IsZero() bool {
	return u.Status == nil && u.Consent == nil && u.ProviderCallID == nil &&
		u.Transcription == nil && u.RecordingURL == nil && u.CallDuration == nil &&
		u.ErrorMessage == nil && u.InterestedContact == nil
}

// Apply merges the set fields into the lead in place.
func (u LeadUpdate) Apply(l *Lead) {
	if u.Status != nil {
		l.Status = *u.Status
	}
	if u.Consent != nil {
		l.Consent = *u.Consent
	}
	if u.ProviderCallID != nil {
		l.ProviderCallID = *u.ProviderCallID
	}
	if u.Transcription != nil {
		l.Transcription = *u.Transcription
	}
	if u.RecordingURL != nil {
		l.RecordingURL = *u.RecordingURL
	}
	if u.CallDuration != nil {
		l.CallDuration = *u.CallDuration
	}
	if u.ErrorMessage != nil {
		l.ErrorMessage = *u.ErrorMessage
	}
	if u.InterestedContact != nil {
		l.InterestedContact = *u.InterestedContact
	}
}
