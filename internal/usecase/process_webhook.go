package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/candleco/callback-service/internal/entity"
	"github.com/candleco/callback-service/internal/infra/calllog"
	"github.com/candleco/callback-service/internal/infra/queue"
)

const maxTranscriptionLen = 2000

// providerEventMap normalizes the provider's raw call status vocabulary to
// the internal event taxonomy. Unmapped values pass through verbatim.
var providerEventMap = map[string]string{
	"queued":      "call.created",
	"ringing":     "call.ringing",
	"in-progress": "call.answered",
	"completed":   "call.completed",
	"failed":      "call.failed",
	"busy":        "call.busy",
	"no-answer":   "call.no_answer",
	"canceled":    "call.canceled",
}

// eventStatusMap derives the lead status from a normalized event type.
var eventStatusMap = map[string]string{
	"created":           entity.StatusCallCreated,
	"call.created":      entity.StatusCallCreated,
	"call.ringing":      entity.StatusRinging,
	"answered":          entity.StatusInProgress,
	"call.answered":     entity.StatusInProgress,
	"in-progress":       entity.StatusInProgress,
	"completed":         entity.StatusCompleted,
	"call.completed":    entity.StatusCompleted,
	"failed":            entity.StatusFailed,
	"call.failed":       entity.StatusFailed,
	"call.busy":         entity.StatusBusy,
	"call.no_answer":    entity.StatusNoAnswer,
	"call.canceled":     entity.StatusCanceled,
	"consent_withdrawn": entity.StatusDNC,
}

type WebhookResult struct {
	LeadID    string
	EventType string
	Known     bool
}

// ProcessWebhookUseCase reconciles one verified provider callback into the
// lead record: append to the event history first, then derive the partial
// status update. The append is unconditional; a failed update never undoes
// it.
type ProcessWebhookUseCase struct {
	Repo     LeadRepository
	Events   EventPublisherInterface
	Notifier NotifierInterface
	Calls    *calllog.Logger
}

func NewProcessWebhookUseCase(
	repo LeadRepository,
	events EventPublisherInterface,
	notifier NotifierInterface,
	calls *calllog.Logger,
) *ProcessWebhookUseCase {
	return &ProcessWebhookUseCase{
		Repo:     repo,
		Events:   events,
		Notifier: notifier,
		Calls:    calls,
	}
}

func (uc *ProcessWebhookUseCase) Execute(ctx context.Context, rawBody []byte, contentType string) (*WebhookResult, error) {
	payload := parseWebhookBody(rawBody, contentType)

	leadID := extractLeadID(payload)
	if leadID == "" {
		uc.Calls.Log(calllog.Entry{Type: "webhook.unknown_lead", Request: payload})
		return &WebhookResult{Known: false}, nil
	}

	lead, err := uc.Repo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			// Acknowledge anyway: a 4xx/5xx here would only trigger
			// provider-side retry storms against an id we will never know.
			uc.Calls.Log(calllog.Entry{Type: "webhook.unknown_lead", LeadID: leadID, Request: payload})
			return &WebhookResult{LeadID: leadID, Known: false}, nil
		}
		return nil, &StorageError{Op: "get", Err: err}
	}

	rawStatus := firstString(payload, "CallStatus", "Status", "event", "type")
	if rawStatus == "" {
		rawStatus = "unknown"
	}
	eventType := normalizeProviderEvent(rawStatus)

	payloadJSON, _ := json.Marshal(payload)
	event := entity.LeadEvent{
		ReceivedAt: time.Now().UTC().Format(time.RFC3339),
		EventType:  eventType,
		Payload:    payloadJSON,
	}
	if err := uc.Repo.AppendEvent(ctx, leadID, event); err != nil {
		return nil, &StorageError{Op: "append_event", Err: err}
	}

	update := deriveUpdates(eventType, payload)
	if !update.IsZero() {
		if _, err := uc.Repo.Update(ctx, leadID, update); err != nil {
			// The event is already on the history; log and acknowledge.
			log.Printf("failed to update lead %s from webhook: %v", leadID, err)
		}
	}

	if uc.Events != nil {
		evt := queue.CallEventPayload{
			LeadID:    leadID,
			EventType: eventType,
			Origin:    "webhook",
		}
		if update.Status != nil {
			evt.Status = *update.Status
		}
		if err := uc.Events.PublishCallEvent(ctx, evt); err != nil {
			log.Printf("failed to publish webhook event for lead %s: %v", leadID, err)
		}
	}

	if uc.Notifier != nil && update.InterestedContact != nil {
		if err := uc.Notifier.SendInterestedLead(lead.Name, lead.Phone, *update.InterestedContact); err != nil {
			log.Printf("failed to notify interested contact for lead %s: %v", leadID, err)
		}
	}

	uc.Calls.Log(calllog.Entry{Type: "webhook.event", LeadID: leadID, Response: eventType})
	return &WebhookResult{LeadID: leadID, EventType: eventType, Known: true}, nil
}

func normalizeProviderEvent(status string) string {
	if mapped, ok := providerEventMap[strings.ToLower(status)]; ok {
		return mapped
	}
	return status
}

// deriveUpdates builds the partial update for one normalized event,
// opportunistically pulling call metadata out of whichever of the known
// payload shapes is present.
func deriveUpdates(eventType string, payload map[string]any) entity.LeadUpdate {
	var update entity.LeadUpdate

	if status, ok := eventStatusMap[eventType]; ok {
		update.Status = &status
	}

	transcription := firstString(payload, "Transcription")
	if transcription == "" {
		transcription = nestedString(payload, "transcription", "text")
	}
	if transcription == "" {
		transcription = firstString(payload, "transcription", "transcript", "CallTranscript", "summary")
	}
	if transcription != "" {
		truncated := truncate(transcription, maxTranscriptionLen)
		update.Transcription = &truncated
	}

	if callID := firstString(payload, "CallSid", "Sid"); callID != "" {
		update.ProviderCallID = &callID
	}
	if recording := firstString(payload, "RecordingUrl", "Recording"); recording != "" {
		update.RecordingURL = &recording
	}
	if duration := firstString(payload, "Duration"); duration != "" {
		update.CallDuration = &duration
	}

	contact := nestedString(payload, "metadata", "interested_contact")
	if contact == "" {
		contact = nestedString(payload, "context", "interested_contact")
	}
	if contact == "" {
		contact = nestedString(payload, "notes", "contact_details")
	}
	if contact != "" {
		update.InterestedContact = &contact
	}

	if eventType == "consent_withdrawn" {
		consent := false
		update.Consent = &consent
	}

	return update
}

// parseWebhookBody decodes JSON bodies and falls back to form encoding,
// which is what Exotel and Twilio actually send for status callbacks.
func parseWebhookBody(rawBody []byte, contentType string) map[string]any {
	payload := map[string]any{}
	if strings.Contains(contentType, "application/x-www-form-urlencoded") {
		if values, err := url.ParseQuery(string(rawBody)); err == nil {
			for key := range values {
				payload[key] = values.Get(key)
			}
		}
		return payload
	}
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return map[string]any{}
	}
	return payload
}

// extractLeadID looks in the provider-specific locations: a context object,
// a direct field, or the JSON-encoded CustomField round-tripped through the
// provider.
func extractLeadID(payload map[string]any) string {
	if id := nestedString(payload, "context", "leadId"); id != "" {
		return id
	}
	if id := firstString(payload, "leadId"); id != "" {
		return id
	}

	switch custom := payload["CustomField"].(type) {
	case string:
		var fields map[string]any
		if err := json.Unmarshal([]byte(custom), &fields); err == nil {
			return firstString(fields, "leadId")
		}
	case map[string]any:
		return firstString(custom, "leadId")
	}
	return ""
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := stringValue(m[key]); s != "" {
			return s
		}
	}
	return ""
}

func nestedString(m map[string]any, outer, inner string) string {
	nested, ok := m[outer].(map[string]any)
	if !ok {
		return ""
	}
	return stringValue(nested[inner])
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
