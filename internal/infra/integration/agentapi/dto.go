package agentapi

import "github.com/candleco/callback-service/internal/usecase"

type createCallRequest struct {
	To         string              `json:"to"`
	From       string              `json:"from"`
	Context    usecase.CallContext `json:"context"`
	WebhookURL string              `json:"webhook_url"`

	Messages []message `json:"messages,omitempty"`
	FlowID   string    `json:"flow_id,omitempty"`

	VoiceID      string `json:"voice_id,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type createCallResponse struct {
	ID       string `json:"id"`
	CallID   string `json:"call_id"`
	CallIDV2 string `json:"callId"`
	Message  string `json:"message"`
	Error    string `json:"error"`
}

func (r *createCallResponse) callID() string {
	if r.ID != "" {
		return r.ID
	}
	if r.CallID != "" {
		return r.CallID
	}
	return r.CallIDV2
}

func (r *createCallResponse) errorText() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Error
}
