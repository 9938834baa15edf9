package agentapi

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/candleco/callback-service/internal/config"
	"github.com/candleco/callback-service/internal/infra/calllog"
	"github.com/candleco/callback-service/internal/usecase"
)

const providerName = "agentapi"

const defaultGreeting = "Hello! I'm Maya from Candle & Co. Do you have a minute to talk about our candles?"

// Client talks to a JSON voice-agent API: Bearer auth, the conversation
// prompt inline or referenced by flow id, and a webhook URL for call
// lifecycle events.
type Client struct {
	cfg   config.AgentAPIConfig
	http  *http.Client
	calls *calllog.Logger
}

func NewClient(cfg config.AgentAPIConfig, calls *calllog.Logger) *Client {
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: 15 * time.Second},
		calls: calls,
	}
}

func (c *Client) Name() string {
	return providerName
}

func (c *Client) buildPayload(req usecase.CallRequest) (*createCallRequest, error) {
	if c.cfg.APIURL == "" {
		return nil, &usecase.ConfigError{Provider: providerName, Key: "AGENT_API_URL"}
	}
	if c.cfg.APIKey == "" {
		return nil, &usecase.ConfigError{Provider: providerName, Key: "AGENT_API_KEY"}
	}

	from := req.From
	if from == "" {
		from = c.cfg.CallerID
	}
	if from == "" {
		return nil, &usecase.ConfigError{Provider: providerName, Key: "CALLER_ID"}
	}
	if req.WebhookURL == "" {
		return nil, fmt.Errorf("webhook URL missing")
	}

	payload := &createCallRequest{
		To:           req.To,
		From:         from,
		Context:      req.Context,
		WebhookURL:   req.WebhookURL,
		VoiceID:      c.cfg.VoiceID,
		LanguageCode: c.cfg.LanguageCode,
	}

	if c.cfg.PromptInline {
		if c.cfg.SystemPrompt == "" {
			return nil, &usecase.ConfigError{Provider: providerName, Key: "AGENT_SYSTEM_PROMPT"}
		}
		payload.Messages = []message{
			{Role: "system", Content: c.cfg.SystemPrompt},
			{Role: "assistant", Content: defaultGreeting},
		}
	} else {
		if c.cfg.PromptFlowID == "" {
			return nil, &usecase.ConfigError{Provider: providerName, Key: "PROMPT_FLOW_ID"}
		}
		payload.FlowID = c.cfg.PromptFlowID
	}

	return payload, nil
}

func (c *Client) CreateCall(ctx context.Context, req usecase.CallRequest) (*usecase.CallResult, error) {
	payload, err := c.buildPayload(req)
	if err != nil {
		return nil, err
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logError(req, payload, err.Error())
		return nil, &usecase.ProviderError{Provider: providerName, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var response createCallResponse
	_ = json.Unmarshal(body, &response)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := response.errorText()
		if message == "" {
			message = fmt.Sprintf("agent api rejected the call (status %d)", resp.StatusCode)
		}
		c.logError(req, payload, message)
		return nil, &usecase.ProviderError{Provider: providerName, Message: message}
	}

	c.calls.Log(calllog.Entry{
		Type:     "call.create",
		Provider: providerName,
		LeadID:   req.Context.LeadID,
		Request:  payload,
		Response: json.RawMessage(body),
	})

	return &usecase.CallResult{CallID: response.callID(), Raw: body}, nil
}

func (c *Client) logError(req usecase.CallRequest, payload *createCallRequest, message string) {
	c.calls.Log(calllog.Entry{
		Type:     "call.error",
		Provider: providerName,
		LeadID:   req.Context.LeadID,
		Request:  payload,
		Error:    message,
	})
}

// VerifyWebhookSignature checks the HMAC-SHA256 of the raw body. The agent
// API signs every delivery, so a missing header is a rejection. No secret
// configured still accepts everything (development default).
func (c *Client) VerifyWebhookSignature(r *http.Request, rawBody []byte) bool {
	if c.cfg.WebhookSecret == "" {
		return true
	}

	header := r.Header.Get("X-Agent-Signature")
	if header == "" {
		header = r.Header.Get("X-Hub-Signature-256")
	}
	if header == "" {
		return false
	}

	sig := header
	if i := strings.IndexByte(header, '='); i >= 0 {
		sig = header[i+1:]
	}
	actual, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(c.cfg.WebhookSecret))
	mac.Write(rawBody)
	return hmac.Equal(actual, mac.Sum(nil))
}
