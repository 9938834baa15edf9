package twilio

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/candleco/callback-service/internal/config"
	"github.com/candleco/callback-service/internal/infra/calllog"
	"github.com/candleco/callback-service/internal/usecase"
)

const providerName = "twilio"

// Static TwiML used when no call flow URL is configured. The real flow
// lives behind TWILIO_CALL_FLOW_URL; this only keeps the call legal.
const fallbackTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response><Say>Hello</Say><Hangup /></Response>`

var statusCallbackEvents = []string{
	"initiated", "ringing", "answered", "completed",
	"busy", "failed", "no-answer", "canceled",
}

type Client struct {
	cfg   config.TwilioConfig
	http  *http.Client
	calls *calllog.Logger
}

func NewClient(cfg config.TwilioConfig, calls *calllog.Logger) *Client {
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: 15 * time.Second},
		calls: calls,
	}
}

func (c *Client) Name() string {
	return providerName
}

func (c *Client) buildPayload(req usecase.CallRequest) (url.Values, error) {
	if c.cfg.AccountSID == "" {
		return nil, &usecase.ConfigError{Provider: providerName, Key: "TWILIO_ACCOUNT_SID"}
	}
	if c.cfg.AuthToken == "" {
		return nil, &usecase.ConfigError{Provider: providerName, Key: "TWILIO_AUTH_TOKEN"}
	}
	if c.cfg.PhoneNumber == "" {
		return nil, &usecase.ConfigError{Provider: providerName, Key: "TWILIO_PHONE_NUMBER"}
	}
	if req.To == "" {
		return nil, fmt.Errorf("destination phone number (to) is required")
	}

	from := req.From
	if from == "" {
		from = c.cfg.PhoneNumber
	}

	form := url.Values{}
	form.Set("From", from)
	form.Set("To", req.To)

	if c.cfg.CallFlowURL != "" {
		form.Set("Url", c.cfg.CallFlowURL)
	} else {
		form.Set("Twiml", fallbackTwiML)
	}

	if req.WebhookURL != "" {
		form.Set("StatusCallback", req.WebhookURL)
		for _, event := range statusCallbackEvents {
			form.Add("StatusCallbackEvent", event)
		}
		form.Set("StatusCallbackMethod", "POST")
	}

	if c.cfg.RecordCalls {
		form.Set("Record", "true")
		if req.WebhookURL != "" {
			form.Set("RecordingStatusCallback", req.WebhookURL+"?event=recording")
		}
	}

	return form, nil
}

func (c *Client) CreateCall(ctx context.Context, req usecase.CallRequest) (*usecase.CallResult, error) {
	form, err := c.buildPayload(req)
	if err != nil {
		return nil, err
	}

	apiURL := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", c.cfg.BaseURL, c.cfg.AccountSID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logError(req, form, err.Error())
		return nil, &usecase.ProviderError{Provider: providerName, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var response callResponse
	_ = json.Unmarshal(body, &response)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := response.errorText()
		if message == "" {
			message = fmt.Sprintf("twilio rejected the call (status %d)", resp.StatusCode)
		}
		c.logError(req, form, message)
		return nil, &usecase.ProviderError{Provider: providerName, Message: message}
	}

	c.calls.Log(calllog.Entry{
		Type:     "call.create",
		Provider: providerName,
		LeadID:   req.Context.LeadID,
		Request:  form,
		Response: json.RawMessage(body),
	})

	return &usecase.CallResult{CallID: response.callID(), Raw: body}, nil
}

func (c *Client) logError(req usecase.CallRequest, form url.Values, message string) {
	c.calls.Log(calllog.Entry{
		Type:     "call.error",
		Provider: providerName,
		LeadID:   req.Context.LeadID,
		Request:  form,
		Error:    message,
	})
}

// VerifyWebhookSignature checks X-Twilio-Signature: HMAC-SHA1 over the full
// request URL concatenated with the sorted, form-encoded parameters, base64
// encoded. Twilio signs every callback, so a missing header is a rejection.
func (c *Client) VerifyWebhookSignature(r *http.Request, rawBody []byte) bool {
	if c.cfg.AuthToken == "" {
		return true
	}

	header := r.Header.Get("X-Twilio-Signature")
	if header == "" {
		return false
	}
	actual, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return false
	}

	mac := hmac.New(sha1.New, []byte(c.cfg.AuthToken))
	mac.Write([]byte(canonicalString(r, rawBody)))
	return hmac.Equal(actual, mac.Sum(nil))
}

func canonicalString(r *http.Request, rawBody []byte) string {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	fullURL := scheme + "://" + r.Host + r.URL.RequestURI()

	params := url.Values{}
	if form, err := url.ParseQuery(string(rawBody)); err == nil {
		for key := range form {
			params.Set(key, form.Get(key))
		}
	}
	for key := range r.URL.Query() {
		params.Set(key, r.URL.Query().Get(key))
	}

	// url.Values.Encode sorts by key, matching the signing side.
	return fullURL + params.Encode()
}
