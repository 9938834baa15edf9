package exotel

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
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

const providerName = "exotel"

// Client places calls through the Exotel Calls/connect API. Requests are
// form-encoded with basic auth (API key as user, token as password); the
// lead context rides along as a JSON CustomField and comes back verbatim in
// status callbacks.
type Client struct {
	cfg   config.ExotelConfig
	http  *http.Client
	calls *calllog.Logger
}

func NewClient(cfg config.ExotelConfig, calls *calllog.Logger) *Client {
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
		return nil, &usecase.ConfigError{Provider: providerName, Key: "EXOTEL_ACCOUNT_SID"}
	}
	if c.cfg.APIKey == "" {
		return nil, &usecase.ConfigError{Provider: providerName, Key: "EXOTEL_API_KEY"}
	}
	if c.cfg.APIToken == "" {
		return nil, &usecase.ConfigError{Provider: providerName, Key: "EXOTEL_API_TOKEN"}
	}
	if c.cfg.ExophoneNumber == "" {
		return nil, &usecase.ConfigError{Provider: providerName, Key: "EXOTEL_EXOPHONE_NUMBER"}
	}
	if req.To == "" {
		return nil, fmt.Errorf("destination phone number (to) is required")
	}

	from := req.From
	if from == "" {
		from = c.cfg.ExophoneNumber
	}

	form := url.Values{}
	form.Set("From", from)
	form.Set("To", req.To)
	form.Set("CallerId", from)

	// A call flow URL takes precedence over a flow configured in the
	// Exotel dashboard.
	if c.cfg.CallFlowURL != "" {
		form.Set("Url", c.cfg.CallFlowURL)
	} else if c.cfg.FlowID != "" {
		form.Set("FlowId", c.cfg.FlowID)
	}

	if req.WebhookURL != "" {
		form.Set("StatusCallback", req.WebhookURL)
	}

	if req.Context.LeadID != "" {
		custom, err := json.Marshal(req.Context)
		if err != nil {
			return nil, err
		}
		form.Set("CustomField", string(custom))
	}

	return form, nil
}

func (c *Client) CreateCall(ctx context.Context, req usecase.CallRequest) (*usecase.CallResult, error) {
	form, err := c.buildPayload(req)
	if err != nil {
		return nil, err
	}

	apiURL := fmt.Sprintf("%s/v1/Accounts/%s/Calls/connect", c.cfg.BaseURL, c.cfg.AccountSID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(c.cfg.APIKey, c.cfg.APIToken)
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
		message := response.errorMessage()
		if message == "" {
			message = fmt.Sprintf("exotel rejected the call (status %d)", resp.StatusCode)
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

// VerifyWebhookSignature checks the HMAC-SHA256 of the raw body against the
// signature header. Two deliberately permissive paths: no secret configured
// accepts everything (development default), and a missing header is
// accepted too because Exotel only signs callbacks when the dashboard says
// so.
func (c *Client) VerifyWebhookSignature(r *http.Request, rawBody []byte) bool {
	if c.cfg.WebhookSecret == "" {
		return true
	}

	header := r.Header.Get("X-Exotel-Signature")
	if header == "" {
		header = r.Header.Get("X-Exotel-Webhook-Signature")
	}
	if header == "" {
		header = r.Header.Get("X-Hub-Signature-256")
	}
	if header == "" {
		return true
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
