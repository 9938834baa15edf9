package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type ExotelConfig struct {
	AccountSID     string
	APIKey         string
	APIToken       string
	ExophoneNumber string
	BaseURL        string
	CallFlowURL    string
	FlowID         string
	WebhookSecret  string
}

type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
	BaseURL     string
	CallFlowURL string
	RecordCalls bool
}

type AgentAPIConfig struct {
	APIURL        string
	APIKey        string
	CallerID      string
	SystemPrompt  string
	PromptInline  bool
	PromptFlowID  string
	VoiceID       string
	LanguageCode  string
	WebhookSecret string
}

type Config struct {
	Port               string
	Provider           string
	StoreBackend       string
	RedisAddr          string
	RedisPassword      string
	LeadsFilePath      string
	CallLogPath        string
	WebhookBase        string
	DefaultCountryCode string
	AdminToken         string
	RateLimitMax       int
	FrontendURLs       []string

	RabbitURL string

	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	NotifyEmail string

	Exotel   ExotelConfig
	Twilio   TwilioConfig
	AgentAPI AgentAPIConfig
}

// Load reads the environment once at startup. Components receive the parts
// of the Config they need; nothing reads os.Getenv afterwards.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := getEnv("PORT", "3000")

	cfg := &Config{
		Port:               port,
		Provider:           strings.ToLower(getEnv("CALL_PROVIDER", "exotel")),
		StoreBackend:       strings.ToLower(getEnv("STORE_BACKEND", "file")),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		LeadsFilePath:      getEnv("LEADS_FILE_PATH", "data/leads.json"),
		CallLogPath:        getEnv("CALL_LOG_PATH", "logs/calls.log"),
		WebhookBase:        strings.TrimRight(getEnv("WEBHOOK_PUBLIC_BASE", "http://localhost:"+port), "/"),
		DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "+91"),
		AdminToken:         getEnv("ADMIN_TOKEN", ""),
		RateLimitMax:       getEnvInt("RATE_LIMIT_MAX", 3),
		FrontendURLs:       splitCSV(getEnv("FRONTEND_URL", "")),

		RabbitURL: getEnv("RABBITMQ_URL", ""),

		SMTPHost:    getEnv("MAIL_HOST", ""),
		SMTPPort:    getEnvInt("MAIL_PORT", 587),
		SMTPUser:    getEnv("MAIL_USER", ""),
		SMTPPass:    getEnv("MAIL_PASS", ""),
		NotifyEmail: getEnv("NOTIFY_EMAIL", ""),

		Exotel: ExotelConfig{
			AccountSID:     getEnv("EXOTEL_ACCOUNT_SID", ""),
			APIKey:         getEnv("EXOTEL_API_KEY", ""),
			APIToken:       getEnv("EXOTEL_API_TOKEN", ""),
			ExophoneNumber: getEnv("EXOTEL_EXOPHONE_NUMBER", ""),
			BaseURL:        getEnv("EXOTEL_BASE_URL", "https://api.exotel.com"),
			CallFlowURL:    getEnv("EXOTEL_CALL_FLOW_URL", ""),
			FlowID:         getEnv("EXOTEL_FLOW_ID", ""),
			WebhookSecret:  getEnv("EXOTEL_WEBHOOK_SECRET", ""),
		},
		Twilio: TwilioConfig{
			AccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
			PhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
			BaseURL:     getEnv("TWILIO_BASE_URL", "https://api.twilio.com"),
			CallFlowURL: getEnv("TWILIO_CALL_FLOW_URL", ""),
			RecordCalls: strings.EqualFold(getEnv("TWILIO_RECORD_CALLS", "false"), "true"),
		},
		AgentAPI: AgentAPIConfig{
			APIURL:        getEnv("AGENT_API_URL", ""),
			APIKey:        getEnv("AGENT_API_KEY", ""),
			CallerID:      getEnv("CALLER_ID", ""),
			SystemPrompt:  getEnv("AGENT_SYSTEM_PROMPT", ""),
			PromptInline:  !strings.EqualFold(getEnv("USE_PROMPT_INLINE", "true"), "false"),
			PromptFlowID:  getEnv("PROMPT_FLOW_ID", ""),
			VoiceID:       getEnv("AGENT_VOICE_ID", ""),
			LanguageCode:  getEnv("AGENT_LANGUAGE_CODE", ""),
			WebhookSecret: getEnv("AGENT_WEBHOOK_SECRET", ""),
		},
	}

	switch cfg.Provider {
	case "exotel", "twilio", "agentapi":
	default:
		return nil, fmt.Errorf("CALL_PROVIDER must be exotel, twilio or agentapi (got %q)", cfg.Provider)
	}
	switch cfg.StoreBackend {
	case "redis", "file":
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be redis or file (got %q)", cfg.StoreBackend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := getEnv(key, "")
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
