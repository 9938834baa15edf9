package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/candleco/callback-service/internal/config"
	"github.com/candleco/callback-service/internal/infra/calllog"
	"github.com/candleco/callback-service/internal/infra/http/handlers"
	"github.com/candleco/callback-service/internal/infra/http/middleware"
	"github.com/candleco/callback-service/internal/infra/integration/agentapi"
	"github.com/candleco/callback-service/internal/infra/integration/exotel"
	"github.com/candleco/callback-service/internal/infra/integration/twilio"
	"github.com/candleco/callback-service/internal/infra/mail"
	"github.com/candleco/callback-service/internal/infra/queue"
	"github.com/candleco/callback-service/internal/infra/store"
	"github.com/candleco/callback-service/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// 1. Storage
	repo, err := store.NewLeadRepository(cfg)
	if err != nil {
		log.Fatal(err)
	}

	// 2. Provider + audit log
	calls := calllog.New(cfg.CallLogPath)
	provider := newProvider(cfg, calls)
	dispatcher := usecase.NewCallDispatcher(provider)

	// 3. Optional fan-out: queue for ops consumers, email for warm leads
	var events usecase.EventPublisherInterface
	if cfg.RabbitURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitURL)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitMQ.Conn.Close()
		defer rabbitMQ.Ch.Close()
		events = queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	}

	var notifier usecase.NotifierInterface
	if cfg.SMTPHost != "" && cfg.NotifyEmail != "" {
		notifier = mail.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.NotifyEmail)
	}

	// 4. UseCases
	enquireUC := usecase.NewEnquireUseCase(repo, dispatcher, events, cfg.WebhookBase, cfg.DefaultCountryCode)
	retryUC := usecase.NewRetryCallUseCase(repo, dispatcher, events, cfg.WebhookBase)
	webhookUC := usecase.NewProcessWebhookUseCase(repo, events, notifier, calls)

	// 5. Handlers
	enquireHandler := handlers.NewEnquireHandler(enquireUC, provider.Name())
	webhookHandler := handlers.NewWebhookHandler(provider, webhookUC)
	adminHandler := handlers.NewAdminHandler(repo, retryUC, provider.Name())
	callFlowHandler := handlers.NewCallFlowHandler(calls)
	healthHandler := handlers.NewHealthHandler()

	limiter := middleware.NewRateLimiter(cfg.RateLimitMax, time.Minute)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)

	allowedOrigins := cfg.FrontendURLs
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.With(limiter.Limit).Post("/enquire", enquireHandler.Handle)
	r.Post("/webhook", webhookHandler.Handle)
	r.Post("/callflow", callFlowHandler.Handle)
	r.Get("/callflow", callFlowHandler.Handle)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(cfg.AdminToken))
		r.Get("/leads", adminHandler.HandleListLeads)
		r.Post("/retry/{leadId}", adminHandler.HandleRetry)
	})

	log.Printf("Server listening on port %s (provider=%s store=%s)", cfg.Port, provider.Name(), cfg.StoreBackend)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}

func newProvider(cfg *config.Config, calls *calllog.Logger) usecase.CallProvider {
	switch cfg.Provider {
	case "twilio":
		return twilio.NewClient(cfg.Twilio, calls)
	case "agentapi":
		return agentapi.NewClient(cfg.AgentAPI, calls)
	default:
		return exotel.NewClient(cfg.Exotel, calls)
	}
}
