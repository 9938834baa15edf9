package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/candleco/callback-service/internal/infra/http/middleware"
	"github.com/candleco/callback-service/internal/usecase"
)

type WebhookHandler struct {
	Provider usecase.CallProvider
	UC       *usecase.ProcessWebhookUseCase
}

func NewWebhookHandler(provider usecase.CallProvider, uc *usecase.ProcessWebhookUseCase) *WebhookHandler {
	return &WebhookHandler{Provider: provider, UC: uc}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unable to read request body.")
		return
	}

	if !h.Provider.VerifyWebhookSignature(r, rawBody) {
		writeError(w, http.StatusUnauthorized, "Invalid webhook signature.")
		return
	}

	result, err := h.UC.Execute(r.Context(), rawBody, r.Header.Get("Content-Type"))
	if err != nil {
		log.Printf("failed to process webhook: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false})
		return
	}

	if result.Known {
		middleware.RecordWebhookEvent(result.EventType)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
