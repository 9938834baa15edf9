package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/candleco/callback-service/internal/infra/http/middleware"
	"github.com/candleco/callback-service/internal/usecase"
)

type AdminHandler struct {
	Repo     usecase.LeadRepository
	Retry    *usecase.RetryCallUseCase
	Provider string
}

func NewAdminHandler(repo usecase.LeadRepository, retry *usecase.RetryCallUseCase, provider string) *AdminHandler {
	return &AdminHandler{Repo: repo, Retry: retry, Provider: provider}
}

func (h *AdminHandler) HandleListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Repo.List(r.Context())
	if err != nil {
		log.Printf("failed to list leads: %v", err)
		writeError(w, http.StatusInternalServerError, "Unable to list leads.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "leads": leads})
}

func (h *AdminHandler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadId")

	output, err := h.Retry.Execute(r.Context(), leadID)
	if err != nil {
		if errors.Is(err, usecase.ErrLeadNotFound) {
			writeError(w, http.StatusNotFound, "Lead not found")
			return
		}
		var dispatchErr *usecase.DispatchError
		if errors.As(err, &dispatchErr) {
			log.Printf("failed to retry call for lead %s: %v", leadID, dispatchErr.Err)
			middleware.RecordCallDispatched(h.Provider, "failed")
			writeError(w, http.StatusBadGateway, dispatchErr.Err.Error())
			return
		}
		log.Printf("failed to retry call for lead %s: %v", leadID, err)
		writeError(w, http.StatusInternalServerError, "Unable to retry call.")
		return
	}

	middleware.RecordCallDispatched(h.Provider, "success")
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"leadId":  output.LeadID,
		"message": output.Message,
	})
}
