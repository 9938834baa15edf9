package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/candleco/callback-service/internal/infra/http/middleware"
	"github.com/candleco/callback-service/internal/usecase"
)

type EnquireHandler struct {
	UC       *usecase.EnquireUseCase
	Provider string
}

func NewEnquireHandler(uc *usecase.EnquireUseCase, provider string) *EnquireHandler {
	return &EnquireHandler{UC: uc, Provider: provider}
}

func (h *EnquireHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.EnquireInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	output, err := h.UC.Execute(r.Context(), input)
	if err != nil {
		var validationErr *usecase.ValidationError
		var dispatchErr *usecase.DispatchError
		switch {
		case errors.As(err, &validationErr):
			writeError(w, http.StatusBadRequest, validationMessage(validationErr))
		case errors.As(err, &dispatchErr):
			log.Printf("unable to trigger call for lead %s: %v", dispatchErr.LeadID, dispatchErr.Err)
			middleware.RecordCallDispatched(h.Provider, "failed")
			middleware.RecordIntegrationError(h.Provider)
			writeError(w, http.StatusBadGateway, "We could not start the call. Please try again shortly.")
		default:
			log.Printf("failed to persist lead: %v", err)
			writeError(w, http.StatusInternalServerError, "Unable to save lead at this time.")
		}
		return
	}

	middleware.RecordCallDispatched(h.Provider, "success")
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"leadId":  output.LeadID,
		"message": output.Message,
	})
}

func validationMessage(err *usecase.ValidationError) string {
	switch err.Field {
	case "phone":
		if err.Message == "is required" {
			return "Phone number is required."
		}
		return "Please provide a valid phone number."
	case "consent":
		return "Consent must be provided to receive a call."
	default:
		return err.Error()
	}
}
