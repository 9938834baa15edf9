package handlers

import (
	"net/http"

	"github.com/candleco/callback-service/internal/infra/calllog"
)

// Static call-flow response. The actual conversation is driven by the
// provider's own flow or the voice agent; this endpoint only satisfies
// providers that insist on fetching one.
const callFlowXML = `<?xml version="1.0" encoding="UTF-8"?>
<Response>
  <Play>https://example.com/greeting.mp3</Play>
  <Hangup />
</Response>`

type CallFlowHandler struct {
	Calls *calllog.Logger
}

func NewCallFlowHandler(calls *calllog.Logger) *CallFlowHandler {
	return &CallFlowHandler{Calls: calls}
}

func (h *CallFlowHandler) Handle(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	h.Calls.Log(calllog.Entry{
		Type: "callflow.request",
		Request: map[string]string{
			"callSid":     r.Form.Get("CallSid"),
			"from":        r.Form.Get("From"),
			"to":          r.Form.Get("To"),
			"status":      r.Form.Get("CallStatus"),
			"customField": r.Form.Get("CustomField"),
		},
	})

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(callFlowXML))
}
