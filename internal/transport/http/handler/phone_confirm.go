package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/news-api/internal/application/auth"
)

// PhoneConfirmHandler handles phone confirmation flow endpoints.
type PhoneConfirmHandler struct {
	svc auth.Service
}

func NewPhoneConfirmHandler(svc auth.Service) *PhoneConfirmHandler {
	return &PhoneConfirmHandler{svc: svc}
}

func (h *PhoneConfirmHandler) Action(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	switch chi.URLParam(r, "action") {
	case "request":
		if err := h.svc.RequestPhoneConfirmation(r.Context(), p); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "confirmation SMS sent"})
	case "validate-code":
		var body struct {
			Code string `json:"code" validate:"required,numeric"`
		}
		if !decodeAndValidate(w, r, &body) {
			return
		}
		if err := h.svc.ValidatePhoneCode(r.Context(), p, body.Code); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "phone confirmed"})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
