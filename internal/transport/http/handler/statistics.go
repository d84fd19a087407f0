package handler

import (
	"net/http"

	"github.com/news-api/internal/application/statistics"
)

type StatisticsHandler struct {
	svc statistics.Service
}

func NewStatisticsHandler(svc statistics.Service) *StatisticsHandler {
	return &StatisticsHandler{svc: svc}
}

func (h *StatisticsHandler) Admin(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Admin(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *StatisticsHandler) Writer(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	st, err := h.svc.Writer(r.Context(), p)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
