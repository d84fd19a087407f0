package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/news-api/internal/application/role"
)

// RoleHandler lists the fixed roles.
type RoleHandler struct {
	svc role.Service
}

func NewRoleHandler(svc role.Service) *RoleHandler { return &RoleHandler{svc: svc} }

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roles)
}

func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	rl, err := h.svc.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rl)
}
