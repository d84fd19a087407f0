package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/news-api/internal/application/user"
	"github.com/news-api/internal/domain"
)

// UserHandler handles user endpoints.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	users, next, err := h.svc.List(r.Context(), limit, r.URL.Query().Get("cursor"))
	if err != nil {
		httpError(w, err)
		return
	}
	safe := make([]*SafeUser, len(users))
	for i := range users {
		safe[i] = toSafeUser(&users[i])
	}
	writeJSON(w, http.StatusOK, UserPageEnvelope{Data: safe, NextCursor: next})
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	u, err := h.svc.Profile(r.Context(), p)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSafeUser(u))
}

// Get returns the full record to the user themself and admins, and the
// public view to anyone else.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	targetID := chi.URLParam(r, "id")
	u, err := h.svc.Get(r.Context(), targetID)
	if err != nil {
		httpError(w, err)
		return
	}
	if p.UserID == targetID || p.IsAdmin() {
		writeJSON(w, http.StatusOK, toSafeUser(u))
		return
	}
	writeJSON(w, http.StatusOK, toPublicUser(u))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req domain.UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	u, err := h.svc.Update(r.Context(), p, chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSafeUser(u))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "user deleted"})
}

func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req domain.ChangeRoleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	u, err := h.svc.ChangeRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSafeUser(u))
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req domain.ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.svc.ChangePassword(r.Context(), p.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password changed"})
}
