package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/news-api/internal/application/auth"
	"github.com/news-api/internal/domain"
)

// AuthHandler serves login, registration and the email code flows.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

type verifyLoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,numeric"`
}

type verifyResetRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,numeric"`
	NewPassword string `json:"new_password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	var req verifyLoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	res, err := h.svc.VerifyLogin(r.Context(), req.Email, req.Code)
	if err != nil {
		httpError(w, err)
		return
	}
	switch v := res.(type) {
	case *auth.SessionToken:
		writeJSON(w, http.StatusOK, v)
	default:
		httpError(w, domain.ErrInvalidCode)
	}
}

func (h *AuthHandler) VerifyReset(w http.ResponseWriter, r *http.Request) {
	var req verifyResetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.svc.VerifyReset(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: auth.MessagePasswordUpdate})
}

func (h *AuthHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.ResendCode(r.Context(), email); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: auth.MessageResent})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.RequestReset(r.Context(), email); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: auth.MessageIfAccount})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	u, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSafeUser(u))
}

// emailParam reads email from the query string, falling back to a JSON body.
func emailParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" && r.Body != nil {
		var body struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			email = strings.TrimSpace(body.Email)
		}
	}
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return "", false
	}
	return email, true
}
