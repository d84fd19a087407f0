package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/news-api/internal/domain"
	"github.com/news-api/internal/pkg/validate"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SafeUser is the full user view returned to the user themself and admins.
type SafeUser struct {
	UserID         string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Phone          *string   `json:"phone,omitempty"`
	PhoneConfirmed bool      `json:"phone_confirmed"`
	Role           string    `json:"role"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	ProfilePic     *string   `json:"profile_pic,omitempty"`
	Enable         int       `json:"enable"`
	CreatedAt      time.Time `json:"created"`
}

// PublicUser omits contact details.
type PublicUser struct {
	UserID     string  `json:"id"`
	Username   string  `json:"username"`
	Role       string  `json:"role"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	ProfilePic *string `json:"profile_pic,omitempty"`
}

// SessionEnvelope wraps current-session responses.
type SessionEnvelope struct {
	Session *domain.Session `json:"session"`
	User    *SafeUser       `json:"user,omitempty"`
}

// UserPageEnvelope wraps cursor-paginated user listings.
type UserPageEnvelope struct {
	Data       []*SafeUser `json:"data"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func toSafeUser(u *domain.User) *SafeUser {
	if u == nil {
		return nil
	}
	return &SafeUser{
		UserID:         u.UserID,
		Username:       u.Username,
		Email:          u.Email,
		Phone:          u.Phone,
		PhoneConfirmed: u.PhoneConfirmed,
		Role:           u.Role,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ProfilePic:     u.ProfilePic,
		Enable:         u.Enable,
		CreatedAt:      u.CreatedAt,
	}
}

func toPublicUser(u *domain.User) *PublicUser {
	return &PublicUser{
		UserID:     u.UserID,
		Username:   u.Username,
		Role:       u.Role,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		ProfilePic: u.ProfilePic,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// It writes the 400/422 response itself and reports whether to continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

// httpError maps domain errors to status codes. Unknown errors are logged
// and reported as 500 without detail.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, domain.ErrInvalidCode):
		writeError(w, http.StatusBadRequest, "invalid or expired verification code")
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrDelivery):
		slog.Error("code delivery failed", "err", err)
		writeError(w, http.StatusBadGateway, "could not deliver verification code, please retry")
	default:
		slog.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
