package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrInvalidCredentials never says which of username or password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidCode covers a missing, expired and mismatched code alike.
	ErrInvalidCode = errors.New("invalid or expired verification code")
	// ErrDelivery means a code was stored but the notification could not be sent.
	ErrDelivery = errors.New("notification delivery failed")
	// ErrTokenIssuance means the token collaborator failed after a successful second factor.
	ErrTokenIssuance = errors.New("token issuance failed")
)
