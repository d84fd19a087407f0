package domain

import "time"

// VerificationRecord is the single outstanding one-time code for an identity
// (an email address or a phone number). Issuing a new code replaces it.
type VerificationRecord struct {
	Identity  string    `json:"identity"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the record is no longer acceptable at now.
// A record is still valid at exactly ExpiresAt.
func (v *VerificationRecord) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
