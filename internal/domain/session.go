package domain

import "time"

type Session struct {
	SessionID string    `json:"id" dynamodbav:"session_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Enable    bool      `json:"enable" dynamodbav:"enable"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
	User      *User     `json:"user,omitempty" dynamodbav:"-"`
}

// Principal is the authenticated identity handed to the token issuer and to
// services that authorise by caller. Role is its sole authority.
type Principal struct {
	UserID   string
	Username string
	Role     string
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
