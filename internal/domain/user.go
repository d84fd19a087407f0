package domain

import "time"

type User struct {
	UserID         string     `json:"id" dynamodbav:"user_id"`
	Username       string     `json:"username" dynamodbav:"username"`
	Email          string     `json:"email" dynamodbav:"email"`
	Phone          *string    `json:"phone" dynamodbav:"phone"`
	PasswordHash   string     `json:"-" dynamodbav:"password_hash"`
	Role           string     `json:"role" dynamodbav:"role"`
	FirstName      string     `json:"first_name" dynamodbav:"first_name"`
	LastName       string     `json:"last_name" dynamodbav:"last_name"`
	ProfilePic     *string    `json:"profile_pic" dynamodbav:"profile_pic"`
	PhoneConfirmed bool       `json:"phone_confirmed" dynamodbav:"phone_confirmed"`
	Enable         int        `json:"enable" dynamodbav:"enable"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt      time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// Active reports whether the account may sign in.
func (u *User) Active() bool { return u.Enable == 1 && u.DeletedAt == nil }

// Principal builds the authenticated representation of u.
func (u *User) Principal() Principal {
	return Principal{UserID: u.UserID, Username: u.Username, Role: u.Role}
}

type CreateUserRequest struct {
	Username  string  `json:"username" validate:"required,min=3,max=50,excludes=@"`
	Password  string  `json:"password" validate:"required,min=6,max=72"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone" validate:"omitempty,e164"`
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
}

type UpdateUserRequest struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Phone      *string `json:"phone" validate:"omitempty,e164"`
	ProfilePic *string `json:"profile_pic"`
	Password   *string `json:"password" validate:"omitempty,min=6,max=72"`
	Role       *string `json:"role"`   // admin only
	Enable     *int    `json:"enable"` // admin only; 1 = enabled, 0 = disabled
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=ADMIN WRITER READER"`
}
