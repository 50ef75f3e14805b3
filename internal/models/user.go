package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDB represents a user record in the database.
type UserDB struct {
	UserID       uuid.UUID  `json:"id" db:"user_id"`                 // Primary key
	Email        string     `json:"email" db:"email"`                // Unique email
	Username     string     `json:"username" db:"username"`          // Unique username
	PasswordHash string     `json:"-" db:"password_hash"`            // Hashed password, never serialized
	IsActive     bool       `json:"is_active" db:"is_active"`        // Deactivated accounts cannot log in
	IsVerified   bool       `json:"is_verified" db:"is_verified"`    // Email verification flag
	Role         string     `json:"role" db:"role"`                  // Authorization role, default "user"
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`      // Creation timestamp
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`      // Last update timestamp
	LastLoginAt  *time.Time `json:"last_login_at" db:"last_login_at"` // Set on successful login
}

// User is the public representation of a user returned by the API.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Public converts a database record to its API representation.
func (u *UserDB) Public() User {
	return User{
		ID:        u.UserID,
		Email:     u.Email,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}

// AuthUser is the trimmed user representation embedded in
// authentication responses.
type AuthUser struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
}

// AuthPublic converts a database record to the representation returned
// by register and login.
func (u *UserDB) AuthPublic() AuthUser {
	return AuthUser{
		ID:       u.UserID,
		Email:    u.Email,
		Username: u.Username,
	}
}
