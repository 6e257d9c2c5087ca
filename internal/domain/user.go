package domain

import (
	"time"
)

// GuestSubjectID is the sentinel subject for guest sessions. It has no
// backing user row; guest identities exist only inside issued tokens.
const GuestSubjectID = "guest"

// User represents a registered user in the system.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Roles        []string   `json:"roles"`
	IsBanned     bool       `json:"isBanned"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GuestUser returns the sentinel identity served for guest subjects on
// /auth/me. It is never persisted.
func GuestUser() *User {
	return &User{
		ID:       GuestSubjectID,
		Username: "Guest",
		Roles:    []string{RoleGuest},
	}
}

// RefreshToken represents a stored refresh token for a user session.
// Only the SHA-256 hash of the bearer string is persisted, never the raw value.
type RefreshToken struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expiresAt"`
	CreatedAt time.Time  `json:"createdAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}

// Active reports whether the token is usable at the given instant:
// not revoked and not past its expiry.
func (t *RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// TokenPair holds an access and refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
