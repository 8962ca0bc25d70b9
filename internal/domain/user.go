package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is a login that stays valid until it expires or is ended
type Session struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Claims is the JWT payload of a session token
type Claims struct {
	SessionID string `json:"sid"`
	UserID    int    `json:"uid"`
	UserName  string `json:"name"`
	UserEmail string `json:"email"`
	jwt.RegisteredClaims
}
