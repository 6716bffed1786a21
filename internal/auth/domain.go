package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are carried by every admin bearer token. The subject is the admin email.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Token is an issued bearer token.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Credentials is the single admin account.
type Credentials struct {
	Email        string
	PasswordHash string
}
