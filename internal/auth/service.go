package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/laundrydesk/laundrydesk/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	creds       Credentials
	tokens      *TokenManager
	revocations Revocations
}

// NewService constructs a new Service. revocations may be nil, in which case
// logout is a no-op and tokens live until expiry.
func NewService(creds Credentials, tokens *TokenManager, revocations Revocations) *Service {
	return &Service{creds: creds, tokens: tokens, revocations: revocations}
}

// Login validates the admin credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	if s.creds.PasswordHash == "" || !strings.EqualFold(strings.TrimSpace(email), s.creds.Email) {
		return Token{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.creds.PasswordHash), []byte(password)); err != nil {
		return Token{}, shared.ErrInvalidCredentials
	}
	return s.tokens.Issue(s.creds.Email)
}

// Authenticate validates a bearer token and rejects revoked ones.
func (s *Service) Authenticate(ctx context.Context, raw string) (*Claims, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	if s.revocations != nil && claims.ID != "" {
		revoked, err := s.revocations.Revoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: revoked", ErrInvalidToken)
		}
	}
	return claims, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if s.revocations == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.tokens.now())
	return s.revocations.Revoke(ctx, claims.ID, ttl)
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
