package identity

import (
	"context"
	"crypto/subtle"
	"strings"

	"autos-admin/internal/domain"
	"autos-admin/internal/domain/ports/adapter"
)

var _ adapter.IdentityProvider = (*Static)(nil)

// Static accepts a single operator account; used in dev mode without an auth backend.
type Static struct {
	Email    string
	Password string
}

func (s Static) SignInWithPassword(ctx context.Context, email, password string) (*adapter.Identity, error) {
	if s.Email == "" || !strings.EqualFold(email, s.Email) ||
		subtle.ConstantTimeCompare([]byte(password), []byte(s.Password)) != 1 {
		return nil, domain.ErrUnauthenticated
	}
	return &adapter.Identity{UserID: "dev-operator", Email: strings.ToLower(s.Email)}, nil
}
