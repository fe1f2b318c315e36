package adapter

import "context"

// Identity is an authenticated operator as reported by the identity provider.
type Identity struct {
	UserID string
	Email  string
}

// IdentityProvider verifies operator credentials.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Identity, error)
}
