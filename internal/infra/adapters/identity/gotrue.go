// File: internal/infra/adapters/identity/gotrue.go
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"autos-admin/internal/config"
	"autos-admin/internal/domain"
	"autos-admin/internal/domain/ports/adapter"
)

var _ adapter.IdentityProvider = (*GoTrue)(nil)

// GoTrue signs operators in through the hosted auth API (/auth/v1).
type GoTrue struct {
	baseURL string
	anonKey string
	client  *http.Client
}

func NewGoTrue(cfg config.IdentityConfig) (*GoTrue, error) {
	if cfg.URL == "" || cfg.AnonKey == "" {
		return nil, errors.New("identity url and anon key are required")
	}
	return &GoTrue{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		anonKey: cfg.AnonKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (g *GoTrue) SignInWithPassword(ctx context.Context, email, password string) (*adapter.Identity, error) {
	payload := map[string]string{"email": email, "password": password}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", g.anonKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOperationFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnauthorized:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, domain.ErrUnauthenticated
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrOperationFailed, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrOperationFailed, err)
	}
	if out.User.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return &adapter.Identity{UserID: out.User.ID, Email: out.User.Email}, nil
}
