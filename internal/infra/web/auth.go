package web

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"autos-admin/internal/config"
	"autos-admin/internal/domain/ports/adapter"
)

// SessionCookie matches the cookie name the hosted auth client sets in browsers.
const SessionCookie = "sb-access-token"

type AuthConfig struct {
	HMACSecret   []byte
	CookieName   string
	CookieDomain string
	SecureCookie bool
	TTL          time.Duration
	APIKey       string
}

type AuthManager struct {
	cfg AuthConfig
	now func() time.Time
}

func NewAuthManager(session config.SessionConfig, apiKey string) *AuthManager {
	return &AuthManager{
		cfg: AuthConfig{
			HMACSecret:   []byte(session.Secret),
			CookieName:   SessionCookie,
			CookieDomain: session.CookieDomain, // "" keeps a host-only cookie
			SecureCookie: session.SecureCookie,
			TTL:          session.TTL,
			APIKey:       apiKey,
		},
		now: time.Now,
	}
}

type OperatorClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Operator is the identity recorded on coupon transitions.
func (c *OperatorClaims) Operator() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}

func (a *AuthManager) Mint(w http.ResponseWriter, id *adapter.Identity) (string, error) {
	now := a.now()
	claims := OperatorClaims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TTL)),
			Subject:   id.UserID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.cfg.HMACSecret)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    signed,
		Path:     "/",
		Domain:   a.cfg.CookieDomain,
		MaxAge:   int(a.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return signed, nil
}

func (a *AuthManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   a.cfg.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

var errMissingToken = errors.New("missing token")

// ParseFromRequest accepts "Authorization: Bearer <jwt|api key>" or the session cookie.
func (a *AuthManager) ParseFromRequest(r *http.Request) (*OperatorClaims, error) {
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			tok := strings.TrimSpace(hdr[7:])
			if a.cfg.APIKey != "" && subtle.ConstantTimeCompare([]byte(tok), []byte(a.cfg.APIKey)) == 1 {
				return &OperatorClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "api"}}, nil
			}
			return a.parse(tok)
		}
	}
	if c, err := r.Cookie(a.cfg.CookieName); err == nil {
		return a.parse(c.Value)
	}
	return nil, errMissingToken
}

func (a *AuthManager) parse(tok string) (*OperatorClaims, error) {
	claims := &OperatorClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.cfg.HMACSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
