// ABOUTME: Issues and resolves the per-browser session cookie
// ABOUTME: Long-lived opaque token from crypto/rand, one per browser

package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultCookieName is the session cookie name unless overridden in config.
const DefaultCookieName = "rules_session"

// DefaultMaxAge keeps the cookie for a year; the token is an identity for
// the browser, not a login session.
const DefaultMaxAge = 365 * 24 * time.Hour

// tokenBytes sized so brute-force guessing is infeasible.
const tokenBytes = 32

// Resolver reads or issues the opaque session token that partitions
// conversation visibility. The token never leaves this gateway; it is not
// transmitted upstream and it is not authentication.
type Resolver struct {
	cookieName string
	maxAge     time.Duration
	secure     bool
	logger     *slog.Logger
}

// Options configures a Resolver. Zero values fall back to defaults.
type Options struct {
	CookieName string
	MaxAge     time.Duration
	// Secure forces the Secure cookie attribute even on plain HTTP
	// (useful behind a TLS-terminating proxy). TLS requests always get it.
	Secure bool
}

// NewResolver creates a Resolver.
func NewResolver(opts Options, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	name := opts.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Resolver{
		cookieName: name,
		maxAge:     maxAge,
		secure:     opts.Secure,
		logger:     logger.With("component", "session"),
	}
}

// Resolve returns the request's session id. A present, non-empty cookie is
// returned unchanged. Otherwise a new token is generated and a Set-Cookie
// header is attached to the response; the new value is returned. The only
// side effect is on this request/response pair.
func (rs *Resolver) Resolve(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(rs.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     rs.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(rs.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   rs.secure || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	rs.logger.Debug("issued new session token")
	return token, nil
}

// generateToken returns a cryptographically random URL-safe token.
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
