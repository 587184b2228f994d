// Package auth authenticates calls between a vguard front end and a vguard server.
package auth

import (
	"crypto/subtle"
	"net/http"
	"slices"
)

// Authenticator defines the interface for applying authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request) error
	Type() Type
}

// BearerAuth represents Bearer token authentication.
type BearerAuth struct {
	Token string
}

// Type represents the type of authentication.
type Type string

// BearerAuthType represents Bearer token authentication.
const BearerAuthType Type = "bearer"

// Apply adds a Bearer token to the Authorization header of the HTTP request.
func (b BearerAuth) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

// Type returns the authentication type (BearerAuthType).
func (b BearerAuth) Type() Type { return BearerAuthType }

// RequireBearer serves next only to requests carrying token. Paths listed in open skip
// the check. An empty token disables it.
func RequireBearer(token string, next http.Handler, open ...string) http.Handler {
	if token == "" {
		return next
	}
	want := []byte("Bearer " + token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if slices.Contains(open, r.URL.Path) ||
			subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), want) == 1 {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("WWW-Authenticate", `Bearer realm="vguard"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}
