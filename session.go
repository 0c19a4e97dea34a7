package main

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"portfolio/constants"

	lru "github.com/hashicorp/golang-lru/v2"
)

const sessionCookieName = "admin_token"

// sessionEntry stores metadata for an issued admin session token.
type sessionEntry struct {
	createdAt time.Time
}

// SessionStore keeps issued admin tokens in a bounded LRU with a TTL check
// on read, so a pile-up of logins can never grow memory without bound.
type SessionStore struct {
	tokens *lru.Cache[string, sessionEntry]
	ttl    time.Duration
}

// NewSessionStore creates a session store holding at most size tokens.
func NewSessionStore(size int, ttl time.Duration) (*SessionStore, error) {
	tokens, err := lru.New[string, sessionEntry](size)
	if err != nil {
		return nil, err
	}
	return &SessionStore{tokens: tokens, ttl: ttl}, nil
}

func generateAuthToken() (string, error) {
	tokenBytes := make([]byte, constants.SESSION_TOKEN_LENGTH)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}

// Create issues and remembers a fresh session token.
func (s *SessionStore) Create() (string, error) {
	token, err := generateAuthToken()
	if err != nil {
		return "", err
	}
	s.tokens.Add(token, sessionEntry{createdAt: time.Now()})
	return token, nil
}

// Valid reports whether token belongs to a live session. Expired tokens
// are dropped on the way out.
func (s *SessionStore) Valid(token string) bool {
	entry, ok := s.tokens.Get(token)
	if !ok {
		return false
	}
	if time.Since(entry.createdAt) > s.ttl {
		s.tokens.Remove(token)
		return false
	}
	return true
}

// Revoke forgets the token. Revoking an unknown token is a no-op.
func (s *SessionStore) Revoke(token string) {
	s.tokens.Remove(token)
}

// AdminAuthMiddleware gates every write endpoint behind a valid session
// cookie. Failures get a JSON 401 rather than a redirect since the admin
// surface is consumed as an API.
func AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" || !sessions.Valid(cookie.Value) {
			respondMessage(w, http.StatusUnauthorized, false, "Not logged in")
			return
		}
		next.ServeHTTP(w, r)
	})
}
