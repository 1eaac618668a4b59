package middleware

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"sync"
	"time"
)

const (
	csrfTokenLength = 32
	csrfCookieName  = "csrf_token"
	csrfHeaderName  = "X-CSRF-Token"
	csrfTokenExpiry = 24 * time.Hour
)

// CSRFToken represents a CSRF token with expiry
type CSRFToken struct {
	Token     string
	ExpiresAt time.Time
}

// CSRFStore stores CSRF tokens (in-memory for simplicity)
type CSRFStore struct {
	tokens map[string]CSRFToken
	mu     sync.RWMutex
}

// NewCSRFStore creates a new CSRF token store
func NewCSRFStore() *CSRFStore {
	store := &CSRFStore{
		tokens: make(map[string]CSRFToken),
	}

	// Start cleanup goroutine
	go store.cleanup()

	return store
}

// cleanup removes expired tokens periodically
func (s *CSRFStore) cleanup() {
	ticker := time.NewTicker(time.Hour)
	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for sessionID, token := range s.tokens {
			if now.After(token.ExpiresAt) {
				delete(s.tokens, sessionID)
			}
		}
		s.mu.Unlock()
	}
}

// GetOrCreate returns an existing token or creates a new one
func (s *CSRFStore) GetOrCreate(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check for existing valid token
	if token, exists := s.tokens[sessionID]; exists {
		if time.Now().Before(token.ExpiresAt) {
			return token.Token
		}
	}

	// Generate new token
	tokenBytes := make([]byte, csrfTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		// Fallback to less secure but functional token
		tokenBytes = []byte(time.Now().String())
	}

	token := base64.URLEncoding.EncodeToString(tokenBytes)

	s.tokens[sessionID] = CSRFToken{
		Token:     token,
		ExpiresAt: time.Now().Add(csrfTokenExpiry),
	}

	return token
}

// Validate checks if the provided token is valid for the session
func (s *CSRFStore) Validate(sessionID, providedToken string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, exists := s.tokens[sessionID]
	if !exists {
		return false
	}

	if time.Now().After(token.ExpiresAt) {
		return false
	}

	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(token.Token), []byte(providedToken)) == 1
}

// CSRF returns a middleware that protects cookie-authenticated requests
// with a double-submit token. Safe methods receive the token cookie;
// mutating methods must echo it in the X-CSRF-Token header. Requests
// authenticated with a Bearer header are not exposed to CSRF and skip it.
func CSRF(store *CSRFStore, sessionCookie string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip CSRF check for safe methods
			if r.Method == http.MethodGet ||
				r.Method == http.MethodHead ||
				r.Method == http.MethodOptions ||
				r.Method == http.MethodTrace {
				ensureCSRFCookie(w, r, store, sessionCookie)
				next.ServeHTTP(w, r)
				return
			}

			if csrfSessionKey(r, sessionCookie) == "" {
				if authHeader := r.Header.Get("Authorization"); authHeader != "" {
					next.ServeHTTP(w, r)
					return
				}
				writeError(w, http.StatusForbidden, "Session required")
				return
			}

			csrfToken := r.Header.Get(csrfHeaderName)
			if csrfToken == "" {
				writeError(w, http.StatusForbidden, "CSRF token missing")
				return
			}

			if !store.Validate(csrfSessionKey(r, sessionCookie), csrfToken) {
				writeError(w, http.StatusForbidden, "Invalid CSRF token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ensureCSRFCookie issues the session's CSRF token as a cookie and in the
// X-CSRF-Token response header, for clients that cannot read the cookie
// across origins.
func ensureCSRFCookie(w http.ResponseWriter, r *http.Request, store *CSRFStore, sessionCookie string) {
	sid := csrfSessionKey(r, sessionCookie)
	if sid == "" {
		return
	}

	token := store.GetOrCreate(sid)
	w.Header().Set(csrfHeaderName, token)

	if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value == token {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false, // JavaScript needs to read this
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(csrfTokenExpiry.Seconds()),
	})
}

// csrfSessionKey derives a session identifier from the session cookie. The JWT
// signature is the only part unique per token; the header and claims of two
// tokens can share a long prefix.
func csrfSessionKey(r *http.Request, sessionCookie string) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(cookie.Value))
	return hex.EncodeToString(sum[:])
}
