package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hugh/hr-manager/internal/auth"
	"github.com/hugh/hr-manager/internal/database/models"
	"github.com/stretchr/testify/assert"
)

type fakeValidator map[string]*auth.SessionUser

func (f fakeValidator) ValidateToken(_ context.Context, token string) (*auth.SessionUser, error) {
	if user, ok := f[token]; ok {
		return user, nil
	}
	return nil, auth.ErrInvalidToken
}

var (
	adminUser    = &auth.SessionUser{ID: 1, Email: "admin@example.com", Role: models.RoleSuperAdmin, Active: true}
	resourceUser = &auth.SessionUser{ID: 2, Email: "res@example.com", Role: models.RoleRessource, Active: true}
	validator    = fakeValidator{"admin-token": adminUser, "res-token": resourceUser}
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func TestSession_Cookie(t *testing.T) {
	handler := Session(validator, auth.SessionCookieName)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, adminUser, GetSessionUser(r.Context()))
		assert.Equal(t, uint(1), GetUserID(r.Context()))
		assert.Equal(t, models.RoleSuperAdmin, GetUserRole(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "admin-token"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSession_BearerFallback(t *testing.T) {
	handler := Session(validator, "")(http.HandlerFunc(okHandler))

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.Header.Set("Authorization", "Bearer res-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSession_CustomCookieName(t *testing.T) {
	handler := Session(validator, "hr_session")(http.HandlerFunc(okHandler))

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "admin-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest("GET", "/api/users", nil)
	req.AddCookie(&http.Cookie{Name: "hr_session", Value: "admin-token"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSession_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*http.Request)
	}{
		{"no token", func(*http.Request) {}},
		{"empty cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: ""})
		}},
		{"unknown token", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "forged"})
		}},
		{"malformed header", func(r *http.Request) {
			r.Header.Set("Authorization", "Token admin-token")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := Session(validator, auth.SessionCookieName)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest("GET", "/api/users", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
			assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
			assert.False(t, called)
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		roles    []models.Role
		expected int
	}{
		{"super admin allowed", "admin-token", []models.Role{models.RoleSuperAdmin}, http.StatusOK},
		{"ressource forbidden", "res-token", []models.Role{models.RoleSuperAdmin}, http.StatusForbidden},
		{"one of several", "res-token", []models.Role{models.RoleGestionnaire, models.RoleRessource}, http.StatusOK},
		{"empty list unrestricted", "res-token", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Session(validator, auth.SessionCookieName)(
				RequireRole(tt.roles...)(http.HandlerFunc(okHandler)),
			)

			req := httptest.NewRequest("GET", "/api/users", nil)
			req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: tt.token})
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestRequireRole_WithoutSession(t *testing.T) {
	handler := RequireRole()(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/users", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContextHelpers_Empty(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetSessionUser(ctx))
	assert.Zero(t, GetUserID(ctx))
	assert.Empty(t, GetUserRole(ctx))
}
