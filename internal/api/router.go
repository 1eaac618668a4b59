package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hugh/hr-manager/internal/api/handlers"
	"github.com/hugh/hr-manager/internal/api/middleware"
	"github.com/hugh/hr-manager/internal/auth"
	"github.com/hugh/hr-manager/internal/database/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	AuthService    auth.Authenticator
	Users          handlers.UserService
	Partners       handlers.PartnerService
	Cookie         handlers.CookieConfig
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
	CSRFEnabled    bool
}

// RoutePolicy declares one protected route and the roles allowed on it.
// An empty Roles list admits any authenticated user.
type RoutePolicy struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	Roles   []models.Role
}

var adminOnly = []models.Role{models.RoleSuperAdmin}

// ProtectedRoutes lists every route behind the session guard, relative to
// /api.
func ProtectedRoutes(authHandler *handlers.AuthHandler, userHandler *handlers.UserHandler, partnerHandler *handlers.PartnerHandler) []RoutePolicy {
	return []RoutePolicy{
		{Method: http.MethodGet, Pattern: "/auth/session", Handler: authHandler.Session},

		{Method: http.MethodGet, Pattern: "/users", Handler: userHandler.List, Roles: adminOnly},
		{Method: http.MethodPost, Pattern: "/users/addUser", Handler: userHandler.Create, Roles: adminOnly},
		{Method: http.MethodPatch, Pattern: "/users/editUser", Handler: userHandler.Edit, Roles: adminOnly},
		{Method: http.MethodPatch, Pattern: "/users/status", Handler: userHandler.ChangeStatus, Roles: adminOnly},

		{Method: http.MethodGet, Pattern: "/partenaires", Handler: partnerHandler.List, Roles: adminOnly},
		{Method: http.MethodPost, Pattern: "/partenaires/addPartenaire", Handler: partnerHandler.Create, Roles: adminOnly},
		{Method: http.MethodPatch, Pattern: "/partenaires/editPartenaire", Handler: partnerHandler.Edit, Roles: adminOnly},
		{Method: http.MethodPatch, Pattern: "/partenaires/status", Handler: partnerHandler.ChangeStatus, Roles: adminOnly},
	}
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// CORS - restrict to configured origins
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"X-CSRF-Token", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	cookieName := cfg.Cookie.Name
	if cookieName == "" {
		cookieName = auth.SessionCookieName
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.Cookie, cfg.Logger)
	userHandler := handlers.NewUserHandler(cfg.Users, cfg.Logger)
	partnerHandler := handlers.NewPartnerHandler(cfg.Partners, cfg.Logger)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api", func(r chi.Router) {
		r.Get("/auth/health", authHandler.Health)
		r.Post("/auth/logout", authHandler.Logout)

		// Credential endpoints are rate limited per client IP
		r.Group(func(r chi.Router) {
			if cfg.RateLimitReqs > 0 {
				r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
			}
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/forgot-password", authHandler.ForgotPassword)
			r.Post("/auth/reset-password", authHandler.ResetPassword)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(cfg.AuthService, cookieName))
			if cfg.RateLimitReqs > 0 {
				r.Use(middleware.RateLimitByUser(cfg.RateLimitReqs, cfg.RateLimitSecs))
			}
			if cfg.CSRFEnabled {
				r.Use(middleware.CSRF(middleware.NewCSRFStore(), cookieName))
			}

			for _, route := range ProtectedRoutes(authHandler, userHandler, partnerHandler) {
				r.With(middleware.RequireRole(route.Roles...)).Method(route.Method, route.Pattern, route.Handler)
			}
		})
	})

	return &Router{r}
}
