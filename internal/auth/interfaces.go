package auth

import "context"

// Authenticator is the auth surface the HTTP layer depends on.
type Authenticator interface {
	SessionValidator
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, rawToken, newPassword string) (string, error)
}

// SessionValidator resolves a session token to a live user.
type SessionValidator interface {
	ValidateToken(ctx context.Context, token string) (*SessionUser, error)
}

// TokenService defines the interface for JWT token operations.
type TokenService interface {
	GenerateToken(userID uint, email string, active bool) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ TokenService  = (*JWTService)(nil)
)
