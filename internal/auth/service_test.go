package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hugh/hr-manager/internal/auth"
	"github.com/hugh/hr-manager/internal/database/models"
	"github.com/hugh/hr-manager/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Login(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		result, err := ts.AuthService.Login(ctx, auth.LoginInput{
			Email:    ts.Admin.Email,
			Password: testutil.TestPassword,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, 24*time.Hour, result.ExpiresIn)
		assert.Equal(t, ts.Admin.ID, result.User.ID)
		assert.Equal(t, models.RoleSuperAdmin, result.User.Role)

		claims, err := ts.JWTService.ValidateToken(result.Token)
		require.NoError(t, err)
		assert.Equal(t, ts.Admin.ID, claims.UserID)
		assert.Equal(t, ts.Admin.Email, claims.Email)
		assert.True(t, claims.Active)
	})

	t.Run("email is case insensitive", func(t *testing.T) {
		_, err := ts.AuthService.Login(ctx, auth.LoginInput{
			Email:    "  " + strings.ToUpper(ts.Admin.Email) + " ",
			Password: testutil.TestPassword,
		})
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := ts.AuthService.Login(ctx, auth.LoginInput{Email: ts.Admin.Email, Password: "Wrong1!xx"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := ts.AuthService.Login(ctx, auth.LoginInput{Email: "nobody@example.com", Password: testutil.TestPassword})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		user := testutil.CreateTestUser(t, ts.DB, models.RoleRessource)
		testutil.SetUserActive(t, ts.DB, user, false)

		_, err := ts.AuthService.Login(ctx, auth.LoginInput{Email: user.Email, Password: testutil.TestPassword})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestService_ValidateTokenReadsCurrentState(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	ctx := context.Background()

	user := testutil.CreateTestUser(t, ts.DB, models.RoleRessource)
	token := testutil.GenerateTestToken(t, ts.JWTService, user)

	session, err := ts.AuthService.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.ID)
	assert.Equal(t, models.RoleRessource, session.Role)

	// Role changes apply to tokens already issued.
	require.NoError(t, ts.DB.Model(user).Update("role", models.RoleGestionnaire).Error)
	session, err = ts.AuthService.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleGestionnaire, session.Role)

	testutil.SetUserActive(t, ts.DB, user, false)
	_, err = ts.AuthService.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	require.NoError(t, ts.DB.Delete(user).Error)
	_, err = ts.AuthService.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = ts.AuthService.ValidateToken(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestService_ForgotPasswordSameMessage(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	ctx := context.Background()

	known, err := ts.AuthService.ForgotPassword(ctx, ts.Admin.Email)
	require.NoError(t, err)
	unknown, err := ts.AuthService.ForgotPassword(ctx, "nobody@example.com")
	require.NoError(t, err)

	assert.Equal(t, auth.ForgotPasswordMessage, known)
	assert.Equal(t, known, unknown)
	assert.Equal(t, 1, ts.Mailer.Count())

	sent := ts.Mailer.Last(t)
	assert.Equal(t, ts.Admin.Email, sent.To)
	assert.Contains(t, sent.ResetURL, testutil.TestFrontendURL+"/reset-password?token=")
	assert.Len(t, testutil.ResetTokenFromURL(t, sent.ResetURL), 64)
}

func TestService_ForgotPasswordMailFailure(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()

	ts.Mailer.Err = errors.New("smtp down")

	msg, err := ts.AuthService.ForgotPassword(context.Background(), ts.Admin.Email)
	assert.Equal(t, auth.ForgotPasswordMessage, msg)
	assert.ErrorIs(t, err, auth.ErrMailDispatch)
}

func TestService_ResetPasswordFlow(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	ctx := context.Background()

	_, err := ts.AuthService.ForgotPassword(ctx, ts.Admin.Email)
	require.NoError(t, err)
	token := testutil.ResetTokenFromURL(t, ts.Mailer.Last(t).ResetURL)

	msg, err := ts.AuthService.ResetPassword(ctx, token, "N3wPassword!")
	require.NoError(t, err)
	assert.Equal(t, auth.ResetPasswordMessage, msg)

	_, err = ts.AuthService.Login(ctx, auth.LoginInput{Email: ts.Admin.Email, Password: "N3wPassword!"})
	assert.NoError(t, err)

	_, err = ts.AuthService.Login(ctx, auth.LoginInput{Email: ts.Admin.Email, Password: testutil.TestPassword})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	// Single use.
	_, err = ts.AuthService.ResetPassword(ctx, token, "An0therOne!")
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)

	var remaining int64
	require.NoError(t, ts.DB.Model(&models.PasswordResetToken{}).Count(&remaining).Error)
	assert.Equal(t, int64(0), remaining)
}

func TestService_ResetPasswordExpired(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	ctx := context.Background()

	_, err := ts.AuthService.ForgotPassword(ctx, ts.Admin.Email)
	require.NoError(t, err)
	token := testutil.ResetTokenFromURL(t, ts.Mailer.Last(t).ResetURL)

	ts.Clock.Advance(time.Hour + time.Second)

	_, err = ts.AuthService.ResetPassword(ctx, token, "N3wPassword!")
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)

	_, err = ts.AuthService.Login(ctx, auth.LoginInput{Email: ts.Admin.Email, Password: testutil.TestPassword})
	assert.NoError(t, err)
}

func TestService_ResetPasswordOlderTokenStillValid(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	ctx := context.Background()

	_, err := ts.AuthService.ForgotPassword(ctx, ts.Admin.Email)
	require.NoError(t, err)
	first := testutil.ResetTokenFromURL(t, ts.Mailer.Last(t).ResetURL)

	_, err = ts.AuthService.ForgotPassword(ctx, ts.Admin.Email)
	require.NoError(t, err)
	second := testutil.ResetTokenFromURL(t, ts.Mailer.Last(t).ResetURL)
	assert.NotEqual(t, first, second)

	_, err = ts.AuthService.ResetPassword(ctx, first, "N3wPassword!")
	assert.NoError(t, err)
}

func TestService_ResetPasswordValidation(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	ctx := context.Background()

	_, err := ts.AuthService.ResetPassword(ctx, "whatever", "")
	assert.ErrorIs(t, err, auth.ErrPasswordRequired)

	_, err = ts.AuthService.ResetPassword(ctx, "", "N3wPassword!")
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)

	_, err = ts.AuthService.ResetPassword(ctx, "deadbeef", "N3wPassword!")
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
}

func TestService_ResetPasswordForDeletedUser(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	ctx := context.Background()

	user := testutil.CreateTestUser(t, ts.DB, models.RoleRessource)
	_, err := ts.AuthService.ForgotPassword(ctx, user.Email)
	require.NoError(t, err)
	token := testutil.ResetTokenFromURL(t, ts.Mailer.Last(t).ResetURL)

	require.NoError(t, ts.DB.Delete(user).Error)

	_, err = ts.AuthService.ResetPassword(ctx, token, "N3wPassword!")
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
}
