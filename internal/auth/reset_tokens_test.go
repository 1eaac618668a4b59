package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/hugh/hr-manager/internal/auth"
	"github.com/hugh/hr-manager/internal/database/models"
	"github.com/hugh/hr-manager/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetTokenStore_StoresOnlyHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	clock := testutil.NewClock()
	store := auth.NewResetTokenStore(db).WithClock(clock.Now)
	user := testutil.CreateTestUser(t, db, models.RoleRessource)

	raw := "0123456789abcdef0123456789abcdef"
	record, err := store.Create(context.Background(), user.ID, raw, clock.Now().Add(time.Hour))
	require.NoError(t, err)

	var stored models.PasswordResetToken
	require.NoError(t, db.First(&stored, record.ID).Error)
	assert.NotEqual(t, raw, stored.TokenHash)
	assert.NotContains(t, stored.TokenHash, raw)
	assert.Len(t, stored.TokenLookup, 16)
	assert.Equal(t, user.ID, stored.UserID)
}

func TestResetTokenStore_Verify(t *testing.T) {
	db := testutil.SetupTestDB(t)
	clock := testutil.NewClock()
	store := auth.NewResetTokenStore(db).WithClock(clock.Now)
	user := testutil.CreateTestUser(t, db, models.RoleRessource)
	ctx := context.Background()

	record, err := store.Create(ctx, user.ID, "token-a", clock.Now().Add(time.Hour))
	require.NoError(t, err)

	t.Run("matching token", func(t *testing.T) {
		got, err := store.Verify(ctx, "token-a")
		require.NoError(t, err)
		assert.Equal(t, record.ID, got.ID)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := store.Verify(ctx, "token-b")
		assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := store.Verify(ctx, "")
		assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
	})

	t.Run("expired token", func(t *testing.T) {
		clock.Advance(time.Hour)
		_, err := store.Verify(ctx, "token-a")
		assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
	})
}

func TestResetTokenStore_ConsumeOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	clock := testutil.NewClock()
	store := auth.NewResetTokenStore(db).WithClock(clock.Now)
	user := testutil.CreateTestUser(t, db, models.RoleRessource)

	record, err := store.Create(context.Background(), user.ID, "once", clock.Now().Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, store.Consume(db, record.ID))
	assert.ErrorIs(t, store.Consume(db, record.ID), auth.ErrInvalidOrExpiredToken)
}

func TestResetTokenStore_DeleteExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	clock := testutil.NewClock()
	store := auth.NewResetTokenStore(db).WithClock(clock.Now)
	user := testutil.CreateTestUser(t, db, models.RoleRessource)
	ctx := context.Background()

	_, err := store.Create(ctx, user.ID, "short", clock.Now().Add(10*time.Minute))
	require.NoError(t, err)
	_, err = store.Create(ctx, user.ID, "long", clock.Now().Add(2*time.Hour))
	require.NoError(t, err)

	deleted, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	clock.Advance(time.Hour)

	deleted, err = store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining int64
	require.NoError(t, db.Model(&models.PasswordResetToken{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)

	_, err = store.Verify(ctx, "long")
	assert.NoError(t, err)
}
