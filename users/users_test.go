package users_test

import (
	"testing"

	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
	"github.com/jrsteele09/go-token-server/users"
	fakeuserrepo "github.com/jrsteele09/go-token-server/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	require.NoError(t, users.ValidatePasswordStrength("Passw0rd!"))
	require.Error(t, users.ValidatePasswordStrength("short1A"))
	require.Error(t, users.ValidatePasswordStrength("alllowercase1"))
	require.Error(t, users.ValidatePasswordStrength("ALLUPPERCASE1"))
	require.Error(t, users.ValidatePasswordStrength("NoNumbersHere"))
}

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("Passw0rd!")
	require.NoError(t, err)
	require.True(t, users.CheckPasswordHash("Passw0rd!", hash))
	require.False(t, users.CheckPasswordHash("wrong", hash))
}

func TestCanLogin(t *testing.T) {
	u := &users.User{Verified: true, TenantIDs: []string{"acme"}}
	require.NoError(t, u.CanLogin("acme"))
	require.NoError(t, u.CanLogin(""))
	require.ErrorIs(t, u.CanLogin("other"), apperrors.ErrUserNotFound)

	u.Blocked = true
	require.ErrorIs(t, u.CanLogin("acme"), apperrors.ErrUserBlocked)

	u.Blocked, u.Verified = false, false
	require.ErrorIs(t, u.CanLogin("acme"), apperrors.ErrUserNotVerified)
}

func TestFakeUserRepo(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()
	u := &users.User{Email: "jane@example.com", Username: "jane"}
	require.NoError(t, repo.Upsert(u))
	require.NotEmpty(t, u.ID)

	byName, err := repo.GetByUsername("jane")
	require.NoError(t, err)
	require.Equal(t, u.ID, byName.ID)

	require.NoError(t, repo.SetVerified("jane@example.com", true))
	byID, err := repo.GetByID(u.ID)
	require.NoError(t, err)
	require.True(t, byID.Verified)

	require.NoError(t, repo.Delete("jane@example.com"))
	_, err = repo.GetByEmail("jane@example.com")
	require.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
