package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carwash_backend/internal/models"
	"carwash_backend/pkg/utils"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	utils.ConfigureJWT("test-secret", time.Hour)
	users := newFakeUserRepo()
	svc := NewAuthService(users, nil)

	user, err := svc.Register(RegisterRequest{Username: " dewi ", Password: "rahasia123", FullName: "Dewi Lestari"})
	require.NoError(t, err)
	assert.Equal(t, "dewi", user.Username)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.Empty(t, user.PasswordHash)

	resp, err := svc.Login(LoginRequest{Username: "dewi", Password: "rahasia123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Empty(t, resp.User.PasswordHash)

	claims, err := utils.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleCustomer, claims.Role)
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	utils.ConfigureJWT("test-secret", time.Hour)
	users := newFakeUserRepo()
	svc := NewAuthService(users, nil)
	_, err := svc.Register(RegisterRequest{Username: "dewi", Password: "rahasia123", FullName: "Dewi Lestari"})
	require.NoError(t, err)

	_, err = svc.Login(LoginRequest{Username: "dewi", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(LoginRequest{Username: "nobody", Password: "rahasia123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LoginRejectsInactiveUser(t *testing.T) {
	utils.ConfigureJWT("test-secret", time.Hour)
	users := newFakeUserRepo()
	svc := NewAuthService(users, nil)
	user, err := svc.Register(RegisterRequest{Username: "dewi", Password: "rahasia123", FullName: "Dewi Lestari"})
	require.NoError(t, err)

	user.IsActive = false
	require.NoError(t, users.UpdateUser(nil, user))

	_, err = svc.Login(LoginRequest{Username: "dewi", Password: "rahasia123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RegisterDuplicateUsername(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), nil)
	_, err := svc.Register(RegisterRequest{Username: "dewi", Password: "rahasia123", FullName: "Dewi Lestari"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterRequest{Username: "DEWI", Password: "rahasia123", FullName: "Another Dewi"})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestAuthService_EnsureSuperadmin(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, nil)

	require.NoError(t, svc.EnsureSuperadmin("root", "change-me-now"))
	require.NoError(t, svc.EnsureSuperadmin("root", "change-me-now"))
	require.NoError(t, svc.EnsureSuperadmin("", ""))

	all, total, err := users.GetUsers(models.UserFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.RoleSuperadmin, all[0].Role)
}

func TestAuthService_GetProfile(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, nil)
	u := users.add(models.RoleEmployee, "Eko Saputra")

	profile, err := svc.GetProfile(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Eko Saputra", profile.FullName)

	_, err = svc.GetProfile(404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
