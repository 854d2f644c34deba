package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carwash_backend/internal/models"
)

func TestCanManage(t *testing.T) {
	tests := []struct {
		actor, role string
		want        bool
	}{
		{models.RoleSuperadmin, models.RoleAdmin, true},
		{models.RoleSuperadmin, models.RoleSuperadmin, true},
		{models.RoleAdmin, models.RoleAdmin, false},
		{models.RoleAdmin, models.RoleSuperadmin, false},
		{models.RoleAdmin, models.RoleEmployee, true},
		{models.RoleAdmin, models.RoleCustomer, true},
		{models.RoleEmployee, models.RoleCustomer, false},
		{models.RoleCustomer, models.RoleCustomer, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, canManage(tt.actor, tt.role), "%s managing %s", tt.actor, tt.role)
	}
}

func TestUserService_CreateUser(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, fakeTransactor{}, nil)

	emp, err := svc.CreateUser(models.RoleAdmin, CreateUserRequest{
		Username: "eko", Password: "password1", FullName: "Eko Saputra", Role: models.RoleEmployee,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployee, emp.Role)
	assert.True(t, emp.IsActive)

	_, err = svc.CreateUser(models.RoleAdmin, CreateUserRequest{
		Username: "boss", Password: "password1", FullName: "Boss", Role: models.RoleAdmin,
	})
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	_, err = svc.CreateUser(models.RoleSuperadmin, CreateUserRequest{
		Username: "ghost", Password: "password1", FullName: "Ghost", Role: "owner",
	})
	assert.ErrorIs(t, err, ErrUserValidation)

	_, err = svc.CreateUser(models.RoleSuperadmin, CreateUserRequest{
		Username: "blank", Password: "password1", FullName: "   ", Role: models.RoleEmployee,
	})
	assert.ErrorIs(t, err, ErrUserValidation)
}

func TestUserService_UpdateUser(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, fakeTransactor{}, nil)
	emp := users.add(models.RoleEmployee, "Eko Saputra")

	name := "Eko S."
	inactive := false
	password := "new-password"
	updated, err := svc.UpdateUser(models.RoleAdmin, emp.ID, UpdateUserRequest{FullName: &name, IsActive: &inactive, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "Eko S.", updated.FullName)
	assert.False(t, updated.IsActive)

	stored, err := users.FindUserByUsername(emp.Username)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)

	promote := models.RoleAdmin
	_, err = svc.UpdateUser(models.RoleAdmin, emp.ID, UpdateUserRequest{Role: &promote})
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	_, err = svc.UpdateUser(models.RoleAdmin, 404, UpdateUserRequest{FullName: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_DeleteUser(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, fakeTransactor{}, nil)
	admin := users.add(models.RoleAdmin, "Ani Admin")
	customer := users.add(models.RoleCustomer, "Citra Dewi")

	assert.ErrorIs(t, svc.DeleteUser(models.RoleAdmin, admin.ID), ErrRoleNotAllowed)
	require.NoError(t, svc.DeleteUser(models.RoleAdmin, customer.ID))
	assert.ErrorIs(t, svc.DeleteUser(models.RoleAdmin, customer.ID), ErrUserNotFound)
	require.NoError(t, svc.DeleteUser(models.RoleSuperadmin, admin.ID))
}

func TestUserService_GetUsersRejectsUnknownRole(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), fakeTransactor{}, nil)
	role := "owner"
	_, _, err := svc.GetUsers(models.UserFilters{Role: &role})
	assert.ErrorIs(t, err, ErrUserValidation)
}
