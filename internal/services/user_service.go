package services

import (
	"errors"
	"fmt"
	"strings"

	"carwash_backend/internal/models"
	"carwash_backend/internal/repositories"
	"carwash_backend/pkg/utils"
)

var (
	ErrUserValidation = errors.New("user data validation error")
	ErrUserInUse      = errors.New("user cannot be deleted as they are referenced in other records")
	ErrRoleNotAllowed = errors.New("not allowed to manage users of this role")
)

type CreateUserRequest struct {
	Username    string  `json:"username" binding:"required,min=3"`
	Password    string  `json:"password" binding:"required,min=8"`
	FullName    string  `json:"full_name" binding:"required"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Role        string  `json:"role" binding:"required,userrole"`
}

type UpdateUserRequest struct {
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Role        *string `json:"role" binding:"omitempty,userrole"`
	IsActive    *bool   `json:"is_active"`
	Password    *string `json:"password" binding:"omitempty,min=8"`
}

type UserService interface {
	CreateUser(actorRole string, req CreateUserRequest) (*models.User, error)
	GetUserByID(id int64) (*models.User, error)
	GetUsers(filters models.UserFilters) ([]models.User, int, error)
	UpdateUser(actorRole string, id int64, req UpdateUserRequest) (*models.User, error)
	DeleteUser(actorRole string, id int64) error
}

type userService struct {
	userRepo   repositories.UserRepository
	transactor repositories.Transactor
	db         repositories.SQLExecutor
}

// NewUserService creates a new instance of UserService.
func NewUserService(ur repositories.UserRepository, transactor repositories.Transactor, db repositories.SQLExecutor) UserService {
	return &userService{userRepo: ur, transactor: transactor, db: db}
}

// canManage reports whether actorRole may create or change users of role.
// Only a superadmin manages other admins.
func canManage(actorRole, role string) bool {
	switch role {
	case models.RoleSuperadmin, models.RoleAdmin:
		return actorRole == models.RoleSuperadmin
	default:
		return actorRole == models.RoleSuperadmin || actorRole == models.RoleAdmin
	}
}

func (s *userService) CreateUser(actorRole string, req CreateUserRequest) (*models.User, error) {
	if !models.IsValidRole(req.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrUserValidation, req.Role)
	}
	if !canManage(actorRole, req.Role) {
		return nil, ErrRoleNotAllowed
	}
	if utils.IsEmpty(req.FullName) {
		return nil, fmt.Errorf("%w: full name cannot be empty", ErrUserValidation)
	}
	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hashed,
		FullName:     strings.TrimSpace(req.FullName),
		PhoneNumber:  req.PhoneNumber,
		Email:        req.Email,
		Role:         req.Role,
		IsActive:     true,
	}
	if _, err := s.userRepo.CreateUser(s.db, user); err != nil {
		return nil, mapUserWriteError(err)
	}
	user.PasswordHash = ""
	utils.LogInfo("User created", map[string]interface{}{"user_id": user.ID, "role": user.Role})
	return user, nil
}

func (s *userService) GetUserByID(id int64) (*models.User, error) {
	user, err := s.userRepo.FindUserByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUsers(filters models.UserFilters) ([]models.User, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	if filters.Role != nil && *filters.Role != "" && !models.IsValidRole(*filters.Role) {
		return nil, 0, fmt.Errorf("%w: unknown role %q", ErrUserValidation, *filters.Role)
	}
	return s.userRepo.GetUsers(filters)
}

func (s *userService) UpdateUser(actorRole string, id int64, req UpdateUserRequest) (*models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if !canManage(actorRole, user.Role) {
		return nil, ErrRoleNotAllowed
	}

	if req.FullName != nil {
		if utils.IsEmpty(*req.FullName) {
			return nil, fmt.Errorf("%w: full name cannot be empty if provided", ErrUserValidation)
		}
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = utils.NewNullString(*req.PhoneNumber)
	}
	if req.Email != nil {
		user.Email = utils.NewNullString(*req.Email)
	}
	if req.Role != nil {
		if !models.IsValidRole(*req.Role) {
			return nil, fmt.Errorf("%w: unknown role %q", ErrUserValidation, *req.Role)
		}
		if !canManage(actorRole, *req.Role) {
			return nil, ErrRoleNotAllowed
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	err = s.transactor.WithinTransaction(func(tx repositories.SQLExecutor) error {
		if err := s.userRepo.UpdateUser(tx, user); err != nil {
			return err
		}
		if req.Password == nil {
			return nil
		}
		hashed, err := hashPassword(*req.Password)
		if err != nil {
			return err
		}
		return s.userRepo.UpdatePassword(tx, id, hashed)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, mapUserWriteError(err)
	}
	return s.GetUserByID(id)
}

func (s *userService) DeleteUser(actorRole string, id int64) error {
	user, err := s.GetUserByID(id)
	if err != nil {
		return err
	}
	if !canManage(actorRole, user.Role) {
		return ErrRoleNotAllowed
	}
	if err := s.userRepo.DeleteUser(s.db, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return ErrUserNotFound
		case errors.Is(err, repositories.ErrForeignKey):
			return ErrUserInUse
		}
		return err
	}
	utils.LogInfo("User deleted", map[string]interface{}{"user_id": id})
	return nil
}
