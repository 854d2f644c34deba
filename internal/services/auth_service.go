package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"carwash_backend/internal/models"
	"carwash_backend/internal/repositories"
	"carwash_backend/pkg/utils"
)

// --- Custom Service Errors ---
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrPhoneNumberExists  = errors.New("phone number already exists")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

// --- Data Transfer Objects (DTOs) ---

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the self-service sign-up of a customer.
type RegisterRequest struct {
	Username    string  `json:"username" binding:"required,min=3"`
	Password    string  `json:"password" binding:"required,min=8"`
	FullName    string  `json:"full_name" binding:"required"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email" binding:"omitempty,email"`
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// --- AuthService Interface ---
type AuthService interface {
	Register(req RegisterRequest) (*models.User, error)
	Login(req LoginRequest) (*AuthResponse, error)
	GetProfile(userID int64) (*models.User, error)
	// EnsureSuperadmin creates the bootstrap account when it does not exist yet.
	EnsureSuperadmin(username, password string) error
}

type authService struct {
	userRepo repositories.UserRepository
	db       repositories.SQLExecutor
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo repositories.UserRepository, db repositories.SQLExecutor) AuthService {
	return &authService{userRepo: userRepo, db: db}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// mapUserWriteError turns a unique violation into the matching field error.
func mapUserWriteError(err error) error {
	if !errors.Is(err, repositories.ErrDuplicateKey) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users_username_key"):
		return ErrUsernameExists
	case strings.Contains(msg, "users_email_key"):
		return ErrEmailExists
	case strings.Contains(msg, "users_phone_number_key"):
		return ErrPhoneNumberExists
	}
	return fmt.Errorf("%w: username, email or phone already taken", ErrUsernameExists)
}

func (s *authService) Register(req RegisterRequest) (*models.User, error) {
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
		Role:         models.RoleCustomer,
		IsActive:     true,
	}
	if _, err := s.userRepo.CreateUser(s.db, user); err != nil {
		return nil, mapUserWriteError(err)
	}
	user.PasswordHash = ""
	utils.LogInfo("Customer registered", map[string]interface{}{"user_id": user.ID, "username": user.Username})
	return user, nil
}

func (s *authService) Login(req LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.FindUserByUsername(strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := utils.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	user.PasswordHash = ""
	return &AuthResponse{User: user, AccessToken: token, ExpiresAt: expiresAt}, nil
}

func (s *authService) GetProfile(userID int64) (*models.User, error) {
	user, err := s.userRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) EnsureSuperadmin(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}
	_, err := s.userRepo.FindUserByUsername(username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}
	user := &models.User{
		Username:     username,
		PasswordHash: hashed,
		FullName:     "Superadmin",
		Role:         models.RoleSuperadmin,
		IsActive:     true,
	}
	if _, err := s.userRepo.CreateUser(s.db, user); err != nil {
		return mapUserWriteError(err)
	}
	utils.LogInfo("Superadmin account created", map[string]interface{}{"username": username})
	return nil
}
