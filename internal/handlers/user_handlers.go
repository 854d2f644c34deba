package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"carwash_backend/internal/middleware"
	"carwash_backend/internal/models"
	"carwash_backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us services.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if !bindJSON(c, &req, "CreateUser") {
		return
	}
	role, _ := middleware.CurrentUserRole(c)
	user, err := h.userService.CreateUser(role, req)
	if err != nil {
		respondServiceError(c, err, "CreateUser: Error from userService.CreateUser", "Failed to create user.")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetUsers lists users. Employees only see customers.
func (h *UserHandler) GetUsers(c *gin.Context) {
	var filters models.UserFilters
	if !bindQuery(c, &filters, "GetUsers") {
		return
	}
	if role, _ := middleware.CurrentUserRole(c); role == models.RoleEmployee {
		customer := models.RoleCustomer
		filters.Role = &customer
	}
	users, total, err := h.userService.GetUsers(filters)
	if err != nil {
		respondServiceError(c, err, "GetUsers: Error from userService.GetUsers", "Failed to fetch users.")
		return
	}
	respondPage(c, users, total, filters.Page, filters.PageSize)
}

func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}
	user, err := h.userService.GetUserByID(id)
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("GetUserByID: Error for ID %d", id), "Failed to fetch user.")
		return
	}
	if role, _ := middleware.CurrentUserRole(c); role == models.RoleEmployee && user.Role != models.RoleCustomer {
		respondForbidden(c)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}
	var req services.UpdateUserRequest
	if !bindJSON(c, &req, "UpdateUser") {
		return
	}
	role, _ := middleware.CurrentUserRole(c)
	user, err := h.userService.UpdateUser(role, id, req)
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("UpdateUser: Error for ID %d", id), "Failed to update user.")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}
	if self, _ := middleware.CurrentUserID(c); self == id {
		respondServiceError(c, fmt.Errorf("%w: cannot delete your own account", services.ErrUserValidation), "DeleteUser", "Failed to delete user.")
		return
	}
	role, _ := middleware.CurrentUserRole(c)
	if err := h.userService.DeleteUser(role, id); err != nil {
		respondServiceError(c, err, fmt.Sprintf("DeleteUser: Error for ID %d", id), "Failed to delete user.")
		return
	}
	c.Status(http.StatusNoContent)
}
