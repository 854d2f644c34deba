package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carwash_backend/internal/middleware"
	"carwash_backend/internal/services"
	"carwash_backend/pkg/utils"
)

// parseIDParam reads a positive int64 path parameter, responding 400 otherwise.
func parseIDParam(c *gin.Context, name, what string) (int64, bool) {
	id, err := utils.ParseID(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid "+what+" ID format.", err.Error()))
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req interface{}, op string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.LogError(err, op+": Failed to bind JSON")
		utils.RespondValidationFailed(c, utils.ValidationDetails(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, filters interface{}, op string) bool {
	if err := c.ShouldBindQuery(filters); err != nil {
		utils.LogError(err, op+": Failed to bind query")
		utils.RespondValidationFailed(c, utils.ValidationDetails(err))
		return false
	}
	return true
}

func respondPage(c *gin.Context, data interface{}, total, page, pageSize int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      data,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ownCustomerID returns the caller's id when the caller is a customer, so
// listings and lookups can be scoped to their own records.
func ownCustomerID(c *gin.Context) (int64, bool) {
	if !middleware.IsCustomer(c) {
		return 0, false
	}
	id, ok := middleware.CurrentUserID(c)
	return id, ok
}

func respondForbidden(c *gin.Context) {
	utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You do not have permission to access this resource", ""))
}

var (
	notFoundErrors = []error{
		services.ErrTransactionNotFound, services.ErrCategoryNotFound, services.ErrVehicleNotFound,
		services.ErrCustomerNotFound, services.ErrMembershipNotFound, services.ErrUserNotFound,
		services.ErrPointEntryNotFound,
	}
	validationErrors = []error{
		services.ErrTransactionValidation, services.ErrInvalidTransactionStatus, services.ErrPricingValidation,
		services.ErrMembershipValidation, services.ErrUserValidation, services.ErrVehicleValidation,
		services.ErrCategoryValidation, services.ErrCompanyValidation, services.ErrLogoTooLarge, services.ErrLogoType,
	}
	conflictErrors = []error{
		services.ErrMembershipOverlap, services.ErrUsernameExists, services.ErrEmailExists, services.ErrPhoneNumberExists,
		services.ErrVehicleExists, services.ErrVehicleInUse, services.ErrCategoryExists, services.ErrCategoryInUse,
		services.ErrUserInUse,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondServiceError maps service sentinels onto API errors. Anything it
// does not recognize is logged and returned as a 500 without details.
func respondServiceError(c *gin.Context, err error, op, failMessage string) {
	switch {
	case isAny(err, notFoundErrors):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), ""))
	case isAny(err, validationErrors):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, failMessage, err.Error()))
	case isAny(err, conflictErrors):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
	case errors.Is(err, services.ErrRoleNotAllowed):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), ""))
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), ""))
	default:
		utils.LogError(err, op)
		utils.RespondInternal(c, failMessage)
	}
}
