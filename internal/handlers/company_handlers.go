package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carwash_backend/internal/repositories"
	"carwash_backend/internal/services"
	"carwash_backend/pkg/utils"
)

type CompanyHandler struct {
	companyService services.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(cs services.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: cs}
}

func (h *CompanyHandler) GetProfile(c *gin.Context) {
	profile, err := h.companyService.GetProfile()
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Company profile not set up.", ""))
			return
		}
		respondServiceError(c, err, "GetProfile: Error from companyService.GetProfile", "Failed to fetch company profile.")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *CompanyHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateCompanyProfileRequest
	if !bindJSON(c, &req, "UpdateProfile") {
		return
	}
	profile, err := h.companyService.UpdateProfile(req)
	if err != nil {
		respondServiceError(c, err, "UpdateProfile: Error from companyService.UpdateProfile", "Failed to update company profile.")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UploadLogo accepts a multipart "logo" file.
func (h *CompanyHandler) UploadLogo(c *gin.Context) {
	file, err := c.FormFile("logo")
	if err != nil {
		utils.RespondValidationFailed(c, "logo file is required")
		return
	}
	profile, err := h.companyService.UploadLogo(file)
	if err != nil {
		respondServiceError(c, err, "UploadLogo: Error from companyService.UploadLogo", "Failed to upload logo.")
		return
	}
	c.JSON(http.StatusOK, profile)
}
