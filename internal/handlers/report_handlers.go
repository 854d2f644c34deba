package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carwash_backend/internal/services"
)

type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// GetDashboardSummary provides a summary of key metrics for the dashboard.
func (h *ReportHandler) GetDashboardSummary(c *gin.Context) {
	summary, err := h.reportService.GetDashboardSummary()
	if err != nil {
		respondServiceError(c, err, "GetDashboardSummary: Error from reportService.GetDashboardSummary", "Failed to fetch dashboard summary.")
		return
	}
	c.JSON(http.StatusOK, summary)
}
