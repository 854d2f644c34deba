package services

import (
	"time"

	"carwash_backend/internal/models"
	"carwash_backend/internal/repositories"
)

type ReportService interface {
	GetDashboardSummary() (*models.DashboardSummary, error)
}

type reportService struct {
	reportRepo repositories.ReportRepository
	loc        *time.Location
	now        func() time.Time
}

// NewReportService creates a new instance of ReportService. "Today" is taken
// in loc, the time zone the car wash operates in.
func NewReportService(rr repositories.ReportRepository, loc *time.Location) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{reportRepo: rr, loc: loc, now: time.Now}
}

func (s *reportService) GetDashboardSummary() (*models.DashboardSummary, error) {
	today := models.TruncateDay(s.now().In(s.loc))
	return s.reportRepo.GetDashboardSummary(today)
}
