package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"carwash_backend/internal/models"
)

// ReportRepository aggregates figures for the dashboard.
type ReportRepository interface {
	GetDashboardSummary(today time.Time) (*models.DashboardSummary, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) GetDashboardSummary(today time.Time) (*models.DashboardSummary, error) {
	summary := &models.DashboardSummary{}
	day := sqlDate(today)
	monthStart := sqlDate(models.FirstOfMonth(today))

	trxQuery := `SELECT
	               COUNT(*) FILTER (WHERE trx_date = $1),
	               COUNT(*) FILTER (WHERE status = 'QUEUED'),
	               COUNT(*) FILTER (WHERE status IN ('WASHING', 'FINISHING')),
	               COALESCE(SUM(price) FILTER (WHERE trx_date = $1 AND status = 'DONE'), 0),
	               COALESCE(SUM(price) FILTER (WHERE trx_date >= $2 AND status = 'DONE'), 0),
	               COUNT(*) FILTER (WHERE trx_date >= $2
	                 AND (is_membership_quota_free OR is_loyalty_free OR is_rain_guarantee_free))
	             FROM transactions`
	err := r.db.QueryRow(trxQuery, day, monthStart).Scan(
		&summary.WashesToday, &summary.QueuedCount, &summary.InProgressCount,
		&summary.RevenueToday, &summary.RevenueThisMonth, &summary.FreeWashesThisMonth,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregating transactions for dashboard: %v", ErrDatabaseError, err)
	}

	memberQuery := `SELECT COUNT(DISTINCT vehicle_id) FROM memberships WHERE starts_at <= $1 AND ends_at >= $1`
	if err := r.db.QueryRow(memberQuery, day).Scan(&summary.ActiveMemberships); err != nil {
		return nil, fmt.Errorf("%w: counting active memberships: %v", ErrDatabaseError, err)
	}
	return summary, nil
}
