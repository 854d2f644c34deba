package services

import (
	"errors"
	"fmt"
	"time"

	"carwash_backend/internal/models"
	"carwash_backend/internal/repositories"
)

// MembershipResolver finds the membership that governs a vehicle on a given day.
type MembershipResolver interface {
	// ResolveActiveMembership returns nil, nil when the vehicle has no membership
	// running on referenceDate.
	ResolveActiveMembership(executor repositories.SQLExecutor, vehicleID int64, referenceDate time.Time) (*models.Membership, error)
}

type membershipResolver struct {
	membershipRepo repositories.MembershipRepository
}

// NewMembershipResolver creates a new instance of MembershipResolver.
func NewMembershipResolver(repo repositories.MembershipRepository) MembershipResolver {
	return &membershipResolver{membershipRepo: repo}
}

func (r *membershipResolver) ResolveActiveMembership(executor repositories.SQLExecutor, vehicleID int64, referenceDate time.Time) (*models.Membership, error) {
	m, err := r.membershipRepo.FindActiveMembership(executor, vehicleID, models.TruncateDay(referenceDate))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolving membership of vehicle %d: %w", vehicleID, err)
	}
	return m, nil
}
