package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"carwash_backend/internal/models"
	"carwash_backend/internal/repositories"
	"carwash_backend/pkg/utils"
)

var (
	ErrMembershipNotFound   = errors.New("membership not found")
	ErrMembershipValidation = errors.New("membership data validation error")
	ErrMembershipOverlap    = errors.New("membership would overlap a later membership of the vehicle")
)

// CreateMembershipRequest sells a membership. ExtraVehicleIDs are only
// accepted for tiers that cover companion vehicles.
type CreateMembershipRequest struct {
	VehicleID       int64   `json:"vehicle_id" binding:"required"`
	Tier            string  `json:"tier" binding:"required,tier"`
	StartsAt        string  `json:"starts_at" binding:"required,isodate"`
	DurationMonths  int     `json:"duration_months" binding:"required,gt=0"`
	ExtraVehicleIDs []int64 `json:"extra_vehicle_ids"`
}

// MembershipPurchase is the primary membership plus any companion rows.
type MembershipPurchase struct {
	Membership *models.Membership  `json:"membership"`
	Companions []models.Membership `json:"companions"`
}

type MembershipService interface {
	CreateMembership(req CreateMembershipRequest) (*MembershipPurchase, error)
	GetMembershipByID(id int64) (*models.Membership, error)
	GetMemberships(filters models.MembershipFilters) ([]models.Membership, int, error)
	GetActiveMembership(vehicleID int64, date string) (*models.Membership, error)
	DeleteMembership(id int64) error
}

type membershipService struct {
	membershipRepo repositories.MembershipRepository
	vehicleRepo    repositories.VehicleRepository
	resolver       MembershipResolver
	transactor     repositories.Transactor
	db             repositories.SQLExecutor
}

// NewMembershipService creates a new instance of MembershipService.
func NewMembershipService(
	mr repositories.MembershipRepository,
	vr repositories.VehicleRepository,
	resolver MembershipResolver,
	transactor repositories.Transactor,
	db repositories.SQLExecutor,
) MembershipService {
	return &membershipService{
		membershipRepo: mr,
		vehicleRepo:    vr,
		resolver:       resolver,
		transactor:     transactor,
		db:             db,
	}
}

func (s *membershipService) validate(req CreateMembershipRequest) (models.Tier, time.Time, error) {
	tier := models.Tier(strings.ToUpper(strings.TrimSpace(req.Tier)))
	if !tier.IsValid() {
		return "", time.Time{}, fmt.Errorf("%w: unknown tier %q", ErrMembershipValidation, req.Tier)
	}
	startsAt, err := models.ParseDate(req.StartsAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrMembershipValidation, err)
	}
	if req.DurationMonths <= 0 {
		return "", time.Time{}, fmt.Errorf("%w: duration must be at least one month", ErrMembershipValidation)
	}
	if len(req.ExtraVehicleIDs) > 0 && !tier.AllowsExtraVehicles() {
		return "", time.Time{}, fmt.Errorf("%w: tier %s does not cover extra vehicles", ErrMembershipValidation, tier)
	}
	seen := map[int64]bool{req.VehicleID: true}
	for _, id := range req.ExtraVehicleIDs {
		if seen[id] {
			return "", time.Time{}, fmt.Errorf("%w: vehicle %d listed twice", ErrMembershipValidation, id)
		}
		seen[id] = true
	}
	return tier, startsAt, nil
}

func (s *membershipService) CreateMembership(req CreateMembershipRequest) (*MembershipPurchase, error) {
	tier, startsAt, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	endsAt := startsAt.AddDate(0, req.DurationMonths, -1)

	purchase := &MembershipPurchase{Companions: []models.Membership{}}
	err = s.transactor.WithinTransaction(func(tx repositories.SQLExecutor) error {
		primary, err := s.vehicleRepo.GetVehicleByID(tx, req.VehicleID)
		if err != nil {
			return err
		}
		for _, id := range req.ExtraVehicleIDs {
			companion, err := s.vehicleRepo.GetVehicleByID(tx, id)
			if err != nil {
				return err
			}
			if companion.CustomerID != primary.CustomerID {
				return fmt.Errorf("%w: vehicle %d belongs to another customer", ErrMembershipValidation, id)
			}
		}

		primaryMembership := &models.Membership{
			VehicleID:      primary.ID,
			Tier:           tier,
			StartsAt:       startsAt,
			EndsAt:         endsAt,
			DurationMonths: req.DurationMonths,
			ExtraVehicles:  len(req.ExtraVehicleIDs),
		}
		if err := s.insertTruncating(tx, primaryMembership); err != nil {
			return err
		}
		purchase.Membership = primaryMembership

		for _, id := range req.ExtraVehicleIDs {
			companion := &models.Membership{
				VehicleID:      id,
				Tier:           tier,
				StartsAt:       startsAt,
				EndsAt:         endsAt,
				DurationMonths: req.DurationMonths,
			}
			if err := s.insertTruncating(tx, companion); err != nil {
				return err
			}
			purchase.Companions = append(purchase.Companions, *companion)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	utils.LogInfo("Membership created", map[string]interface{}{
		"membership_id": purchase.Membership.ID,
		"vehicle_id":    purchase.Membership.VehicleID,
		"tier":          string(tier),
		"companions":    len(purchase.Companions),
	})
	return purchase, nil
}

// insertTruncating ends every membership of the vehicle still running on the
// new start date the day before it, then inserts m. A membership starting on
// or after the new start cannot be truncated and rejects the purchase.
func (s *membershipService) insertTruncating(tx repositories.SQLExecutor, m *models.Membership) error {
	existing, err := s.membershipRepo.GetMembershipsByVehicle(tx, m.VehicleID)
	if err != nil {
		return err
	}
	dayBefore := m.StartsAt.AddDate(0, 0, -1)
	for _, old := range existing {
		if !old.IsActiveOn(m.StartsAt) {
			continue
		}
		if !old.StartsAt.Before(m.StartsAt) {
			return fmt.Errorf("%w: membership %d of vehicle %d starts %s", ErrMembershipOverlap, old.ID, m.VehicleID, old.StartsAt.Format(models.DateLayout))
		}
		if err := s.membershipRepo.UpdateMembershipEndsAt(tx, old.ID, dayBefore); err != nil {
			return err
		}
		utils.LogInfo("Membership truncated", map[string]interface{}{
			"membership_id": old.ID,
			"ends_at":       dayBefore.Format(models.DateLayout),
		})
	}
	_, err = s.membershipRepo.CreateMembership(tx, m)
	return err
}

func (s *membershipService) GetMembershipByID(id int64) (*models.Membership, error) {
	m, err := s.membershipRepo.GetMembershipByID(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *membershipService) GetMemberships(filters models.MembershipFilters) ([]models.Membership, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	return s.membershipRepo.GetMemberships(filters)
}

// GetActiveMembership resolves the membership of a vehicle on date (today when empty).
func (s *membershipService) GetActiveMembership(vehicleID int64, date string) (*models.Membership, error) {
	day := models.TruncateDay(time.Now())
	if strings.TrimSpace(date) != "" {
		d, err := models.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMembershipValidation, err)
		}
		day = d
	}
	if _, err := s.vehicleRepo.GetVehicleByID(s.db, vehicleID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	m, err := s.resolver.ResolveActiveMembership(s.db, vehicleID, day)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMembershipNotFound
	}
	return m, nil
}

func (s *membershipService) DeleteMembership(id int64) error {
	if err := s.membershipRepo.DeleteMembership(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMembershipNotFound
		}
		return err
	}
	utils.LogInfo("Membership deleted", map[string]interface{}{"membership_id": id})
	return nil
}
