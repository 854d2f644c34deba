package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"carwash_backend/internal/models"
	"carwash_backend/internal/services"
)

type MembershipHandler struct {
	membershipService services.MembershipService
	vehicleService    services.VehicleService
}

// NewMembershipHandler creates a new MembershipHandler.
func NewMembershipHandler(ms services.MembershipService, vs services.VehicleService) *MembershipHandler {
	return &MembershipHandler{membershipService: ms, vehicleService: vs}
}

func (h *MembershipHandler) CreateMembership(c *gin.Context) {
	var req services.CreateMembershipRequest
	if !bindJSON(c, &req, "CreateMembership") {
		return
	}
	purchase, err := h.membershipService.CreateMembership(req)
	if err != nil {
		respondServiceError(c, err, "CreateMembership: Error from membershipService.CreateMembership", "Failed to create membership.")
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func (h *MembershipHandler) GetMemberships(c *gin.Context) {
	var filters models.MembershipFilters
	if !bindQuery(c, &filters, "GetMemberships") {
		return
	}
	if own, isCustomer := ownCustomerID(c); isCustomer {
		filters.CustomerID = &own
	}
	memberships, total, err := h.membershipService.GetMemberships(filters)
	if err != nil {
		respondServiceError(c, err, "GetMemberships: Error from membershipService.GetMemberships", "Failed to fetch memberships.")
		return
	}
	respondPage(c, memberships, total, filters.Page, filters.PageSize)
}

func (h *MembershipHandler) GetMembershipByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "membership")
	if !ok {
		return
	}
	m, err := h.membershipService.GetMembershipByID(id)
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("GetMembershipByID: Error for ID %d", id), "Failed to fetch membership.")
		return
	}
	if !h.ownsVehicle(c, m.VehicleID) {
		return
	}
	c.JSON(http.StatusOK, m)
}

// GetActiveMembership resolves the membership of a vehicle on ?date= (default today).
func (h *MembershipHandler) GetActiveMembership(c *gin.Context) {
	vehicleID, ok := parseIDParam(c, "id", "vehicle")
	if !ok {
		return
	}
	if !h.ownsVehicle(c, vehicleID) {
		return
	}
	m, err := h.membershipService.GetActiveMembership(vehicleID, c.Query("date"))
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("GetActiveMembership: Error for vehicle %d", vehicleID), "Failed to resolve membership.")
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MembershipHandler) DeleteMembership(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "membership")
	if !ok {
		return
	}
	if err := h.membershipService.DeleteMembership(id); err != nil {
		respondServiceError(c, err, fmt.Sprintf("DeleteMembership: Error for ID %d", id), "Failed to delete membership.")
		return
	}
	c.Status(http.StatusNoContent)
}

// ownsVehicle lets staff through and checks customers against the vehicle owner.
func (h *MembershipHandler) ownsVehicle(c *gin.Context, vehicleID int64) bool {
	own, isCustomer := ownCustomerID(c)
	if !isCustomer {
		return true
	}
	v, err := h.vehicleService.GetVehicleByID(vehicleID)
	if err != nil {
		respondServiceError(c, err, "ownsVehicle: Error from vehicleService.GetVehicleByID", "Failed to fetch vehicle.")
		return false
	}
	if v.CustomerID != own {
		respondForbidden(c)
		return false
	}
	return true
}
