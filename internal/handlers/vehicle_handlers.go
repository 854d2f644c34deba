package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"carwash_backend/internal/models"
	"carwash_backend/internal/services"
)

type VehicleHandler struct {
	vehicleService services.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vs services.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vs}
}

func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var req services.CreateVehicleRequest
	if !bindJSON(c, &req, "CreateVehicle") {
		return
	}
	v, err := h.vehicleService.CreateVehicle(req)
	if err != nil {
		respondServiceError(c, err, "CreateVehicle: Error from vehicleService.CreateVehicle", "Failed to create vehicle.")
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *VehicleHandler) GetVehicles(c *gin.Context) {
	var filters models.VehicleFilters
	if !bindQuery(c, &filters, "GetVehicles") {
		return
	}
	if own, isCustomer := ownCustomerID(c); isCustomer {
		filters.CustomerID = &own
	}
	vehicles, total, err := h.vehicleService.GetVehicles(filters)
	if err != nil {
		respondServiceError(c, err, "GetVehicles: Error from vehicleService.GetVehicles", "Failed to fetch vehicles.")
		return
	}
	respondPage(c, vehicles, total, filters.Page, filters.PageSize)
}

func (h *VehicleHandler) GetVehicleByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "vehicle")
	if !ok {
		return
	}
	v, err := h.vehicleService.GetVehicleByID(id)
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("GetVehicleByID: Error for ID %d", id), "Failed to fetch vehicle.")
		return
	}
	if own, isCustomer := ownCustomerID(c); isCustomer && v.CustomerID != own {
		respondForbidden(c)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "vehicle")
	if !ok {
		return
	}
	var req services.UpdateVehicleRequest
	if !bindJSON(c, &req, "UpdateVehicle") {
		return
	}
	v, err := h.vehicleService.UpdateVehicle(id, req)
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("UpdateVehicle: Error for ID %d", id), "Failed to update vehicle.")
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "vehicle")
	if !ok {
		return
	}
	if err := h.vehicleService.DeleteVehicle(id); err != nil {
		respondServiceError(c, err, fmt.Sprintf("DeleteVehicle: Error for ID %d", id), "Failed to delete vehicle.")
		return
	}
	c.Status(http.StatusNoContent)
}
