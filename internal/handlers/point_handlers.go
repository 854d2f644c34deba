package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carwash_backend/internal/models"
	"carwash_backend/internal/services"
	"carwash_backend/pkg/utils"
)

type PointHandler struct {
	ledger services.PointsLedger
	loc    *time.Location
}

// NewPointHandler creates a new PointHandler. loc decides what "today" is
// when no ?as_of= date is given.
func NewPointHandler(ledger services.PointsLedger, loc *time.Location) *PointHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &PointHandler{ledger: ledger, loc: loc}
}

// GetCustomerPoints returns the spendable balance and its entries.
func (h *PointHandler) GetCustomerPoints(c *gin.Context) {
	customerID, ok := parseIDParam(c, "id", "customer")
	if !ok {
		return
	}
	if own, isCustomer := ownCustomerID(c); isCustomer && own != customerID {
		respondForbidden(c)
		return
	}

	asOf := time.Now().In(h.loc)
	if s := c.Query("as_of"); s != "" {
		d, err := models.ParseDate(s)
		if err != nil {
			utils.RespondValidationFailed(c, err.Error())
			return
		}
		asOf = d
	}

	balance, err := h.ledger.Balance(customerID, asOf)
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("GetCustomerPoints: Error for customer %d", customerID), "Failed to fetch points.")
		return
	}
	c.JSON(http.StatusOK, balance)
}

// GetTransactionPoints shows the grant of one wash. Customers only see grants
// made to them; anything else looks like a missing grant.
func (h *PointHandler) GetTransactionPoints(c *gin.Context) {
	trxID, ok := parseIDParam(c, "id", "transaction")
	if !ok {
		return
	}
	entry, err := h.ledger.EntryForTransaction(trxID)
	if err == nil {
		if own, isCustomer := ownCustomerID(c); isCustomer && own != entry.CustomerID {
			err = fmt.Errorf("%w: transaction %d", services.ErrPointEntryNotFound, trxID)
		}
	}
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("GetTransactionPoints: Error for transaction %d", trxID), "Failed to fetch points.")
		return
	}
	c.JSON(http.StatusOK, entry)
}
