package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carwash_backend/internal/middleware"
	"carwash_backend/internal/models"
	"carwash_backend/internal/services"
)

// TransactionHandler serves the cashier endpoints.
type TransactionHandler struct {
	trxService services.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ts services.TransactionService) *TransactionHandler {
	return &TransactionHandler{trxService: ts}
}

// PreviewPricing prices a wash without saving it.
func (h *TransactionHandler) PreviewPricing(c *gin.Context) {
	var req services.PreviewPricingRequest
	if !bindJSON(c, &req, "PreviewPricing") {
		return
	}
	result, err := h.trxService.PreviewPricing(req)
	if err != nil {
		respondServiceError(c, err, "PreviewPricing: Error from trxService.PreviewPricing", "Failed to compute pricing.")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TransactionHandler) withEmployee(c *gin.Context, req *services.TransactionRequest) {
	if req.EmployeeID == 0 {
		if id, ok := middleware.CurrentUserID(c); ok {
			req.EmployeeID = id
		}
	}
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req services.TransactionRequest
	if !bindJSON(c, &req, "CreateTransaction") {
		return
	}
	h.withEmployee(c, &req)

	trx, err := h.trxService.CreateTransaction(req)
	if err != nil {
		respondServiceError(c, err, "CreateTransaction: Error from trxService.CreateTransaction", "Failed to create transaction.")
		return
	}
	c.JSON(http.StatusCreated, trx)
}

func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "transaction")
	if !ok {
		return
	}
	var req services.TransactionRequest
	if !bindJSON(c, &req, "UpdateTransaction") {
		return
	}
	h.withEmployee(c, &req)

	trx, err := h.trxService.UpdateTransaction(id, req)
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("UpdateTransaction: Error for ID %d", id), "Failed to update transaction.")
		return
	}
	c.JSON(http.StatusOK, trx)
}

func (h *TransactionHandler) UpdateTransactionStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "transaction")
	if !ok {
		return
	}
	var req services.UpdateTransactionStatusRequest
	if !bindJSON(c, &req, "UpdateTransactionStatus") {
		return
	}
	trx, err := h.trxService.UpdateTransactionStatus(id, req)
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("UpdateTransactionStatus: Error for ID %d", id), "Failed to update transaction status.")
		return
	}
	c.JSON(http.StatusOK, trx)
}

func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "transaction")
	if !ok {
		return
	}
	trx, err := h.trxService.GetTransactionByID(id)
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("GetTransactionByID: Error for ID %d", id), "Failed to fetch transaction.")
		return
	}
	if own, isCustomer := ownCustomerID(c); isCustomer && (trx.CustomerID == nil || *trx.CustomerID != own) {
		respondServiceError(c, services.ErrTransactionNotFound, "GetTransactionByID", "Failed to fetch transaction.")
		return
	}
	c.JSON(http.StatusOK, trx)
}

func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	var filters models.TransactionFilters
	if !bindQuery(c, &filters, "GetTransactions") {
		return
	}
	if own, isCustomer := ownCustomerID(c); isCustomer {
		filters.CustomerID = &own
	}
	transactions, total, err := h.trxService.GetTransactions(filters)
	if err != nil {
		respondServiceError(c, err, "GetTransactions: Error from trxService.GetTransactions", "Failed to fetch transactions.")
		return
	}
	respondPage(c, transactions, total, filters.Page, filters.PageSize)
}

func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "transaction")
	if !ok {
		return
	}
	if err := h.trxService.DeleteTransaction(id); err != nil {
		respondServiceError(c, err, fmt.Sprintf("DeleteTransaction: Error for ID %d", id), "Failed to delete transaction.")
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportTransactions streams the filtered transactions as a CSV download.
func (h *TransactionHandler) ExportTransactions(c *gin.Context) {
	var filters models.TransactionFilters
	if !bindQuery(c, &filters, "ExportTransactions") {
		return
	}
	var buf bytes.Buffer
	if err := h.trxService.ExportTransactionsCSV(filters, &buf); err != nil {
		respondServiceError(c, err, "ExportTransactions: Error from trxService.ExportTransactionsCSV", "Failed to export transactions.")
		return
	}
	filename := fmt.Sprintf("transactions-%s.csv", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
