package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finova/internal/errors"
	"finova/internal/models"
	"finova/internal/pagination"
	"finova/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// Owner defaults to the session's current owner; is_paid defaults from the
// payment method.
type CreateTransactionRequest struct {
	Description     string                 `json:"description" binding:"required,max=500"`
	Amount          decimal.Decimal        `json:"amount" binding:"dpositive"`
	Type            models.TransactionType `json:"type" binding:"required,transaction_type"`
	Category        string                 `json:"category" binding:"required,max=100"`
	Owner           models.Owner           `json:"owner"`
	Date            string                 `json:"date" binding:"required,calendar_date"`
	IsRecurring     bool                   `json:"is_recurring"`
	RecurringMonths int                    `json:"recurring_months" binding:"min=0,max=600"`
	PaymentMethod   models.PaymentMethod   `json:"payment_method" binding:"required,payment_method"`
	IsPaid          *bool                  `json:"is_paid"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Create an income or expense. A recurring transaction with recurring_months > 0 is expanded into that many monthly installments.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} map[string][]models.Transaction "Created transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	sc, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	owner := req.Owner
	if owner == "" {
		owner = sc.Owner
	}

	created, err := h.transactionService.CreateTransaction(c.Request.Context(), services.CreateTransactionInput{
		Description:     req.Description,
		Amount:          req.Amount,
		Type:            req.Type,
		Category:        req.Category,
		Owner:           owner,
		Date:            date,
		IsRecurring:     req.IsRecurring,
		RecurringMonths: req.RecurringMonths,
		PaymentMethod:   req.PaymentMethod,
		IsPaid:          req.IsPaid,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transactions": created})
}

// ListTransactions handles listing transactions for a month or a search
// @Summary     List transactions
// @Description Get a paginated list of transactions. A search term matches description or category across all months and replaces the month scope.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       month     query string false "Month (YYYY-MM, default current)"
// @Param       search    query string false "Case-insensitive description/category search"
// @Param       owner     query string false "Owner scope (default session owner)"
// @Param       type      query string false "income or expense"
// @Param       category  query string false "Category name"
// @Param       paid      query bool   false "Filter by paid status"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 50, max 200)"
// @Param       sort      query string false "date, amount, description or created_at; prefix - for descending"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListTransactions(c.Request.Context(), filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	owner, err := ownerFilter(c)
	if err != nil {
		return filter, err
	}
	filter.Owner = owner

	month, err := parseMonthQuery(c, "month")
	if err != nil {
		return filter, err
	}
	filter.Month = &month
	filter.Search = c.Query("search")
	filter.Category = c.Query("category")

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(v)
		switch txType {
		case models.TransactionTypeIncome, models.TransactionTypeExpense:
			filter.Type = &txType
		default:
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type, must be income or expense")
		}
	}

	paid, err := parseBoolQuery(c, "paid")
	if err != nil {
		return filter, err
	}
	filter.IsPaid = paid

	return filter, nil
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Description Get a specific transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
type UpdateTransactionRequest struct {
	Description   *string                 `json:"description" binding:"omitempty,min=1,max=500"`
	Amount        *decimal.Decimal        `json:"amount" binding:"omitempty,dpositive"`
	Type          *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	Category      *string                 `json:"category" binding:"omitempty,min=1,max=100"`
	Date          *string                 `json:"date" binding:"omitempty,calendar_date"`
	PaymentMethod *models.PaymentMethod   `json:"payment_method" binding:"omitempty,payment_method"`
}

// UpdateTransaction handles updating an existing transaction
// @Summary     Update transaction
// @Description Update the editable fields of a transaction. The paid status is only changed by toggle-status.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} map[string]models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in := services.UpdateTransactionInput{
		Description:   req.Description,
		Amount:        req.Amount,
		Type:          req.Type,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
	}
	if req.Date != nil {
		date, err := parseDate("date", *req.Date)
		if err != nil {
			respondWithError(c, err)
			return
		}
		in.Date = &date
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), id, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// ToggleStatus flips a transaction between paid and pending
// @Summary     Toggle paid status
// @Description Flip a transaction between paid and pending
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id}/toggle-status [post]
func (h *TransactionHandler) ToggleStatus(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.ToggleStatus(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles deleting a transaction
// @Summary     Delete transaction
// @Description Delete a single transaction. Other installments of the same recurrence are kept.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]string "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// ReconcileMonth carries open-ended recurring transactions into a month
// @Summary     Reconcile recurring transactions
// @Description Copy open-ended recurring transactions of the previous month into the given month when no matching entry exists yet
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Target month (YYYY-MM, default current)"
// @Param       owner query string false "Owner scope (default session owner)"
// @Success     200 {object} map[string][]models.Transaction "Created copies"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/reconcile [post]
func (h *TransactionHandler) ReconcileMonth(c *gin.Context) {
	owner, err := ownerFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := parseMonthQuery(c, "month")
	if err != nil {
		respondWithError(c, err)
		return
	}

	created, err := h.transactionService.ReconcileMonth(c.Request.Context(), month, owner)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"created": created, "month": month.String()})
}
