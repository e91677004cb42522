package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"afrikpay_store/internal/domain"     // Record types
	"afrikpay_store/internal/repository" // Filters and pages

	"github.com/gin-gonic/gin"                   // Gin web framework
	"github.com/sirupsen/logrus"                 // Logging library
	"go.mongodb.org/mongo-driver/bson/primitive" // ObjectID
)

// CreateTransactionRequest represents a new money movement
type CreateTransactionRequest struct {
	UserID   primitive.ObjectID     `json:"user_id"`  // Owning user
	Type     domain.TransactionType `json:"type"`     // crypto_purchase, wallet_deposit, transfer
	Amount   domain.Amount          `json:"amount"`   // Exact decimal amount
	Currency domain.Currency        `json:"currency"` // Transaction currency
}

// UpdateStatusRequest represents a lifecycle step
type UpdateStatusRequest struct {
	Status domain.TransactionStatus `json:"status" binding:"required"` // Target status
}

// CreateTransactionHandler records a transaction in the pending state
func CreateTransactionHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || req.UserID.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := c.Request.Context()
		if _, err := d.Users.GetByID(ctx, req.UserID); err != nil {
			writeError(c, err, "Fetch user")
			return
		}
		tx := domain.Transaction{
			UserID:    req.UserID,
			Type:      req.Type,
			Amount:    req.Amount,
			Currency:  req.Currency,
			Status:    domain.StatusPending, // Every transaction starts pending
			CreatedAt: d.now(),
		}
		if err := d.Transactions.Create(ctx, &tx); err != nil {
			writeError(c, err, "Create transaction")
			return
		}
		logrus.WithFields(logrus.Fields{
			"transaction_id": tx.ID.Hex(),        // New transaction
			"user_id":        tx.UserID.Hex(),    // Owning user
			"type":           tx.Type,            // Transaction type
			"amount":         tx.Amount.String(), // Exact amount
			"currency":       tx.Currency,        // Currency
		}).Info("Transaction created")
		c.JSON(http.StatusCreated, gin.H{"transaction": tx})
	}
}

// GetTransactionHandler returns one transaction by id
func GetTransactionHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		tx, err := d.Transactions.GetByID(c.Request.Context(), id)
		if err != nil {
			writeError(c, err, "Fetch transaction")
			return
		}
		c.JSON(http.StatusOK, gin.H{"transaction": tx})
	}
}

// ListTransactionsHandler returns transactions, newest first, with optional
// filtering by user, status or type
func ListTransactionsHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter repository.TransactionFilter
		if userID := c.Query("user_id"); userID != "" {
			id, err := primitive.ObjectIDFromHex(userID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
				return
			}
			filter.UserID = id // Filter by user ID
		}
		if status := domain.TransactionStatus(c.Query("status")); status != "" {
			if !status.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
				return
			}
			filter.Status = status // Filter by status
		}
		if txType := domain.TransactionType(c.Query("type")); txType != "" {
			if !txType.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type"})
				return
			}
			filter.Type = txType // Filter by transaction type
		}
		pageNum, _ := strconv.Atoi(c.Query("page"))       // Zero falls back to page 1
		pageSize, _ := strconv.Atoi(c.Query("page_size")) // Zero falls back to the default size
		page := repository.NewPage(pageNum, pageSize)

		txs, total, err := d.Transactions.List(c.Request.Context(), filter, page)
		if err != nil {
			writeError(c, err, "Fetch transactions")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"transactions": txs,                    // Current page
			"page":         page.Number,            // Current page number
			"page_size":    page.Size,              // Page size
			"total":        total,                  // Total matching transactions
			"total_pages":  page.TotalPages(total), // Total pages
		})
	}
}

// UpdateTransactionStatusHandler moves a transaction along its lifecycle
func UpdateTransactionStatusHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		var req UpdateStatusRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || !req.Status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		ctx := c.Request.Context()
		tx, err := d.Transactions.GetByID(ctx, id)
		if err != nil {
			writeError(c, err, "Fetch transaction")
			return
		}
		from := tx.Status
		now := d.now()
		// Check the lifecycle table before touching storage
		if err := tx.Transition(req.Status, now); err != nil {
			writeError(c, err, "Update status")
			return
		}
		// The stored status must still be from, otherwise another writer won
		if err := d.Transactions.UpdateStatus(ctx, id, from, req.Status, now); err != nil {
			writeError(c, err, "Update status")
			return
		}
		logrus.WithFields(logrus.Fields{
			"transaction_id": id.Hex(),   // Transaction
			"from":           from,       // Previous status
			"to":             req.Status, // New status
		}).Info("Transaction status changed")
		c.JSON(http.StatusOK, gin.H{"transaction": tx})
	}
}
