package api

import (
	"net/http" // HTTP status codes

	"afrikpay_store/internal/domain" // Record types
	"afrikpay_store/internal/utils"  // Cache keys

	"github.com/gin-gonic/gin"                   // Gin web framework
	"github.com/sirupsen/logrus"                 // Logging library
	"go.mongodb.org/mongo-driver/bson/primitive" // ObjectID
)

// CreateWalletRequest represents a wallet opening
type CreateWalletRequest struct {
	UserID   primitive.ObjectID `json:"user_id"`  // Owning user
	Currency domain.Currency    `json:"currency"` // One of USD, XAF, USDT, BTC
	Balance  *domain.Amount     `json:"balance"`  // Opening balance, defaults to 0
}

// CreateWalletHandler opens a wallet for an existing user
func CreateWalletHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateWalletRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || req.UserID.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := c.Request.Context()
		// The schema does not enforce the reference, so check the owner here
		if _, err := d.Users.GetByID(ctx, req.UserID); err != nil {
			writeError(c, err, "Fetch user")
			return
		}
		balance := domain.ZeroAmount()
		if req.Balance != nil {
			balance = *req.Balance
		}
		now := d.now()
		wallet := domain.Wallet{
			UserID:    req.UserID,
			Currency:  req.Currency,
			Balance:   balance,
			CreatedAt: now,
			UpdatedAt: &now,
		}
		if err := d.Wallets.Create(ctx, &wallet); err != nil {
			writeError(c, err, "Create wallet")
			return
		}
		// Invalidate the owner's wallet list
		if err := d.Cache.Delete(ctx, utils.WalletsKey(req.UserID.Hex())); err != nil {
			logrus.WithError(err).Warn("Failed to invalidate wallet cache")
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   wallet.UserID.Hex(), // Owning user
			"wallet_id": wallet.ID.Hex(),     // New wallet
			"currency":  wallet.Currency,     // Wallet currency
		}).Info("Wallet created")
		c.JSON(http.StatusCreated, gin.H{"wallet": wallet})
	}
}

// ListUserWalletsHandler returns a user's wallets, or the one wallet in the
// currency query parameter
func ListUserWalletsHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := parseID(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if currency := domain.Currency(c.Query("currency")); currency != "" {
			if !currency.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported currency"})
				return
			}
			wallet, err := d.Wallets.GetByUserAndCurrency(ctx, userID, currency)
			if err != nil {
				writeError(c, err, "Fetch wallet")
				return
			}
			c.JSON(http.StatusOK, gin.H{"wallet": wallet})
			return
		}

		cacheKey := utils.WalletsKey(userID.Hex())
		var cached []domain.Wallet
		if found, err := d.Cache.Get(ctx, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"wallets": cached, "cached": true})
			return
		}
		wallets, err := d.Wallets.ListByUser(ctx, userID)
		if err != nil {
			writeError(c, err, "Fetch wallets")
			return
		}
		_ = d.Cache.Set(ctx, cacheKey, wallets) // Cache the list for later reads
		c.JSON(http.StatusOK, gin.H{"wallets": wallets, "cached": false})
	}
}
