package credit

import (
	"errors"
	"net/http"
	"strconv"

	"matbook/internal/auth"
	"matbook/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo *Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// GetMyBalance godoc
// @Summary      Get credit balance
// @Tags         credits
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  BalanceResponse
// @Failure      401  {object}  gin.H
// @Failure      500  {object}  gin.H
// @Router       /me/credits [get]
func (h *Handler) GetMyBalance(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	balance, err := h.repo.GetBalance(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch balance"})
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{UserID: userID, Balance: balance})
}

// GetMyLedger godoc
// @Summary      Get credit ledger history
// @Tags         credits
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Page size (default 50)"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {array}   Entry
// @Failure      401     {object}  gin.H
// @Failure      500     {object}  gin.H
// @Router       /me/credits/history [get]
func (h *Handler) GetMyLedger(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.repo.GetEntries(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ledger"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// Purchase godoc
// @Summary      Purchase class credits
// @Description  Adds credits to the member's balance with a purchase ledger entry.
// @Tags         credits
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      map[string]int  true  "Amount payload"
// @Success      200      {object}  BalanceResponse
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /me/credits/purchase [post]
func (h *Handler) Purchase(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req struct {
		Amount int `json:"amount" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive integer"})
		return
	}

	err := h.repo.Apply(c.Request.Context(), userID, req.Amount, TypePurchase, "credit purchase", strconv.Itoa(userID), false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add credits"})
		return
	}
	metrics.RecordLedgerEntry(string(TypePurchase))

	balance, err := h.repo.GetBalance(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch balance"})
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{UserID: userID, Balance: balance})
}

// AdjustCredits godoc
// @Summary      Adjust a member's credits
// @Description  Staff credit adjustment with a signed amount and required description.
// @Tags         credits
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        userID   path      int            true  "User ID"
// @Param        request  body      AdjustRequest  true  "Adjustment payload"
// @Success      200      {object}  BalanceResponse
// @Failure      400      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/users/{userID}/credits [post]
func (h *Handler) AdjustCredits(c *gin.Context) {
	staffID, _ := auth.GetUserID(c)

	userID, err := strconv.Atoi(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.repo.Apply(c.Request.Context(), userID, req.Amount, TypeAdjustment, req.Description, strconv.Itoa(staffID), true)
	if err != nil {
		if errors.Is(err, ErrInsufficientCredits) {
			c.JSON(http.StatusConflict, gin.H{"error": "Adjustment would make balance negative"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to adjust credits"})
		return
	}
	metrics.RecordLedgerEntry(string(TypeAdjustment))

	balance, err := h.repo.GetBalance(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch balance"})
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{UserID: userID, Balance: balance})
}
