package paymentControllers

import (
	"errors"
	"net/http"

	orderControllers "github.com/Sahiqur/eshop/controllers/order"
	"github.com/Sahiqur/eshop/gateway"
	"github.com/Sahiqur/eshop/models"
	"github.com/Sahiqur/eshop/notify"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler wires the checkout/payment flow to its collaborators. Unlike the
// plain db-closure controllers, this one owns external dependencies, so it is
// a struct.
type Handler struct {
	db     *gorm.DB
	gw     gateway.Initiator
	mailer notify.Sender
	logger *zap.Logger
}

func NewHandler(db *gorm.DB, gw gateway.Initiator, mailer notify.Sender, logger *zap.Logger) *Handler {
	return &Handler{db: db, gw: gw, mailer: mailer, logger: logger}
}

func currentUserID(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}

// profilePrefill returns the shipping-form defaults from the user's profile,
// or nil if the profile cannot be read.
func (h *Handler) profilePrefill(userID string) gin.H {
	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil
	}
	return gin.H{
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"email":      user.Email,
	}
}

// GET /user/checkout
// Returns the cart summary plus profile prefill for the shipping form. No
// state is mutated.
func (h *Handler) CheckoutForm(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var cart models.Cart
	if err := h.db.Preload("Items.Product").Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusConflict, gin.H{"error": "Your cart is empty.", "redirect": "/cart"})
			return
		}
		h.logger.Error("checkout form failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load checkout"})
		return
	}
	if len(cart.Items) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Your cart is empty.", "redirect": "/cart"})
		return
	}

	prefill := h.profilePrefill(userID)
	if prefill == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart":    cart,
		"total":   cart.TotalCost(),
		"prefill": prefill,
	})
}

// POST /user/checkout
func (h *Handler) Checkout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		// Echo the prefill back so the client can re-render the form.
		resp := gin.H{"error": "Invalid checkout form: " + err.Error()}
		if prefill := h.profilePrefill(userID); prefill != nil {
			resp["prefill"] = prefill
		}
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	order, session, err := Checkout(h.db, userID, input)
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			c.JSON(http.StatusConflict, gin.H{"error": "Your cart is empty.", "redirect": "/cart"})
			return
		}
		h.logger.Error("checkout failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		return
	}

	h.logger.Info("checkout submitted",
		zap.Uint("order_id", order.ID),
		zap.String("user_id", userID),
		zap.Float64("total", order.TotalCost()))

	c.JSON(http.StatusCreated, gin.H{
		"order":          order,
		"total":          order.TotalCost(),
		"checkout_token": session.Token,
	})
}

type processInput struct {
	CheckoutToken string `json:"checkout_token"`
}

// POST /user/payment/process
// Idempotent: re-invocation with the same token reuses the same pending order
// and creates nothing.
func (h *Handler) ProcessPayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input processInput
	_ = c.ShouldBindJSON(&input)
	token := input.CheckoutToken
	if token == "" {
		token = c.Query("checkout_token")
	}
	if token == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "No checkout in progress.", "redirect": "/"})
		return
	}

	order, session, err := LoadPendingOrder(h.db, token, userID)
	if err != nil {
		if errors.Is(err, ErrNoActiveOrder) {
			c.JSON(http.StatusConflict, gin.H{"error": "No checkout in progress.", "redirect": "/"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
		return
	}

	result := h.gw.Initiate(c.Request.Context(), order, session)
	if result.Status != gateway.StatusSuccess {
		h.logger.Warn("payment initiation failed",
			zap.Uint("order_id", order.ID),
			zap.String("reason", result.Reason))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":    "Payment failed. Please try again.",
			"redirect": "/checkout",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_url": result.GatewayPageURL})
}

// POST|GET /payment/success/:token
func (h *Handler) PaymentSuccess(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	token := c.Param("token")

	transactionID := c.PostForm("val_id")
	if transactionID == "" {
		transactionID = c.Query("val_id")
	}

	order, err := MarkPaid(h.db, token, userID, transactionID)
	if err != nil {
		if errors.Is(err, ErrNoActiveOrder) {
			c.JSON(http.StatusConflict, gin.H{"error": "No checkout in progress.", "redirect": "/"})
			return
		}
		h.logger.Error("payment confirmation failed", zap.String("token", token), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm payment"})
		return
	}

	// Post-commit, best-effort: a failed email or broadcast must not undo the
	// confirmed payment.
	if err := h.mailer.SendOrderConfirmation(order); err != nil {
		h.logger.Warn("confirmation email not sent", zap.Uint("order_id", order.ID), zap.Error(err))
	}
	orderControllers.BroadcastOrderPaid(*order)

	h.logger.Info("payment confirmed",
		zap.Uint("order_id", order.ID),
		zap.String("transaction_id", order.TransactionID))

	c.JSON(http.StatusOK, gin.H{
		"message": "Your payment was successful.",
		"order":   order,
		"total":   order.TotalCost(),
	})
}

// POST|GET /payment/fail/:token
func (h *Handler) PaymentFail(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	order, err := CancelPending(h.db, c.Param("token"), userID)
	if err != nil {
		if errors.Is(err, ErrNoActiveOrder) {
			c.JSON(http.StatusConflict, gin.H{"error": "No checkout in progress.", "redirect": "/"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	h.logger.Info("payment failed at gateway", zap.Uint("order_id", order.ID))
	c.JSON(http.StatusOK, gin.H{
		"error":    "Your payment failed.",
		"order":    order,
		"redirect": "/checkout",
	})
}

// POST|GET /payment/cancel/:token
func (h *Handler) PaymentCancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	order, err := CancelPending(h.db, c.Param("token"), userID)
	if err != nil {
		if errors.Is(err, ErrNoActiveOrder) {
			c.JSON(http.StatusConflict, gin.H{"error": "No checkout in progress.", "redirect": "/"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	h.logger.Info("payment cancelled by user", zap.Uint("order_id", order.ID))
	c.JSON(http.StatusOK, gin.H{
		"error":    "Your payment was cancelled.",
		"order":    order,
		"redirect": "/cart",
	})
}
