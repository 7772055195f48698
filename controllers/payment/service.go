package paymentControllers

import (
	"errors"
	"time"

	"github.com/Sahiqur/eshop/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrEmptyCart rejects checkout when the cart is missing or has no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNoActiveOrder covers a missing, foreign, expired, consumed, or
	// already-finalized checkout token.
	ErrNoActiveOrder = errors.New("no active order for this checkout")
)

// sessionTTL bounds how long a pending checkout token stays redeemable.
const sessionTTL = 30 * time.Minute

// lockForUpdate serializes concurrent confirmations of the same order.
// SQLite has no row locks and serializes writers itself.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

type CheckoutInput struct {
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
}

// Checkout turns the user's cart into a pending order. In one transaction it
// reads the cart under a row lock, creates the order with per-item price
// snapshots, clears the cart, and issues the payment session token the gateway
// redirect chain will carry. The lock serializes a double-submitted checkout:
// the second transaction waits, then finds the cart already emptied and
// returns ErrEmptyCart instead of creating a duplicate order.
func Checkout(db *gorm.DB, userID string, input CheckoutInput) (*models.Order, *models.PaymentSession, error) {
	var order models.Order
	var session models.PaymentSession

	err := db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := lockForUpdate(tx).
			Preload("Items.Product").
			Where("user_id = ?", userID).
			First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmptyCart
			}
			return err
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		order = models.Order{
			UserID:     userID,
			FirstName:  input.FirstName,
			LastName:   input.LastName,
			Email:      input.Email,
			Phone:      input.Phone,
			Address:    input.Address,
			City:       input.City,
			PostalCode: input.PostalCode,
			Status:     models.OrderStatusPending,
			Paid:       false,
		}
		for _, item := range cart.Items {
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   item.ProductID,
				ProductName: item.Product.Name,
				Price:       item.Product.Price,
				Quantity:    item.Quantity,
			})
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		session = models.PaymentSession{
			Token:     uuid.NewString(),
			OrderID:   order.ID,
			UserID:    userID,
			ExpiresAt: time.Now().Add(sessionTTL),
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &order, &session, nil
}

// LoadPendingOrder resolves a checkout token to its still-payable order.
// Repeated calls are harmless: nothing is created or mutated here, so payment
// initiation can be retried against the same pending order.
func LoadPendingOrder(db *gorm.DB, token, userID string) (*models.Order, *models.PaymentSession, error) {
	var session models.PaymentSession
	if err := db.Where("token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNoActiveOrder
		}
		return nil, nil, err
	}
	if session.UserID != userID || session.Consumed() || session.Expired(time.Now()) {
		return nil, nil, ErrNoActiveOrder
	}

	var order models.Order
	if err := db.Preload("Items").First(&order, session.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNoActiveOrder
		}
		return nil, nil, err
	}
	if order.Paid || order.Status != models.OrderStatusPending {
		return nil, nil, ErrNoActiveOrder
	}
	return &order, &session, nil
}

// MarkPaid finalizes a successful gateway confirmation: paid=true,
// status=processing, transaction id recorded, stock decremented once per order
// item and floored at zero, session consumed. The order row is locked for the
// whole sequence and a second invocation for the same token is a no-op, so
// gateway retries and user refreshes cannot decrement stock twice.
func MarkPaid(db *gorm.DB, token, userID, transactionID string) (*models.Order, error) {
	var out models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var session models.PaymentSession
		if err := tx.Where("token = ?", token).First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoActiveOrder
			}
			return err
		}
		if session.UserID != userID {
			return ErrNoActiveOrder
		}

		var order models.Order
		if err := lockForUpdate(tx).
			Preload("Items").
			First(&order, session.OrderID).Error; err != nil {
			return err
		}

		if order.Paid {
			// Already confirmed, nothing left to apply.
			out = order
			return nil
		}
		if order.Status != models.OrderStatusPending {
			return ErrNoActiveOrder
		}
		if session.Consumed() || session.Expired(time.Now()) {
			return ErrNoActiveOrder
		}

		if transactionID == "" {
			transactionID = session.Token
		}
		if err := tx.Model(&order).Updates(map[string]interface{}{
			"paid":           true,
			"status":         models.OrderStatusProcessing,
			"transaction_id": transactionID,
		}).Error; err != nil {
			return err
		}

		for _, item := range order.Items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				Update("stock", gorm.Expr(
					"CASE WHEN stock < ? THEN 0 ELSE stock - ? END",
					item.Quantity, item.Quantity,
				)).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&session).Update("consumed_at", time.Now()).Error; err != nil {
			return err
		}

		order.Paid = true
		order.Status = models.OrderStatusProcessing
		order.TransactionID = transactionID
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelPending moves a pending order to cancelled and puts the checked-out
// items back into the user's cart, so an abandoned or declined payment does
// not lose the selection. Calling it again on an already-cancelled order is a
// no-op; paid or delivered orders are untouchable.
func CancelPending(db *gorm.DB, token, userID string) (*models.Order, error) {
	var out models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var session models.PaymentSession
		if err := tx.Where("token = ?", token).First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoActiveOrder
			}
			return err
		}
		if session.UserID != userID {
			return ErrNoActiveOrder
		}

		var order models.Order
		if err := lockForUpdate(tx).
			Preload("Items").
			First(&order, session.OrderID).Error; err != nil {
			return err
		}

		if order.Status == models.OrderStatusCancelled {
			out = order
			return nil
		}
		if order.Paid || order.Status != models.OrderStatusPending {
			return ErrNoActiveOrder
		}

		if err := tx.Model(&order).Update("status", models.OrderStatusCancelled).Error; err != nil {
			return err
		}
		if err := restoreCart(tx, userID, order.Items); err != nil {
			return err
		}
		if !session.Consumed() {
			if err := tx.Model(&session).Update("consumed_at", time.Now()).Error; err != nil {
				return err
			}
		}

		order.Status = models.OrderStatusCancelled
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// restoreCart rebuilds cart items from an order's snapshots. Quantities are
// added onto anything the user has put in the cart since checkout.
func restoreCart(tx *gorm.DB, userID string, items []models.OrderItem) error {
	var cart models.Cart
	if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		cart = models.Cart{UserID: userID}
		if err := tx.Create(&cart).Error; err != nil {
			return err
		}
	}

	for _, item := range items {
		var existing models.CartItem
		err := tx.Where("cart_id = ? AND product_id = ?", cart.CartID, item.ProductID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(&models.CartItem{
				CartID:    cart.CartID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				AddedAt:   time.Now(),
			}).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		existing.Quantity += item.Quantity
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
	}
	return nil
}
