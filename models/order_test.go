package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderTotalCostSumsSnapshots(t *testing.T) {
	order := Order{
		Items: []OrderItem{
			{Price: 10, Quantity: 2},
			{Price: 2.5, Quantity: 3},
		},
	}
	assert.InDelta(t, 27.5, order.TotalCost(), 1e-9)
}

func TestOrderTotalCostEmpty(t *testing.T) {
	order := Order{}
	assert.Zero(t, order.TotalCost())
}

func TestCartTotalCostUsesProductPrice(t *testing.T) {
	cart := Cart{
		Items: []CartItem{
			{Product: Product{Price: 4}, Quantity: 5},
			{Product: Product{Price: 1.25}, Quantity: 4},
		},
	}
	assert.InDelta(t, 25, cart.TotalCost(), 1e-9)
}

func TestPaymentSessionExpired(t *testing.T) {
	now := time.Now()
	session := PaymentSession{ExpiresAt: now.Add(30 * time.Minute)}

	assert.False(t, session.Expired(now))
	assert.False(t, session.Expired(now.Add(30*time.Minute))) // boundary counts as live
	assert.True(t, session.Expired(now.Add(31*time.Minute)))
}

func TestPaymentSessionConsumed(t *testing.T) {
	var session PaymentSession
	assert.False(t, session.Consumed())

	now := time.Now()
	session.ConsumedAt = &now
	assert.True(t, session.Consumed())
}
