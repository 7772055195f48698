package models

import "time"

// PaymentSession correlates a pending checkout with the gateway redirect chain.
// The token is the only identifier the gateway callbacks carry; callbacks never
// accept a raw order id.
type PaymentSession struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Token      string     `gorm:"uniqueIndex;not null" json:"token"`
	OrderID    uint       `gorm:"index;not null" json:"order_id"`
	UserID     string     `gorm:"index;not null" json:"user_id"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (s *PaymentSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

func (s *PaymentSession) Consumed() bool {
	return s.ConsumedAt != nil
}
