package models

import "time"

type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_product_user" json:"product_id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_product_user" json:"user_id"`
	Score     int       `gorm:"not null" json:"score"` // 1..5
	Review    string    `json:"review"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
