package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the mutable pre-order collection bound to a session token or, once
// the shopper signs in, to a user. Derived totals are recomputed on every
// mutation and are never read stale.
type Cart struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID        *uuid.UUID      `gorm:"column:user_id;type:uuid;index"`
	SessionCartID *string         `gorm:"column:session_cart_id;index"`
	Items         []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	ItemsPrice    decimal.Decimal `gorm:"column:items_price;type:decimal(12,2);not null;default:0"`
	ShippingPrice decimal.Decimal `gorm:"column:shipping_price;type:decimal(12,2);not null;default:0"`
	TaxPrice      decimal.Decimal `gorm:"column:tax_price;type:decimal(12,2);not null;default:0"`
	TotalPrice    decimal.Decimal `gorm:"column:total_price;type:decimal(12,2);not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
