package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/prostore-labs/storefront-backend/pkg/db/types"
	"github.com/prostore-labs/storefront-backend/pkg/enums"
)

// User carries the profile data the order factory reads: saved shipping
// address and the single canonical payment method column.
type User struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Name          string               `gorm:"column:name;not null"`
	Email         string               `gorm:"column:email;not null;uniqueIndex"`
	Role          enums.UserRole       `gorm:"column:role;not null;default:'user'"`
	Address       *types.Address       `gorm:"column:address;type:jsonb;serializer:json"`
	PaymentMethod *enums.PaymentMethod `gorm:"column:payment_method"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
