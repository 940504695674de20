package inventory

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prostore-labs/storefront-backend/pkg/db/models"
	"github.com/prostore-labs/storefront-backend/pkg/errors"
)

// Ledger adjusts product stock. Every decrement is a single conditional
// update so two concurrent buyers can never both take the last unit.
type Ledger interface {
	// Reserve decrements stock by qty, failing when fewer than qty units
	// remain. Runs against the caller's transaction handle.
	Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	// Release returns qty units to stock, compensating a reservation that
	// will never ship.
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	// Available reports the current stock level.
	Available(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (int, error)
}

type ledger struct{}

// NewLedger returns the stock ledger.
func NewLedger() Ledger {
	return &ledger{}
}

func (l *ledger) Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return errors.New(errors.CodeValidation, "reserve quantity must be positive")
	}

	result := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return errors.Wrap(errors.CodeInternal, result.Error, "reserve stock")
	}
	if result.RowsAffected == 0 {
		available, err := l.Available(ctx, tx, productID)
		if err != nil {
			return err
		}
		return errors.New(errors.CodeConflict, "insufficient stock").
			WithDetails(map[string]any{
				"product_id": productID.String(),
				"requested":  qty,
				"available":  available,
			})
	}
	return nil
}

func (l *ledger) Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return errors.New(errors.CodeValidation, "release quantity must be positive")
	}

	result := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if result.Error != nil {
		return errors.Wrap(errors.CodeInternal, result.Error, "release stock")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "product not found")
	}
	return nil
}

func (l *ledger) Available(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (int, error) {
	var product models.Product
	err := tx.WithContext(ctx).
		Select("stock").
		First(&product, "id = ?", productID).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errors.New(errors.CodeNotFound, "product not found")
		}
		return 0, errors.Wrap(errors.CodeInternal, err, "read stock")
	}
	return product.Stock, nil
}
