package orders

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prostore-labs/storefront-backend/pkg/db/models"
	"github.com/prostore-labs/storefront-backend/pkg/db/types"
	"github.com/prostore-labs/storefront-backend/pkg/pagination"
)

// OrderPage is one page of an order listing.
type OrderPage struct {
	Orders     []models.Order `json:"orders"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
}

// Repository manages order rows and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	Save(ctx context.Context, order *models.Order) error
	// SettleOnce flips is_paid from false to true and records the payment
	// result, all in one conditional update. Returns false when the order
	// was already settled.
	SettleOnce(ctx context.Context, orderID uuid.UUID, paidAt time.Time, result types.PaymentResult) (bool, error)
	SavePaymentResult(ctx context.Context, orderID uuid.UUID, result types.PaymentResult) error
	ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) (*OrderPage, error)
	ListAll(ctx context.Context, page pagination.Params) (*OrderPage, error)
	Delete(ctx context.Context, orderID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).
		Omit("Items").
		Save(order).Error
}

func (r *repository) SettleOnce(ctx context.Context, orderID uuid.UUID, paidAt time.Time, result types.PaymentResult) (bool, error) {
	update := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND is_paid = ?", orderID, false).
		Updates(map[string]any{
			"is_paid":        true,
			"paid_at":        paidAt,
			"payment_result": jsonValue(result),
		})
	if update.Error != nil {
		return false, update.Error
	}
	return update.RowsAffected > 0, nil
}

func (r *repository) SavePaymentResult(ctx context.Context, orderID uuid.UUID, result types.PaymentResult) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_result", jsonValue(result)).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) (*OrderPage, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID), page)
}

func (r *repository) ListAll(ctx context.Context, page pagination.Params) (*OrderPage, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&models.Order{}), page)
}

func (r *repository) list(ctx context.Context, query *gorm.DB, page pagination.Params) (*OrderPage, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []models.Order
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Limit(pagination.NormalizeLimit(page.Limit)).
		Offset(page.Offset()).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return &OrderPage{
		Orders:     orders,
		Total:      total,
		Page:       pagination.NormalizePage(page.Page),
		TotalPages: pagination.Pages(total, page.Limit),
	}, nil
}

// jsonValue renders a payment result for a raw column update, matching the
// json serializer used on the model field.
func jsonValue(result types.PaymentResult) string {
	b, _ := json.Marshal(result)
	return string(b)
}

func (r *repository) Delete(ctx context.Context, orderID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.OrderItem{}, "order_id = ?", orderID).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Delete(&models.Order{}, "id = ?", orderID).Error
}
