package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/prostore-labs/storefront-backend/pkg/db/models"
	"github.com/prostore-labs/storefront-backend/pkg/db/types"
	"github.com/prostore-labs/storefront-backend/pkg/enums"
	"github.com/prostore-labs/storefront-backend/pkg/pagination"
)

func seedOrder(t *testing.T, conn *gorm.DB, userID uuid.UUID, lines int) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:     uuid.New(),
		UserID: userID,
		ShippingAddress: types.Address{
			FullName:   "Jane Shopper",
			Street:     "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
		},
		PaymentMethod: enums.PaymentMethodPayPal,
		ItemsPrice:    decimal.RequireFromString("60.00"),
		ShippingPrice: decimal.RequireFromString("10.00"),
		TaxPrice:      decimal.RequireFromString("9.00"),
		TotalPrice:    decimal.RequireFromString("79.00"),
	}
	for i := 0; i < lines; i++ {
		order.Items = append(order.Items, models.OrderItem{
			ID:        uuid.New(),
			ProductID: uuid.New(),
			Name:      "Classic Polo",
			Slug:      "classic-polo",
			Image:     "/images/polo.jpg",
			Price:     decimal.RequireFromString("20.00"),
			Qty:       1,
		})
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func TestSettleOnceFlipsExactlyOnce(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := seedOrder(t, conn, uuid.New(), 1)
	result := completedResult("79.00")

	flipped, err := repo.SettleOnce(ctx, order.ID, time.Now().UTC(), result)
	require.NoError(t, err)
	assert.True(t, flipped)

	again, err := repo.SettleOnce(ctx, order.ID, time.Now().UTC(), result)
	require.NoError(t, err)
	assert.False(t, again, "second settle must not flip")

	stored, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid)
	require.NotNil(t, stored.PaidAt)
	require.NotNil(t, stored.PaymentResult)
	assert.Equal(t, result.ID, stored.PaymentResult.ID)
	assert.Equal(t, enums.PaymentStatusCompleted, stored.PaymentResult.Status)
}

func TestSavePaymentResultKeepsOrderUnpaid(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := seedOrder(t, conn, uuid.New(), 1)

	err := repo.SavePaymentResult(ctx, order.ID, types.PaymentResult{ID: "remote-123"})
	require.NoError(t, err)

	stored, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPaid)
	require.NotNil(t, stored.PaymentResult)
	assert.Equal(t, "remote-123", stored.PaymentResult.ID)
}

func TestListByUserScopesAndPaginates(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	owner := uuid.New()
	other := uuid.New()
	for i := 0; i < 3; i++ {
		seedOrder(t, conn, owner, 1)
	}
	seedOrder(t, conn, other, 1)

	page, err := repo.ListByUser(ctx, owner, pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Orders, 2)
	assert.Equal(t, 2, page.TotalPages)
	for _, o := range page.Orders {
		assert.Equal(t, owner, o.UserID)
	}

	all, err := repo.ListAll(ctx, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)
}

func TestDeleteRemovesOrderAndLines(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := seedOrder(t, conn, uuid.New(), 2)

	require.NoError(t, repo.Delete(ctx, order.ID))

	_, err := repo.FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var lines int64
	require.NoError(t, conn.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&lines).Error)
	assert.Zero(t, lines)
}
