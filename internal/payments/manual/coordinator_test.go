package manual

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/prostore-labs/storefront-backend/internal/cart"
	"github.com/prostore-labs/storefront-backend/internal/inventory"
	"github.com/prostore-labs/storefront-backend/internal/orders"
	"github.com/prostore-labs/storefront-backend/internal/users"
	"github.com/prostore-labs/storefront-backend/pkg/db"
	"github.com/prostore-labs/storefront-backend/pkg/db/models"
	"github.com/prostore-labs/storefront-backend/pkg/enums"
	"github.com/prostore-labs/storefront-backend/pkg/errors"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
)

type discardSender struct{}

func (discardSender) SendReceipt(context.Context, *models.Order, string) error { return nil }

func newFixture(t *testing.T, method enums.PaymentMethod) (Service, *gorm.DB, uuid.UUID) {
	t.Helper()
	dsn := fmt.Sprintf("file:manual_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	err = conn.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "manual-test", Output: io.Discard})
	ordersSvc, err := orders.NewService(
		db.NewFromConn(conn),
		orders.NewRepository(conn),
		cart.NewRepository(conn),
		users.NewRepository(conn),
		inventory.NewLedger(),
		discardSender{},
		nil,
		logg,
	)
	if err != nil {
		t.Fatalf("orders service: %v", err)
	}

	svc, err := NewService(ordersSvc, logg)
	if err != nil {
		t.Fatalf("manual service: %v", err)
	}

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		PaymentMethod: method,
		ItemsPrice:    decimal.RequireFromString("40"),
		ShippingPrice: decimal.RequireFromString("10"),
		TaxPrice:      decimal.RequireFromString("6"),
		TotalPrice:    decimal.RequireFromString("56"),
	}
	if err := conn.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return svc, conn, order.ID
}

func TestSettleCashOnDelivery(t *testing.T) {
	svc, _, orderID := newFixture(t, enums.PaymentMethodCashOnDelivery)

	order, err := svc.Settle(context.Background(), orderID)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !order.IsPaid || order.PaidAt == nil {
		t.Fatalf("order not settled: %+v", order)
	}
	if order.PaymentResult.Status != enums.PaymentStatusCompleted {
		t.Fatalf("unexpected status %s", order.PaymentResult.Status)
	}
	if !order.PaymentResult.PricePaid.Equal(decimal.RequireFromString("56")) {
		t.Fatalf("unexpected price paid %s", order.PaymentResult.PricePaid)
	}
}

func TestSettleTwiceFails(t *testing.T) {
	svc, _, orderID := newFixture(t, enums.PaymentMethodCashOnDelivery)

	if _, err := svc.Settle(context.Background(), orderID); err != nil {
		t.Fatalf("first settle: %v", err)
	}
	_, err := svc.Settle(context.Background(), orderID)
	if err == nil {
		t.Fatal("expected duplicate settle to fail")
	}
	coded := errors.As(err)
	if coded == nil || coded.Code() != errors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestSettleRejectsProviderOrders(t *testing.T) {
	svc, _, orderID := newFixture(t, enums.PaymentMethodPayPal)

	_, err := svc.Settle(context.Background(), orderID)
	if err == nil {
		t.Fatal("expected rejection for provider-backed order")
	}
	coded := errors.As(err)
	if coded == nil || coded.Code() != errors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
