package inventory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/prostore-labs/storefront-backend/pkg/db/models"
	"github.com/prostore-labs/storefront-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:inventory_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// sqlite serializes writers; one connection avoids busy errors under
	// the concurrent reserve test.
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:          uuid.New(),
		Name:        "Classic Polo",
		Slug:        fmt.Sprintf("classic-polo-%s", uuid.NewString()[:8]),
		Category:    "Mens Shirts",
		Brand:       "Brandline",
		Description: "test product",
		Price:       decimal.RequireFromString("49.99"),
		Stock:       stock,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func currentStock(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	return product.Stock
}

func TestReserveDecrements(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 5)
	ledger := NewLedger()

	if err := ledger.Reserve(context.Background(), db, product.ID, 3); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if got := currentStock(t, db, product.ID); got != 2 {
		t.Fatalf("expected stock 2, got %d", got)
	}
}

func TestReserveInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 2)
	ledger := NewLedger()

	err := ledger.Reserve(context.Background(), db, product.ID, 3)
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	coded := errors.As(err)
	if coded == nil || coded.Code() != errors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
	if got := currentStock(t, db, product.ID); got != 2 {
		t.Fatalf("stock mutated on failed reserve: %d", got)
	}
}

func TestReserveUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger()

	err := ledger.Reserve(context.Background(), db, uuid.New(), 1)
	if err == nil {
		t.Fatal("expected not found error")
	}
	coded := errors.As(err)
	if coded == nil || coded.Code() != errors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}

func TestReserveExactRemainder(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 4)
	ledger := NewLedger()

	if err := ledger.Reserve(context.Background(), db, product.ID, 4); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if got := currentStock(t, db, product.ID); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}
	if err := ledger.Reserve(context.Background(), db, product.ID, 1); err == nil {
		t.Fatal("expected reserve against zero stock to fail")
	}
}

func TestReleaseRestores(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 1)
	ledger := NewLedger()

	if err := ledger.Reserve(context.Background(), db, product.ID, 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := ledger.Release(context.Background(), db, product.ID, 1); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := currentStock(t, db, product.ID); got != 1 {
		t.Fatalf("expected stock 1 after release, got %d", got)
	}
}

func TestConcurrentReserveNeverOversells(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 5)
	ledger := NewLedger()

	var wg sync.WaitGroup
	successes := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ledger.Reserve(context.Background(), db, product.ID, 1); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	granted := 0
	for range successes {
		granted++
	}
	if granted != 5 {
		t.Fatalf("expected exactly 5 grants, got %d", granted)
	}
	if got := currentStock(t, db, product.ID); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}
}
