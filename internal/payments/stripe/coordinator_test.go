package stripe

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
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

type fakeStripeClient struct {
	intents map[string]*stripe.PaymentIntent
	created int
}

func newFakeStripeClient() *fakeStripeClient {
	return &fakeStripeClient{intents: map[string]*stripe.PaymentIntent{}}
}

func (f *fakeStripeClient) Create(_ context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error) {
	f.created++
	intent := &stripe.PaymentIntent{
		ID:           fmt.Sprintf("pi_%d", f.created),
		ClientSecret: fmt.Sprintf("pi_%d_secret", f.created),
		Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
		Amount:       *params.Amount,
		Metadata:     params.Metadata,
	}
	f.intents[intent.ID] = intent
	return intent, nil
}

func (f *fakeStripeClient) Get(_ context.Context, id string) (*stripe.PaymentIntent, error) {
	intent, ok := f.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such payment_intent: %s", id)
	}
	return intent, nil
}

func (f *fakeStripeClient) succeed(id, email string) {
	f.intents[id].Status = stripe.PaymentIntentStatusSucceeded
	f.intents[id].ReceiptEmail = email
}

type fixture struct {
	conn    *gorm.DB
	svc     Service
	client  *fakeStripeClient
	orderID uuid.UUID
	viewer  orders.Viewer
}

type discardSender struct{}

func (discardSender) SendReceipt(context.Context, *models.Order, string) error { return nil }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:stripe_%s?mode=memory&cache=shared", uuid.NewString())
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

	logg := logger.New(logger.Options{ServiceName: "stripe-test", Output: io.Discard})
	client := db.NewFromConn(conn)
	ordersRepo := orders.NewRepository(conn)
	ordersSvc, err := orders.NewService(
		client,
		ordersRepo,
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

	stripeClient := newFakeStripeClient()
	svc, err := NewService(ordersSvc, ordersRepo, stripeClient, logg)
	if err != nil {
		t.Fatalf("stripe service: %v", err)
	}

	userID := uuid.New()
	order := &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		PaymentMethod: enums.PaymentMethodStripe,
		ItemsPrice:    decimal.RequireFromString("60"),
		ShippingPrice: decimal.RequireFromString("10"),
		TaxPrice:      decimal.RequireFromString("9"),
		TotalPrice:    decimal.RequireFromString("79"),
	}
	if err := conn.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	return &fixture{
		conn:    conn,
		svc:     svc,
		client:  stripeClient,
		orderID: order.ID,
		viewer:  orders.Viewer{UserID: userID},
	}
}

func TestInitiateCreatesIntentInMinorUnits(t *testing.T) {
	f := newFixture(t)

	secret, err := f.svc.Initiate(context.Background(), f.orderID, f.viewer)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if secret != "pi_1_secret" {
		t.Fatalf("unexpected client secret %s", secret)
	}

	intent := f.client.intents["pi_1"]
	if intent.Amount != 7900 {
		t.Fatalf("expected 7900 cents, got %d", intent.Amount)
	}
	if intent.Metadata[MetadataOrderID] != f.orderID.String() {
		t.Fatalf("order id not in metadata: %v", intent.Metadata)
	}

	var order models.Order
	if err := f.conn.First(&order, "id = ?", f.orderID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if order.PaymentResult == nil || order.PaymentResult.ID != "pi_1" {
		t.Fatalf("intent id not recorded: %+v", order.PaymentResult)
	}
}

func TestInitiateReusesExistingIntent(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.Initiate(context.Background(), f.orderID, f.viewer)
	if err != nil {
		t.Fatalf("first initiate: %v", err)
	}
	second, err := f.svc.Initiate(context.Background(), f.orderID, f.viewer)
	if err != nil {
		t.Fatalf("second initiate: %v", err)
	}
	if first != second {
		t.Fatalf("expected reused secret, got %s then %s", first, second)
	}
	if f.client.created != 1 {
		t.Fatalf("expected a single intent, created %d", f.client.created)
	}
}

func TestInitiateReplacesCanceledIntent(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Initiate(context.Background(), f.orderID, f.viewer); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	f.client.intents["pi_1"].Status = stripe.PaymentIntentStatusCanceled

	secret, err := f.svc.Initiate(context.Background(), f.orderID, f.viewer)
	if err != nil {
		t.Fatalf("re-initiate: %v", err)
	}
	if secret != "pi_2_secret" {
		t.Fatalf("expected a fresh intent, got %s", secret)
	}
}

func TestVerifySuccessSettlesOrder(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Initiate(context.Background(), f.orderID, f.viewer); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	f.client.succeed("pi_1", "jane@example.com")

	order, err := f.svc.VerifySuccess(context.Background(), f.orderID, f.viewer)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !order.IsPaid {
		t.Fatal("order not settled")
	}
	if order.PaymentResult.Status != enums.PaymentStatusCompleted {
		t.Fatalf("unexpected status %s", order.PaymentResult.Status)
	}
	if !order.PaymentResult.PricePaid.Equal(decimal.RequireFromString("79")) {
		t.Fatalf("unexpected price paid %s", order.PaymentResult.PricePaid)
	}
	if order.PaymentResult.EmailAddress != "jane@example.com" {
		t.Fatalf("receipt email not recorded: %s", order.PaymentResult.EmailAddress)
	}
}

func TestVerifyRejectsUnsucceededIntent(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Initiate(context.Background(), f.orderID, f.viewer); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	_, err := f.svc.VerifySuccess(context.Background(), f.orderID, f.viewer)
	if err == nil {
		t.Fatal("expected verification failure")
	}
	coded := errors.As(err)
	if coded == nil || coded.Code() != errors.CodeVerification {
		t.Fatalf("expected verification code, got %v", err)
	}
}

func TestVerifyRejectsForeignIntent(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Initiate(context.Background(), f.orderID, f.viewer); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	f.client.succeed("pi_1", "jane@example.com")
	f.client.intents["pi_1"].Metadata = map[string]string{MetadataOrderID: uuid.NewString()}

	_, err := f.svc.VerifySuccess(context.Background(), f.orderID, f.viewer)
	if err == nil {
		t.Fatal("expected verification failure")
	}
	coded := errors.As(err)
	if coded == nil || coded.Code() != errors.CodeVerification {
		t.Fatalf("expected verification code, got %v", err)
	}
}

func TestVerifyAfterSettlementIsIdempotent(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Initiate(context.Background(), f.orderID, f.viewer); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	f.client.succeed("pi_1", "jane@example.com")

	if _, err := f.svc.VerifySuccess(context.Background(), f.orderID, f.viewer); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	order, err := f.svc.VerifySuccess(context.Background(), f.orderID, f.viewer)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if !order.IsPaid {
		t.Fatal("order lost paid state")
	}
}
