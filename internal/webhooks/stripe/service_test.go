package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/prostore-labs/storefront-backend/internal/orders"
	"github.com/prostore-labs/storefront-backend/pkg/db/models"
	"github.com/prostore-labs/storefront-backend/pkg/db/types"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
	"github.com/prostore-labs/storefront-backend/pkg/pagination"
)

type fakeOrders struct {
	mu       sync.Mutex
	settled  map[uuid.UUID]int
	lastPaid types.PaymentResult
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{settled: map[uuid.UUID]int{}}
}

func (f *fakeOrders) CreateOrder(context.Context, uuid.UUID) (*models.Order, error) {
	return nil, nil
}

func (f *fakeOrders) GetOrder(context.Context, uuid.UUID, orders.Viewer) (*models.Order, error) {
	return nil, nil
}

func (f *fakeOrders) MarkPaid(_ context.Context, orderID uuid.UUID, result types.PaymentResult) (*models.Order, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settled[orderID]++
	f.lastPaid = result
	already := f.settled[orderID] > 1
	return &models.Order{ID: orderID, IsPaid: true}, already, nil
}

func (f *fakeOrders) MarkDelivered(context.Context, uuid.UUID) (*models.Order, error) {
	return nil, nil
}

func (f *fakeOrders) Delete(context.Context, uuid.UUID) error { return nil }

func (f *fakeOrders) ListUserOrders(context.Context, uuid.UUID, pagination.Params) (*orders.OrderPage, error) {
	return nil, nil
}

func (f *fakeOrders) ListAll(context.Context, pagination.Params) (*orders.OrderPage, error) {
	return nil, nil
}

func newService(t *testing.T, fake *fakeOrders) *Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "webhook-test", Output: io.Discard})
	svc, err := NewService(fake, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func chargeEvent(t *testing.T, orderID, email string, amountCents int64) *stripe.Event {
	t.Helper()
	charge := map[string]any{
		"id":     "ch_123",
		"amount": amountCents,
		"metadata": map[string]string{
			"orderId": orderID,
		},
		"billing_details": map[string]any{
			"email": email,
		},
	}
	raw, err := json.Marshal(charge)
	if err != nil {
		t.Fatalf("marshal charge: %v", err)
	}
	return &stripe.Event{
		ID:   fmt.Sprintf("evt_%s", uuid.NewString()[:8]),
		Type: stripe.EventTypeChargeSucceeded,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestChargeSucceededSettlesOrder(t *testing.T) {
	fake := newFakeOrders()
	svc := newService(t, fake)
	orderID := uuid.New()

	event := chargeEvent(t, orderID.String(), "jane@example.com", 7900)
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	if fake.settled[orderID] != 1 {
		t.Fatalf("expected one settlement, got %d", fake.settled[orderID])
	}
	if fake.lastPaid.ID != "ch_123" {
		t.Fatalf("charge id not recorded: %s", fake.lastPaid.ID)
	}
	if fake.lastPaid.EmailAddress != "jane@example.com" {
		t.Fatalf("billing email not recorded: %s", fake.lastPaid.EmailAddress)
	}
	if fake.lastPaid.PricePaid.String() != "79" {
		t.Fatalf("amount not converted from cents: %s", fake.lastPaid.PricePaid)
	}
}

func TestDuplicateChargeIsAcknowledged(t *testing.T) {
	fake := newFakeOrders()
	svc := newService(t, fake)
	orderID := uuid.New()

	event := chargeEvent(t, orderID.String(), "jane@example.com", 7900)
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("duplicate delivery must not error: %v", err)
	}
}

func TestChargeWithoutOrderIDRejected(t *testing.T) {
	fake := newFakeOrders()
	svc := newService(t, fake)

	event := chargeEvent(t, "", "jane@example.com", 100)
	if err := svc.HandleEvent(context.Background(), event); err == nil {
		t.Fatal("expected rejection for missing order id")
	}
	if len(fake.settled) != 0 {
		t.Fatal("settlement attempted without order id")
	}
}

func TestUnrelatedEventsDiscarded(t *testing.T) {
	fake := newFakeOrders()
	svc := newService(t, fake)

	event := &stripe.Event{
		ID:   "evt_other",
		Type: stripe.EventTypePaymentIntentCreated,
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unrelated event must be acknowledged: %v", err)
	}
	if len(fake.settled) != 0 {
		t.Fatal("unrelated event triggered a settlement")
	}
}

type fakeIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newFakeStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{keys: map[string]struct{}{}}
}

func (f *fakeIdempotencyStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.keys[key]; ok {
		return false, nil
	}
	f.keys[key] = struct{}{}
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("prostore:idempotency:%s:%s", scope, id)
}

func (f *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.keys, key)
	}
	return nil
}

func TestIdempotencyGuard(t *testing.T) {
	store := newFakeStore()
	guard, err := NewIdempotencyGuard(store, time.Hour, "stripe-webhook")
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}

	already, err := guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if already {
		t.Fatal("first delivery flagged as duplicate")
	}

	already, err = guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if !already {
		t.Fatal("duplicate delivery not flagged")
	}

	if err := guard.Delete(context.Background(), "evt_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	already, err = guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil {
		t.Fatalf("check after delete: %v", err)
	}
	if already {
		t.Fatal("released event still flagged as duplicate")
	}
}
