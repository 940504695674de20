package stripe

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	"github.com/prostore-labs/storefront-backend/internal/orders"
	"github.com/prostore-labs/storefront-backend/pkg/db/models"
	"github.com/prostore-labs/storefront-backend/pkg/db/types"
	"github.com/prostore-labs/storefront-backend/pkg/enums"
	"github.com/prostore-labs/storefront-backend/pkg/errors"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
)

// MetadataOrderID is the intent metadata key that binds a payment intent to
// its order.
const MetadataOrderID = "orderId"

// Service drives the intent-based Stripe flow: create a payment intent whose
// client secret the storefront confirms in the browser, then verify success
// server-side.
type Service interface {
	// Initiate returns the client secret for the order's payment intent,
	// reusing the intent recorded on a previous attempt.
	Initiate(ctx context.Context, orderID uuid.UUID, viewer orders.Viewer) (clientSecret string, err error)
	// VerifySuccess re-reads the intent from Stripe and, when it has
	// succeeded for this order, marks the order paid. Safe to call after
	// the webhook already settled it.
	VerifySuccess(ctx context.Context, orderID uuid.UUID, viewer orders.Viewer) (*models.Order, error)
}

type service struct {
	orders  orders.Service
	results orders.Repository
	client  StripePaymentClient
	logg    *logger.Logger
}

// NewService builds the Stripe payment coordinator.
func NewService(ordersSvc orders.Service, results orders.Repository, client StripePaymentClient, logg *logger.Logger) (Service, error) {
	if ordersSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if results == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if client == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{orders: ordersSvc, results: results, client: client, logg: logg}, nil
}

func (s *service) Initiate(ctx context.Context, orderID uuid.UUID, viewer orders.Viewer) (string, error) {
	order, err := s.orders.GetOrder(ctx, orderID, viewer)
	if err != nil {
		return "", err
	}
	if order.PaymentMethod != enums.PaymentMethodStripe {
		return "", errors.New(errors.CodeStateConflict, "order is not a stripe order")
	}
	if order.IsPaid {
		return "", errors.New(errors.CodeStateConflict, "order is already paid")
	}

	if order.PaymentResult != nil && order.PaymentResult.ID != "" {
		intent, err := s.client.Get(ctx, order.PaymentResult.ID)
		if err == nil && intent.Status != stripe.PaymentIntentStatusCanceled {
			return intent.ClientSecret, nil
		}
		// Unfetchable or canceled intents fall through to a fresh one.
	}

	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(minorUnits(order.TotalPrice)),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
	}
	params.AddMetadata(MetadataOrderID, orderID.String())

	intent, err := s.client.Create(ctx, params)
	if err != nil {
		return "", errors.Wrap(errors.CodeDependency, err, "create payment intent")
	}

	pending := types.PaymentResult{ID: intent.ID}
	if err := s.results.SavePaymentResult(ctx, orderID, pending); err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "record pending payment")
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())
	s.logg.Info(ctx, "stripe payment intent created")
	return intent.ClientSecret, nil
}

func (s *service) VerifySuccess(ctx context.Context, orderID uuid.UUID, viewer orders.Viewer) (*models.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID, viewer)
	if err != nil {
		return nil, err
	}
	if order.IsPaid {
		return order, nil
	}
	if order.PaymentResult == nil || order.PaymentResult.ID == "" {
		return nil, errors.New(errors.CodeVerification, "no payment intent recorded for order")
	}

	intent, err := s.client.Get(ctx, order.PaymentResult.ID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "retrieve payment intent")
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, errors.New(errors.CodeVerification, "payment has not succeeded").
			WithDetails(map[string]any{"intent_status": string(intent.Status)})
	}
	if intent.Metadata[MetadataOrderID] != orderID.String() {
		return nil, errors.New(errors.CodeVerification, "payment intent belongs to another order")
	}

	result := types.PaymentResult{
		ID:           intent.ID,
		Status:       enums.PaymentStatusCompleted,
		EmailAddress: intent.ReceiptEmail,
		PricePaid:    fromMinorUnits(intent.Amount),
	}
	settled, _, err := s.orders.MarkPaid(ctx, orderID, result)
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// minorUnits converts a two-decimal amount into Stripe's integer cents.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func fromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
