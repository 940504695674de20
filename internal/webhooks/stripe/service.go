package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	"github.com/prostore-labs/storefront-backend/internal/orders"
	paymentsstripe "github.com/prostore-labs/storefront-backend/internal/payments/stripe"
	"github.com/prostore-labs/storefront-backend/pkg/db/types"
	"github.com/prostore-labs/storefront-backend/pkg/enums"
	pkgerrors "github.com/prostore-labs/storefront-backend/pkg/errors"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
)

// Service turns Stripe webhook events into order settlements. Only
// charge.succeeded carries a settlement; every other event type is
// acknowledged and discarded.
type Service struct {
	orders orders.Service
	logg   *logger.Logger
}

func NewService(ordersSvc orders.Service, logg *logger.Logger) (*Service, error) {
	if ordersSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{orders: ordersSvc, logg: logg}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeChargeSucceeded:
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode charge event")
		}
		return s.settleFromCharge(ctx, &charge)
	default:
		return nil
	}
}

func (s *Service) settleFromCharge(ctx context.Context, charge *stripe.Charge) error {
	rawOrderID := charge.Metadata[paymentsstripe.MetadataOrderID]
	if rawOrderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "charge has no order id metadata")
	}
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse order id metadata")
	}

	email := ""
	if charge.BillingDetails != nil {
		email = charge.BillingDetails.Email
	}

	result := types.PaymentResult{
		ID:           charge.ID,
		Status:       enums.PaymentStatusCompleted,
		EmailAddress: email,
		PricePaid:    decimal.New(charge.Amount, -2),
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())
	_, alreadySettled, err := s.orders.MarkPaid(ctx, orderID, result)
	if err != nil {
		return err
	}
	if alreadySettled {
		s.logg.Warn(ctx, "charge for an already settled order, acknowledged")
		return nil
	}
	s.logg.Info(ctx, "order settled from stripe charge")
	return nil
}
