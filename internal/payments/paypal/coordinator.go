package paypal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prostore-labs/storefront-backend/internal/orders"
	"github.com/prostore-labs/storefront-backend/pkg/db/models"
	"github.com/prostore-labs/storefront-backend/pkg/db/types"
	"github.com/prostore-labs/storefront-backend/pkg/enums"
	"github.com/prostore-labs/storefront-backend/pkg/errors"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
	"github.com/prostore-labs/storefront-backend/pkg/paypal"
)

// Gateway is the PayPal surface the coordinator needs. Satisfied by
// *paypal.Client.
type Gateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal) (*paypal.OrderResult, error)
	CapturePayment(ctx context.Context, remoteOrderID string) (*paypal.CaptureResult, error)
}

// Service drives the redirect-based PayPal flow: create a remote order the
// shopper approves in PayPal's UI, then capture it when they return.
type Service interface {
	// Initiate creates the remote PayPal order for an unpaid order and
	// records its id as the pending payment result.
	Initiate(ctx context.Context, orderID uuid.UUID, viewer orders.Viewer) (remoteOrderID string, err error)
	// Settle captures an approved remote order and marks the local order
	// paid. The remote id must match the one Initiate stored.
	Settle(ctx context.Context, orderID uuid.UUID, remoteOrderID string, viewer orders.Viewer) (*models.Order, error)
}

type service struct {
	orders  orders.Service
	results orders.Repository
	gateway Gateway
	logg    *logger.Logger
}

// NewService builds the PayPal payment coordinator.
func NewService(ordersSvc orders.Service, results orders.Repository, gateway Gateway, logg *logger.Logger) (Service, error) {
	if ordersSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if results == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("paypal gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{orders: ordersSvc, results: results, gateway: gateway, logg: logg}, nil
}

func (s *service) Initiate(ctx context.Context, orderID uuid.UUID, viewer orders.Viewer) (string, error) {
	order, err := s.orders.GetOrder(ctx, orderID, viewer)
	if err != nil {
		return "", err
	}
	if err := requirePayable(order); err != nil {
		return "", err
	}

	remote, err := s.gateway.CreateOrder(ctx, order.TotalPrice)
	if err != nil {
		return "", errors.Wrap(errors.CodeDependency, err, "create paypal order")
	}

	pending := types.PaymentResult{ID: remote.ID}
	if err := s.results.SavePaymentResult(ctx, orderID, pending); err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "record pending payment")
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())
	s.logg.Info(ctx, "paypal order created")
	return remote.ID, nil
}

func (s *service) Settle(ctx context.Context, orderID uuid.UUID, remoteOrderID string, viewer orders.Viewer) (*models.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID, viewer)
	if err != nil {
		return nil, err
	}
	if err := requirePayable(order); err != nil {
		return nil, err
	}
	if order.PaymentResult == nil || order.PaymentResult.ID == "" ||
		order.PaymentResult.ID != remoteOrderID {
		return nil, errors.New(errors.CodeVerification, "paypal payment verification failed")
	}

	capture, err := s.gateway.CapturePayment(ctx, remoteOrderID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "capture paypal payment")
	}
	if capture.Status != paypal.StatusCompleted {
		return nil, errors.New(errors.CodeVerification, "paypal payment verification failed").
			WithDetails(map[string]any{"capture_status": capture.Status})
	}

	result := types.PaymentResult{
		ID:           capture.ID,
		Status:       enums.PaymentStatusCompleted,
		EmailAddress: capture.PayerEmail,
		PricePaid:    capture.Amount,
	}
	settled, alreadySettled, err := s.orders.MarkPaid(ctx, orderID, result)
	if err != nil {
		return nil, err
	}
	if alreadySettled {
		return nil, errors.New(errors.CodeStateConflict, "order is already paid")
	}
	return settled, nil
}

func requirePayable(order *models.Order) error {
	if order.PaymentMethod != enums.PaymentMethodPayPal {
		return errors.New(errors.CodeStateConflict, "order is not a paypal order")
	}
	if order.IsPaid {
		return errors.New(errors.CodeStateConflict, "order is already paid")
	}
	return nil
}
