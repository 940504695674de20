package manual

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prostore-labs/storefront-backend/internal/orders"
	"github.com/prostore-labs/storefront-backend/pkg/db/models"
	"github.com/prostore-labs/storefront-backend/pkg/db/types"
	"github.com/prostore-labs/storefront-backend/pkg/enums"
	"github.com/prostore-labs/storefront-backend/pkg/errors"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
)

// Service settles cash-on-delivery orders. There is no provider to verify
// against; an admin confirms the cash changed hands.
type Service interface {
	// Settle marks a cash-on-delivery order paid.
	Settle(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type service struct {
	orders orders.Service
	logg   *logger.Logger
}

// NewService builds the manual settlement coordinator.
func NewService(ordersSvc orders.Service, logg *logger.Logger) (Service, error) {
	if ordersSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{orders: ordersSvc, logg: logg}, nil
}

func (s *service) Settle(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID, orders.Viewer{IsAdmin: true})
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod != enums.PaymentMethodCashOnDelivery {
		return nil, errors.New(errors.CodeStateConflict, "order is not cash on delivery")
	}

	result := types.PaymentResult{
		Status:    enums.PaymentStatusCompleted,
		PricePaid: order.TotalPrice,
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
