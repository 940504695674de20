package orders

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/prostore-labs/storefront-backend/internal/cart"
	"github.com/prostore-labs/storefront-backend/internal/inventory"
	"github.com/prostore-labs/storefront-backend/internal/notifications"
	"github.com/prostore-labs/storefront-backend/internal/users"
	"github.com/prostore-labs/storefront-backend/pkg/db"
	"github.com/prostore-labs/storefront-backend/pkg/db/models"
	"github.com/prostore-labs/storefront-backend/pkg/db/types"
	"github.com/prostore-labs/storefront-backend/pkg/errors"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
	"github.com/prostore-labs/storefront-backend/pkg/metrics"
	"github.com/prostore-labs/storefront-backend/pkg/pagination"
)

// Service owns the order lifecycle: creation from a cart, settlement,
// fulfillment and admin maintenance.
type Service interface {
	// CreateOrder converts the user's cart into an order. The order and
	// its lines are written, and the cart emptied, in one transaction.
	CreateOrder(ctx context.Context, userID uuid.UUID) (*models.Order, error)
	// GetOrder fetches an order, enforcing that non-admin callers only
	// see their own.
	GetOrder(ctx context.Context, orderID uuid.UUID, viewer Viewer) (*models.Order, error)
	// MarkPaid settles an order exactly once: records the payment result,
	// decrements stock for every line and emits the receipt. A second
	// call reports alreadySettled without changing anything.
	MarkPaid(ctx context.Context, orderID uuid.UUID, result types.PaymentResult) (order *models.Order, alreadySettled bool, err error)
	// MarkDelivered flips the fulfillment flag on a paid order.
	MarkDelivered(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	// Delete removes an order outright, returning reserved stock when the
	// order had already settled.
	Delete(ctx context.Context, orderID uuid.UUID) error
	ListUserOrders(ctx context.Context, userID uuid.UUID, page pagination.Params) (*OrderPage, error)
	ListAll(ctx context.Context, page pagination.Params) (*OrderPage, error)
}

// Viewer carries the caller's identity for access checks on reads.
type Viewer struct {
	UserID  uuid.UUID
	IsAdmin bool
}

type service struct {
	client   *db.Client
	repo     Repository
	carts    cart.Repository
	profiles users.Repository
	stock    inventory.Ledger
	receipts notifications.ReceiptSender
	payments *metrics.PaymentMetrics
	logg     *logger.Logger
}

// NewService builds the orders service.
func NewService(
	client *db.Client,
	repo Repository,
	carts cart.Repository,
	profiles users.Repository,
	stock inventory.Ledger,
	receipts notifications.ReceiptSender,
	payments *metrics.PaymentMetrics,
	logg *logger.Logger,
) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if stock == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if receipts == nil {
		return nil, fmt.Errorf("receipt sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		client:   client,
		repo:     repo,
		carts:    carts,
		profiles: profiles,
		stock:    stock,
		receipts: receipts,
		payments: payments,
		logg:     logg,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	user, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "user not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "fetch user")
	}

	if user.Address == nil || !user.Address.IsComplete() {
		return nil, errors.New(errors.CodeValidation, "no shipping address").
			WithRedirect("/shipping-address")
	}
	if user.PaymentMethod == nil || !user.PaymentMethod.IsValid() {
		return nil, errors.New(errors.CodeValidation, "no payment method").
			WithRedirect("/payment-method")
	}

	// The cart is read, snapshotted and cleared under one transaction with
	// the cart row locked, so a line added concurrently either enters the
	// order or survives the clear.
	var order *models.Order
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		carts := s.carts.WithTx(tx)

		userCart, err := carts.FindByUserForUpdate(ctx, userID)
		if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(errors.CodeInternal, err, "fetch cart")
		}
		if userCart == nil || len(userCart.Items) == 0 {
			return errors.New(errors.CodeValidation, "your cart is empty").
				WithRedirect("/cart")
		}

		order = &models.Order{
			ID:              uuid.New(),
			UserID:          userID,
			ShippingAddress: *user.Address,
			PaymentMethod:   *user.PaymentMethod,
			ItemsPrice:      userCart.ItemsPrice,
			ShippingPrice:   userCart.ShippingPrice,
			TaxPrice:        userCart.TaxPrice,
			TotalPrice:      userCart.TotalPrice,
		}
		for _, item := range userCart.Items {
			order.Items = append(order.Items, models.OrderItem{
				ID:        uuid.New(),
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Name:      item.Name,
				Slug:      item.Slug,
				Image:     item.Image,
				Price:     item.Price,
				Qty:       item.Qty,
			})
		}

		if err := repo.Create(ctx, order); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "create order")
		}
		if err := carts.ClearItems(ctx, userCart.ID); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "clear cart")
		}
		userCart.Items = nil
		userCart.ItemsPrice = decimal.Zero
		userCart.ShippingPrice = decimal.Zero
		userCart.TaxPrice = decimal.Zero
		userCart.TotalPrice = decimal.Zero
		if err := carts.Save(ctx, userCart); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "reset cart totals")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(ctx, "order created")
	return order, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID, viewer Viewer) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "order not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "fetch order")
	}
	if !viewer.IsAdmin && order.UserID != viewer.UserID {
		return nil, errors.New(errors.CodeForbidden, "order belongs to another user")
	}
	return order, nil
}

func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID, result types.PaymentResult) (*models.Order, bool, error) {
	var settledNow bool
	var order *models.Order

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "order not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "fetch order")
		}

		flipped, err := repo.SettleOnce(ctx, orderID, time.Now().UTC(), result)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "settle order")
		}
		if !flipped {
			settledNow = false
			order = current
			return nil
		}
		settledNow = true

		for _, item := range current.Items {
			if err := s.stock.Reserve(ctx, tx, item.ProductID, item.Qty); err != nil {
				return err
			}
		}

		order, err = repo.FindByID(ctx, orderID)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "reload order")
		}
		return nil
	})
	if err != nil {
		s.payments.IncFailure(methodFor(order))
		return nil, false, err
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())
	if !settledNow {
		s.payments.IncAlreadySettled(string(order.PaymentMethod))
		s.logg.Warn(ctx, "order already settled, settlement ignored")
		return order, true, nil
	}

	s.payments.IncSettled(string(order.PaymentMethod))
	s.logg.Info(ctx, "order settled")

	if result.EmailAddress != "" {
		if err := s.receipts.SendReceipt(ctx, order, result.EmailAddress); err != nil {
			s.logg.Error(ctx, "receipt delivery failed", err)
		}
	}
	return order, false, nil
}

func (s *service) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order *models.Order
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "order not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "fetch order")
		}
		if !current.IsPaid {
			return errors.New(errors.CodeStateConflict, "order is not paid")
		}
		if current.IsDelivered {
			return errors.New(errors.CodeStateConflict, "order is already delivered")
		}

		now := time.Now().UTC()
		current.IsDelivered = true
		current.DeliveredAt = &now
		if err := repo.Save(ctx, current); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "save delivery state")
		}
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Delete(ctx context.Context, orderID uuid.UUID) error {
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "order not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "fetch order")
		}

		// A settled order already took its stock; return it before the
		// record disappears.
		if order.IsPaid {
			for _, item := range order.Items {
				if err := s.stock.Release(ctx, tx, item.ProductID, item.Qty); err != nil {
					return err
				}
			}
		}

		if err := repo.Delete(ctx, orderID); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "delete order")
		}
		return nil
	})
}

func (s *service) ListUserOrders(ctx context.Context, userID uuid.UUID, page pagination.Params) (*OrderPage, error) {
	result, err := s.repo.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "list user orders")
	}
	return result, nil
}

func (s *service) ListAll(ctx context.Context, page pagination.Params) (*OrderPage, error) {
	result, err := s.repo.ListAll(ctx, page)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "list orders")
	}
	return result, nil
}

func methodFor(order *models.Order) string {
	if order == nil {
		return "unknown"
	}
	return string(order.PaymentMethod)
}
