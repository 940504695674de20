package notifications

import (
	"context"
	"fmt"

	"github.com/prostore-labs/storefront-backend/pkg/config"
	"github.com/prostore-labs/storefront-backend/pkg/db/models"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
)

// ReceiptSender delivers a purchase receipt after an order settles. Delivery
// is best-effort; a failed send never rolls back the settlement.
type ReceiptSender interface {
	SendReceipt(ctx context.Context, order *models.Order, email string) error
}

type logSender struct {
	cfg  config.NotificationsConfig
	logg *logger.Logger
}

// NewLogSender returns a sender that records receipts to the service log.
// Stands in for a mail provider in environments without one configured.
func NewLogSender(cfg config.NotificationsConfig, logg *logger.Logger) (ReceiptSender, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &logSender{cfg: cfg, logg: logg}, nil
}

func (s *logSender) SendReceipt(ctx context.Context, order *models.Order, email string) error {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID.String(),
		"email":    email,
		"total":    order.TotalPrice.StringFixed(2),
		"sender":   s.cfg.SenderEmail,
	})
	s.logg.Info(ctx, "purchase receipt sent")
	return nil
}
