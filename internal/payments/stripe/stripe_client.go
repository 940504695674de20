package stripe

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgstripe "github.com/prostore-labs/storefront-backend/pkg/stripe"
)

// StripePaymentClient exposes the subset of Stripe operations required by the
// payment coordinator.
type StripePaymentClient interface {
	Create(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error)
	Get(ctx context.Context, id string) (*stripe.PaymentIntent, error)
}

type stripeClientWrapper struct {
	api *stripe.Client
}

// NewStripeClient adapts the configured Stripe client so the coordinator can
// be tested against a fake.
func NewStripeClient(api *pkgstripe.Client) StripePaymentClient {
	if api == nil || api.API() == nil {
		return nil
	}
	return &stripeClientWrapper{api: api.API()}
}

func (w *stripeClientWrapper) Create(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error) {
	return w.api.V1PaymentIntents.Create(ctx, params)
}

func (w *stripeClientWrapper) Get(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	return w.api.V1PaymentIntents.Retrieve(ctx, id, nil)
}
