package stripe

import (
	"context"
	"io"
	"testing"

	"github.com/prostore-labs/storefront-backend/pkg/config"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
	pkgstripe "github.com/prostore-labs/storefront-backend/pkg/stripe"
)

func TestNewStripeClientRequiresConfiguredClient(t *testing.T) {
	if got := NewStripeClient(nil); got != nil {
		t.Fatalf("expected nil wrapper without a configured client, got %T", got)
	}
}

func TestNewStripeClientBindsConfiguredAPI(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "stripe-test", Output: io.Discard})
	api, err := pkgstripe.NewClient(context.Background(), config.StripeConfig{
		APIKey: "sk_test_abc",
		Secret: "whsec_test",
		Env:    "test",
	}, logg)
	if err != nil {
		t.Fatalf("configure stripe client: %v", err)
	}

	wrapper := NewStripeClient(api)
	if wrapper == nil {
		t.Fatal("expected a usable wrapper for a configured client")
	}
	bound, ok := wrapper.(*stripeClientWrapper)
	if !ok {
		t.Fatalf("unexpected wrapper type %T", wrapper)
	}
	if bound.api != api.API() {
		t.Fatal("wrapper is not bound to the configured API handle")
	}
}
