package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prostore-labs/storefront-backend/pkg/config"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), config.PayPalConfig{
		APIURL:    srv.URL,
		ClientID:  "client",
		AppSecret: "secret",
		Timeout:   2 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, srv
}

func TestCreateOrder(t *testing.T) {
	var tokenCalls, orderCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		if r.Header.Get("Authorization") == "" {
			t.Error("missing basic auth header")
		}
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		orderCalls.Add(1)
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["intent"] != "CAPTURE" {
			t.Errorf("expected CAPTURE intent, got %v", body["intent"])
		}
		units := body["purchase_units"].([]any)
		amount := units[0].(map[string]any)["amount"].(map[string]any)
		if amount["value"] != "79.00" {
			t.Errorf("expected amount 79.00, got %v", amount["value"])
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "PP-1", "status": "CREATED"})
	})

	client, _ := newTestClient(t, mux)
	order, err := client.CreateOrder(context.Background(), decimal.NewFromInt(79))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID != "PP-1" || order.Status != "CREATED" {
		t.Fatalf("unexpected order: %+v", order)
	}

	// token should be cached for the second request
	if _, err := client.CreateOrder(context.Background(), decimal.NewFromInt(79)); err != nil {
		t.Fatalf("second create order: %v", err)
	}
	if got := tokenCalls.Load(); got != 1 {
		t.Fatalf("expected 1 token call, got %d", got)
	}
	if got := orderCalls.Load(); got != 2 {
		t.Fatalf("expected 2 order calls, got %d", got)
	}
}

func TestCapturePayment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
	})
	mux.HandleFunc("/v2/checkout/orders/PP-1/capture", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "PP-1",
			"status": "COMPLETED",
			"payer":  map[string]any{"email_address": "buyer@example.com"},
			"purchase_units": []any{map[string]any{
				"payments": map[string]any{
					"captures": []any{map[string]any{
						"amount": map[string]any{"value": "172.50"},
					}},
				},
			}},
		})
	})

	client, _ := newTestClient(t, mux)
	capture, err := client.CapturePayment(context.Background(), "PP-1")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if capture.ID != "PP-1" || capture.Status != StatusCompleted {
		t.Fatalf("unexpected capture: %+v", capture)
	}
	if capture.PayerEmail != "buyer@example.com" {
		t.Fatalf("unexpected payer email: %q", capture.PayerEmail)
	}
	if !capture.Amount.Equal(decimal.RequireFromString("172.50")) {
		t.Fatalf("unexpected amount: %s", capture.Amount)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var captureCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
	})
	mux.HandleFunc("/v2/checkout/orders/PP-2/capture", func(w http.ResponseWriter, r *http.Request) {
		if captureCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "PP-2", "status": "COMPLETED"})
	})

	client, _ := newTestClient(t, mux)
	capture, err := client.CapturePayment(context.Background(), "PP-2")
	if err != nil {
		t.Fatalf("capture should succeed after retry: %v", err)
	}
	if capture.Status != StatusCompleted {
		t.Fatalf("unexpected status %q", capture.Status)
	}
	if got := captureCalls.Load(); got != 2 {
		t.Fatalf("expected 2 capture attempts, got %d", got)
	}
}

func TestClientErrorNotRetried(t *testing.T) {
	var captureCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
	})
	mux.HandleFunc("/v2/checkout/orders/PP-3/capture", func(w http.ResponseWriter, r *http.Request) {
		captureCalls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY"}`))
	})

	client, _ := newTestClient(t, mux)
	if _, err := client.CapturePayment(context.Background(), "PP-3"); err == nil {
		t.Fatal("expected error")
	}
	if got := captureCalls.Load(); got != 1 {
		t.Fatalf("4xx must not retry, got %d attempts", got)
	}
}
