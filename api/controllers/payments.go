package controllers

import (
	"net/http"

	"github.com/prostore-labs/storefront-backend/api/responses"
	"github.com/prostore-labs/storefront-backend/api/validators"
	paypalpayments "github.com/prostore-labs/storefront-backend/internal/payments/paypal"
	stripepayments "github.com/prostore-labs/storefront-backend/internal/payments/stripe"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
)

type capturePayPalRequest struct {
	RemoteOrderID string `json:"remote_order_id" validate:"required"`
}

// PayPalInitiate creates the remote PayPal order the shopper approves in
// PayPal's UI.
func PayPalInitiate(svc paypalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		remoteID, err := svc.Initiate(ctx, orderID, viewer)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"remote_order_id": remoteID})
	}
}

// PayPalCapture settles the order after the shopper approved it on PayPal.
func PayPalCapture(svc paypalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req capturePayPalRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Settle(ctx, orderID, req.RemoteOrderID, viewer)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// StripeInitiate returns the client secret the storefront confirms in the
// browser.
func StripeInitiate(svc stripepayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		secret, err := svc.Initiate(ctx, orderID, viewer)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"client_secret": secret})
	}
}

// StripeVerify polls the intent server-side and settles the order when the
// payment has succeeded.
func StripeVerify(svc stripepayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.VerifySuccess(ctx, orderID, viewer)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
