package controllers

import (
	"net/http"

	"github.com/prostore-labs/storefront-backend/api/middleware"
	"github.com/prostore-labs/storefront-backend/api/responses"
	"github.com/prostore-labs/storefront-backend/api/validators"
	"github.com/prostore-labs/storefront-backend/internal/users"
	"github.com/prostore-labs/storefront-backend/pkg/db/types"
	"github.com/prostore-labs/storefront-backend/pkg/enums"
	pkgerrors "github.com/prostore-labs/storefront-backend/pkg/errors"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
)

type updateAddressRequest struct {
	FullName   string   `json:"full_name" validate:"required"`
	Street     string   `json:"street" validate:"required"`
	City       string   `json:"city" validate:"required"`
	PostalCode string   `json:"postal_code" validate:"required"`
	Country    string   `json:"country" validate:"required"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
}

type updatePaymentMethodRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=PayPal Stripe CashOnDelivery"`
}

func GetProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
			return
		}
		user, err := svc.GetUser(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func UpdateAddress(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
			return
		}

		var req updateAddressRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user, err := svc.UpdateAddress(ctx, userID, types.Address{
			FullName:   req.FullName,
			Street:     req.Street,
			City:       req.City,
			PostalCode: req.PostalCode,
			Country:    req.Country,
			Lat:        req.Lat,
			Lng:        req.Lng,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func UpdatePaymentMethod(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
			return
		}

		var req updatePaymentMethodRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user, err := svc.UpdatePaymentMethod(ctx, userID, enums.PaymentMethod(req.PaymentMethod))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
