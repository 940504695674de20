package controllers

import (
	"net/http"

	"github.com/prostore-labs/storefront-backend/api/middleware"
	"github.com/prostore-labs/storefront-backend/api/responses"
	"github.com/prostore-labs/storefront-backend/api/validators"
	"github.com/prostore-labs/storefront-backend/internal/orders"
	"github.com/prostore-labs/storefront-backend/pkg/enums"
	pkgerrors "github.com/prostore-labs/storefront-backend/pkg/errors"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
)

func viewerFromRequest(r *http.Request) (orders.Viewer, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return orders.Viewer{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required")
	}
	return orders.Viewer{
		UserID:  userID,
		IsAdmin: middleware.RoleFromContext(r.Context()) == string(enums.UserRoleAdmin),
	}, nil
}

// CreateOrder converts the signed-in user's cart into an order.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.CreateOrder(ctx, viewer.UserID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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

		order, err := svc.GetOrder(ctx, orderID, viewer)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func ListMyOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.ListUserOrders(ctx, viewer.UserID, page)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
