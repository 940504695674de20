package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/prostore-labs/storefront-backend/api/middleware"
	"github.com/prostore-labs/storefront-backend/api/responses"
	"github.com/prostore-labs/storefront-backend/api/validators"
	"github.com/prostore-labs/storefront-backend/internal/cart"
	pkgerrors "github.com/prostore-labs/storefront-backend/pkg/errors"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
)

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"omitempty,min=1"`
}

func cartIdentity(r *http.Request) (cart.Identity, error) {
	id := cart.Identity{SessionCartID: middleware.SessionCartIDFromContext(r.Context())}
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		id.UserID = &userID
	}
	if id.UserID == nil && id.SessionCartID == "" {
		return cart.Identity{}, pkgerrors.New(pkgerrors.CodeValidation, "cart session required")
	}
	return id, nil
}

// GetCart returns the caller's active cart, or an empty payload when no cart
// exists yet.
func GetCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := cartIdentity(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		found, err := svc.GetActiveCart(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, found)
	}
}

func AddCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := cartIdentity(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req addCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		updated, err := svc.AddItem(ctx, id, req.ProductID, req.Qty)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// RemoveCartItem removes one unit of the product from the cart.
func RemoveCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := cartIdentity(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		updated, err := svc.DecrementItem(ctx, id, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// MergeCart adopts the anonymous session cart as the signed-in user's cart.
// Called by the storefront right after sign-in.
func MergeCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
			return
		}
		sessionCartID := middleware.SessionCartIDFromContext(ctx)

		if err := svc.MergeOnSignIn(ctx, sessionCartID, userID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		merged, err := svc.GetActiveCart(ctx, cart.Identity{UserID: &userID})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, merged)
	}
}
