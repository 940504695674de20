package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prostore-labs/storefront-backend/api/responses"
	"github.com/prostore-labs/storefront-backend/api/validators"
	"github.com/prostore-labs/storefront-backend/internal/catalog"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
)

// ListProducts serves the combined catalog listing: free-text query,
// category, price range, minimum rating, sort, pagination.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		priceMin, err := validators.ParseQueryDecimal(r, "price_min")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		priceMax, err := validators.ParseQueryDecimal(r, "price_max")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		minRating, err := validators.ParseQueryDecimal(r, "rating")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		filters := catalog.SearchFilters{
			Query:     r.URL.Query().Get("q"),
			Category:  r.URL.Query().Get("category"),
			PriceMin:  priceMin,
			PriceMax:  priceMax,
			MinRating: minRating,
			Sort:      r.URL.Query().Get("sort"),
		}

		result, err := svc.Search(ctx, filters, page)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetProductBySlug(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		product, err := svc.GetProductBySlug(ctx, chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func LatestProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, err := validators.ParseQueryInt(r, "limit", 4, 1, 24)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		products, err := svc.Latest(ctx, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}
