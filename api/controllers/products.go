package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/novathreads/storefront-backend/api/responses"
	"github.com/novathreads/storefront-backend/api/validators"
	"github.com/novathreads/storefront-backend/internal/catalog"
	pkgerrors "github.com/novathreads/storefront-backend/pkg/errors"
	"github.com/novathreads/storefront-backend/pkg/logger"
	"github.com/novathreads/storefront-backend/pkg/pagination"
	"github.com/novathreads/storefront-backend/pkg/types"
)

const (
	maxSearchLength   = 200
	maxCategoryLength = 50
)

func catalogUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable")
}

// ListProducts serves GET /api/products.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}

		input, err := parseListProducts(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseListProducts(r *http.Request) (catalog.ListProductsInput, error) {
	var input catalog.ListProductsInput

	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
	if err != nil {
		return input, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", catalog.DefaultPageLimit, 1, pagination.MaxLimit)
	if err != nil {
		return input, err
	}
	featured, err := validators.ParseQueryBool(r, "featured")
	if err != nil {
		return input, err
	}
	sort, err := catalog.ParseSort(r.URL.Query().Get("sortBy"), r.URL.Query().Get("order"))
	if err != nil {
		return input, pkgerrors.New(pkgerrors.CodeValidation, err.Error()).
			WithDetails([]types.FieldError{{Field: "sortBy", Message: err.Error()}})
	}

	if category := validators.ParseQueryString(r, "category", maxCategoryLength); category != "" {
		input.Filters.Category = &category
	}
	input.Filters.Featured = featured
	input.Filters.Search = validators.ParseQueryString(r, "search", maxSearchLength)
	input.Sort = sort
	input.Pagination = pagination.Params{Page: page, Limit: limit}
	return input, nil
}

// FeaturedProducts serves GET /api/products/featured.
func FeaturedProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", catalog.DefaultFeaturedLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.FeaturedProducts(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"products": products})
	}
}

// GetProduct serves GET /api/products/{id}.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}

		product, err := svc.GetProduct(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"product": product})
	}
}

// CreateProduct serves POST /api/products (admin).
func CreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}

		var body catalog.CreateProductInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Product created successfully", map[string]any{"product": product})
	}
}

// UpdateProduct serves PUT /api/products/{id} (admin).
func UpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}

		var body catalog.UpdateProductInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), chi.URLParam(r, "id"), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Product updated successfully", map[string]any{"product": product})
	}
}

// DeleteProduct serves DELETE /api/products/{id} (admin).
func DeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}

		if err := svc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Product deleted successfully", nil)
	}
}
