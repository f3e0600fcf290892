package controllers

import (
	"net/http"

	"github.com/novathreads/storefront-backend/api/responses"
	"github.com/novathreads/storefront-backend/api/validators"
	"github.com/novathreads/storefront-backend/internal/newsletter"
	pkgerrors "github.com/novathreads/storefront-backend/pkg/errors"
	"github.com/novathreads/storefront-backend/pkg/logger"
	"github.com/novathreads/storefront-backend/pkg/pagination"
)

const (
	subscribedMessage   = "Successfully subscribed to newsletter! Check your email for confirmation."
	reactivatedMessage  = "Welcome back! Your subscription has been reactivated."
	unsubscribedMessage = "Successfully unsubscribed from newsletter"
)

func newsletterUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "newsletter service unavailable")
}

// NewsletterSubscribe serves POST /api/newsletter/subscribe. New emails get
// 201, reactivated ones 200.
func NewsletterSubscribe(svc newsletter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, newsletterUnavailable())
			return
		}

		var body newsletter.EmailRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Subscribe(r.Context(), body.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result.Outcome == newsletter.OutcomeReactivated {
			responses.WriteMessage(w, http.StatusOK, reactivatedMessage, nil)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, subscribedMessage, nil)
	}
}

// NewsletterUnsubscribe serves POST /api/newsletter/unsubscribe.
func NewsletterUnsubscribe(svc newsletter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, newsletterUnavailable())
			return
		}

		var body newsletter.EmailRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Unsubscribe(r.Context(), body.Email); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, unsubscribedMessage, nil)
	}
}

// NewsletterSubscribers serves GET /api/newsletter/subscribers (admin).
func NewsletterSubscribers(svc newsletter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, newsletterUnavailable())
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		active, err := validators.ParseQueryBool(r, "active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListSubscribers(r.Context(), newsletter.ListSubscribersInput{
			Active:     active,
			Pagination: pagination.Params{Page: page, Limit: limit},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
