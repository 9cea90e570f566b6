package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/limited-access-backend/api/middleware"
	"github.com/angelmondragon/limited-access-backend/api/responses"
	"github.com/angelmondragon/limited-access-backend/api/validators"
	"github.com/angelmondragon/limited-access-backend/internal/waitlist"
	pkgerrors "github.com/angelmondragon/limited-access-backend/pkg/errors"
	"github.com/angelmondragon/limited-access-backend/pkg/logger"
)

type createWaitlistPayload struct {
	Email     string `json:"email" validate:"required,waitlistemail"`
	ProductID string `json:"productId" validate:"required,productid"`
	Name      string `json:"name" validate:"required,min=2,max=100"`

	ShopifyCustomerID *string `json:"shopifyCustomerId,omitempty" validate:"omitempty,max=64"`
}

type updateStatusPayload struct {
	Status string `json:"status" validate:"required,waitliststatus"`
}

func serviceUnavailable(r *http.Request, logg *logger.Logger, w http.ResponseWriter) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "waitlist service unavailable"))
}

// WaitlistList returns entries newest first, filtered by status and productId.
func WaitlistList(svc waitlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			serviceUnavailable(r, logg, w)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		status, err := validators.ParseStatusFilter(r, "status")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		filter := waitlist.ListFilter{
			Status:    status,
			ProductID: strings.TrimSpace(r.URL.Query().Get("productId")),
		}

		result, err := svc.List(ctx, filter, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WritePage(w, result.Entries, result.Pagination)
	}
}

func WaitlistStats(svc waitlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r, logg, w)
			return
		}
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

func WaitlistGet(svc waitlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r, logg, w)
			return
		}
		entry, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

// WaitlistCreate adds a Pending entry. Duplicate (email, productId) pairs are 409.
func WaitlistCreate(svc waitlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			serviceUnavailable(r, logg, w)
			return
		}

		var payload createWaitlistPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entry, err := svc.Create(ctx, waitlist.CreateInput{
			Email:             payload.Email,
			ProductID:         payload.ProductID,
			Name:              payload.Name,
			ShopifyCustomerID: payload.ShopifyCustomerID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Successfully added to waitlist", entry)
	}
}

// WaitlistUpdateStatus moves an entry to the requested status.
func WaitlistUpdateStatus(svc waitlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			serviceUnavailable(r, logg, w)
			return
		}

		var payload updateStatusPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if admin := middleware.AdminSubjectFromContext(ctx); admin != "" && logg != nil {
			ctx = logg.WithField(ctx, "changed_by", admin)
		}
		entry, err := svc.UpdateStatus(ctx, chi.URLParam(r, "id"), payload.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Status updated successfully", entry)
	}
}

func WaitlistDelete(svc waitlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r, logg, w)
			return
		}
		entry, err := svc.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Entry deleted successfully", entry)
	}
}
