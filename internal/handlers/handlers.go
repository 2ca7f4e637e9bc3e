// Package handlers exposes the HTTP API over PocketBase request events.
// Handlers stay thin: resolve the requester, bind input, call a service,
// translate workflow errors to HTTP.
package handlers

import (
	"errors"
	"log/slog"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"rentease/internal/status"
	"rentease/internal/store"
	"rentease/models"
)

// requesterRole resolves the caller's role from their profile. Auth records
// without a profile row act as plain users.
func requesterRole(e *core.RequestEvent, st store.Store) models.Role {
	if e.Auth == nil {
		return ""
	}
	profile, err := st.GetProfileByUser(e.Request.Context(), e.Auth.Id)
	if err != nil || profile == nil {
		return models.RoleUser
	}
	if !profile.Role.Valid() {
		return models.RoleUser
	}
	return profile.Role
}

// toAPIError maps workflow error kinds onto PocketBase API errors.
func toAPIError(err error) error {
	switch {
	case errors.Is(err, status.ErrUnauthenticated):
		return apis.NewUnauthorizedError("Authentication required", nil)
	case errors.Is(err, status.ErrForbidden):
		return apis.NewForbiddenError("Access denied", nil)
	case errors.Is(err, status.ErrValidation):
		return apis.NewBadRequestError(err.Error(), nil)
	case errors.Is(err, status.ErrSignatureMismatch):
		return apis.NewBadRequestError("Signature verification failed", nil)
	case errors.Is(err, status.ErrConfirmationInFlight):
		return apis.NewApiError(409, "A confirmation for this booking is already in progress", nil)
	case errors.Is(err, status.ErrExternalService):
		return apis.NewApiError(502, "Payment gateway unavailable", nil)
	case errors.Is(err, status.ErrReconciliation):
		return apis.NewApiError(500, "Payment recorded, booking update pending", nil)
	case errors.Is(err, status.ErrPersistence):
		return apis.NewNotFoundError("Not found", nil)
	default:
		slog.Error("unhandled request error", "error", err)
		return apis.NewApiError(500, "Something went wrong", nil)
	}
}
