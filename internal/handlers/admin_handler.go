package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"rentease/internal/authz"
	"rentease/internal/store"
	"rentease/models"
)

type AdminHandler struct {
	store store.Store
}

func NewAdminHandler(st store.Store) *AdminHandler {
	return &AdminHandler{store: st}
}

func (h *AdminHandler) requireAdmin(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}
	if !authz.Can(requesterRole(e, h.store), authz.ActionManageUsers) {
		return apis.NewForbiddenError("Admin access required", nil)
	}
	return nil
}

// GetDashboard - Aggregate counts for the admin overview
func (h *AdminHandler) GetDashboard(e *core.RequestEvent) error {
	if err := h.requireAdmin(e); err != nil {
		return err
	}
	ctx := e.Request.Context()

	totalBookings, err := h.store.CountBookings(ctx, authz.ScopeAll, "")
	if err != nil {
		return toAPIError(err)
	}
	totalProperties, err := h.store.CountProperties(ctx, "")
	if err != nil {
		return toAPIError(err)
	}
	totalUsers, err := h.store.CountProfiles(ctx)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"total_bookings":   totalBookings,
		"total_properties": totalProperties,
		"total_users":      totalUsers,
	})
}

// ListUsers - Page through user profiles
func (h *AdminHandler) ListUsers(e *core.RequestEvent) error {
	if err := h.requireAdmin(e); err != nil {
		return err
	}

	limit, offset := pagination(e)
	profiles, err := h.store.ListProfiles(e.Request.Context(), limit, offset)
	if err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"users": profiles})
}

// UpdateUserRole - Change a user's role
func (h *AdminHandler) UpdateUserRole(e *core.RequestEvent) error {
	if err := h.requireAdmin(e); err != nil {
		return err
	}

	userID := e.Request.PathValue("userId")

	var req struct {
		Role string `json:"role"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	role := models.Role(req.Role)
	if !role.Valid() {
		return apis.NewBadRequestError("Role must be user, owner or admin", nil)
	}

	if err := h.store.UpdateProfileRole(e.Request.Context(), userID, role); err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Role updated"})
}
