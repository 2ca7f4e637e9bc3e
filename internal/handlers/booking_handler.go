package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"rentease/internal/services"
	"rentease/internal/store"
)

type BookingHandler struct {
	store          store.Store
	bookingService *services.BookingService
}

func NewBookingHandler(st store.Store, bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{
		store:          st,
		bookingService: bookingService,
	}
}

// CreateBooking - Book a property for a date range
func (h *BookingHandler) CreateBooking(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		PropertyID string `json:"property_id"`
		CheckIn    string `json:"check_in"`
		CheckOut   string `json:"check_out"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	checkIn, checkOut, err := parseDateRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return apis.NewBadRequestError("Dates must be YYYY-MM-DD", err)
	}

	booking, err := h.bookingService.Create(e.Request.Context(), e.Auth.Id, services.CreateBookingRequest{
		PropertyID: req.PropertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
	})
	if err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusCreated, booking)
}

// ListBookings - List bookings visible to the requester
func (h *BookingHandler) ListBookings(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	limit, offset := pagination(e)
	role := requesterRole(e, h.store)

	bookings, err := h.bookingService.List(e.Request.Context(), e.Auth.Id, role, limit, offset)
	if err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"bookings": bookings})
}

// GetBooking - Get a single booking
func (h *BookingHandler) GetBooking(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	bookingID := e.Request.PathValue("bookingId")
	role := requesterRole(e, h.store)

	booking, err := h.bookingService.Get(e.Request.Context(), e.Auth.Id, role, bookingID)
	if err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, booking)
}

// CancelBooking - Cancel a booking
func (h *BookingHandler) CancelBooking(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	bookingID := e.Request.PathValue("bookingId")
	role := requesterRole(e, h.store)

	booking, err := h.bookingService.Cancel(e.Request.Context(), e.Auth.Id, role, bookingID)
	if err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, booking)
}

// parseDateRange accepts YYYY-MM-DD values; empty strings pass through as
// zero times so the service reports the missing-date case.
func parseDateRange(checkIn, checkOut string) (time.Time, time.Time, error) {
	var in, out time.Time
	var err error
	if checkIn != "" {
		in, err = time.Parse("2006-01-02", checkIn)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if checkOut != "" {
		out, err = time.Parse("2006-01-02", checkOut)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return in, out, nil
}

func pagination(e *core.RequestEvent) (limit, offset int) {
	limit, _ = strconv.Atoi(e.Request.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(e.Request.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
