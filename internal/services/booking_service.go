package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rentease/internal/authz"
	"rentease/internal/status"
	"rentease/internal/store"
	"rentease/models"
	"rentease/monitoring"
)

// Notifier delivers fire-and-forget realtime events to users. A delivery
// failure never fails the operation that triggered it.
type Notifier interface {
	PaymentSucceeded(ctx context.Context, userID, bookingID, paymentID string)
	PaymentFailed(ctx context.Context, userID, bookingID, reason string)
	BookingCancelled(ctx context.Context, userID, bookingID string)
}

type BookingService struct {
	store    store.Store
	notifier Notifier
}

func NewBookingService(st store.Store, notifier Notifier) *BookingService {
	return &BookingService{
		store:    st,
		notifier: notifier,
	}
}

type CreateBookingRequest struct {
	PropertyID string    `json:"property_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
}

// Create validates the date range and inserts a booking in state pending,
// with the property's current owner denormalized onto the booking.
//
// Known gap carried over deliberately: no overlap check against existing
// bookings for the same property, so double-booking a date range is
// possible.
func (s *BookingService) Create(ctx context.Context, userID string, req CreateBookingRequest) (*models.Booking, error) {
	if userID == "" {
		return nil, status.ErrUnauthenticated
	}
	if req.PropertyID == "" {
		return nil, fmt.Errorf("property id is required: %w", status.ErrValidation)
	}

	booking := &models.Booking{
		PropertyID: req.PropertyID,
		UserID:     userID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Status:     models.BookingPending,
	}
	if err := booking.ValidateDates(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, status.ErrValidation)
	}

	property, err := s.store.GetProperty(ctx, req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("resolve property: %w", err)
	}
	if !property.Bookable() {
		return nil, fmt.Errorf("property %s is not available for booking: %w", property.ID, status.ErrValidation)
	}
	booking.OwnerID = property.OwnerID

	created, err := s.store.CreateBooking(ctx, booking)
	if err != nil {
		return nil, err
	}

	monitoring.TrackBookingCreated()
	slog.Info("booking created",
		"booking_id", created.ID,
		"property_id", created.PropertyID,
		"user_id", created.UserID,
	)
	return created, nil
}

// Cancel transitions a booking to cancelled. Cancelled is terminal:
// cancelling an already cancelled booking is a no-op success. Allowed for
// the requesting user, the property owner, or an admin.
func (s *BookingService) Cancel(ctx context.Context, requesterID string, role models.Role, bookingID string) (*models.Booking, error) {
	if requesterID == "" {
		return nil, status.ErrUnauthenticated
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !authz.CanCancelBooking(requesterID, role, booking) {
		return nil, fmt.Errorf("cancel booking %s: %w", bookingID, status.ErrForbidden)
	}

	if booking.Status.IsTerminal() {
		return booking, nil
	}

	applied, err := s.store.UpdateBookingStatus(ctx, bookingID, booking.Status, models.BookingCancelled)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost a race with another transition. Re-read: if the other
		// transition also landed on cancelled the cancel is still a no-op
		// success, otherwise retry once from the fresh state.
		booking, err = s.store.GetBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if !booking.Status.IsTerminal() {
			retried, err := s.store.UpdateBookingStatus(ctx, bookingID, booking.Status, models.BookingCancelled)
			if err != nil {
				return nil, err
			}
			if !retried {
				// Lost again. Report the stored state rather than claiming
				// a cancellation that never happened.
				booking, err = s.store.GetBooking(ctx, bookingID)
				if err != nil {
					return nil, err
				}
				if booking.Status != models.BookingCancelled {
					return nil, fmt.Errorf("cancel booking %s: concurrent status changes: %w", bookingID, status.ErrPersistence)
				}
			}
		}
	}

	booking.Status = models.BookingCancelled
	monitoring.TrackBookingTransition(string(models.BookingCancelled))
	slog.Info("booking cancelled", "booking_id", bookingID, "by", requesterID)

	if s.notifier != nil {
		s.notifier.BookingCancelled(ctx, booking.UserID, booking.ID)
	}
	return booking, nil
}

// List returns the bookings visible to the requester. The role scope is
// applied by the store as a query filter, never by trimming a superset.
func (s *BookingService) List(ctx context.Context, requesterID string, role models.Role, limit, offset int) ([]*models.Booking, error) {
	if requesterID == "" {
		return nil, status.ErrUnauthenticated
	}
	if limit <= 0 {
		limit = 20
	}

	scope := authz.ScopeForBookings(role)
	return s.store.ListBookings(ctx, scope, requesterID, limit, offset)
}

// Get returns a single booking if the requester may see it.
func (s *BookingService) Get(ctx context.Context, requesterID string, role models.Role, bookingID string) (*models.Booking, error) {
	if requesterID == "" {
		return nil, status.ErrUnauthenticated
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch authz.ScopeForBookings(role) {
	case authz.ScopeAll:
		return booking, nil
	case authz.ScopeOwnedProperties:
		if booking.OwnerID == requesterID || booking.UserID == requesterID {
			return booking, nil
		}
	case authz.ScopeRequester:
		if booking.UserID == requesterID {
			return booking, nil
		}
	}
	return nil, fmt.Errorf("booking %s: %w", bookingID, status.ErrForbidden)
}
