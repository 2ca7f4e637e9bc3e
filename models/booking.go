package models

import (
	"errors"
	"time"
)

var (
	ErrMissingDates     = errors.New("booking: check-in and check-out dates are required")
	ErrInvalidDateRange = errors.New("booking: check-in must be before check-out")
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// CanTransitionTo reports whether the lifecycle allows moving to next.
// Allowed paths: pending -> confirmed, pending -> cancelled,
// confirmed -> cancelled. Nothing leaves cancelled.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCancelled
	default:
		return false
	}
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingCancelled
}

type Booking struct {
	ID         string        `json:"id"`
	PropertyID string        `json:"property_id"`
	UserID     string        `json:"user_id"`
	OwnerID    string        `json:"owner_id"` // property owner at booking time
	CheckIn    time.Time     `json:"check_in"`
	CheckOut   time.Time     `json:"check_out"`
	Status     BookingStatus `json:"status"`
	Created    time.Time     `json:"created"`
}

// ValidateDates enforces the creation invariant: both dates present and
// check-in strictly before check-out.
func (b *Booking) ValidateDates() error {
	if b.CheckIn.IsZero() || b.CheckOut.IsZero() {
		return ErrMissingDates
	}
	if !b.CheckIn.Before(b.CheckOut) {
		return ErrInvalidDateRange
	}
	return nil
}
