// Package store is the boundary to the PocketBase data layer. Services
// depend on these interfaces so the workflow logic can be tested without a
// running app, and so every visibility rule is applied inside the query
// rather than by filtering fetched supersets.
package store

import (
	"context"

	"rentease/internal/authz"
	"rentease/models"
)

type BookingStore interface {
	CreateBooking(ctx context.Context, b *models.Booking) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)

	// UpdateBookingStatus is a conditional update: it only writes when the
	// stored status still equals from, and reports whether it did.
	UpdateBookingStatus(ctx context.Context, id string, from, to models.BookingStatus) (bool, error)

	// ListBookings applies the authorization scope as a query filter.
	ListBookings(ctx context.Context, scope authz.BookingScope, requesterID string, limit, offset int) ([]*models.Booking, error)

	CountBookings(ctx context.Context, scope authz.BookingScope, requesterID string) (int64, error)
}

type PaymentStore interface {
	CreatePayment(ctx context.Context, p *models.Payment) (*models.Payment, error)
	GetPayment(ctx context.Context, id string) (*models.Payment, error)

	// FindPendingPaymentByBooking returns the most recent pending payment
	// for the booking, or nil when none exists.
	FindPendingPaymentByBooking(ctx context.Context, bookingID string) (*models.Payment, error)

	// FindLatestPaymentByBooking returns the most recent payment row for
	// the booking regardless of status, or nil when none exists.
	FindLatestPaymentByBooking(ctx context.Context, bookingID string) (*models.Payment, error)

	// FindPaymentByProviderID looks a payment up by its gateway payment id.
	// Used for idempotent confirmation; nil when unseen.
	FindPaymentByProviderID(ctx context.Context, razorpayPaymentID string) (*models.Payment, error)

	// FindPaymentByOrderID looks a payment up by its gateway order id, used
	// to map webhook deliveries back to a booking. Nil when unseen.
	FindPaymentByOrderID(ctx context.Context, razorpayOrderID string) (*models.Payment, error)

	UpdatePayment(ctx context.Context, p *models.Payment) error

	ListPaymentsByStatus(ctx context.Context, status models.PaymentStatus, limit int) ([]*models.Payment, error)
}

type PropertyStore interface {
	CreateProperty(ctx context.Context, p *models.Property) (*models.Property, error)
	GetProperty(ctx context.Context, id string) (*models.Property, error)
	UpdateProperty(ctx context.Context, p *models.Property) error

	// DeleteProperty removes the property; associated image records cascade.
	DeleteProperty(ctx context.Context, id string) error

	ListProperties(ctx context.Context, ownerID string, limit, offset int) ([]*models.Property, error)
	CountProperties(ctx context.Context, ownerID string) (int64, error)

	ListPropertyImages(ctx context.Context, propertyID string) ([]*models.PropertyImage, error)
	DeletePropertyImage(ctx context.Context, imageID string) error
}

type ProfileStore interface {
	GetProfileByUser(ctx context.Context, userID string) (*models.Profile, error)
	ListProfiles(ctx context.Context, limit, offset int) ([]*models.Profile, error)
	UpdateProfileRole(ctx context.Context, userID string, role models.Role) error
	CountProfiles(ctx context.Context) (int64, error)
}

// Store is the full data boundary. RunInTransaction runs fn against a
// transactional view; all writes inside commit or roll back together.
type Store interface {
	BookingStore
	PaymentStore
	PropertyStore
	ProfileStore

	RunInTransaction(ctx context.Context, fn func(tx Store) error) error
}
