package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rentease/internal/authz"
	"rentease/internal/store"
	"rentease/models"
)

// MockStore is a testify mock over the full store boundary.
// RunInTransaction executes the callback against the mock itself.
type MockStore struct {
	mock.Mock
}

var _ store.Store = (*MockStore)(nil)

func (m *MockStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	args := m.Called(ctx, mock.Anything)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(m)
}

func (m *MockStore) CreateBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockStore) UpdateBookingStatus(ctx context.Context, id string, from, to models.BookingStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) ListBookings(ctx context.Context, scope authz.BookingScope, requesterID string, limit, offset int) ([]*models.Booking, error) {
	args := m.Called(ctx, scope, requesterID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *MockStore) CountBookings(ctx context.Context, scope authz.BookingScope, requesterID string) (int64, error) {
	args := m.Called(ctx, scope, requesterID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) CreatePayment(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockStore) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockStore) FindPendingPaymentByBooking(ctx context.Context, bookingID string) (*models.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockStore) FindLatestPaymentByBooking(ctx context.Context, bookingID string) (*models.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockStore) FindPaymentByProviderID(ctx context.Context, razorpayPaymentID string) (*models.Payment, error) {
	args := m.Called(ctx, razorpayPaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockStore) FindPaymentByOrderID(ctx context.Context, razorpayOrderID string) (*models.Payment, error) {
	args := m.Called(ctx, razorpayOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockStore) UpdatePayment(ctx context.Context, p *models.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockStore) ListPaymentsByStatus(ctx context.Context, status models.PaymentStatus, limit int) ([]*models.Payment, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *MockStore) CreateProperty(ctx context.Context, p *models.Property) (*models.Property, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockStore) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockStore) UpdateProperty(ctx context.Context, p *models.Property) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockStore) DeleteProperty(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) ListProperties(ctx context.Context, ownerID string, limit, offset int) ([]*models.Property, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Property), args.Error(1)
}

func (m *MockStore) CountProperties(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ListPropertyImages(ctx context.Context, propertyID string) ([]*models.PropertyImage, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PropertyImage), args.Error(1)
}

func (m *MockStore) DeletePropertyImage(ctx context.Context, imageID string) error {
	args := m.Called(ctx, imageID)
	return args.Error(0)
}

func (m *MockStore) GetProfileByUser(ctx context.Context, userID string) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockStore) ListProfiles(ctx context.Context, limit, offset int) ([]*models.Profile, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Profile), args.Error(1)
}

func (m *MockStore) UpdateProfileRole(ctx context.Context, userID string, role models.Role) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

func (m *MockStore) CountProfiles(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotifier records realtime notifications.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PaymentSucceeded(ctx context.Context, userID, bookingID, paymentID string) {
	m.Called(ctx, userID, bookingID, paymentID)
}

func (m *MockNotifier) PaymentFailed(ctx context.Context, userID, bookingID, reason string) {
	m.Called(ctx, userID, bookingID, reason)
}

func (m *MockNotifier) BookingCancelled(ctx context.Context, userID, bookingID string) {
	m.Called(ctx, userID, bookingID)
}
