package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rentease/internal/services/razorpay"
	"rentease/internal/status"
	"rentease/models"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateOrder(ctx context.Context, amountSubunits int64, bookingID string) (*razorpay.Order, error) {
	args := m.Called(ctx, amountSubunits, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*razorpay.Order), args.Error(1)
}

func (m *MockGateway) VerifyCheckoutSignature(orderID, paymentID, signature string) bool {
	args := m.Called(orderID, paymentID, signature)
	return args.Bool(0)
}

func (m *MockGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	args := m.Called(body, signature)
	return args.Bool(0)
}

func (m *MockGateway) FetchPayment(ctx context.Context, paymentID string) (*razorpay.PaymentDetails, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*razorpay.PaymentDetails), args.Error(1)
}

func newPaymentServiceForTest(t *testing.T, st *MockStore, gw *MockGateway, nt *MockNotifier) (*PaymentService, redismock.ClientMock) {
	t.Helper()
	redisClient, redisMock := redismock.NewClientMock()
	redisMock.MatchExpectationsInOrder(false)
	svc := NewPaymentService(st, redisClient, gw, nt, PaymentServiceConfig{})
	return svc, redisMock
}

func pendingBooking() *models.Booking {
	return &models.Booking{
		ID:         "bk1",
		PropertyID: "prop1",
		UserID:     "user1",
		OwnerID:    "owner1",
		Status:     models.BookingPending,
	}
}

func TestPaymentInitiate(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	svc, redisMock := newPaymentServiceForTest(t, st, gw, nil)

	property := &models.Property{
		ID:      "prop1",
		OwnerID: "owner1",
		Price:   decimal.NewFromInt(1500),
		Status:  models.PropertyAvailable,
	}
	st.On("GetBooking", mock.Anything, "bk1").Return(pendingBooking(), nil)
	st.On("GetProperty", mock.Anything, "prop1").Return(property, nil)
	gw.On("CreateOrder", mock.Anything, int64(150000), "bk1").Return(&razorpay.Order{
		OrderID:        "order_abc",
		Amount:         property.Price,
		AmountSubunits: 150000,
		Currency:       "INR",
	}, nil)
	st.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p *models.Payment) bool {
		return p.BookingID == "bk1" &&
			p.Status == models.PaymentPending &&
			p.RazorpayOrderID == "order_abc" &&
			p.Amount.Equal(decimal.NewFromInt(1500))
	})).Return(&models.Payment{ID: "pay1", BookingID: "bk1", Status: models.PaymentPending}, nil)

	redisMock.ExpectHSet("checkout:bk1", "order_id", "order_abc").SetVal(1)
	redisMock.ExpectHSet("checkout:bk1", "amount_subunits", int64(150000)).SetVal(1)
	redisMock.ExpectHSet("checkout:bk1", "payment_id", "pay1").SetVal(1)
	redisMock.ExpectHSet("checkout:bk1", "user_id", "user1").SetVal(1)
	redisMock.ExpectExpire("checkout:bk1", 10*time.Minute).SetVal(true)

	result, err := svc.Initiate(context.Background(), "user1", models.RoleUser, "bk1")
	require.NoError(t, err)
	assert.Equal(t, "order_abc", result.Order.OrderID)
	assert.Equal(t, "pay1", result.PaymentID)
	assert.NoError(t, redisMock.ExpectationsWereMet())
	st.AssertExpectations(t)
	gw.AssertExpectations(t)
}

func TestPaymentInitiateOnlyBookingUser(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	svc, _ := newPaymentServiceForTest(t, st, gw, nil)

	st.On("GetBooking", mock.Anything, "bk1").Return(pendingBooking(), nil)

	// The property owner cannot pay for someone else's booking.
	_, err := svc.Initiate(context.Background(), "owner1", models.RoleOwner, "bk1")
	assert.ErrorIs(t, err, status.ErrForbidden)
	gw.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentInitiateRejectsNonPending(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	svc, _ := newPaymentServiceForTest(t, st, gw, nil)

	booking := pendingBooking()
	booking.Status = models.BookingConfirmed
	st.On("GetBooking", mock.Anything, "bk1").Return(booking, nil)

	_, err := svc.Initiate(context.Background(), "user1", models.RoleUser, "bk1")
	assert.ErrorIs(t, err, status.ErrValidation)
}

func TestPaymentInitiateGatewayDown(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	svc, _ := newPaymentServiceForTest(t, st, gw, nil)

	property := &models.Property{ID: "prop1", Price: decimal.NewFromInt(1500), Status: models.PropertyAvailable}
	st.On("GetBooking", mock.Anything, "bk1").Return(pendingBooking(), nil)
	st.On("GetProperty", mock.Anything, "prop1").Return(property, nil)
	gw.On("CreateOrder", mock.Anything, int64(150000), "bk1").Return(nil, errors.New("connection refused"))

	_, err := svc.Initiate(context.Background(), "user1", models.RoleUser, "bk1")
	assert.ErrorIs(t, err, status.ErrExternalService)
	st.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
}

func TestPaymentConfirm(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	nt := new(MockNotifier)
	svc, redisMock := newPaymentServiceForTest(t, st, gw, nt)

	cb := models.PaymentCallback{
		RazorpayPaymentID: "pay_live_1",
		RazorpayOrderID:   "order_abc",
		RazorpaySignature: "sig",
	}
	pending := &models.Payment{
		ID:              "pay1",
		BookingID:       "bk1",
		Amount:          decimal.NewFromInt(1500),
		Status:          models.PaymentPending,
		RazorpayOrderID: "order_abc",
	}
	confirmed := pendingBooking()
	confirmed.Status = models.BookingConfirmed

	gw.On("VerifyCheckoutSignature", "order_abc", "pay_live_1", "sig").Return(true)
	st.On("FindPaymentByProviderID", mock.Anything, "pay_live_1").Return(nil, nil)
	st.On("RunInTransaction", mock.Anything, mock.Anything).Return(nil)
	st.On("FindPendingPaymentByBooking", mock.Anything, "bk1").Return(pending, nil)
	st.On("UpdatePayment", mock.Anything, mock.MatchedBy(func(p *models.Payment) bool {
		return p.ID == "pay1" &&
			p.Status == models.PaymentSuccess &&
			p.RazorpayPaymentID == "pay_live_1"
	})).Return(nil)
	st.On("UpdateBookingStatus", mock.Anything, "bk1", models.BookingPending, models.BookingConfirmed).Return(true, nil)
	st.On("GetBooking", mock.Anything, "bk1").Return(confirmed, nil)
	nt.On("PaymentSucceeded", mock.Anything, "user1", "bk1", "pay1").Return()

	redisMock.ExpectSetNX("confirm:bk1", "pay_live_1", 30*time.Second).SetVal(true)
	redisMock.ExpectHGet("checkout:bk1", "order_id").SetVal("order_abc")
	redisMock.ExpectDel("checkout:bk1").SetVal(1)
	redisMock.ExpectDel("confirm:bk1").SetVal(1)

	result, err := svc.Confirm(context.Background(), "user1", models.RoleUser, "bk1", cb)
	require.NoError(t, err)
	assert.False(t, result.AlreadyProcessed)
	assert.Equal(t, models.BookingConfirmed, result.Booking.Status)
	assert.Equal(t, models.PaymentSuccess, result.Payment.Status)
	assert.NoError(t, redisMock.ExpectationsWereMet())
	st.AssertExpectations(t)
	nt.AssertExpectations(t)
}

func TestPaymentConfirmBadSignature(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	svc, _ := newPaymentServiceForTest(t, st, gw, nil)

	gw.On("VerifyCheckoutSignature", "order_abc", "pay_live_1", "forged").Return(false)

	_, err := svc.Confirm(context.Background(), "user1", models.RoleUser, "bk1", models.PaymentCallback{
		RazorpayPaymentID: "pay_live_1",
		RazorpayOrderID:   "order_abc",
		RazorpaySignature: "forged",
	})
	assert.ErrorIs(t, err, status.ErrSignatureMismatch)
	st.AssertNotCalled(t, "RunInTransaction", mock.Anything, mock.Anything)
}

func TestPaymentConfirmOnlyBookingUser(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	svc, _ := newPaymentServiceForTest(t, st, gw, nil)

	gw.On("VerifyCheckoutSignature", "order_abc", "pay_live_1", "sig").Return(true)
	st.On("GetBooking", mock.Anything, "bk1").Return(pendingBooking(), nil)

	// A valid signature from someone else's checkout must not confirm
	// this user's booking.
	_, err := svc.Confirm(context.Background(), "stranger", models.RoleUser, "bk1", models.PaymentCallback{
		RazorpayPaymentID: "pay_live_1",
		RazorpayOrderID:   "order_abc",
		RazorpaySignature: "sig",
	})
	assert.ErrorIs(t, err, status.ErrForbidden)
	st.AssertNotCalled(t, "RunInTransaction", mock.Anything, mock.Anything)
	st.AssertNotCalled(t, "UpdateBookingStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentConfirmDuplicate(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	svc, redisMock := newPaymentServiceForTest(t, st, gw, nil)

	cb := models.PaymentCallback{
		RazorpayPaymentID: "pay_live_1",
		RazorpayOrderID:   "order_abc",
		RazorpaySignature: "sig",
	}
	recorded := &models.Payment{
		ID:                "pay1",
		BookingID:         "bk1",
		Status:            models.PaymentSuccess,
		RazorpayPaymentID: "pay_live_1",
	}
	confirmed := pendingBooking()
	confirmed.Status = models.BookingConfirmed

	gw.On("VerifyCheckoutSignature", "order_abc", "pay_live_1", "sig").Return(true)
	st.On("FindPaymentByProviderID", mock.Anything, "pay_live_1").Return(recorded, nil)
	st.On("GetBooking", mock.Anything, "bk1").Return(confirmed, nil)

	redisMock.ExpectSetNX("confirm:bk1", "pay_live_1", 30*time.Second).SetVal(true)
	redisMock.ExpectHGet("checkout:bk1", "order_id").RedisNil()
	redisMock.ExpectDel("confirm:bk1").SetVal(1)

	result, err := svc.Confirm(context.Background(), "user1", models.RoleUser, "bk1", cb)
	require.NoError(t, err)
	assert.True(t, result.AlreadyProcessed)
	st.AssertNotCalled(t, "RunInTransaction", mock.Anything, mock.Anything)
	st.AssertNotCalled(t, "UpdatePayment", mock.Anything, mock.Anything)
}

func TestPaymentConfirmInFlight(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	svc, redisMock := newPaymentServiceForTest(t, st, gw, nil)

	gw.On("VerifyCheckoutSignature", "order_abc", "pay_live_1", "sig").Return(true)
	st.On("GetBooking", mock.Anything, "bk1").Return(pendingBooking(), nil)

	redisMock.ExpectSetNX("confirm:bk1", "pay_live_1", 30*time.Second).SetVal(false)

	_, err := svc.Confirm(context.Background(), "user1", models.RoleUser, "bk1", models.PaymentCallback{
		RazorpayPaymentID: "pay_live_1",
		RazorpayOrderID:   "order_abc",
		RazorpaySignature: "sig",
	})
	assert.ErrorIs(t, err, status.ErrConfirmationInFlight)
	st.AssertNotCalled(t, "FindPaymentByProviderID", mock.Anything, mock.Anything)
}

func TestPaymentConfirmOrderMismatch(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	svc, redisMock := newPaymentServiceForTest(t, st, gw, nil)

	pending := &models.Payment{
		ID:              "pay1",
		BookingID:       "bk1",
		Status:          models.PaymentPending,
		RazorpayOrderID: "order_abc",
	}

	gw.On("VerifyCheckoutSignature", "order_other", "pay_live_1", "sig").Return(true)
	st.On("GetBooking", mock.Anything, "bk1").Return(pendingBooking(), nil)
	st.On("FindPaymentByProviderID", mock.Anything, "pay_live_1").Return(nil, nil)
	st.On("RunInTransaction", mock.Anything, mock.Anything).Return(nil)
	st.On("FindPendingPaymentByBooking", mock.Anything, "bk1").Return(pending, nil)

	redisMock.ExpectSetNX("confirm:bk1", "pay_live_1", 30*time.Second).SetVal(true)
	// Checkout session already expired; the payment row's order id is the
	// remaining line of defense.
	redisMock.ExpectHGet("checkout:bk1", "order_id").RedisNil()
	redisMock.ExpectDel("confirm:bk1").SetVal(1)

	_, err := svc.Confirm(context.Background(), "user1", models.RoleUser, "bk1", models.PaymentCallback{
		RazorpayPaymentID: "pay_live_1",
		RazorpayOrderID:   "order_other",
		RazorpaySignature: "sig",
	})
	assert.ErrorIs(t, err, status.ErrValidation)
	st.AssertNotCalled(t, "UpdatePayment", mock.Anything, mock.Anything)
	st.AssertNotCalled(t, "UpdateBookingStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentConfirmSessionOrderMismatch(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	svc, redisMock := newPaymentServiceForTest(t, st, gw, nil)

	gw.On("VerifyCheckoutSignature", "order_other", "pay_live_1", "sig").Return(true)
	st.On("GetBooking", mock.Anything, "bk1").Return(pendingBooking(), nil)

	redisMock.ExpectSetNX("confirm:bk1", "pay_live_1", 30*time.Second).SetVal(true)
	// The live checkout session pins order_abc to this booking.
	redisMock.ExpectHGet("checkout:bk1", "order_id").SetVal("order_abc")
	redisMock.ExpectDel("confirm:bk1").SetVal(1)

	_, err := svc.Confirm(context.Background(), "user1", models.RoleUser, "bk1", models.PaymentCallback{
		RazorpayPaymentID: "pay_live_1",
		RazorpayOrderID:   "order_other",
		RazorpaySignature: "sig",
	})
	assert.ErrorIs(t, err, status.ErrValidation)
	st.AssertNotCalled(t, "FindPaymentByProviderID", mock.Anything, mock.Anything)
	st.AssertNotCalled(t, "RunInTransaction", mock.Anything, mock.Anything)
}

func TestPaymentConfirmRejectsCrossBookingReplay(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	svc, redisMock := newPaymentServiceForTest(t, st, gw, nil)

	target := &models.Booking{ID: "bk2", PropertyID: "prop2", UserID: "user1", OwnerID: "owner1", Status: models.BookingPending}
	// pay_live_1 was already recorded against a different booking.
	recorded := &models.Payment{
		ID:                "pay1",
		BookingID:         "bk1",
		Status:            models.PaymentSuccess,
		RazorpayPaymentID: "pay_live_1",
	}

	gw.On("VerifyCheckoutSignature", "order_abc", "pay_live_1", "sig").Return(true)
	st.On("GetBooking", mock.Anything, "bk2").Return(target, nil)
	st.On("FindPaymentByProviderID", mock.Anything, "pay_live_1").Return(recorded, nil)

	redisMock.ExpectSetNX("confirm:bk2", "pay_live_1", 30*time.Second).SetVal(true)
	redisMock.ExpectHGet("checkout:bk2", "order_id").RedisNil()
	redisMock.ExpectDel("confirm:bk2").SetVal(1)

	_, err := svc.Confirm(context.Background(), "user1", models.RoleUser, "bk2", models.PaymentCallback{
		RazorpayPaymentID: "pay_live_1",
		RazorpayOrderID:   "order_abc",
		RazorpaySignature: "sig",
	})
	assert.ErrorIs(t, err, status.ErrValidation)
	st.AssertNotCalled(t, "RunInTransaction", mock.Anything, mock.Anything)
	st.AssertNotCalled(t, "UpdateBookingStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentMarkFailed(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	nt := new(MockNotifier)
	svc, _ := newPaymentServiceForTest(t, st, gw, nt)

	pending := &models.Payment{ID: "pay1", BookingID: "bk1", Status: models.PaymentPending}
	st.On("FindPendingPaymentByBooking", mock.Anything, "bk1").Return(pending, nil)
	st.On("UpdatePayment", mock.Anything, mock.MatchedBy(func(p *models.Payment) bool {
		return p.ID == "pay1" && p.Status == models.PaymentFailed
	})).Return(nil)
	st.On("GetBooking", mock.Anything, "bk1").Return(pendingBooking(), nil)
	nt.On("PaymentFailed", mock.Anything, "user1", "bk1", "card declined").Return()

	err := svc.MarkFailed(context.Background(), "user1", models.RoleUser, "bk1", "card declined")
	require.NoError(t, err)
	st.AssertExpectations(t)
	nt.AssertExpectations(t)
}

func TestPaymentMarkFailedOnlyBookingUser(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	svc, _ := newPaymentServiceForTest(t, st, gw, nil)

	st.On("GetBooking", mock.Anything, "bk1").Return(pendingBooking(), nil)

	err := svc.MarkFailed(context.Background(), "stranger", models.RoleUser, "bk1", "card declined")
	assert.ErrorIs(t, err, status.ErrForbidden)
	st.AssertNotCalled(t, "FindPendingPaymentByBooking", mock.Anything, mock.Anything)
	st.AssertNotCalled(t, "UpdatePayment", mock.Anything, mock.Anything)
}

func TestWebhookBadSignature(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	svc, _ := newPaymentServiceForTest(t, st, gw, nil)

	body := []byte(`{"event":"payment.captured"}`)
	gw.On("VerifyWebhookSignature", body, "forged").Return(false)

	err := svc.HandleWebhook(context.Background(), body, "forged")
	assert.ErrorIs(t, err, status.ErrSignatureMismatch)
	st.AssertNotCalled(t, "FindPaymentByOrderID", mock.Anything, mock.Anything)
}

func TestWebhookResolvesBookingByOrder(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	nt := new(MockNotifier)
	svc, redisMock := newPaymentServiceForTest(t, st, gw, nt)

	body := []byte(`{
		"event": "payment.captured",
		"payload": {"payment": {"entity": {
			"id": "pay_live_1",
			"order_id": "order_abc",
			"status": "captured"
		}}}
	}`)
	pending := &models.Payment{
		ID:              "pay1",
		BookingID:       "bk1",
		Status:          models.PaymentPending,
		RazorpayOrderID: "order_abc",
	}
	confirmed := pendingBooking()
	confirmed.Status = models.BookingConfirmed

	gw.On("VerifyWebhookSignature", body, "goodsig").Return(true)
	st.On("FindPaymentByOrderID", mock.Anything, "order_abc").Return(pending, nil)
	st.On("FindPaymentByProviderID", mock.Anything, "pay_live_1").Return(nil, nil)
	st.On("RunInTransaction", mock.Anything, mock.Anything).Return(nil)
	st.On("FindPendingPaymentByBooking", mock.Anything, "bk1").Return(pending, nil)
	st.On("UpdatePayment", mock.Anything, mock.Anything).Return(nil)
	st.On("UpdateBookingStatus", mock.Anything, "bk1", models.BookingPending, models.BookingConfirmed).Return(true, nil)
	st.On("GetBooking", mock.Anything, "bk1").Return(confirmed, nil)
	nt.On("PaymentSucceeded", mock.Anything, "user1", "bk1", "pay1").Return()

	redisMock.ExpectSetNX("confirm:bk1", "pay_live_1", 30*time.Second).SetVal(true)
	redisMock.ExpectHGet("checkout:bk1", "order_id").SetVal("order_abc")
	redisMock.ExpectDel("checkout:bk1").SetVal(1)
	redisMock.ExpectDel("confirm:bk1").SetVal(1)

	err := svc.HandleWebhook(context.Background(), body, "goodsig")
	require.NoError(t, err)
	st.AssertExpectations(t)
}

func TestPaymentStatusVisibility(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	svc, _ := newPaymentServiceForTest(t, st, gw, nil)

	st.On("GetBooking", mock.Anything, "bk1").Return(pendingBooking(), nil)
	st.On("FindLatestPaymentByBooking", mock.Anything, "bk1").Return(&models.Payment{
		ID:              "pay1",
		BookingID:       "bk1",
		Status:          models.PaymentPending,
		RazorpayOrderID: "order_abc",
	}, nil)

	view, err := svc.Status(context.Background(), "user1", models.RoleUser, "bk1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, view.BookingStatus)
	assert.Equal(t, models.PaymentPending, view.PaymentStatus)
	assert.Equal(t, "order_abc", view.OrderID)

	_, err = svc.Status(context.Background(), "stranger", models.RoleUser, "bk1")
	assert.ErrorIs(t, err, status.ErrForbidden)
}

func TestReconcileRepairsPendingBooking(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	nt := new(MockNotifier)
	svc, _ := newPaymentServiceForTest(t, st, gw, nt)

	success := &models.Payment{ID: "pay1", BookingID: "bk1", Status: models.PaymentSuccess, RazorpayPaymentID: "pay_live_1"}
	done := &models.Payment{ID: "pay2", BookingID: "bk2", Status: models.PaymentSuccess, RazorpayPaymentID: "pay_live_2"}
	confirmedBooking := &models.Booking{ID: "bk2", UserID: "user2", Status: models.BookingConfirmed}

	st.On("ListPaymentsByStatus", mock.Anything, models.PaymentSuccess, 200).Return([]*models.Payment{success, done}, nil)
	st.On("GetBooking", mock.Anything, "bk1").Return(pendingBooking(), nil)
	st.On("GetBooking", mock.Anything, "bk2").Return(confirmedBooking, nil)
	gw.On("FetchPayment", mock.Anything, "pay_live_1").Return(&razorpay.PaymentDetails{
		ID:     "pay_live_1",
		Status: "captured",
	}, nil)
	st.On("UpdateBookingStatus", mock.Anything, "bk1", models.BookingPending, models.BookingConfirmed).Return(true, nil)
	nt.On("PaymentSucceeded", mock.Anything, "user1", "bk1", "pay1").Return()

	repaired, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)
	// Already-confirmed bookings are left alone and never re-checked.
	st.AssertNumberOfCalls(t, "UpdateBookingStatus", 1)
	gw.AssertNumberOfCalls(t, "FetchPayment", 1)
	nt.AssertExpectations(t)
}

func TestReconcileRequiresCapturedAtGateway(t *testing.T) {
	st := new(MockStore)
	gw := new(MockGateway)
	svc, _ := newPaymentServiceForTest(t, st, gw, nil)

	disputed := &models.Payment{ID: "pay1", BookingID: "bk1", Status: models.PaymentSuccess, RazorpayPaymentID: "pay_live_1"}

	st.On("ListPaymentsByStatus", mock.Anything, models.PaymentSuccess, 200).Return([]*models.Payment{disputed}, nil)
	st.On("GetBooking", mock.Anything, "bk1").Return(pendingBooking(), nil)
	// The local row claims success but the gateway disagrees.
	gw.On("FetchPayment", mock.Anything, "pay_live_1").Return(&razorpay.PaymentDetails{
		ID:     "pay_live_1",
		Status: "failed",
	}, nil)

	repaired, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, repaired)
	st.AssertNotCalled(t, "UpdateBookingStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
