package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"rentease/internal/authz"
	"rentease/internal/services/razorpay"
	"rentease/internal/status"
	"rentease/internal/store"
	"rentease/models"
	"rentease/monitoring"
	"rentease/utils"
)

// PaymentGateway is the slice of the Razorpay gateway the payment workflow
// needs. *razorpay.Gateway satisfies it.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountSubunits int64, bookingID string) (*razorpay.Order, error)
	VerifyCheckoutSignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
	FetchPayment(ctx context.Context, paymentID string) (*razorpay.PaymentDetails, error)
}

type PaymentServiceConfig struct {
	SessionTTL         time.Duration
	GatewayCallTimeout time.Duration
	ConfirmLockTTL     time.Duration
	ReconcileInterval  time.Duration
	ReconcileBatchSize int
}

func (c *PaymentServiceConfig) applyDefaults() {
	if c.SessionTTL == 0 {
		c.SessionTTL = 10 * time.Minute
	}
	if c.GatewayCallTimeout == 0 {
		c.GatewayCallTimeout = 15 * time.Second
	}
	if c.ConfirmLockTTL == 0 {
		c.ConfirmLockTTL = 30 * time.Second
	}
	if c.ReconcileInterval == 0 {
		c.ReconcileInterval = time.Minute
	}
	if c.ReconcileBatchSize == 0 {
		c.ReconcileBatchSize = 200
	}
}

type PaymentService struct {
	store    store.Store
	Redis    *redis.Client
	gateway  PaymentGateway
	notifier Notifier
	breaker  *utils.CircuitBreaker
	cfg      PaymentServiceConfig
}

func NewPaymentService(st store.Store, redisClient *redis.Client, gateway PaymentGateway, notifier Notifier, cfg PaymentServiceConfig) *PaymentService {
	cfg.applyDefaults()
	return &PaymentService{
		store:    st,
		Redis:    redisClient,
		gateway:  gateway,
		notifier: notifier,
		breaker:  utils.NewCircuitBreaker("razorpay"),
		cfg:      cfg,
	}
}

func checkoutSessionKey(bookingID string) string {
	return fmt.Sprintf("checkout:%s", bookingID)
}

func confirmLockKey(bookingID string) string {
	return fmt.Sprintf("confirm:%s", bookingID)
}

// InitiateResult is what the checkout widget needs to open.
type InitiateResult struct {
	BookingID string          `json:"booking_id"`
	PaymentID string          `json:"payment_id,omitempty"` // local row, best-effort
	Order     *razorpay.Order `json:"order"`
}

// Initiate starts a payment flow for a pending booking: computes the charge
// in currency subunits, registers a gateway order, records a local pending
// payment (best-effort) and caches a checkout session keyed by booking id.
func (s *PaymentService) Initiate(ctx context.Context, requesterID string, role models.Role, bookingID string) (*InitiateResult, error) {
	if requesterID == "" {
		return nil, status.ErrUnauthenticated
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !authz.CanPayBooking(requesterID, role, booking) {
		return nil, fmt.Errorf("pay booking %s: %w", bookingID, status.ErrForbidden)
	}
	if booking.Status != models.BookingPending {
		return nil, fmt.Errorf("booking %s is %s, only pending bookings can be paid: %w", bookingID, booking.Status, status.ErrValidation)
	}

	property, err := s.store.GetProperty(ctx, booking.PropertyID)
	if err != nil {
		return nil, err
	}
	if !property.Price.IsPositive() {
		return nil, fmt.Errorf("property %s has no valid price: %w", property.ID, status.ErrValidation)
	}

	amountSubunits := models.AmountToSubunits(property.Price)

	var order *razorpay.Order
	err = s.breaker.Execute(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.GatewayCallTimeout)
		defer cancel()

		var gwErr error
		order, gwErr = s.gateway.CreateOrder(callCtx, amountSubunits, bookingID)
		return gwErr
	})
	if err != nil {
		monitoring.TrackPaymentOperation("initiate", "gateway_error")
		return nil, fmt.Errorf("create gateway order: %v: %w", err, status.ErrExternalService)
	}

	result := &InitiateResult{
		BookingID: bookingID,
		Order:     order,
	}

	// Best-effort pending row. If this insert fails the flow proceeds: the
	// confirmation path synthesizes a success row instead, so a Payment
	// record's existence is not proof a payment was attempted.
	payment, err := s.store.CreatePayment(ctx, &models.Payment{
		BookingID:       bookingID,
		Amount:          property.Price,
		Status:          models.PaymentPending,
		PaymentMethod:   "razorpay",
		RazorpayOrderID: order.OrderID,
	})
	if err != nil {
		slog.Warn("failed to create pending payment record, proceeding", "booking_id", bookingID, "error", err)
	} else {
		result.PaymentID = payment.ID
	}

	sessionKey := checkoutSessionKey(bookingID)
	sessionData := map[string]any{
		"order_id":        order.OrderID,
		"amount_subunits": amountSubunits,
		"payment_id":      result.PaymentID,
		"user_id":         requesterID,
	}
	for k, v := range sessionData {
		s.Redis.HSet(ctx, sessionKey, k, v)
	}
	s.Redis.Expire(ctx, sessionKey, s.cfg.SessionTTL)

	monitoring.TrackPaymentOperation("initiate", "ok")
	monitoring.TrackPaymentAmount(amountSubunits)
	slog.Info("payment initiated",
		"booking_id", bookingID,
		"order_id", order.OrderID,
		"amount_subunits", amountSubunits,
	)
	return result, nil
}

type ConfirmResult struct {
	Booking          *models.Booking `json:"booking"`
	Payment          *models.Payment `json:"payment"`
	AlreadyProcessed bool            `json:"already_processed"`
}

// Confirm handles the checkout completion callback. The signature is
// verified against the key secret and the requester must be the booking's
// payer before any state changes; the payment update and the booking
// transition then commit in a single transaction, serialized per booking
// and idempotent keyed by the gateway payment id.
func (s *PaymentService) Confirm(ctx context.Context, requesterID string, role models.Role, bookingID string, cb models.PaymentCallback) (*ConfirmResult, error) {
	if requesterID == "" {
		return nil, status.ErrUnauthenticated
	}
	if !s.gateway.VerifyCheckoutSignature(cb.RazorpayOrderID, cb.RazorpayPaymentID, cb.RazorpaySignature) {
		monitoring.TrackPaymentOperation("confirm", "bad_signature")
		return nil, fmt.Errorf("booking %s: %w", bookingID, status.ErrSignatureMismatch)
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !authz.CanPayBooking(requesterID, role, booking) {
		return nil, fmt.Errorf("confirm payment for booking %s: %w", bookingID, status.ErrForbidden)
	}
	return s.confirmVerified(ctx, bookingID, cb)
}

// confirmVerified is the post-verification confirmation path, shared by the
// checkout callback and the webhook.
func (s *PaymentService) confirmVerified(ctx context.Context, bookingID string, cb models.PaymentCallback) (*ConfirmResult, error) {
	lockKey := confirmLockKey(bookingID)
	locked, err := s.Redis.SetNX(ctx, lockKey, cb.RazorpayPaymentID, s.cfg.ConfirmLockTTL).Result()
	if err == nil && !locked {
		monitoring.TrackPaymentOperation("confirm", "in_flight")
		return nil, fmt.Errorf("booking %s: %w", bookingID, status.ErrConfirmationInFlight)
	}
	defer s.Redis.Del(ctx, lockKey)

	// The checkout session written at initiation pins the order that may
	// confirm this booking. A signed but foreign order must not pass; when
	// the session is gone (TTL, restart) the stored payment row's order id
	// is checked inside the transaction instead.
	sessionOrderID, err := s.Redis.HGet(ctx, checkoutSessionKey(bookingID), "order_id").Result()
	if err == nil && sessionOrderID != "" && sessionOrderID != cb.RazorpayOrderID {
		monitoring.TrackPaymentOperation("confirm", "order_mismatch")
		return nil, fmt.Errorf("order %s was not created for booking %s: %w", cb.RazorpayOrderID, bookingID, status.ErrValidation)
	}

	// Fast idempotency path: this transaction id has already been fully
	// recorded and the booking is confirmed.
	existing, err := s.store.FindPaymentByProviderID(ctx, cb.RazorpayPaymentID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.BookingID != bookingID {
		// A recorded transaction id only ever confirms the booking it was
		// paid for. Replaying it against another booking is rejected before
		// any state is touched.
		monitoring.TrackPaymentOperation("confirm", "replay")
		return nil, fmt.Errorf("payment %s belongs to booking %s, not %s: %w",
			cb.RazorpayPaymentID, existing.BookingID, bookingID, status.ErrValidation)
	}
	if existing != nil && existing.Status == models.PaymentSuccess {
		booking, err := s.store.GetBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if booking.Status == models.BookingConfirmed {
			monitoring.TrackPaymentOperation("confirm", "duplicate")
			return &ConfirmResult{Booking: booking, Payment: existing, AlreadyProcessed: true}, nil
		}
		// Payment recorded but booking still pending: fall through, the
		// transaction below repairs the pair.
	}

	var (
		payment           *models.Payment
		transitionApplied bool
	)
	txErr := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		p := existing
		if p == nil {
			var err error
			p, err = tx.FindPendingPaymentByBooking(ctx, bookingID)
			if err != nil {
				return err
			}
		}

		if p != nil {
			if p.RazorpayOrderID != "" && p.RazorpayOrderID != cb.RazorpayOrderID {
				return fmt.Errorf("order %s does not belong to booking %s: %w", cb.RazorpayOrderID, bookingID, status.ErrValidation)
			}
			p.Status = models.PaymentSuccess
			p.RazorpayPaymentID = cb.RazorpayPaymentID
			p.RazorpayOrderID = cb.RazorpayOrderID
			p.RazorpaySignature = cb.RazorpaySignature
			if err := tx.UpdatePayment(ctx, p); err != nil {
				return err
			}
		} else {
			// No pending row: the best-effort insert at initiation failed.
			// Synthesize the success row now.
			booking, err := tx.GetBooking(ctx, bookingID)
			if err != nil {
				return err
			}
			property, err := tx.GetProperty(ctx, booking.PropertyID)
			if err != nil {
				return err
			}
			p, err = tx.CreatePayment(ctx, &models.Payment{
				BookingID:         bookingID,
				Amount:            property.Price,
				Status:            models.PaymentSuccess,
				PaymentMethod:     "razorpay",
				RazorpayPaymentID: cb.RazorpayPaymentID,
				RazorpayOrderID:   cb.RazorpayOrderID,
				RazorpaySignature: cb.RazorpaySignature,
			})
			if err != nil {
				return err
			}
		}
		payment = p

		applied, err := tx.UpdateBookingStatus(ctx, bookingID, models.BookingPending, models.BookingConfirmed)
		if err != nil {
			return err
		}
		transitionApplied = applied
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, status.ErrValidation) {
			monitoring.TrackPaymentOperation("confirm", "order_mismatch")
			return nil, txErr
		}
		monitoring.TrackPaymentOperation("confirm", "error")
		slog.Error("payment confirmation failed to record",
			"booking_id", bookingID,
			"razorpay_payment_id", cb.RazorpayPaymentID,
			"error", txErr,
		)
		return nil, fmt.Errorf("record confirmation for booking %s: %v: %w", bookingID, txErr, status.ErrReconciliation)
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !transitionApplied && booking.Status != models.BookingConfirmed {
		// Payment is recorded as success but the booking left pending
		// through another path (e.g. cancelled mid-checkout). Operator
		// attention required; the reconciler will not touch non-pending
		// bookings.
		monitoring.TrackPaymentOperation("confirm", "inconsistent")
		slog.Error("payment succeeded for a booking that is no longer pending",
			"booking_id", bookingID,
			"booking_status", booking.Status,
			"razorpay_payment_id", cb.RazorpayPaymentID,
		)
		return nil, fmt.Errorf("booking %s is %s after successful payment: %w", bookingID, booking.Status, status.ErrReconciliation)
	}

	s.Redis.Del(ctx, checkoutSessionKey(bookingID))

	monitoring.TrackPaymentOperation("confirm", "ok")
	monitoring.TrackBookingTransition(string(models.BookingConfirmed))
	slog.Info("payment confirmed",
		"booking_id", bookingID,
		"payment_id", payment.ID,
		"razorpay_payment_id", cb.RazorpayPaymentID,
	)

	if s.notifier != nil {
		s.notifier.PaymentSucceeded(ctx, booking.UserID, booking.ID, payment.ID)
	}
	return &ConfirmResult{Booking: booking, Payment: payment}, nil
}

// MarkFailed records a widget-reported payment failure. Only the booking's
// payer may report one; the booking stays pending and payment can be
// re-initiated.
func (s *PaymentService) MarkFailed(ctx context.Context, requesterID string, role models.Role, bookingID, reason string) error {
	if requesterID == "" {
		return status.ErrUnauthenticated
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if !authz.CanPayBooking(requesterID, role, booking) {
		return fmt.Errorf("report payment failure for booking %s: %w", bookingID, status.ErrForbidden)
	}
	return s.markFailed(ctx, booking, reason)
}

// markFailed is the post-authorization failure path, shared by the widget
// report and the gateway webhook.
func (s *PaymentService) markFailed(ctx context.Context, booking *models.Booking, reason string) error {
	payment, err := s.store.FindPendingPaymentByBooking(ctx, booking.ID)
	if err != nil {
		return err
	}
	if payment != nil {
		payment.Status = models.PaymentFailed
		if err := s.store.UpdatePayment(ctx, payment); err != nil {
			return err
		}
	}

	monitoring.TrackPaymentOperation("confirm", "failed")
	slog.Info("payment failed", "booking_id", booking.ID, "reason", reason)

	if s.notifier != nil {
		s.notifier.PaymentFailed(ctx, booking.UserID, booking.ID, reason)
	}
	return nil
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string            `json:"id"`
				OrderID string            `json:"order_id"`
				Status  string            `json:"status"`
				Notes   map[string]string `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleWebhook processes a server-to-server gateway notification. The
// delivery signature is checked against the webhook secret; captured
// payments funnel into the same confirmation path as the checkout callback.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.gateway.VerifyWebhookSignature(body, signature) {
		monitoring.TrackPaymentOperation("webhook", "bad_signature")
		return status.ErrSignatureMismatch
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("parse webhook: %v: %w", err, status.ErrValidation)
	}

	entity := event.Payload.Payment.Entity
	bookingID := entity.Notes["booking_id"]
	if bookingID == "" && entity.OrderID != "" {
		payment, err := s.store.FindPaymentByOrderID(ctx, entity.OrderID)
		if err != nil {
			return err
		}
		if payment != nil {
			bookingID = payment.BookingID
		}
	}
	if bookingID == "" {
		return fmt.Errorf("webhook %s: cannot resolve booking: %w", event.Event, status.ErrValidation)
	}

	switch event.Event {
	case "payment.captured":
		_, err := s.confirmVerified(ctx, bookingID, models.PaymentCallback{
			RazorpayPaymentID: entity.ID,
			RazorpayOrderID:   entity.OrderID,
		})
		// A duplicate of an already-confirmed delivery is a success.
		return err
	case "payment.failed":
		booking, err := s.store.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		return s.markFailed(ctx, booking, entity.Status)
	default:
		slog.Info("ignoring webhook event", "event", event.Event)
		return nil
	}
}

// PaymentStatusView is the polling view of a booking's payment state.
type PaymentStatusView struct {
	BookingID     string               `json:"booking_id"`
	BookingStatus models.BookingStatus `json:"booking_status"`
	PaymentStatus models.PaymentStatus `json:"payment_status,omitempty"`
	OrderID       string               `json:"order_id,omitempty"`
}

// Status returns the payment state for a booking, visible to the booking's
// user, the property owner, or an admin.
func (s *PaymentService) Status(ctx context.Context, requesterID string, role models.Role, bookingID string) (*PaymentStatusView, error) {
	if requesterID == "" {
		return nil, status.ErrUnauthenticated
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && requesterID != booking.UserID && requesterID != booking.OwnerID {
		return nil, fmt.Errorf("payment status for booking %s: %w", bookingID, status.ErrForbidden)
	}

	view := &PaymentStatusView{
		BookingID:     bookingID,
		BookingStatus: booking.Status,
	}

	payment, err := s.store.FindLatestPaymentByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if payment != nil {
		view.PaymentStatus = payment.Status
		view.OrderID = payment.RazorpayOrderID
	}
	return view, nil
}

// Reconcile runs one sweep over successful payments whose bookings are
// still pending and retries the booking transition. Safe to run repeatedly:
// the conditional update makes each repair idempotent.
func (s *PaymentService) Reconcile(ctx context.Context) (int, error) {
	payments, err := s.store.ListPaymentsByStatus(ctx, models.PaymentSuccess, s.cfg.ReconcileBatchSize)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, payment := range payments {
		booking, err := s.store.GetBooking(ctx, payment.BookingID)
		if err != nil {
			slog.Error("reconciler: booking lookup failed", "booking_id", payment.BookingID, "error", err)
			continue
		}
		if booking.Status != models.BookingPending {
			continue
		}
		if payment.RazorpayPaymentID == "" {
			slog.Warn("reconciler: success payment without a gateway id, skipping", "payment_id", payment.ID)
			continue
		}

		// Re-check with the gateway before repairing: a booking only gets
		// confirmed for a payment the gateway itself reports as captured.
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.GatewayCallTimeout)
		details, err := s.gateway.FetchPayment(callCtx, payment.RazorpayPaymentID)
		cancel()
		if err != nil {
			slog.Error("reconciler: gateway payment lookup failed",
				"razorpay_payment_id", payment.RazorpayPaymentID, "error", err)
			continue
		}
		if details.Status != "captured" {
			slog.Warn("reconciler: recorded success disputed by gateway, leaving booking pending",
				"booking_id", booking.ID,
				"razorpay_payment_id", payment.RazorpayPaymentID,
				"gateway_status", details.Status,
			)
			continue
		}

		applied, err := s.store.UpdateBookingStatus(ctx, booking.ID, models.BookingPending, models.BookingConfirmed)
		if err != nil {
			slog.Error("reconciler: booking repair failed", "booking_id", booking.ID, "error", err)
			continue
		}
		if applied {
			repaired++
			monitoring.TrackBookingTransition(string(models.BookingConfirmed))
			slog.Warn("reconciler repaired booking left pending after successful payment",
				"booking_id", booking.ID,
				"payment_id", payment.ID,
			)
			if s.notifier != nil {
				s.notifier.PaymentSucceeded(ctx, booking.UserID, booking.ID, payment.ID)
			}
		}
	}

	monitoring.TrackReconcilerRun(repaired)
	return repaired, nil
}

// RunReconciler drives Reconcile on a fixed interval until ctx is done.
func (s *PaymentService) RunReconciler(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Reconcile(ctx); err != nil {
				slog.Error("reconciler sweep failed", "error", err)
			}
		}
	}
}
