package handlers

import (
	"io"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"rentease/internal/services"
	"rentease/internal/services/razorpay"
	"rentease/internal/store"
	"rentease/models"
	"rentease/utils"
)

type PaymentHandler struct {
	store          store.Store
	paymentService *services.PaymentService
	gateway        *razorpay.Gateway
	devMode        bool
}

func NewPaymentHandler(st store.Store, paymentService *services.PaymentService, gateway *razorpay.Gateway, devMode bool) *PaymentHandler {
	return &PaymentHandler{
		store:          st,
		paymentService: paymentService,
		gateway:        gateway,
		devMode:        devMode,
	}
}

// InitiatePayment - Create a gateway order for a pending booking
func (h *PaymentHandler) InitiatePayment(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	bookingID := e.Request.PathValue("bookingId")
	role := requesterRole(e, h.store)

	result, err := h.paymentService.Initiate(e.Request.Context(), e.Auth.Id, role, bookingID)
	if err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, result)
}

// VerifyPayment - Confirm a completed checkout callback
func (h *PaymentHandler) VerifyPayment(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	bookingID := e.Request.PathValue("bookingId")
	role := requesterRole(e, h.store)

	var cb models.PaymentCallback
	if err := e.BindBody(&cb); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if cb.RazorpayPaymentID == "" || cb.RazorpayOrderID == "" || cb.RazorpaySignature == "" {
		return apis.NewBadRequestError("razorpay_payment_id, razorpay_order_id and razorpay_signature are required", nil)
	}

	result, err := h.paymentService.Confirm(e.Request.Context(), e.Auth.Id, role, bookingID, cb)
	if err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, result)
}

// PaymentFailed - Record a widget-reported failure; the booking stays pending
func (h *PaymentHandler) PaymentFailed(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	bookingID := e.Request.PathValue("bookingId")
	role := requesterRole(e, h.store)

	var req struct {
		Reason string `json:"reason"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	if err := h.paymentService.MarkFailed(e.Request.Context(), e.Auth.Id, role, bookingID, req.Reason); err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Payment failure recorded"})
}

// PaymentStatus - Poll the payment state of a booking
func (h *PaymentHandler) PaymentStatus(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	bookingID := e.Request.PathValue("bookingId")
	role := requesterRole(e, h.store)

	view, err := h.paymentService.Status(e.Request.Context(), e.Auth.Id, role, bookingID)
	if err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, view)
}

// Webhook - Server-to-server gateway notifications. Unauthenticated; trust
// comes from the webhook signature alone.
func (h *PaymentHandler) Webhook(e *core.RequestEvent) error {
	body, err := io.ReadAll(e.Request.Body)
	if err != nil {
		return apis.NewBadRequestError("Cannot read body", err)
	}
	signature := e.Request.Header.Get("X-Razorpay-Signature")

	if err := h.paymentService.HandleWebhook(e.Request.Context(), body, signature); err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"status": "ok"})
}

// SimulatePayment - Complete a payment without the real gateway (for testing)
func (h *PaymentHandler) SimulatePayment(e *core.RequestEvent) error {
	if !h.devMode {
		return apis.NewNotFoundError("Not found", nil)
	}
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	bookingID := e.Request.PathValue("bookingId")

	var req struct {
		OrderID   string `json:"order_id"`
		PaymentID string `json:"payment_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if req.OrderID == "" {
		return apis.NewBadRequestError("order_id is required", nil)
	}
	if req.PaymentID == "" {
		// Synthesize a transaction id the way the gateway would.
		code, err := utils.GenerateCode(8)
		if err != nil {
			return apis.NewApiError(500, "Something went wrong", nil)
		}
		req.PaymentID = "pay_sim_" + code
	}

	cb := models.PaymentCallback{
		RazorpayPaymentID: req.PaymentID,
		RazorpayOrderID:   req.OrderID,
		RazorpaySignature: h.gateway.SignCheckout(req.OrderID, req.PaymentID),
	}
	role := requesterRole(e, h.store)
	result, err := h.paymentService.Confirm(e.Request.Context(), e.Auth.Id, role, bookingID, cb)
	if err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, result)
}
