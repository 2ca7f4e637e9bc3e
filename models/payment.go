package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// subunitFactor converts a currency amount to its smallest subunit
// (rupees to paise). Razorpay amounts are always in subunits.
var subunitFactor = decimal.NewFromInt(100)

type Payment struct {
	ID                string          `json:"id"`
	BookingID         string          `json:"booking_id"`
	Amount            decimal.Decimal `json:"amount"`
	Status            PaymentStatus   `json:"payment_status"`
	PaymentMethod     string          `json:"payment_method"` // razorpay
	RazorpayPaymentID string          `json:"razorpay_payment_id,omitempty"`
	RazorpayOrderID   string          `json:"razorpay_order_id,omitempty"`
	RazorpaySignature string          `json:"razorpay_signature,omitempty"`
	Created           time.Time       `json:"created"`
}

// AmountSubunits returns the charge amount in the smallest currency
// subunit, e.g. an amount of 1500 yields 150000.
func (p *Payment) AmountSubunits() int64 {
	return p.Amount.Mul(subunitFactor).Round(0).IntPart()
}

// AmountToSubunits converts a price into gateway subunits.
func AmountToSubunits(amount decimal.Decimal) int64 {
	return amount.Mul(subunitFactor).Round(0).IntPart()
}

// PaymentCallback is the opaque result the checkout widget hands back
// after a completed payment attempt.
type PaymentCallback struct {
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}
