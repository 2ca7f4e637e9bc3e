// Package notify pushes realtime events to users over PubNub. Clients
// subscribe to their own user-{id} channel; deliveries are fire-and-forget
// and never fail the operation that produced them.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	pubnub "github.com/pubnub/go/v7"
)

type Config struct {
	PublishKey   string
	SubscribeKey string
	SecretKey    string
}

type PubNubNotifier struct {
	pn *pubnub.PubNub
}

func New(cfg Config) *PubNubNotifier {
	pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId("rentease-server"))
	pnConfig.PublishKey = cfg.PublishKey
	pnConfig.SubscribeKey = cfg.SubscribeKey
	pnConfig.SecretKey = cfg.SecretKey

	return &PubNubNotifier{pn: pubnub.NewPubNub(pnConfig)}
}

func userChannel(userID string) string {
	return fmt.Sprintf("user-%s", userID)
}

func (n *PubNubNotifier) publish(userID string, message map[string]any) {
	_, _, err := n.pn.Publish().
		Channel(userChannel(userID)).
		Message(message).
		Execute()
	if err != nil {
		slog.Warn("pubnub publish failed", "user_id", userID, "type", message["type"], "error", err)
	}
}

func (n *PubNubNotifier) PaymentSucceeded(_ context.Context, userID, bookingID, paymentID string) {
	go n.publish(userID, map[string]any{
		"type":       "payment_success",
		"booking_id": bookingID,
		"payment_id": paymentID,
	})
}

func (n *PubNubNotifier) PaymentFailed(_ context.Context, userID, bookingID, reason string) {
	go n.publish(userID, map[string]any{
		"type":       "payment_failed",
		"booking_id": bookingID,
		"reason":     reason,
	})
}

func (n *PubNubNotifier) BookingCancelled(_ context.Context, userID, bookingID string) {
	go n.publish(userID, map[string]any{
		"type":       "booking_cancelled",
		"booking_id": bookingID,
	})
}
