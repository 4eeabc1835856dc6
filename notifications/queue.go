package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/onebyte2016/alx-travel-app-0x03/models"
	"github.com/onebyte2016/alx-travel-app-0x03/services"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const paymentConfirmationQueue = "queue:payment_confirmations"

// PaymentNotifier pushes payment ids onto a Redis list for out-of-band
// processing. Delivery is at-least-once; the worker is idempotent.
type PaymentNotifier struct {
	rdb *redis.Client
}

func NewPaymentNotifier(rdb *redis.Client) *PaymentNotifier {
	return &PaymentNotifier{rdb: rdb}
}

func (n *PaymentNotifier) EnqueuePaymentConfirmation(paymentID uuid.UUID) error {
	return n.rdb.LPush(context.Background(), paymentConfirmationQueue, paymentID.String()).Err()
}

// RunPaymentWorker blocks on the confirmation queue until ctx is canceled.
// Run it in its own goroutine.
func RunPaymentWorker(ctx context.Context, rdb *redis.Client, db *gorm.DB) {
	log.Println("✅ Payment notification worker started")
	for {
		res, err := rdb.BRPop(ctx, 0, paymentConfirmationQueue).Result()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("🔥 Payment notification worker: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}
		// res[0] is the queue key, res[1] the payment id.
		handlePaymentConfirmation(db, res[1])
	}
}

func handlePaymentConfirmation(db *gorm.DB, rawID string) {
	paymentID, err := uuid.Parse(rawID)
	if err != nil {
		log.Printf("Discarding malformed payment id on confirmation queue: %q", rawID)
		return
	}

	var payment models.Payment
	if err := db.Preload("Booking").Preload("User").First(&payment, "id = ?", paymentID).Error; err != nil {
		// The id may no longer resolve; treat as a no-op.
		return
	}

	if payment.User.Email == "" {
		return
	}

	name := payment.User.FullName()
	if name == "" {
		name = payment.User.Email
	}

	subject := "Payment Confirmation - ALX Travel"
	body := fmt.Sprintf(
		"<h1>Payment Confirmed</h1><p>Hello %s,</p><p>Your payment for booking %s was successful.</p><p><b>Amount:</b> %.2f %s<br><b>Transaction Ref:</b> %s</p><p>Thank you for booking with us!</p>",
		name, payment.Booking.Reference, payment.Amount, payment.Currency, payment.TxRef,
	)
	SendEmail(name, payment.User.Email, subject, body)

	services.GeneratePaymentReceipt(db, &payment)
}
