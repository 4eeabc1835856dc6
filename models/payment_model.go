package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusCanceled  = "canceled"
)

// Payment is one attempt to collect money for a Booking. TxRef is generated
// once and never changes; retries of the same attempt reuse it. The raw
// gateway responses are stored verbatim as the audit trail.
type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookingID uuid.UUID `gorm:"not null;unique" json:"booking_id"`
	UserID    uuid.UUID `gorm:"not null" json:"user_id"`

	Amount   float64 `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency string  `gorm:"size:10;not null;default:'ETB'" json:"currency"`

	TxRef       string `gorm:"size:100;not null;unique" json:"tx_ref"`
	ChapaTxnID  string `gorm:"size:100" json:"chapa_txn_id"`
	CheckoutURL string `gorm:"size:512" json:"checkout_url"`

	Status            string          `gorm:"size:20;not null;default:'pending'" json:"status"`
	RawInitResponse   json.RawMessage `gorm:"type:jsonb" json:"-"`
	RawVerifyResponse json.RawMessage `gorm:"type:jsonb" json:"-"`
	ReceiptURL        *string         `gorm:"size:512" json:"receipt_url"`

	Booking Booking `gorm:"foreignkey:BookingID" json:"-"`
	User    User    `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt  time.Time  `json:"created_at"`
	VerifiedAt *time.Time `json:"verified_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
