package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/onebyte2016/alx-travel-app-0x03/models"
	"github.com/onebyte2016/alx-travel-app-0x03/utils"
	"gorm.io/gorm"
)

// PaymentStore is the persistence surface of the payment flows. Every
// mutation commits immediately and touches a single record.
type PaymentStore interface {
	FindBookingForUser(bookingID, userID uuid.UUID) (*models.Booking, error)
	GetOrCreateForBooking(booking *models.Booking, userID uuid.UUID, amount float64, currency string) (*models.Payment, error)
	FindByReference(txRef string, userID uuid.UUID) (*models.Payment, error)
	FindByReferenceUnscoped(txRef string) (*models.Payment, error)
	SetCheckoutDetails(payment *models.Payment, checkoutURL, chapaTxnID string) error
	SetStatus(payment *models.Payment, status string, verifiedAt *time.Time) error
	RecordInitResponse(payment *models.Payment, raw json.RawMessage) error
	RecordVerifyResponse(payment *models.Payment, raw json.RawMessage) error
}

type gormPaymentStore struct {
	db *gorm.DB
}

func NewPaymentStore(db *gorm.DB) PaymentStore {
	return &gormPaymentStore{db: db}
}

// FindBookingForUser scopes the lookup to the owner so a foreign booking id
// reads as not-found rather than forbidden.
func (s *gormPaymentStore) FindBookingForUser(bookingID, userID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Preload("Listing").Preload("User").
		Where("id = ? AND user_id = ?", bookingID, userID).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// GetOrCreateForBooking reuses the booking's payment if one exists,
// otherwise creates a pending one with a fresh transaction reference. A
// unique violation on create means a concurrent request won the race, so
// the read is retried and the existing row reused.
func (s *gormPaymentStore) GetOrCreateForBooking(booking *models.Booking, userID uuid.UUID, amount float64, currency string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.Preload("Booking").Where("booking_id = ?", booking.ID).First(&payment).Error
	if err == nil {
		return &payment, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	payment = models.Payment{
		BookingID: booking.ID,
		UserID:    userID,
		Amount:    amount,
		Currency:  currency,
		TxRef:     utils.BuildTxRef(utils.TxRefPrefix),
		Status:    models.PaymentStatusPending,
	}
	if err := s.db.Create(&payment).Error; err != nil {
		var existing models.Payment
		if ferr := s.db.Preload("Booking").Where("booking_id = ?", booking.ID).First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, err
	}
	payment.Booking = *booking
	return &payment, nil
}

func (s *gormPaymentStore) FindByReference(txRef string, userID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.Preload("Booking").Preload("User").
		Where("tx_ref = ? AND user_id = ?", txRef, userID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindByReferenceUnscoped serves the gateway's server-to-server callback,
// which carries no user identity.
func (s *gormPaymentStore) FindByReferenceUnscoped(txRef string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.Preload("Booking").Preload("User").
		Where("tx_ref = ?", txRef).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (s *gormPaymentStore) SetCheckoutDetails(payment *models.Payment, checkoutURL, chapaTxnID string) error {
	payment.CheckoutURL = checkoutURL
	payment.ChapaTxnID = chapaTxnID
	return s.db.Model(payment).Updates(map[string]interface{}{
		"checkout_url": checkoutURL,
		"chapa_txn_id": chapaTxnID,
	}).Error
}

func (s *gormPaymentStore) SetStatus(payment *models.Payment, status string, verifiedAt *time.Time) error {
	payment.Status = status
	updates := map[string]interface{}{"status": status}
	if verifiedAt != nil {
		payment.VerifiedAt = verifiedAt
		updates["verified_at"] = *verifiedAt
	}
	return s.db.Model(payment).Updates(updates).Error
}

func (s *gormPaymentStore) RecordInitResponse(payment *models.Payment, raw json.RawMessage) error {
	payment.RawInitResponse = raw
	return s.db.Model(payment).Update("raw_init_response", raw).Error
}

func (s *gormPaymentStore) RecordVerifyResponse(payment *models.Payment, raw json.RawMessage) error {
	payment.RawVerifyResponse = raw
	return s.db.Model(payment).Update("raw_verify_response", raw).Error
}
