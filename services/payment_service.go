package services

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/onebyte2016/alx-travel-app-0x03/models"
	"github.com/onebyte2016/alx-travel-app-0x03/payments"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyPaid        = errors.New("booking already paid")
	ErrMissingCredentials = errors.New("CHAPA_SECRET_KEY not configured")
	ErrTxRefRequired      = errors.New("tx_ref is required")
	ErrNotCancelable      = errors.New("only pending payments can be canceled")
)

// ProviderRejectedError means Chapa answered but refused the initialize
// call. The raw envelope rides along for manual reconciliation.
type ProviderRejectedError struct {
	Response json.RawMessage
}

func (e *ProviderRejectedError) Error() string {
	return "failed to initialize payment with Chapa"
}

// NotSuccessfulError means a verify call did not confirm the payment. It
// carries the payment's current status and the raw verify payload.
type NotSuccessfulError struct {
	TxRef   string
	Status  string
	Payload json.RawMessage
}

func (e *NotSuccessfulError) Error() string {
	return "payment not successful"
}

type ChapaGateway interface {
	Initialize(payload payments.InitializePayload) (*payments.ProviderResult, error)
	Verify(txRef string) (*payments.ProviderResult, error)
}

type PaymentNotifier interface {
	EnqueuePaymentConfirmation(paymentID uuid.UUID) error
}

type PaymentService struct {
	store              PaymentStore
	gateway            ChapaGateway
	notifier           PaymentNotifier
	defaultReturnURL   string
	defaultCallbackURL string
}

// NewPaymentService wires the payment flows. gateway may be nil when no
// secret key is configured; every operation then fails fast with
// ErrMissingCredentials instead of attempting a call.
func NewPaymentService(store PaymentStore, gateway ChapaGateway, notifier PaymentNotifier, defaultReturnURL, defaultCallbackURL string) *PaymentService {
	return &PaymentService{
		store:              store,
		gateway:            gateway,
		notifier:           notifier,
		defaultReturnURL:   defaultReturnURL,
		defaultCallbackURL: defaultCallbackURL,
	}
}

type InitiateResult struct {
	BookingReference string
	TxRef            string
	CheckoutURL      string
	Status           string
}

type VerifyResult struct {
	TxRef            string
	BookingReference string
	Status           string
	Payload          json.RawMessage
}

// InitiatePayment creates or reuses the booking's pending payment and asks
// Chapa for a checkout URL. The payment stays pending either way: only a
// verify call can complete it.
func (s *PaymentService) InitiatePayment(bookingID, userID uuid.UUID, returnURL, callbackURL string) (*InitiateResult, error) {
	if s.gateway == nil {
		return nil, ErrMissingCredentials
	}

	booking, err := s.store.FindBookingForUser(bookingID, userID)
	if err != nil {
		return nil, err
	}

	payment, err := s.store.GetOrCreateForBooking(booking, userID, booking.TotalPrice(), "ETB")
	if err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentStatusCompleted {
		return nil, ErrAlreadyPaid
	}

	if returnURL == "" {
		returnURL = s.defaultReturnURL
	}
	if callbackURL == "" {
		callbackURL = s.defaultCallbackURL
	}

	email := "guest@example.com"
	firstName := "Guest"
	lastName := "User"
	if booking.User != nil {
		if booking.User.Email != "" {
			email = booking.User.Email
		}
		if booking.User.FirstName != "" {
			firstName = booking.User.FirstName
		}
		if booking.User.LastName != "" {
			lastName = booking.User.LastName
		}
	}

	payload := payments.InitializePayload{
		Amount:      strconv.FormatFloat(payment.Amount, 'f', 2, 64),
		Currency:    payment.Currency,
		Email:       email,
		FirstName:   firstName,
		LastName:    lastName,
		TxRef:       payment.TxRef,
		ReturnURL:   returnURL,
		CallbackURL: callbackURL,
		Customization: payments.Customization{
			Title:       "ALX Travel Booking",
			Description: "Payment for booking " + booking.Reference,
		},
	}

	result, err := s.gateway.Initialize(payload)
	if err != nil {
		// Transport failure: nothing new to persist, safe to retry.
		return nil, err
	}

	if err := s.store.RecordInitResponse(payment, result.Raw); err != nil {
		return nil, err
	}

	if !result.Success {
		return nil, &ProviderRejectedError{Response: result.Raw}
	}

	if err := s.store.SetCheckoutDetails(payment, result.CheckoutURL, result.TransactionID); err != nil {
		return nil, err
	}

	return &InitiateResult{
		BookingReference: booking.Reference,
		TxRef:            payment.TxRef,
		CheckoutURL:      payment.CheckoutURL,
		Status:           payment.Status,
	}, nil
}

// VerifyPayment asks Chapa for the final status of a transaction reference
// owned by the requesting user and reconciles the local record.
func (s *PaymentService) VerifyPayment(txRef string, userID uuid.UUID) (*VerifyResult, error) {
	txRef = strings.TrimSpace(txRef)
	if txRef == "" {
		return nil, ErrTxRefRequired
	}
	if s.gateway == nil {
		return nil, ErrMissingCredentials
	}

	payment, err := s.store.FindByReference(txRef, userID)
	if err != nil {
		return nil, err
	}

	return s.verify(payment)
}

// VerifyCallback handles Chapa's server-to-server callback, which carries a
// transaction reference but no user identity.
func (s *PaymentService) VerifyCallback(txRef string) (*VerifyResult, error) {
	txRef = strings.TrimSpace(txRef)
	if txRef == "" {
		return nil, ErrTxRefRequired
	}
	if s.gateway == nil {
		return nil, ErrMissingCredentials
	}

	payment, err := s.store.FindByReferenceUnscoped(txRef)
	if err != nil {
		return nil, err
	}

	return s.verify(payment)
}

func (s *PaymentService) verify(payment *models.Payment) (*VerifyResult, error) {
	result, err := s.gateway.Verify(payment.TxRef)
	if err != nil {
		return nil, err
	}

	if err := s.store.RecordVerifyResponse(payment, result.Raw); err != nil {
		return nil, err
	}

	if result.VerifiedSuccess() {
		now := time.Now()
		if err := s.store.SetStatus(payment, models.PaymentStatusCompleted, &now); err != nil {
			return nil, err
		}

		// Fire-and-forget: a notification failure never fails the verify.
		if s.notifier != nil {
			if err := s.notifier.EnqueuePaymentConfirmation(payment.ID); err != nil {
				log.Printf("🔥 Failed to enqueue payment confirmation for %s: %v", payment.TxRef, err)
			}
		}

		return &VerifyResult{
			TxRef:            payment.TxRef,
			BookingReference: payment.Booking.Reference,
			Status:           payment.Status,
			Payload:          result.Raw,
		}, nil
	}

	// Only an explicit "failed" from the provider flips the status; any
	// other non-success answer leaves the record as it was.
	if result.DataStatus == "failed" {
		if err := s.store.SetStatus(payment, models.PaymentStatusFailed, nil); err != nil {
			return nil, err
		}
	}

	return nil, &NotSuccessfulError{
		TxRef:   payment.TxRef,
		Status:  payment.Status,
		Payload: result.Raw,
	}
}

// CancelPayment abandons a pending payment attempt. Completed or failed
// payments are left alone.
func (s *PaymentService) CancelPayment(txRef string, userID uuid.UUID) (*models.Payment, error) {
	txRef = strings.TrimSpace(txRef)
	if txRef == "" {
		return nil, ErrTxRefRequired
	}

	payment, err := s.store.FindByReference(txRef, userID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentStatusPending {
		return nil, ErrNotCancelable
	}

	if err := s.store.SetStatus(payment, models.PaymentStatusCanceled, nil); err != nil {
		return nil, err
	}
	return payment, nil
}
