package services_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/onebyte2016/alx-travel-app-0x03/models"
	"github.com/onebyte2016/alx-travel-app-0x03/payments"
	"github.com/onebyte2016/alx-travel-app-0x03/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPaymentStore struct {
	mock.Mock
}

func (m *mockPaymentStore) FindBookingForUser(bookingID, userID uuid.UUID) (*models.Booking, error) {
	args := m.Called(bookingID, userID)
	if b := args.Get(0); b != nil {
		return b.(*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPaymentStore) GetOrCreateForBooking(booking *models.Booking, userID uuid.UUID, amount float64, currency string) (*models.Payment, error) {
	args := m.Called(booking, userID, amount, currency)
	if p := args.Get(0); p != nil {
		return p.(*models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPaymentStore) FindByReference(txRef string, userID uuid.UUID) (*models.Payment, error) {
	args := m.Called(txRef, userID)
	if p := args.Get(0); p != nil {
		return p.(*models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPaymentStore) FindByReferenceUnscoped(txRef string) (*models.Payment, error) {
	args := m.Called(txRef)
	if p := args.Get(0); p != nil {
		return p.(*models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPaymentStore) SetCheckoutDetails(payment *models.Payment, checkoutURL, chapaTxnID string) error {
	args := m.Called(payment, checkoutURL, chapaTxnID)
	if args.Error(0) == nil {
		payment.CheckoutURL = checkoutURL
		payment.ChapaTxnID = chapaTxnID
	}
	return args.Error(0)
}

func (m *mockPaymentStore) SetStatus(payment *models.Payment, status string, verifiedAt *time.Time) error {
	args := m.Called(payment, status, verifiedAt)
	if args.Error(0) == nil {
		payment.Status = status
		if verifiedAt != nil {
			payment.VerifiedAt = verifiedAt
		}
	}
	return args.Error(0)
}

func (m *mockPaymentStore) RecordInitResponse(payment *models.Payment, raw json.RawMessage) error {
	args := m.Called(payment, raw)
	if args.Error(0) == nil {
		payment.RawInitResponse = raw
	}
	return args.Error(0)
}

func (m *mockPaymentStore) RecordVerifyResponse(payment *models.Payment, raw json.RawMessage) error {
	args := m.Called(payment, raw)
	if args.Error(0) == nil {
		payment.RawVerifyResponse = raw
	}
	return args.Error(0)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Initialize(payload payments.InitializePayload) (*payments.ProviderResult, error) {
	args := m.Called(payload)
	if r := args.Get(0); r != nil {
		return r.(*payments.ProviderResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) Verify(txRef string) (*payments.ProviderResult, error) {
	args := m.Called(txRef)
	if r := args.Get(0); r != nil {
		return r.(*payments.ProviderResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) EnqueuePaymentConfirmation(paymentID uuid.UUID) error {
	args := m.Called(paymentID)
	return args.Error(0)
}

func newFixtureBooking(userID uuid.UUID) *models.Booking {
	listing := models.Listing{
		ID:            uuid.New(),
		Title:         "Luxury Villa",
		PricePerNight: 500,
		Location:      "Lagos",
	}
	return &models.Booking{
		ID:        uuid.New(),
		UserID:    &userID,
		ListingID: listing.ID,
		Reference: "BK-TEST1234",
		CheckIn:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC),
		Listing:   listing,
		User: &models.User{
			ID:        userID,
			FirstName: "Abel",
			LastName:  "Tesfaye",
			Email:     "abel@example.com",
		},
	}
}

func newFixturePayment(booking *models.Booking, userID uuid.UUID) *models.Payment {
	return &models.Payment{
		ID:        uuid.New(),
		BookingID: booking.ID,
		UserID:    userID,
		Amount:    1500,
		Currency:  "ETB",
		TxRef:     "BOOKPAY-AAAABBBBCCCC",
		Status:    models.PaymentStatusPending,
		Booking:   *booking,
	}
}

func newService(store *mockPaymentStore, gateway *mockGateway, notifier *mockNotifier) *services.PaymentService {
	var gw services.ChapaGateway
	if gateway != nil {
		gw = gateway
	}
	var n services.PaymentNotifier
	if notifier != nil {
		n = notifier
	}
	return services.NewPaymentService(store, gw, n,
		"https://frontend.example/thank-you",
		"https://backend.example/api/v1/payments/chapa/callback")
}

func TestInitiatePayment_CreatesPendingAndReturnsCheckoutURL(t *testing.T) {
	store := new(mockPaymentStore)
	gateway := new(mockGateway)
	userID := uuid.New()
	booking := newFixtureBooking(userID)
	payment := newFixturePayment(booking, userID)

	store.On("FindBookingForUser", booking.ID, userID).Return(booking, nil)
	store.On("GetOrCreateForBooking", booking, userID, 1500.0, "ETB").Return(payment, nil)

	raw := json.RawMessage(`{"status":"success","data":{"checkout_url":"https://pay/x","id":"ptx_1"}}`)
	gateway.On("Initialize", mock.MatchedBy(func(p payments.InitializePayload) bool {
		return p.Amount == "1500.00" &&
			p.Currency == "ETB" &&
			p.Email == "abel@example.com" &&
			p.FirstName == "Abel" &&
			p.TxRef == payment.TxRef &&
			p.ReturnURL == "https://frontend.example/thank-you" &&
			p.Customization.Description == "Payment for booking BK-TEST1234"
	})).Return(&payments.ProviderResult{
		Raw:           raw,
		Success:       true,
		CheckoutURL:   "https://pay/x",
		TransactionID: "ptx_1",
	}, nil)
	store.On("RecordInitResponse", payment, raw).Return(nil)
	store.On("SetCheckoutDetails", payment, "https://pay/x", "ptx_1").Return(nil)

	result, err := newService(store, gateway, nil).InitiatePayment(booking.ID, userID, "", "")

	require.NoError(t, err)
	assert.Equal(t, "https://pay/x", result.CheckoutURL)
	assert.Equal(t, "BK-TEST1234", result.BookingReference)
	assert.Equal(t, payment.TxRef, result.TxRef)
	assert.Equal(t, models.PaymentStatusPending, result.Status)
	store.AssertExpectations(t)
	gateway.AssertExpectations(t)
}

func TestInitiatePayment_AlreadyPaid(t *testing.T) {
	store := new(mockPaymentStore)
	gateway := new(mockGateway)
	userID := uuid.New()
	booking := newFixtureBooking(userID)
	payment := newFixturePayment(booking, userID)
	payment.Status = models.PaymentStatusCompleted

	store.On("FindBookingForUser", booking.ID, userID).Return(booking, nil)
	store.On("GetOrCreateForBooking", booking, userID, 1500.0, "ETB").Return(payment, nil)

	result, err := newService(store, gateway, nil).InitiatePayment(booking.ID, userID, "", "")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, services.ErrAlreadyPaid)
	gateway.AssertNotCalled(t, "Initialize", mock.Anything)
	store.AssertNotCalled(t, "SetCheckoutDetails", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestInitiatePayment_ReusesExistingReference(t *testing.T) {
	store := new(mockPaymentStore)
	gateway := new(mockGateway)
	userID := uuid.New()
	booking := newFixtureBooking(userID)
	payment := newFixturePayment(booking, userID)
	payment.Status = models.PaymentStatusFailed
	payment.TxRef = "BOOKPAY-111122223333"

	store.On("FindBookingForUser", booking.ID, userID).Return(booking, nil)
	store.On("GetOrCreateForBooking", booking, userID, 1500.0, "ETB").Return(payment, nil)
	gateway.On("Initialize", mock.MatchedBy(func(p payments.InitializePayload) bool {
		return p.TxRef == "BOOKPAY-111122223333"
	})).Return(&payments.ProviderResult{
		Raw:         json.RawMessage(`{"status":"success","data":{"checkout_url":"https://pay/y"}}`),
		Success:     true,
		CheckoutURL: "https://pay/y",
	}, nil)
	store.On("RecordInitResponse", payment, mock.Anything).Return(nil)
	store.On("SetCheckoutDetails", payment, "https://pay/y", "").Return(nil)

	result, err := newService(store, gateway, nil).InitiatePayment(booking.ID, userID, "", "")

	require.NoError(t, err)
	assert.Equal(t, "BOOKPAY-111122223333", result.TxRef)
	gateway.AssertExpectations(t)
}

func TestInitiatePayment_MissingCredentials(t *testing.T) {
	store := new(mockPaymentStore)
	userID := uuid.New()

	result, err := newService(store, nil, nil).InitiatePayment(uuid.New(), userID, "", "")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, services.ErrMissingCredentials)
	store.AssertNotCalled(t, "FindBookingForUser", mock.Anything, mock.Anything)
}

func TestInitiatePayment_BookingOwnedByAnotherUser(t *testing.T) {
	store := new(mockPaymentStore)
	gateway := new(mockGateway)
	userID := uuid.New()
	bookingID := uuid.New()

	store.On("FindBookingForUser", bookingID, userID).Return(nil, services.ErrNotFound)

	result, err := newService(store, gateway, nil).InitiatePayment(bookingID, userID, "", "")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, services.ErrNotFound)
	gateway.AssertNotCalled(t, "Initialize", mock.Anything)
}

func TestInitiatePayment_ProviderRejected(t *testing.T) {
	store := new(mockPaymentStore)
	gateway := new(mockGateway)
	userID := uuid.New()
	booking := newFixtureBooking(userID)
	payment := newFixturePayment(booking, userID)

	raw := json.RawMessage(`{"status":"failed","message":"Invalid API key"}`)
	store.On("FindBookingForUser", booking.ID, userID).Return(booking, nil)
	store.On("GetOrCreateForBooking", booking, userID, 1500.0, "ETB").Return(payment, nil)
	gateway.On("Initialize", mock.Anything).Return(&payments.ProviderResult{Raw: raw, Success: false}, nil)
	store.On("RecordInitResponse", payment, raw).Return(nil)

	result, err := newService(store, gateway, nil).InitiatePayment(booking.ID, userID, "", "")

	assert.Nil(t, result)
	var rejected *services.ProviderRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, raw, rejected.Response)
	assert.Equal(t, raw, payment.RawInitResponse)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	store.AssertNotCalled(t, "SetCheckoutDetails", mock.Anything, mock.Anything, mock.Anything)
}

func TestInitiatePayment_GatewayUnreachable(t *testing.T) {
	store := new(mockPaymentStore)
	gateway := new(mockGateway)
	userID := uuid.New()
	booking := newFixtureBooking(userID)
	payment := newFixturePayment(booking, userID)

	store.On("FindBookingForUser", booking.ID, userID).Return(booking, nil)
	store.On("GetOrCreateForBooking", booking, userID, 1500.0, "ETB").Return(payment, nil)
	gateway.On("Initialize", mock.Anything).Return(nil, payments.ErrGatewayUnreachable)

	result, err := newService(store, gateway, nil).InitiatePayment(booking.ID, userID, "", "")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, payments.ErrGatewayUnreachable)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Nil(t, payment.RawInitResponse)
	store.AssertNotCalled(t, "RecordInitResponse", mock.Anything, mock.Anything)
}

func TestVerifyPayment_CompletedAndNotifiesOnce(t *testing.T) {
	store := new(mockPaymentStore)
	gateway := new(mockGateway)
	notifier := new(mockNotifier)
	userID := uuid.New()
	booking := newFixtureBooking(userID)
	payment := newFixturePayment(booking, userID)

	raw := json.RawMessage(`{"status":"success","data":{"status":"success"}}`)
	store.On("FindByReference", payment.TxRef, userID).Return(payment, nil)
	gateway.On("Verify", payment.TxRef).Return(&payments.ProviderResult{
		Raw:        raw,
		Success:    true,
		DataStatus: "success",
	}, nil)
	store.On("RecordVerifyResponse", payment, raw).Return(nil)
	store.On("SetStatus", payment, models.PaymentStatusCompleted, mock.AnythingOfType("*time.Time")).Return(nil)
	notifier.On("EnqueuePaymentConfirmation", payment.ID).Return(nil)

	result, err := newService(store, gateway, notifier).VerifyPayment(payment.TxRef, userID)

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, result.Status)
	assert.Equal(t, "BK-TEST1234", result.BookingReference)
	assert.Equal(t, raw, result.Payload)
	assert.NotNil(t, payment.VerifiedAt)
	notifier.AssertNumberOfCalls(t, "EnqueuePaymentConfirmation", 1)
	store.AssertExpectations(t)
}

func TestVerifyPayment_NotifierFailureDoesNotFailVerify(t *testing.T) {
	store := new(mockPaymentStore)
	gateway := new(mockGateway)
	notifier := new(mockNotifier)
	userID := uuid.New()
	booking := newFixtureBooking(userID)
	payment := newFixturePayment(booking, userID)

	raw := json.RawMessage(`{"status":"success","data":{"status":"success"}}`)
	store.On("FindByReference", payment.TxRef, userID).Return(payment, nil)
	gateway.On("Verify", payment.TxRef).Return(&payments.ProviderResult{Raw: raw, Success: true, DataStatus: "success"}, nil)
	store.On("RecordVerifyResponse", payment, raw).Return(nil)
	store.On("SetStatus", payment, models.PaymentStatusCompleted, mock.AnythingOfType("*time.Time")).Return(nil)
	notifier.On("EnqueuePaymentConfirmation", payment.ID).Return(errors.New("redis down"))

	result, err := newService(store, gateway, notifier).VerifyPayment(payment.TxRef, userID)

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, result.Status)
}

func TestVerifyPayment_ProviderReportsFailed(t *testing.T) {
	store := new(mockPaymentStore)
	gateway := new(mockGateway)
	notifier := new(mockNotifier)
	userID := uuid.New()
	booking := newFixtureBooking(userID)
	payment := newFixturePayment(booking, userID)

	raw := json.RawMessage(`{"status":"success","data":{"status":"failed"}}`)
	store.On("FindByReference", payment.TxRef, userID).Return(payment, nil)
	gateway.On("Verify", payment.TxRef).Return(&payments.ProviderResult{Raw: raw, Success: true, DataStatus: "failed"}, nil)
	store.On("RecordVerifyResponse", payment, raw).Return(nil)
	store.On("SetStatus", payment, models.PaymentStatusFailed, (*time.Time)(nil)).Return(nil)

	result, err := newService(store, gateway, notifier).VerifyPayment(payment.TxRef, userID)

	assert.Nil(t, result)
	var notSuccessful *services.NotSuccessfulError
	require.ErrorAs(t, err, &notSuccessful)
	assert.Equal(t, models.PaymentStatusFailed, notSuccessful.Status)
	assert.Equal(t, raw, notSuccessful.Payload)
	notifier.AssertNotCalled(t, "EnqueuePaymentConfirmation", mock.Anything)
}

func TestVerifyPayment_OtherStatusLeavesPaymentUnchanged(t *testing.T) {
	store := new(mockPaymentStore)
	gateway := new(mockGateway)
	userID := uuid.New()
	booking := newFixtureBooking(userID)
	payment := newFixturePayment(booking, userID)

	raw := json.RawMessage(`{"status":"success","data":{"status":"pending"}}`)
	store.On("FindByReference", payment.TxRef, userID).Return(payment, nil)
	gateway.On("Verify", payment.TxRef).Return(&payments.ProviderResult{Raw: raw, Success: true, DataStatus: "pending"}, nil)
	store.On("RecordVerifyResponse", payment, raw).Return(nil)

	result, err := newService(store, gateway, nil).VerifyPayment(payment.TxRef, userID)

	assert.Nil(t, result)
	var notSuccessful *services.NotSuccessfulError
	require.ErrorAs(t, err, &notSuccessful)
	assert.Equal(t, models.PaymentStatusPending, notSuccessful.Status)
	store.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyPayment_TransportErrorKeepsState(t *testing.T) {
	store := new(mockPaymentStore)
	gateway := new(mockGateway)
	userID := uuid.New()
	booking := newFixtureBooking(userID)
	payment := newFixturePayment(booking, userID)

	store.On("FindByReference", payment.TxRef, userID).Return(payment, nil)
	gateway.On("Verify", payment.TxRef).Return(nil, payments.ErrGatewayUnreachable)

	result, err := newService(store, gateway, nil).VerifyPayment(payment.TxRef, userID)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, payments.ErrGatewayUnreachable)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Nil(t, payment.RawVerifyResponse)
	store.AssertNotCalled(t, "RecordVerifyResponse", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyPayment_MissingTxRef(t *testing.T) {
	store := new(mockPaymentStore)
	gateway := new(mockGateway)

	result, err := newService(store, gateway, nil).VerifyPayment("  ", uuid.New())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, services.ErrTxRefRequired)
}

func TestVerifyPayment_ReferenceOwnedByAnotherUser(t *testing.T) {
	store := new(mockPaymentStore)
	gateway := new(mockGateway)
	userID := uuid.New()

	store.On("FindByReference", "BOOKPAY-AAAABBBBCCCC", userID).Return(nil, services.ErrNotFound)

	result, err := newService(store, gateway, nil).VerifyPayment("BOOKPAY-AAAABBBBCCCC", userID)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, services.ErrNotFound)
	gateway.AssertNotCalled(t, "Verify", mock.Anything)
}

func TestVerifyCallback_UsesUnscopedLookup(t *testing.T) {
	store := new(mockPaymentStore)
	gateway := new(mockGateway)
	notifier := new(mockNotifier)
	userID := uuid.New()
	booking := newFixtureBooking(userID)
	payment := newFixturePayment(booking, userID)

	raw := json.RawMessage(`{"status":"success","data":{"status":"success"}}`)
	store.On("FindByReferenceUnscoped", payment.TxRef).Return(payment, nil)
	gateway.On("Verify", payment.TxRef).Return(&payments.ProviderResult{Raw: raw, Success: true, DataStatus: "success"}, nil)
	store.On("RecordVerifyResponse", payment, raw).Return(nil)
	store.On("SetStatus", payment, models.PaymentStatusCompleted, mock.AnythingOfType("*time.Time")).Return(nil)
	notifier.On("EnqueuePaymentConfirmation", payment.ID).Return(nil)

	result, err := newService(store, gateway, notifier).VerifyCallback(payment.TxRef)

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, result.Status)
	store.AssertNotCalled(t, "FindByReference", mock.Anything, mock.Anything)
}

func TestCancelPayment_PendingOnly(t *testing.T) {
	store := new(mockPaymentStore)
	userID := uuid.New()
	booking := newFixtureBooking(userID)
	payment := newFixturePayment(booking, userID)

	store.On("FindByReference", payment.TxRef, userID).Return(payment, nil)
	store.On("SetStatus", payment, models.PaymentStatusCanceled, (*time.Time)(nil)).Return(nil)

	canceled, err := newService(store, nil, nil).CancelPayment(payment.TxRef, userID)

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCanceled, canceled.Status)
}

func TestCancelPayment_CompletedRejected(t *testing.T) {
	store := new(mockPaymentStore)
	userID := uuid.New()
	booking := newFixtureBooking(userID)
	payment := newFixturePayment(booking, userID)
	payment.Status = models.PaymentStatusCompleted

	store.On("FindByReference", payment.TxRef, userID).Return(payment, nil)

	canceled, err := newService(store, nil, nil).CancelPayment(payment.TxRef, userID)

	assert.Nil(t, canceled)
	assert.ErrorIs(t, err, services.ErrNotCancelable)
	store.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}
