package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/onebyte2016/alx-travel-app-0x03/payments"
	"github.com/onebyte2016/alx-travel-app-0x03/services"
)

type PaymentHandler struct {
	Service *services.PaymentService
}

func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{Service: service}
}

type InitiatePaymentRequest struct {
	ReturnURL   string `json:"return_url"`
	CallbackURL string `json:"callback_url"`
}

type VerifyPaymentRequest struct {
	TxRef string `json:"tx_ref"`
}

func requestUserID(c *fiber.Ctx) uuid.UUID {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	return userID
}

// InitiateBookingPayment handles POST /bookings/:bookingId/pay.
func (h *PaymentHandler) InitiateBookingPayment(c *fiber.Ctx) error {
	userID := requestUserID(c)

	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID format"})
	}

	var req InitiatePaymentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		}
	}

	result, err := h.Service.InitiatePayment(bookingID, userID, req.ReturnURL, req.CallbackURL)
	if err != nil {
		return h.paymentError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":           "Payment initialized",
		"booking_reference": result.BookingReference,
		"tx_ref":            result.TxRef,
		"checkout_url":      result.CheckoutURL,
		"status":            result.Status,
	})
}

// VerifyPayment handles GET and POST /payments/verify. The transaction
// reference comes from the query string or the body.
func (h *PaymentHandler) VerifyPayment(c *fiber.Ctx) error {
	userID := requestUserID(c)

	txRef := c.Query("tx_ref")
	if txRef == "" && len(c.Body()) > 0 {
		var req VerifyPaymentRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		}
		txRef = req.TxRef
	}

	result, err := h.Service.VerifyPayment(txRef, userID)
	if err != nil {
		return h.paymentError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":           "Payment verified: COMPLETED",
		"tx_ref":            result.TxRef,
		"booking_reference": result.BookingReference,
		"status":            result.Status,
		"verify_payload":    result.Payload,
	})
}

// ChapaCallback handles Chapa's server-to-server callback. Outcomes are
// acknowledged with 200 so the gateway stops retrying; only lookup and
// transport problems surface as errors.
func (h *PaymentHandler) ChapaCallback(c *fiber.Ctx) error {
	txRef := c.Query("trx_ref")
	if txRef == "" {
		txRef = c.Query("tx_ref")
	}
	if txRef == "" && len(c.Body()) > 0 {
		var req VerifyPaymentRequest
		if err := c.BodyParser(&req); err == nil {
			txRef = req.TxRef
		}
	}

	result, err := h.Service.VerifyCallback(txRef)
	if err != nil {
		var notSuccessful *services.NotSuccessfulError
		if errors.As(err, &notSuccessful) {
			return c.JSON(fiber.Map{
				"message": "Acknowledged unsuccessful payment",
				"tx_ref":  notSuccessful.TxRef,
				"status":  notSuccessful.Status,
			})
		}
		return h.paymentError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Callback processed",
		"tx_ref":  result.TxRef,
		"status":  result.Status,
	})
}

// CancelPayment handles POST /payments/cancel for abandoning a pending
// attempt.
func (h *PaymentHandler) CancelPayment(c *fiber.Ctx) error {
	userID := requestUserID(c)

	var req VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	payment, err := h.Service.CancelPayment(req.TxRef, userID)
	if err != nil {
		return h.paymentError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Payment canceled",
		"tx_ref":  payment.TxRef,
		"status":  payment.Status,
	})
}

// paymentError maps the service error taxonomy onto HTTP statuses, keeping
// the raw provider payloads in the body for manual reconciliation.
func (h *PaymentHandler) paymentError(c *fiber.Ctx, err error) error {
	var providerRejected *services.ProviderRejectedError
	var notSuccessful *services.NotSuccessfulError

	switch {
	case errors.Is(err, services.ErrMissingCredentials):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "CHAPA_SECRET_KEY not configured"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Not found"})
	case errors.Is(err, services.ErrAlreadyPaid):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Booking already paid."})
	case errors.Is(err, services.ErrTxRefRequired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "tx_ref is required"})
	case errors.Is(err, services.ErrNotCancelable):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Only pending payments can be canceled"})
	case errors.Is(err, payments.ErrGatewayUnreachable):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"detail": "Chapa request failed", "error": err.Error()})
	case errors.As(err, &providerRejected):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail":         "Failed to initialize payment with Chapa",
			"chapa_response": providerRejected.Response,
		})
	case errors.As(err, &notSuccessful):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail":         "Payment not successful",
			"tx_ref":         notSuccessful.TxRef,
			"status":         notSuccessful.Status,
			"verify_payload": notSuccessful.Payload,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
