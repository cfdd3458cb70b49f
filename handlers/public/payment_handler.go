package handlers

import (
	"errors"

	"anneta.link/configs"
	"anneta.link/configs/configslog"
	"anneta.link/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PaymentHandler receives the payment provider's callbacks and serves
// receipt lookups for the thank-you page.
type PaymentHandler struct {
	confirmationService services.IConfirmationService
}

func NewPaymentHandler(cfg *configs.AppConfig) *PaymentHandler {
	return &PaymentHandler{
		confirmationService: services.NewConfirmationService(cfg),
	}
}

// Callback handles GET and POST /api/payments/callback. The provider
// retries deliveries, so a repeat for an already finalized donation is
// answered with 409 and no further side effects.
func (h *PaymentHandler) Callback(c *fiber.Ctx) error {
	token := callbackToken(c)
	if token == "" {
		return badRequest(c, "missing payment_token")
	}

	donation, err := h.confirmationService.Confirm(c.UserContext(), token)
	if err != nil {
		return paymentErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"donation_id": donation.ID,
		"finalized":   donation.Finalized,
	})
}

// Receipt handles GET /api/payments/receipt?payment_token=... It verifies
// the token and returns the donation with resolved organizations without
// touching finalization state.
func (h *PaymentHandler) Receipt(c *fiber.Ctx) error {
	token := c.Query("payment_token")
	if token == "" {
		return badRequest(c, "missing payment_token")
	}

	receipt, err := h.confirmationService.Decode(c.UserContext(), token)
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	return c.JSON(receipt)
}

// callbackToken extracts the provider token from the query string (GET
// redirect) or a form/JSON body (POST notification).
func callbackToken(c *fiber.Ctx) string {
	if token := c.Query("payment_token"); token != "" {
		return token
	}
	var body struct {
		PaymentToken string `json:"payment_token" form:"payment_token"`
	}
	if err := c.BodyParser(&body); err != nil {
		return ""
	}
	return body.PaymentToken
}

func paymentErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrTokenInvalid),
		errors.Is(err, services.ErrTokenExpired),
		errors.Is(err, services.ErrWrongAccountKey):
		configslog.SLog.Warnf("rejected payment token: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid payment token"})
	case errors.Is(err, services.ErrBadMerchantReference),
		errors.Is(err, services.ErrPaymentNotPaid):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrDonationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrDonationAlreadyProcessed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		configslog.Log.Error("payment callback failed", zap.Error(err))
		return internalError(c)
	}
}
