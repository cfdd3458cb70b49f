package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"anneta.link/configs"
	"anneta.link/configs/configslog"
	"anneta.link/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DonationHandler serves the public donation intake endpoints.
type DonationHandler struct {
	donationService services.IDonationService
	catalogService  services.ICatalogService
}

func NewDonationHandler(cfg *configs.AppConfig) *DonationHandler {
	resolver := services.NewOrganizationResolver()
	return &DonationHandler{
		donationService: services.NewDonationService(cfg),
		catalogService:  services.NewCatalogService(resolver),
	}
}

type causeSelectionRequest struct {
	CauseKey   string `json:"cause_key"`
	Proportion int64  `json:"proportion"`
}

type donationRequest struct {
	Amount            string                  `json:"amount"`
	IDCode            string                  `json:"id_code"`
	Name              string                  `json:"name"`
	Email             string                  `json:"email"`
	Comment           string                  `json:"comment"`
	DedicationName    string                  `json:"dedication_name"`
	DedicationEmail   string                  `json:"dedication_email"`
	DedicationMessage string                  `json:"dedication_message"`
	External          bool                    `json:"external"`
	Causes            []causeSelectionRequest `json:"causes"`
}

type recurringDonationRequest struct {
	Amount      string                  `json:"amount"`
	IDCode      string                  `json:"id_code"`
	Name        string                  `json:"name"`
	Email       string                  `json:"email"`
	Bank        string                  `json:"bank"`
	CompanyName string                  `json:"company_name"`
	CompanyCode string                  `json:"company_code"`
	Comment     string                  `json:"comment"`
	Causes      []causeSelectionRequest `json:"causes"`
}

func toCauseSelections(in []causeSelectionRequest) []services.CauseSelection {
	out := make([]services.CauseSelection, 0, len(in))
	for _, c := range in {
		out = append(out, services.CauseSelection{CauseKey: c.CauseKey, Proportion: c.Proportion})
	}
	return out
}

// CreateDonation handles POST /api/donations.
func (h *DonationHandler) CreateDonation(c *fiber.Ctx) error {
	var req donationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return badRequest(c, "amount is not a number")
	}

	result, err := h.donationService.CreateDonation(c.UserContext(), services.DonationInput{
		Amount:            amount,
		IDCode:            req.IDCode,
		Name:              req.Name,
		Email:             req.Email,
		Comment:           req.Comment,
		DedicationName:    req.DedicationName,
		DedicationEmail:   req.DedicationEmail,
		DedicationMessage: req.DedicationMessage,
		External:          req.External,
		Causes:            toCauseSelections(req.Causes),
	})
	if err != nil {
		return donationErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"donation_id":  result.Donation.ID,
		"redirect_url": result.RedirectURL,
	})
}

// CreateRecurringDonation handles POST /api/donations/recurring. No payment
// redirect is requested; the response carries a bank deep link for setting
// up the standing order.
func (h *DonationHandler) CreateRecurringDonation(c *fiber.Ctx) error {
	var req recurringDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return badRequest(c, "amount is not a number")
	}

	recurring, err := h.donationService.CreateRecurringDonation(c.UserContext(), services.RecurringDonationInput{
		Amount:      amount,
		IDCode:      req.IDCode,
		Name:        req.Name,
		Email:       req.Email,
		Bank:        req.Bank,
		CompanyName: req.CompanyName,
		CompanyCode: req.CompanyCode,
		Comment:     req.Comment,
		Causes:      toCauseSelections(req.Causes),
	})
	if err != nil {
		return donationErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"recurring_donation_id": recurring.ID,
		"bank_link":             bankStandingOrderLink(req.Bank, amount, recurring.ID),
	})
}

// ListCauses handles GET /api/causes. The donation form renders the active
// cause tree from this.
func (h *DonationHandler) ListCauses(c *fiber.Ctx) error {
	causes, err := h.catalogService.GetActiveCauses(c.UserContext())
	if err != nil {
		configslog.Log.Error("ListCauses failed", zap.Error(err))
		return internalError(c)
	}
	return c.JSON(fiber.Map{"causes": causes})
}

// bankStandingOrderLink builds the bank-specific deep link a donor follows
// to create the standing order. Unknown banks get an empty link and the
// donor sets the order up manually.
func bankStandingOrderLink(bank string, amount decimal.Decimal, recurringID uint) string {
	description := url.QueryEscape(fmt.Sprintf("annetus %d", recurringID))
	sum := amount.StringFixed(2)
	switch strings.ToLower(bank) {
	case "swedbank":
		return "https://www.swedbank.ee/private/pensions/support/standingorder?amount=" + sum + "&description=" + description
	case "seb":
		return "https://e.seb.ee/web/ipank?act=SOADD&sum=" + sum + "&desc=" + description
	case "lhv":
		return "https://www.lhv.ee/ibank/payment/standing?amount=" + sum + "&description=" + description
	default:
		return ""
	}
}

func donationErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidIDCode),
		errors.Is(err, services.ErrNoCauseSelection):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrCauseNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrGatewayRequestFailed),
		errors.Is(err, services.ErrGatewayBadResponse):
		configslog.Log.Error("payment gateway unavailable", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "payment provider unavailable"})
	default:
		configslog.Log.Error("donation intake failed", zap.Error(err))
		return internalError(c)
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
