package routes

import (
	"anneta.link/configs"
	handlers "anneta.link/handlers/public"

	"github.com/gofiber/fiber/v2"
)

// registerAPIRoutes defines the public donation API.
func registerAPIRoutes(app *fiber.App, cfg *configs.AppConfig) {
	donationHandler := handlers.NewDonationHandler(cfg)
	paymentHandler := handlers.NewPaymentHandler(cfg)

	api := app.Group("/api")

	api.Post("/donations", donationHandler.CreateDonation)
	api.Post("/donations/recurring", donationHandler.CreateRecurringDonation)
	api.Get("/causes", donationHandler.ListCauses)

	// The provider redirects the donor with GET and notifies server to
	// server with POST; both carry the same signed token.
	api.Get("/payments/callback", paymentHandler.Callback)
	api.Post("/payments/callback", paymentHandler.Callback)
	api.Get("/payments/receipt", paymentHandler.Receipt)
}
