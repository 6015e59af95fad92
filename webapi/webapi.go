// Package webapi provides the HTTP boundary of the quote service.
// It is organized into sub-packages per resource:
// - quote: quote calculation
// - currency: supported currency listing
// - rates: rate cache status
package webapi

import (
	"errors"
	"strings"

	"github.com/amirasaad/remitquote/pkg/app"
	"github.com/amirasaad/remitquote/pkg/middleware"
	"github.com/amirasaad/remitquote/webapi/common"
	currencyweb "github.com/amirasaad/remitquote/webapi/currency"
	quoteweb "github.com/amirasaad/remitquote/webapi/quote"
	ratesweb "github.com/amirasaad/remitquote/webapi/rates"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(app *app.App) *fiber.App {
	deps := app.Deps
	logger := deps.Logger

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	fiberApp.Use(recover.New())
	fiberApp.Use(middleware.RequestID())
	fiberApp.Use(middleware.RequestLogger(logger))

	// Keyed on the first X-Forwarded-For hop when behind a proxy,
	// then X-Real-IP, then the peer address.
	fiberApp.Use(limiter.New(limiter.Config{
		Max:          app.Config.RateLimit.MaxRequests,
		Expiration:   app.Config.RateLimit.Window,
		KeyGenerator: clientKey,
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Remit Quote API is running! 🚀")
	})

	quoteweb.Routes(fiberApp, app.QuoteService, deps.CurrencyRegistry, deps.Pricing, app.Config.Quote, logger)
	currencyweb.Routes(fiberApp, deps.CurrencyRegistry)
	ratesweb.Routes(fiberApp, deps.Rates)
	return fiberApp
}

func clientKey(c *fiber.Ctx) string {
	if forwardedFor := c.Get(fiber.HeaderXForwardedFor); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return strings.TrimSpace(first)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}
