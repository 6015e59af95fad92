package quote

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/remitquote/pkg/config"
	"github.com/amirasaad/remitquote/pkg/currency"
	"github.com/amirasaad/remitquote/pkg/domain"
	"github.com/amirasaad/remitquote/pkg/money"
	"github.com/amirasaad/remitquote/pkg/pricing"
	quotesvc "github.com/amirasaad/remitquote/pkg/service/quote"
	"github.com/amirasaad/remitquote/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the quote endpoint.
func Routes(
	app *fiber.App,
	svc *quotesvc.Service,
	registry *currency.Registry,
	table *pricing.Table,
	cfg *config.Quote,
	logger *slog.Logger,
) {
	app.Post("/api/quote", CreateQuote(svc, registry, table, cfg, logger))
}

// CreateQuote returns a Fiber handler that prices a transfer.
// @Summary Get an indicative transfer quote
// @Description Computes fee, exchange rate, counterpart amount and delivery estimate
// @Tags quote
// @Accept json
// @Produce json
// @Param request body QuoteRequest true "Quote request"
// @Success 200 {object} quote.Quote
// @Failure 400 {object} common.ProblemDetails
// @Failure 429 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /api/quote [post]
func CreateQuote(
	svc *quotesvc.Service,
	registry *currency.Registry,
	table *pricing.Table,
	cfg *config.Quote,
	logger *slog.Logger,
) fiber.Handler {
	logger = logger.With("handler", "CreateQuote")
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[QuoteRequest](c)
		if input == nil {
			return err // error response already written
		}
		if err := validateRequest(input, registry, table, cfg); err != nil {
			return common.ProblemDetailsJSON(c, "Invalid quote request", err)
		}

		q, err := svc.Compute(c.UserContext(), input.ToDomain())
		if err != nil {
			if errors.Is(err, domain.ErrRateUnavailable) {
				return common.ProblemDetailsJSON(c, "Rate data unavailable for this currency pair", err,
					"Rate data unavailable for this currency pair")
			}
			if common.ErrorToStatusCode(err) < fiber.StatusInternalServerError {
				return common.ProblemDetailsJSON(c, "Invalid quote request", err)
			}
			logger.Error("Failed to calculate quote", "error", err)
			return common.ProblemDetailsJSON(c, "Failed to calculate quote", err)
		}
		return c.Status(fiber.StatusOK).JSON(q)
	}
}

// validateRequest applies the rules that need the registry, pricing or config.
func validateRequest(
	in *QuoteRequest,
	registry *currency.Registry,
	table *pricing.Table,
	cfg *config.Quote,
) error {
	for _, code := range []string{in.SendCurrency, in.ReceiveCurrency} {
		if !registry.IsSupported(code) {
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedCurrency, code)
		}
	}
	amount := *in.Amount
	if !money.IsFinitePositive(amount) {
		return domain.ErrInvalidAmount
	}
	if amount > cfg.MaxAmount {
		return fmt.Errorf("%w (%s)", domain.ErrAmountExceedsMax, money.Format(cfg.MaxAmount, "", 0))
	}
	if table.IsLocalCorridor(in.SendCurrency, in.ReceiveCurrency) {
		fee := table.LocalRule(in.SendCurrency).FlatFee()
		if amount <= fee {
			return fmt.Errorf("%w (%s %s)", domain.ErrAmountBelowLocalFee,
				money.Format(fee, "", registry.Decimals(in.SendCurrency)), in.SendCurrency)
		}
	}
	return nil
}
