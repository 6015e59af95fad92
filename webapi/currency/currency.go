package currency

import (
	"strings"

	"github.com/amirasaad/remitquote/pkg/currency"
	"github.com/amirasaad/remitquote/pkg/domain"
	"github.com/amirasaad/remitquote/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers HTTP routes for currency lookups.
func Routes(app *fiber.App, registry *currency.Registry) {
	currencyGroup := app.Group("/api/currencies")
	currencyGroup.Get("/", ListCurrencies(registry))
	currencyGroup.Get("/:code", GetCurrency(registry))
}

// ListCurrencies returns a Fiber handler for listing all supported currencies.
// @Summary List supported currencies
// @Description Get the currencies a quote can be requested for, in display order
// @Tags currencies
// @Produce json
// @Success 200 {object} common.Response{data=[]CurrencyResponse}
// @Failure 429 {object} common.ProblemDetails
// @Router /api/currencies [get]
func ListCurrencies(registry *currency.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list := registry.List()
		out := make([]CurrencyResponse, 0, len(list))
		for _, cur := range list {
			out = append(out, ToResponse(cur))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Currencies fetched successfully", out)
	}
}

// GetCurrency returns currency information by code
// @Summary Get currency by code
// @Description Get display metadata for a supported currency
// @Tags currencies
// @Produce json
// @Param code path string true "Currency code (e.g., USD, EUR)"
// @Success 200 {object} common.Response{data=CurrencyResponse}
// @Failure 404 {object} common.ProblemDetails
// @Router /api/currencies/{code} [get]
func GetCurrency(registry *currency.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := strings.ToUpper(c.Params("code"))
		cur, ok := registry.Lookup(code)
		if !ok {
			return common.ProblemDetailsJSON(c, "Currency not found", domain.ErrUnsupportedCurrency,
				"Currency "+code+" is not supported", fiber.StatusNotFound)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Currency fetched successfully", ToResponse(cur))
	}
}
