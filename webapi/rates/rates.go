package rates

import (
	"github.com/amirasaad/remitquote/pkg/provider"
	"github.com/amirasaad/remitquote/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the rate cache status endpoint.
func Routes(app *fiber.App, cache provider.RateCache) {
	app.Get("/api/rates/status", GetStatus(cache))
}

// GetStatus reports whether quotes are currently priced on live or seed rates.
// @Summary Rate cache status
// @Tags rates
// @Produce json
// @Success 200 {object} common.Response{data=provider.RateStatus}
// @Router /api/rates/status [get]
func GetStatus(cache provider.RateCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Rate status fetched successfully", cache.Status())
	}
}
