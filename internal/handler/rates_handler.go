package handler

import (
	"github.com/labstack/echo/v4"

	"gastos/internal/errors"
	"gastos/internal/service"
)

// RatesHandler handles the currency conversion passthrough endpoint.
type RatesHandler struct {
	ratesService service.RatesService
}

// NewRatesHandler creates a new rates handler.
func NewRatesHandler(ratesService service.RatesService) *RatesHandler {
	return &RatesHandler{ratesService: ratesService}
}

// Convert godoc
// @Summary Convert an amount between currencies
// @Description Relays the upstream provider's status and payload verbatim.
// @Tags conversao
// @Produce json
// @Param from query string true "Source currency code"
// @Param to query string true "Target currency code"
// @Param amount query string true "Amount to convert"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /converter-moeda [get]
func (h *RatesHandler) Convert(c echo.Context) error {
	from := c.QueryParam("from")
	to := c.QueryParam("to")
	amount := c.QueryParam("amount")

	result, err := h.ratesService.Convert(c.Request().Context(), from, to, amount)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSONBlob(result.StatusCode, result.Body)
}
