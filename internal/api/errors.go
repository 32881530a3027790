package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pnl-dashboard/internal/dashboard"
	"pnl-dashboard/internal/domain"
	"pnl-dashboard/internal/exchange"
	"pnl-dashboard/internal/forecast"
	"pnl-dashboard/internal/normalization"
	"pnl-dashboard/internal/sheets"
	"pnl-dashboard/internal/strategy"
)

var errStatus = []struct {
	err    error
	status int
}{
	{strategy.ErrNotFound, http.StatusNotFound},
	{strategy.ErrInstrumentNotFound, http.StatusNotFound},
	{dashboard.ErrNoCurrentStrategy, http.StatusNotFound},
	{exchange.ErrNothingToExport, http.StatusNotFound},

	{strategy.ErrCapacity, http.StatusConflict},
	{strategy.ErrDuplicateInstrument, http.StatusConflict},

	{sheets.ErrUnauthorized, http.StatusUnauthorized},
	{sheets.ErrMissingToken, http.StatusBadRequest},
	{sheets.ErrMissingID, http.StatusBadRequest},
	{dashboard.ErrSheetsFetch, http.StatusBadGateway},
	{dashboard.ErrSheetsUnavailable, http.StatusServiceUnavailable},
	{dashboard.ErrNotSheetsSource, http.StatusBadRequest},

	{domain.ErrMappingIncomplete, http.StatusBadRequest},
	{normalization.ErrNoData, http.StatusBadRequest},
	{normalization.ErrNoValidTrades, http.StatusBadRequest},
	{normalization.ErrNoValidPoints, http.StatusBadRequest},
	{strategy.ErrInvalidName, http.StatusBadRequest},
	{strategy.ErrInvalidCapital, http.StatusBadRequest},
	{strategy.ErrInvalidYear, http.StatusBadRequest},
	{strategy.ErrInvalidMonth, http.StatusBadRequest},
	{strategy.ErrInvalidPLType, http.StatusBadRequest},
	{strategy.ErrInstrumentName, http.StatusBadRequest},
	{exchange.ErrInvalidFormat, http.StatusBadRequest},
	{exchange.ErrUnknownPolicy, http.StatusBadRequest},
	{forecast.ErrUnknownView, http.StatusBadRequest},
	{forecast.ErrNoTrades, http.StatusUnprocessableEntity},
}

// statusFor maps a service error to an HTTP status. Order matters: the sheets
// auth sentinels are checked before the generic fetch wrapper.
func statusFor(err error) int {
	for _, e := range errStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	Error(c, status, err.Error(), nil)
}
