package controllers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/HSouheill/enrollment_backend/models"
	"github.com/HSouheill/enrollment_backend/utils"
)

// ErrorHandler renders every failure as {success:false, error}. Stack traces
// are attached only when production is false.
func ErrorHandler(production bool, logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorResponse(err, production)
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.Path()).Int("status", status).Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error().Err(err).Msg("failed to write error response")
		}
	}
}

func errorResponse(err error, production bool) (int, models.ErrorResponse) {
	if he, ok := err.(*echo.HTTPError); ok {
		msg := http.StatusText(he.Code)
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		return he.Code, models.ErrorResponse{Success: false, Error: msg}
	}

	appErr := utils.AsAppError(err)
	body := models.ErrorResponse{Success: false, Error: appErr.Message}
	if !production {
		body.Stack = appErr.Stack()
	}
	return appErr.StatusCode(), body
}
