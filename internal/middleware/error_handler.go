package middleware

import (
	"net/http"

	"github.com/eventful/ticketing-service/internal/dto"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error as a JSON body. Unclassified errors keep
// a generic message; internal detail never reaches the caller.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal server error"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	_ = c.JSON(code, dto.ErrorResponse{Message: msg})
}
