package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ErrorResponse is the wire shape for all error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// EchoErrorHandler maps errors to HTTP responses in one place. Typed
// application errors carry their own status; echo HTTP errors pass
// through; anything else becomes a 500 without leaking internals.
func EchoErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *Error
		if errors.As(err, &appErr) {
			if appErr.Kind == KindInternal {
				logger.Error().Err(err).Str("path", c.Path()).Msg("internal error")
			}
			_ = c.JSON(appErr.Status(), ErrorResponse{Error: appErr.Title(), Message: appErr.Message})
			return
		}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			msg, ok := httpErr.Message.(string)
			if !ok {
				msg = http.StatusText(httpErr.Code)
			}
			_ = c.JSON(httpErr.Code, ErrorResponse{Error: http.StatusText(httpErr.Code), Message: msg})
			return
		}

		logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		_ = c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Internal server error",
			Message: "Something went wrong",
		})
	}
}
