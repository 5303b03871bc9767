package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/3oMaR9914/SentryAI/internal/domain"
	res "github.com/3oMaR9914/SentryAI/pkg/http"
)

// fail maps the domain error taxonomy to HTTP statuses and writes the error
// envelope.
func fail(c echo.Context, err error) error {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, domain.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNotConnected):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrUpstreamAuth):
		status, code = http.StatusBadGateway, "upstream_auth_error"
	case errors.Is(err, domain.ErrUpstream):
		status, code = http.StatusBadGateway, "upstream_error"
	}
	return res.ErrorJSON(c, status, code, err.Error(), requestIDFromCtx(c), nil)
}

func requestIDFromCtx(c echo.Context) string {
	if reqID := c.Response().Header().Get(echo.HeaderXRequestID); reqID != "" {
		return reqID
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

func currentUserID(c echo.Context) (uint, bool) {
	id, ok := c.Get("user_id").(uint)
	return id, ok
}
