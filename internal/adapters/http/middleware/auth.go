package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/3oMaR9914/SentryAI/internal/usecase"
	res "github.com/3oMaR9914/SentryAI/pkg/http"
)

type AuthMiddleware struct {
	signer usecase.JWTSigner
}

func NewAuthMiddleware(signer usecase.JWTSigner) *AuthMiddleware {
	return &AuthMiddleware{signer: signer}
}

// Handler verifies the bearer token and stores the numeric user id in the
// request context under "user_id".
func (m *AuthMiddleware) Handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authz := c.Request().Header.Get(echo.HeaderAuthorization)
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "missing token", requestIDFromCtx(c), nil)
		}
		tok, claims, err := m.signer.Parse(parts[1])
		if err != nil || tok == nil || !tok.Valid {
			return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "invalid token", requestIDFromCtx(c), nil)
		}
		if typ, _ := claims["typ"].(string); typ == "refresh" {
			return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "refresh token not accepted", requestIDFromCtx(c), nil)
		}
		sub, _ := claims["sub"].(string)
		userID, err := strconv.ParseUint(sub, 10, 64)
		if err != nil || userID == 0 {
			return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "subject missing", requestIDFromCtx(c), nil)
		}
		c.Set("user_id", uint(userID))
		return next(c)
	}
}

func requestIDFromCtx(c echo.Context) string {
	if reqID := c.Response().Header().Get(echo.HeaderXRequestID); reqID != "" {
		return reqID
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
