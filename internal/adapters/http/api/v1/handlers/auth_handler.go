package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/3oMaR9914/SentryAI/internal/usecase"
	res "github.com/3oMaR9914/SentryAI/pkg/http"
)

type AuthHandler struct {
	service usecase.AuthService
}

func NewAuthHandler(s usecase.AuthService) *AuthHandler { return &AuthHandler{service: s} }

type signupRequest struct {
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Birthday  *time.Time `json:"birthday"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type verifyTokenRequest struct {
	Token string `json:"token"`
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	req := new(signupRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	user, tokens, err := h.service.SignUp(c.Request().Context(), requestIDFromCtx(c), usecase.SignUpInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Birthday:  req.Birthday,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"user": user, "tokens": tokens})
}

func (h *AuthHandler) SignIn(c echo.Context) error {
	req := new(signinRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	_, tokens, err := h.service.SignIn(c.Request().Context(), requestIDFromCtx(c), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	req := new(refreshRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	tokens, err := h.service.Refresh(c.Request().Context(), requestIDFromCtx(c), req.RefreshToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

func (h *AuthHandler) VerifyToken(c echo.Context) error {
	req := new(verifyTokenRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	result, err := h.service.VerifyToken(c.Request().Context(), requestIDFromCtx(c), req.Token)
	if err != nil {
		return res.ErrorJSON(c, http.StatusUnauthorized, "verify_failed", err.Error(), requestIDFromCtx(c), nil)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user_id": result.UserID, "claims": result.Claims})
}

// AppleLogin and AppleSignup redirect the browser to Apple's authorization
// endpoint; Apple posts the result back to the callback handlers.
func (h *AuthHandler) AppleLogin(c echo.Context) error {
	return c.Redirect(http.StatusTemporaryRedirect, h.service.AppleAuthURL("login"))
}

func (h *AuthHandler) AppleSignup(c echo.Context) error {
	return c.Redirect(http.StatusTemporaryRedirect, h.service.AppleAuthURL("signup"))
}

func (h *AuthHandler) AppleLoginCallback(c echo.Context) error {
	idToken := callbackParam(c, "id_token")
	if idToken == "" {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "missing id_token", requestIDFromCtx(c), nil)
	}
	tokens, err := h.service.AppleLogin(c.Request().Context(), requestIDFromCtx(c), idToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"tokens": tokens, "service_type": "login"})
}

func (h *AuthHandler) AppleSignupCallback(c echo.Context) error {
	code := callbackParam(c, "code")
	idToken := callbackParam(c, "id_token")
	if code == "" || idToken == "" {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "missing code or id_token", requestIDFromCtx(c), nil)
	}
	user, tokens, err := h.service.AppleSignup(c.Request().Context(), requestIDFromCtx(c), code, idToken, callbackParam(c, "full_name"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": user, "tokens": tokens, "service_type": "signup"})
}

// callbackParam reads a parameter from either the query string or the
// form_post body, since Apple uses response_mode=form_post.
func callbackParam(c echo.Context, name string) string {
	if v := c.QueryParam(name); v != "" {
		return v
	}
	return c.FormValue(name)
}
