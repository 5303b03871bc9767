package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/3oMaR9914/SentryAI/internal/domain"
	"github.com/3oMaR9914/SentryAI/internal/usecase"
	res "github.com/3oMaR9914/SentryAI/pkg/http"
)

type IntegrationHandler struct {
	integrations usecase.IntegrationService
	sync         usecase.SyncService
}

func NewIntegrationHandler(integrations usecase.IntegrationService, sync usecase.SyncService) *IntegrationHandler {
	return &IntegrationHandler{integrations: integrations, sync: sync}
}

// googleServices maps the redirect-URI discriminator to the integration
// service key.
var googleServices = map[string]string{
	"calendar": domain.ServiceGoogleCalendar,
	"tasks":    domain.ServiceGoogleTasks,
}

func (h *IntegrationHandler) ConnectGoogleCalendar(c echo.Context) error {
	return h.redirectToProvider(c, domain.ServiceGoogleCalendar)
}

func (h *IntegrationHandler) ConnectGoogleTasks(c echo.Context) error {
	return h.redirectToProvider(c, domain.ServiceGoogleTasks)
}

func (h *IntegrationHandler) ConnectZoom(c echo.Context) error {
	return h.redirectToProvider(c, domain.ServiceZoomMeetings)
}

func (h *IntegrationHandler) redirectToProvider(c echo.Context, service string) error {
	userID, ok := currentUserID(c)
	if !ok {
		return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "missing user", requestIDFromCtx(c), nil)
	}
	target, err := h.integrations.AuthRedirectURL(service, userID)
	if err != nil {
		return fail(c, err)
	}
	return c.Redirect(http.StatusTemporaryRedirect, target)
}

func (h *IntegrationHandler) GoogleCallback(c echo.Context) error {
	service, ok := googleServices[c.Param("service")]
	if !ok {
		return res.ErrorJSON(c, http.StatusNotFound, "not_found", "unknown google service", requestIDFromCtx(c), nil)
	}
	return h.completeCallback(c, service)
}

func (h *IntegrationHandler) ZoomCallback(c echo.Context) error {
	return h.completeCallback(c, domain.ServiceZoomMeetings)
}

func (h *IntegrationHandler) completeCallback(c echo.Context, service string) error {
	result, err := h.integrations.HandleCallback(c.Request().Context(), requestIDFromCtx(c), service, c.QueryParam("code"), c.QueryParam("state"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "access granted successfully",
		"integration": result,
	})
}

func (h *IntegrationHandler) CalendarEvents(c echo.Context) error {
	userID, err := pathUserID(c)
	if err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid user id", requestIDFromCtx(c), nil)
	}
	events, err := h.integrations.ListCalendarEvents(c.Request().Context(), requestIDFromCtx(c), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"events": events, "total": len(events)})
}

func (h *IntegrationHandler) SyncGoogleTasks(c echo.Context) error {
	userID, err := pathUserID(c)
	if err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid user id", requestIDFromCtx(c), nil)
	}
	summary, err := h.sync.SyncGoogleTasks(c.Request().Context(), requestIDFromCtx(c), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "google tasks synced successfully",
		"summary": summary,
	})
}

func pathUserID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.ErrBadRequest
	}
	return uint(id), nil
}
