package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/3oMaR9914/SentryAI/internal/adapters/http/api/v1/handlers"
)

type Router struct {
	auth         *handlers.AuthHandler
	tasks        *handlers.TaskHandler
	integrations *handlers.IntegrationHandler
	authMW       echo.MiddlewareFunc
}

func NewRouter(auth *handlers.AuthHandler, tasks *handlers.TaskHandler, integrations *handlers.IntegrationHandler, authMW echo.MiddlewareFunc) *Router {
	return &Router{auth: auth, tasks: tasks, integrations: integrations, authMW: authMW}
}

func (r *Router) Register(g *echo.Group) {
	auth := g.Group("/auth")
	auth.POST("/signup", r.auth.SignUp)
	auth.POST("/signin", r.auth.SignIn)
	auth.POST("/refresh", r.auth.Refresh)
	auth.POST("/verify", r.auth.VerifyToken)

	apple := auth.Group("/apple")
	apple.GET("/login", r.auth.AppleLogin)
	apple.GET("/signup", r.auth.AppleSignup)
	// Apple uses response_mode=form_post; accept GET too for manual flows
	apple.GET("/callback/login", r.auth.AppleLoginCallback)
	apple.POST("/callback/login", r.auth.AppleLoginCallback)
	apple.GET("/callback/signup", r.auth.AppleSignupCallback)
	apple.POST("/callback/signup", r.auth.AppleSignupCallback)

	tasks := g.Group("/tasks", r.authMW)
	tasks.POST("", r.tasks.Create)
	tasks.GET("", r.tasks.List)
	tasks.GET("/:task_id", r.tasks.Get)
	tasks.PUT("/:task_id", r.tasks.Update)
	tasks.DELETE("/:task_id", r.tasks.Delete)

	google := g.Group("/integrations/google")
	google.GET("/calendar", r.integrations.ConnectGoogleCalendar, r.authMW)
	google.GET("/tasks", r.integrations.ConnectGoogleTasks, r.authMW)
	google.GET("/callback/:service", r.integrations.GoogleCallback)
	google.GET("/events/:user_id", r.integrations.CalendarEvents)
	google.GET("/tasks/:user_id/sync", r.integrations.SyncGoogleTasks)

	zoom := g.Group("/integrations/zoom")
	zoom.GET("/auth", r.integrations.ConnectZoom, r.authMW)
	zoom.GET("/callback", r.integrations.ZoomCallback)
}
