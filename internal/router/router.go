package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing

	"github.com/AbdullaK123/writing-website-backend/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterUsers registers the auth endpoints under /api/users.  The
// credential endpoints (register, login) sit behind the brute-force rate
// limiter; /me sits behind the strict gate.  Logout and token-refresh
// are unauthenticated by design: their inputs carry their own proof.
func RegisterUsers(e *echo.Echo, a *handler.AuthHandler, gate, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/users")
	g.POST("/register", a.Register, limiter)
	g.POST("/login", a.Login, limiter)
	g.POST("/token-refresh", a.TokenRefresh)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, gate)
}

// RegisterStories registers the story and chapter endpoints.  Reads are
// public and pass through the lax gate so an identity is available when
// evidence is present; mutations run behind the strict gate and enforce
// ownership in the handlers.
func RegisterStories(e *echo.Echo, s *handler.StoryHandler, ch *handler.ChapterHandler, gate, lookup echo.MiddlewareFunc) {
	g := e.Group("/api/stories")
	g.GET("", s.List, lookup)
	g.GET("/:id", s.Get, lookup)
	g.POST("", s.Create, gate)
	g.DELETE("/:id", s.Delete, gate)

	g.GET("/:id/chapters", ch.ListByStory, lookup)
	g.POST("/:id/chapters", ch.Create, gate)

	e.GET("/api/chapters/:id", ch.Get, lookup)
	e.PUT("/api/chapters/:id", ch.Update, gate)
	e.DELETE("/api/chapters/:id", ch.Delete, gate)
}
