package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/avdeev/script-access/internal/config"
	"github.com/avdeev/script-access/internal/handler"    // import the handlers that implement business logic
	"github.com/avdeev/script-access/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the admin login endpoint.  The single
// administrator exchanges the shared password for an ADMIN JWT here.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
}

// RegisterUser registers the user-facing surface called by the UI layer on
// behalf of transport users.  These routes carry no JWT — the UI layer is
// the trusted caller — but they are rate-limited per user to absorb spam.
func RegisterUser(e *echo.Echo, u *handler.UserHandler, rl config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1")
	// Apply the spam-control token bucket to everything user-facing.
	g.Use(middleware.NewSpamControl(rl, rdb))

	// Capability queries.
	g.GET("/users/:id/capabilities", u.Capabilities)
	g.GET("/users/:id/capabilities/:name", u.HasCapability)
	g.GET("/users/:id/missing", u.Missing)

	// Application workflows.
	g.POST("/applications", u.FileApplication)
	g.POST("/users/:id/additional-request", u.FileAdditionalRequest)
	g.DELETE("/users/:id/nickname", u.RevokeOwnNickname)

	// Ban appeal — the only route open to banned users.
	g.POST("/users/:id/appeal", u.Appeal)

	// Suggestions from approved users.
	g.POST("/suggestions", u.SubmitSuggestion)

	// Dialog scratch state for multi-step UI input.
	g.GET("/users/:id/dialog", u.GetDialog)
	g.PUT("/users/:id/dialog", u.PutDialog)
	g.DELETE("/users/:id/dialog", u.DeleteDialog)
}

// RegisterAdmin registers the reviewer surface.  Every route requires a
// valid ADMIN JWT issued by the login endpoint.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	g.Use(middleware.JWTAuth(jwtSecret))
	// Only the ADMIN role is accepted; the middleware rejects requests with
	// missing or unknown roles.
	g.Use(middleware.RequireRole("ADMIN"))

	// Pending applications: snapshot listing and numeric pick.
	g.GET("/pending", a.ListPending)
	g.GET("/pending/:n", a.PickPending)

	// Decisions and the toggle-based review session.
	g.POST("/applications/:id/decision", a.Decide)
	g.POST("/review/:id", a.StartReview)
	g.POST("/review/toggle", a.ToggleReview)
	g.POST("/review/confirm", a.ConfirmReview)
	g.DELETE("/review", a.CancelReview)

	// Listings.
	g.GET("/approved", a.ListApproved)
	g.GET("/banned", a.ListBanned)

	// Deny list management.
	g.POST("/ban", a.Ban)
	g.POST("/unban", a.Unban)

	// Grant surgery and manual record management.
	g.POST("/revoke", a.Revoke)
	g.POST("/nicknames", a.ManualAdd)
	g.DELETE("/nicknames/:nick", a.ManualDelete)

	// Suggestions.
	g.GET("/suggestions", a.ListSuggestions)
	g.GET("/suggestions/:id", a.GetSuggestion)
	g.DELETE("/suggestions/:id", a.DeleteSuggestion)

	// Broadcast to users.
	g.POST("/broadcast", a.SendBroadcast)
}
