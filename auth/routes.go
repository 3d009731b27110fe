package auth

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes mounts the public auth surface and the unadvertised admin auth
// group. loginLimiter guards the admin login endpoint against brute force;
// pass nil to mount it unlimited (tests).
func SetupRoutes(app *fiber.App, h *Handlers, g *Guard, loginLimiter fiber.Handler) {
	authGroup := app.Group("/api/auth")
	authGroup.Post("/register", h.Register)
	authGroup.Post("/login", h.Login)
	authGroup.Post("/logout", h.Logout)
	authGroup.Get("/me", g.Protect(), h.Me)

	authGroup.Get("/google", h.GoogleLogin)
	authGroup.Get("/google/callback", h.GoogleCallback)
	authGroup.Get("/google/status", h.GoogleStatus)

	// No public reference points at this prefix; its existence is part of
	// what the concealed guard protects.
	adminGroup := app.Group("/api/secure-admin-auth")
	if loginLimiter != nil {
		adminGroup.Post("/login", loginLimiter, h.AdminLogin)
	} else {
		adminGroup.Post("/login", h.AdminLogin)
	}
	adminGroup.Post("/logout", h.Logout)
	adminGroup.Get("/status", h.AdminStatus)
}
