package handlers

import (
	"github.com/gofiber/fiber/v2"

	"servicehub/internal/domain"
	applog "servicehub/internal/log"
	"servicehub/internal/services"
)

// SessionUser loads the user bound to the sid cookie into Locals("user").
// It never blocks a request.
func SessionUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := auth.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// resolveUser returns the request's user, loading it from the session when
// SessionUser has not run.
func resolveUser(c *fiber.Ctx, auth *services.AuthService) *domain.User {
	if u := currentUser(c); u != nil {
		return u
	}
	sid := c.Cookies("sid")
	if sid == "" {
		return nil
	}
	u, err := auth.CurrentUser(sid)
	if err != nil || u == nil {
		return nil
	}
	c.Locals("user", u)
	return u
}

// RequireUser enforces that a user is logged in; otherwise redirect to login.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := resolveUser(c, auth)
		if u == nil {
			return c.Redirect("/login")
		}
		if !u.IsApproved {
			return c.Redirect("/pending-approval")
		}
		return c.Next()
	}
}

// RequireRole lets through only logged-in users with role. Others get a
// 403 and a security log line.
func RequireRole(auth *services.AuthService, role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := resolveUser(c, auth)
		if u == nil {
			return c.Redirect("/login")
		}
		if !u.IsApproved {
			return c.Redirect("/pending-approval")
		}
		if !u.Is(role) {
			applog.Security(c, "access.denied."+string(role), map[string]any{"user_id": u.ID, "role": string(u.Role)})
			return message(c, fiber.StatusForbidden, "Access denied")
		}
		return c.Next()
	}
}

// homeFor is where a user lands after logging in.
func homeFor(u *domain.User) string {
	switch {
	case u == nil:
		return "/"
	case u.Is(domain.RoleAdmin):
		return "/admin"
	case u.Is(domain.RoleProvider):
		return "/provider"
	default:
		return "/client"
	}
}
