package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "servicehub/internal/log"
	"servicehub/internal/services"
)

type ProfileHandler struct {
	Users *services.UserService
	Dash  *services.DashboardService
}

// GET /profile
func (h *ProfileHandler) Show(c *fiber.Ctx) error {
	u := currentUser(c)
	stats, err := h.Dash.ProfileStats(u)
	if err != nil {
		applog.Error(c, "profile.stats.fail", err, nil)
		return err
	}
	return render(c, "profile", fiber.Map{"Profile": u, "Stats": stats})
}

// POST /profile
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	u, err := h.Users.UpdateProfile(currentUser(c), services.ProfileForm{
		FullName: c.FormValue("full_name"),
		Email:    c.FormValue("email"),
		Phone:    c.FormValue("phone"),
		Bio:      c.FormValue("bio"),
		Location: c.FormValue("location"),
		Website:  c.FormValue("website"),
	})
	if err != nil {
		return fail(c, "profile.update.fail", err)
	}
	c.Locals("user", u)
	applog.Audit(c, "profile.update", nil)
	return done(c, "/profile", fiber.Map{"user": u})
}
