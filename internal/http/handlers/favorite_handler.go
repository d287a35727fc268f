package handlers

import (
	applog "servicehub/internal/log"
	"servicehub/internal/services"
	"servicehub/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type FavoriteHandler struct {
	Favs *services.FavoriteService
}

// GET /client/favorites?q=
func (h *FavoriteHandler) List(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "q"})
		return message(c, fiber.StatusBadRequest, "Enter a valid keyword (letters/numbers only)")
	}
	items, stats, err := h.Favs.List(currentUser(c).ID, q)
	if err != nil {
		applog.Error(c, "favorites.list.fail", err, nil)
		return message(c, fiber.StatusInternalServerError, "Could not load favorites")
	}
	return render(c, "favorites", fiber.Map{"Items": items, "Stats": stats, "Q": q})
}

// POST /client/favorites/:serviceId/toggle
func (h *FavoriteHandler) Toggle(c *fiber.Ctx) error {
	sid, ok := validate.ID(c.Params("serviceId"))
	if !ok {
		return message(c, fiber.StatusBadRequest, "missing serviceId")
	}
	saved, err := h.Favs.Toggle(currentUser(c).ID, sid)
	if err != nil {
		return fail(c, "favorites.toggle.fail", err)
	}
	applog.Audit(c, "favorites.toggle", map[string]any{"service": sid, "saved": saved})
	return done(c, back(c, "/client/favorites"), fiber.Map{"saved": saved})
}

// POST /client/favorites/:serviceId/delete
func (h *FavoriteHandler) Remove(c *fiber.Ctx) error {
	sid, ok := validate.ID(c.Params("serviceId"))
	if !ok {
		return message(c, fiber.StatusBadRequest, "missing serviceId")
	}
	if err := h.Favs.Remove(currentUser(c).ID, sid); err != nil {
		return fail(c, "favorites.remove.fail", err)
	}
	applog.Audit(c, "favorites.remove", map[string]any{"service": sid})
	return done(c, "/client/favorites", nil)
}
