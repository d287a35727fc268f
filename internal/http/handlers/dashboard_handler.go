package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "servicehub/internal/log"
	"servicehub/internal/services"
	"servicehub/internal/validate"
)

type DashboardHandler struct {
	Dash *services.DashboardService
}

// GET /provider
func (h *DashboardHandler) Provider(c *fiber.Ctx) error {
	d, err := h.Dash.Provider(currentUser(c).ID)
	if err != nil {
		applog.Error(c, "provider.dashboard.fail", err, nil)
		return err
	}
	return render(c, "provider_dashboard", fiber.Map{"Dash": d})
}

// GET /client
func (h *DashboardHandler) Client(c *fiber.Ctx) error {
	d, err := h.Dash.Client(currentUser(c).ID)
	if err != nil {
		applog.Error(c, "client.dashboard.fail", err, nil)
		return err
	}
	return render(c, "client_dashboard", fiber.Map{"Dash": d})
}

// GET /provider/clients?segment=&q=
func (h *DashboardHandler) Clients(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "q"})
		return message(c, fiber.StatusBadRequest, "Enter a valid keyword (letters/numbers only)")
	}
	pc, err := h.Dash.Clients(currentUser(c).ID, c.Query("segment"), q)
	if err != nil {
		applog.Error(c, "provider.clients.fail", err, nil)
		return err
	}
	return render(c, "provider_clients", fiber.Map{"Clients": pc})
}
