package handlers

import (
	"github.com/gofiber/fiber/v2"

	"servicehub/internal/domain"
	applog "servicehub/internal/log"
	"servicehub/internal/services"
	"servicehub/internal/validate"
)

type AppointmentHandler struct {
	Apts *services.AppointmentService
}

// GET /admin/appointments?q=&status=&range=
func (h *AppointmentHandler) AdminList(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "q"})
		return message(c, fiber.StatusBadRequest, "Enter a valid keyword (letters/numbers only)")
	}
	f := services.AdminAppointmentFilter{
		Q:      q,
		Status: domain.AppointmentStatus(c.Query("status")),
		Range:  c.Query("range"),
	}
	apts, err := h.Apts.ForAdmin(f)
	if err != nil {
		applog.Error(c, "admin.appointments.list.fail", err, nil)
		return err
	}
	stats, err := h.Apts.AllStats()
	if err != nil {
		return err
	}
	return render(c, "admin_appointments", fiber.Map{
		"Appointments": apts, "Stats": stats, "Q": q, "Status": string(f.Status), "Range": f.Range,
	})
}

// GET /provider/appointments?status=
func (h *AppointmentHandler) ProviderList(c *fiber.Ctx) error {
	pa, err := h.Apts.ForProvider(currentUser(c).ID)
	if err != nil {
		applog.Error(c, "provider.appointments.list.fail", err, nil)
		return err
	}
	shown := pa.All
	status := domain.AppointmentStatus(c.Query("status"))
	if status.Valid() {
		shown = pa.ByStatus[status]
	}
	next := map[string][]domain.AppointmentStatus{}
	for _, a := range shown {
		next[a.ID] = services.NextStatuses(a.Status)
	}
	return render(c, "provider_appointments", fiber.Map{
		"Appointments": shown,
		"Stats":        services.StatsOf(pa.All),
		"Next":         next,
		"Status":       string(status),
	})
}

// POST /provider/appointments/:id/status
func (h *AppointmentHandler) SetStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	to := domain.AppointmentStatus(c.FormValue("status"))
	if !to.Valid() {
		applog.Security(c, "validation.fail", map[string]any{"field": "status"})
		return message(c, fiber.StatusBadRequest, "Invalid status")
	}
	apt, err := h.Apts.Transition(currentUser(c), id, to)
	if err != nil {
		return fail(c, "provider.appointments.status.fail", err)
	}
	applog.Audit(c, "provider.appointments.status", map[string]any{"appointment": id, "status": string(to)})
	return done(c, back(c, "/provider/appointments"), fiber.Map{"appointment": apt})
}

// GET /client/appointments
func (h *AppointmentHandler) ClientList(c *fiber.Ctx) error {
	ca, err := h.Apts.ForClient(currentUser(c).ID)
	if err != nil {
		applog.Error(c, "client.appointments.list.fail", err, nil)
		return err
	}
	return render(c, "client_appointments", fiber.Map{"Upcoming": ca.Upcoming, "Past": ca.Past})
}

// POST /client/appointments/:id/cancel
func (h *AppointmentHandler) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")
	apt, err := h.Apts.Cancel(currentUser(c), id)
	if err != nil {
		return fail(c, "client.appointments.cancel.fail", err)
	}
	applog.Audit(c, "client.appointments.cancel", map[string]any{"appointment": id})
	return done(c, "/client/appointments", fiber.Map{"appointment": apt})
}
