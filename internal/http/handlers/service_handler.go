package handlers

import (
	"github.com/gofiber/fiber/v2"

	"servicehub/internal/domain"
	applog "servicehub/internal/log"
	"servicehub/internal/repos"
	"servicehub/internal/services"
	"servicehub/internal/validate"
)

type ServiceHandler struct {
	Catalog *services.CatalogService
}

// serviceFilter reads q, category and status from the query string.
func serviceFilter(c *fiber.Ctx) (repos.ServiceFilter, bool) {
	var f repos.ServiceFilter
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "q"})
		return f, false
	}
	f.Q = q
	if cat := c.Query("category"); cat != "" {
		if f.CategoryID, ok = validate.ID(cat); !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "category"})
			return f, false
		}
	}
	switch c.Query("status") {
	case "active":
		t := true
		f.Active = &t
	case "inactive":
		v := false
		f.Active = &v
	}
	return f, true
}

func (h *ServiceHandler) page(c *fiber.Ctx, tmpl string, providerID string) error {
	f, ok := serviceFilter(c)
	if !ok {
		return message(c, fiber.StatusBadRequest, "Invalid filter")
	}
	f.ProviderID = providerID
	rows, err := h.Catalog.Search(f)
	if err != nil {
		applog.Error(c, "services.list.fail", err, nil)
		return err
	}
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return err
	}
	return render(c, tmpl, fiber.Map{
		"Services":   rows,
		"Stats":      services.ServiceStatsOf(rows),
		"Categories": cats,
		"Q":          f.Q,
		"CategoryID": f.CategoryID,
		"Status":     c.Query("status"),
	})
}

// GET /admin/services
func (h *ServiceHandler) AdminList(c *fiber.Ctx) error {
	return h.page(c, "admin_services", "")
}

// GET /provider/services
func (h *ServiceHandler) ProviderList(c *fiber.Ctx) error {
	return h.page(c, "provider_services", currentUser(c).ID)
}

func serviceForm(c *fiber.Ctx) services.ServiceForm {
	return services.ServiceForm{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Price:       c.FormValue("price"),
		Duration:    c.FormValue("duration"),
		CategoryID:  c.FormValue("category_id"),
		IsActive:    validate.Bool(c.FormValue("is_active")),
	}
}

// POST /provider/services
func (h *ServiceHandler) Create(c *fiber.Ctx) error {
	svc, err := h.Catalog.CreateService(currentUser(c).ID, serviceForm(c))
	if err != nil {
		return fail(c, "provider.services.create.fail", err)
	}
	applog.Audit(c, "provider.services.create", map[string]any{"service": svc.ID})
	return done(c, "/provider/services", fiber.Map{"service": svc})
}

// POST /provider/services/:id
func (h *ServiceHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	svc, err := h.Catalog.UpdateService(currentUser(c).ID, id, serviceForm(c))
	if err != nil {
		return fail(c, "provider.services.update.fail", err)
	}
	applog.Audit(c, "provider.services.update", map[string]any{"service": id})
	return done(c, "/provider/services", fiber.Map{"service": svc})
}

func listFor(u *domain.User) string {
	if u.Is(domain.RoleAdmin) {
		return "/admin/services"
	}
	return "/provider/services"
}

// POST /admin/services/:id/toggle and /provider/services/:id/toggle
func (h *ServiceHandler) Toggle(c *fiber.Ctx) error {
	u := currentUser(c)
	id := c.Params("id")
	svc, err := h.Catalog.ToggleService(u, id)
	if err != nil {
		return fail(c, string(u.Role)+".services.toggle.fail", err)
	}
	applog.Audit(c, string(u.Role)+".services.toggle", map[string]any{"service": id, "active": svc.IsActive})
	return done(c, back(c, listFor(u)), fiber.Map{"service": svc})
}

// POST /admin/services/:id/delete and /provider/services/:id/delete
func (h *ServiceHandler) Delete(c *fiber.Ctx) error {
	u := currentUser(c)
	id := c.Params("id")
	if err := h.Catalog.DeleteService(u, id); err != nil {
		return fail(c, string(u.Role)+".services.delete.fail", err)
	}
	applog.Audit(c, string(u.Role)+".services.delete", map[string]any{"service": id})
	return done(c, listFor(u), nil)
}
