package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	applog "servicehub/internal/log"
	"servicehub/internal/repos"
	"servicehub/internal/services"
	"servicehub/internal/validate"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// Home lists categories and a handful of active services.
func (h *CategoryHandler) Home(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return err
	}
	active := true
	svcs, err := h.Catalog.Search(repos.ServiceFilter{Active: &active})
	if err != nil {
		return err
	}
	return render(c, "home", fiber.Map{"Categories": cats, "Services": lo.Slice(svcs, 0, 6)})
}

// GET /admin/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "q"})
		return message(c, fiber.StatusBadRequest, "Enter a valid keyword (letters/numbers only)")
	}
	rows, stats, err := h.Catalog.CategoriesWithCounts(q)
	if err != nil {
		applog.Error(c, "admin.categories.list.fail", err, nil)
		return err
	}
	return render(c, "admin_categories", fiber.Map{"Categories": rows, "Stats": stats, "Q": q})
}

// POST /admin/categories creates a category, or updates one when id is set.
func (h *CategoryHandler) Save(c *fiber.Ctx) error {
	id := c.FormValue("id")
	if id != "" {
		if _, ok := validate.ID(id); !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "id"})
			return message(c, fiber.StatusBadRequest, "Invalid category")
		}
	}
	cat, err := h.Catalog.SaveCategory(id, c.FormValue("name"), c.FormValue("description"), c.FormValue("icon"))
	if err != nil {
		return fail(c, "admin.categories.save.fail", err)
	}
	applog.Audit(c, "admin.categories.save", map[string]any{"category": cat.ID, "created": id == ""})
	return done(c, "/admin/categories", fiber.Map{"category": cat})
}

// POST /admin/categories/:id/delete
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Catalog.DeleteCategory(id); err != nil {
		return fail(c, "admin.categories.delete.fail", err)
	}
	applog.Audit(c, "admin.categories.delete", map[string]any{"category": id})
	return done(c, "/admin/categories", nil)
}
