package handlers

import (
	"strings"

	"servicehub/internal/log"
	"servicehub/internal/repos"
	"servicehub/internal/services"
	"servicehub/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type SearchHandler struct {
	Catalog *services.CatalogService
	Favs    *services.FavoriteService
}

// GET /client/search
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return err
	}
	rawQ := c.Query("q")
	q, ok := validate.Q(rawQ)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
		c.Status(fiber.StatusBadRequest)
		return render(c, "search", fiber.Map{
			"Q": "", "CategoryID": "", "Services": []any{}, "Count": 0, "Categories": cats,
			"Err": "Enter a valid keyword (letters/numbers only)",
		})
	}
	category := strings.TrimSpace(c.Query("category"))
	if category != "" {
		if _, ok := validate.ID(category); !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "category"})
			c.Status(fiber.StatusBadRequest)
			return render(c, "search", fiber.Map{
				"Q": q, "CategoryID": "", "Services": []any{}, "Count": 0, "Categories": cats, "Err": "Invalid category",
			})
		}
	}

	active := true
	rows, err := h.Catalog.Search(repos.ServiceFilter{Q: q, CategoryID: category, Active: &active})
	if err != nil {
		log.Error(c, "search.error", err, nil)
		return message(c, fiber.StatusInternalServerError, "Could not load results. Please retry.")
	}
	saved, err := h.Favs.IDs(currentUser(c).ID)
	if err != nil {
		return err
	}

	return render(c, "search", fiber.Map{
		"Q": q, "CategoryID": category, "Categories": cats,
		"Services": rows, "Count": len(rows), "Saved": saved,
	})
}
