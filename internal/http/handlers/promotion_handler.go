package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"servicehub/internal/domain"
	applog "servicehub/internal/log"
	"servicehub/internal/services"
	"servicehub/internal/validate"
)

type PromotionHandler struct {
	Promos *services.PromotionService
}

// GET /provider/promotions
func (h *PromotionHandler) List(c *fiber.Ctx) error {
	promos, err := h.Promos.List(currentUser(c).ID)
	if err != nil {
		applog.Error(c, "provider.promotions.list.fail", err, nil)
		return err
	}
	return render(c, "promotions", fiber.Map{
		"Promotions": promos,
		"Active":     lo.CountBy(promos, func(p domain.Promotion) bool { return p.IsActive }),
		"Uses":       lo.SumBy(promos, func(p domain.Promotion) int { return p.UsedCount }),
	})
}

// POST /provider/promotions creates; POST /provider/promotions/:id updates.
func (h *PromotionHandler) Save(c *fiber.Ctx) error {
	id := c.Params("id")
	p, err := h.Promos.Save(currentUser(c).ID, id, services.PromotionForm{
		Code:          c.FormValue("code"),
		Description:   c.FormValue("description"),
		DiscountType:  c.FormValue("discount_type"),
		DiscountValue: c.FormValue("discount_value"),
		MinAmount:     c.FormValue("min_amount"),
		MaxUses:       c.FormValue("max_uses"),
		StartDate:     c.FormValue("start_date"),
		EndDate:       c.FormValue("end_date"),
		IsActive:      validate.Bool(c.FormValue("is_active")),
	})
	if err != nil {
		return fail(c, "provider.promotions.save.fail", err)
	}
	applog.Audit(c, "provider.promotions.save", map[string]any{"promotion": p.ID, "code": p.Code, "created": id == ""})
	return done(c, "/provider/promotions", fiber.Map{"promotion": p})
}

// POST /provider/promotions/:id/toggle
func (h *PromotionHandler) Toggle(c *fiber.Ctx) error {
	id := c.Params("id")
	p, err := h.Promos.Toggle(currentUser(c).ID, id)
	if err != nil {
		return fail(c, "provider.promotions.toggle.fail", err)
	}
	applog.Audit(c, "provider.promotions.toggle", map[string]any{"promotion": id, "active": p.IsActive})
	return done(c, "/provider/promotions", fiber.Map{"promotion": p})
}

// POST /provider/promotions/:id/delete
func (h *PromotionHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Promos.Delete(currentUser(c).ID, id); err != nil {
		return fail(c, "provider.promotions.delete.fail", err)
	}
	applog.Audit(c, "provider.promotions.delete", map[string]any{"promotion": id})
	return done(c, "/provider/promotions", nil)
}
