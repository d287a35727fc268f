package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "servicehub/internal/log"
	"servicehub/internal/services"
)

type ReviewHandler struct {
	Reviews *services.ReviewService
}

// GET /client/reviews
func (h *ReviewHandler) ClientList(c *fiber.Ctx) error {
	cr, err := h.Reviews.ForClient(currentUser(c).ID)
	if err != nil {
		applog.Error(c, "client.reviews.list.fail", err, nil)
		return err
	}
	return render(c, "client_reviews", fiber.Map{"Reviews": cr.Reviews, "Pending": cr.Pending})
}

// GET /provider/reviews
func (h *ReviewHandler) ProviderList(c *fiber.Ctx) error {
	rs, err := h.Reviews.ForProvider(currentUser(c).ID)
	if err != nil {
		applog.Error(c, "provider.reviews.list.fail", err, nil)
		return err
	}
	return render(c, "provider_reviews", fiber.Map{
		"Reviews": rs, "Count": len(rs), "Average": services.AverageRating(rs),
	})
}

// POST /client/reviews
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	rv, err := h.Reviews.Create(currentUser(c), c.FormValue("appointment_id"), c.FormValue("rating"), c.FormValue("comment"))
	if err != nil {
		return fail(c, "client.reviews.create.fail", err)
	}
	applog.Audit(c, "client.reviews.create", map[string]any{"review": rv.ID, "rating": rv.Rating})
	return done(c, "/client/reviews", fiber.Map{"review": rv})
}

// POST /client/reviews/:id
func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	rv, err := h.Reviews.Update(currentUser(c), id, c.FormValue("rating"), c.FormValue("comment"))
	if err != nil {
		return fail(c, "client.reviews.update.fail", err)
	}
	applog.Audit(c, "client.reviews.update", map[string]any{"review": id, "rating": rv.Rating})
	return done(c, "/client/reviews", fiber.Map{"review": rv})
}

// POST /client/reviews/:id/delete
func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Reviews.Delete(currentUser(c), id); err != nil {
		return fail(c, "client.reviews.delete.fail", err)
	}
	applog.Audit(c, "client.reviews.delete", map[string]any{"review": id})
	return done(c, "/client/reviews", nil)
}
