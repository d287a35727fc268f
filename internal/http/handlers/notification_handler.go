package handlers

import (
	"github.com/gofiber/fiber/v2"

	"servicehub/internal/domain"
	applog "servicehub/internal/log"
	"servicehub/internal/services"
)

type NotificationHandler struct {
	Notes *services.NotificationService
}

// GET /notifications?type=&unread=1
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	l, err := h.Notes.List(currentUser(c).ID, domain.NotificationType(c.Query("type")), c.QueryBool("unread"))
	if err != nil {
		applog.Error(c, "notifications.list.fail", err, nil)
		return err
	}
	return render(c, "notifications", fiber.Map{"List": l})
}

// POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.Notes.MarkRead(currentUser(c).ID, c.Params("id")); err != nil {
		return fail(c, "notifications.read.fail", err)
	}
	return done(c, back(c, "/notifications"), nil)
}

// POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.Notes.MarkAllRead(currentUser(c).ID)
	if err != nil {
		return fail(c, "notifications.read_all.fail", err)
	}
	return done(c, "/notifications", fiber.Map{"updated": n})
}

// POST /notifications/:id/delete
func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Notes.Delete(currentUser(c).ID, id); err != nil {
		return fail(c, "notifications.delete.fail", err)
	}
	applog.Audit(c, "notifications.delete", map[string]any{"notification": id})
	return done(c, "/notifications", nil)
}
