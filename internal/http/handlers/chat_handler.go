package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	applog "servicehub/internal/log"
	"servicehub/internal/services"
	"servicehub/internal/validate"
)

type ChatHandler struct {
	Chat *services.ChatService
}

// GET /chat?with=USER_ID
func (h *ChatHandler) View(c *fiber.Ctx) error {
	with := c.Query("with")
	if with != "" {
		if _, ok := validate.ID(with); !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "with"})
			return message(c, fiber.StatusBadRequest, "Invalid conversation")
		}
	}
	v, err := h.Chat.View(currentUser(c), with)
	if err != nil {
		return fail(c, "chat.view.fail", err)
	}
	return render(c, "chat", fiber.Map{"Chat": v, "With": with})
}

// POST /chat (to, message)
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	to, ok := validate.ID(c.FormValue("to"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "to"})
		return message(c, fiber.StatusBadRequest, "Choose someone to message")
	}
	m, err := h.Chat.Send(currentUser(c), to, c.FormValue("message"))
	if err != nil {
		return fail(c, "chat.send.fail", err)
	}
	applog.Info(c, "chat.send", map[string]any{"message": m.ID, "to": to})
	return done(c, "/chat?with="+url.QueryEscape(to), fiber.Map{"message": m})
}
