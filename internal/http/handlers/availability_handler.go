package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"servicehub/internal/services"
	"servicehub/internal/validate"
)

type AvailabilityHandler struct {
	Booking *services.BookingService
}

// GET /api/v1/availability?serviceId=&date=
func (h *AvailabilityHandler) Check(c *fiber.Ctx) error {
	serviceID, ok := validate.ID(c.Query("serviceId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing serviceId",
		})
	}
	if _, ok := validate.Date(c.Query("date")); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "enter a valid date (YYYY-MM-DD)",
		})
	}

	day, err := h.Booking.ServiceSlots(serviceID, c.Query("date"))
	if err != nil {
		status, msg, _ := classify(err)
		if status == 0 {
			return err
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}
	return c.JSON(day)
}

// GET /api/v1/quote?serviceId=&code= prices a service with an optional
// promo code. A rejected code still returns the undiscounted quote.
func (h *AvailabilityHandler) Quote(c *fiber.Ctx) error {
	serviceID, ok := validate.ID(c.Query("serviceId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing serviceId",
		})
	}
	code := strings.TrimSpace(c.Query("code"))
	q, err := h.Booking.Quote(serviceID, code)
	if err != nil {
		status, msg, _ := classify(err)
		if status == 0 {
			return err
		}
		return c.Status(status).JSON(fiber.Map{"error": msg, "quote": q})
	}
	return c.JSON(q)
}
