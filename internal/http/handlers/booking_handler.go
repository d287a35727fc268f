package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	applog "servicehub/internal/log"
	"servicehub/internal/services"
)

type BookingHandler struct {
	Booking *services.BookingService
	// PaymentTimeout bounds one payment attempt including retries.
	PaymentTimeout time.Duration
}

// GET /client/book/:serviceId?date=YYYY-MM-DD
func (h *BookingHandler) Page(c *fiber.Ctx) error {
	v, err := h.Booking.View(c.Params("serviceId"))
	if err != nil {
		return fail(c, "client.book.view.fail", err)
	}
	data := fiber.Map{"View": v, "Date": c.Query("date")}
	if date := c.Query("date"); date != "" {
		day, err := h.Booking.Slots(v.Service.ProviderID, date)
		if err != nil {
			return fail(c, "client.book.slots.fail", err)
		}
		data["Day"] = day
	}
	return render(c, "book", data)
}

// POST /client/book/:serviceId
func (h *BookingHandler) Book(c *fiber.Ctx) error {
	apt, err := h.Booking.Book(currentUser(c), services.BookForm{
		ServiceID: c.Params("serviceId"),
		Date:      c.FormValue("date"),
		Time:      c.FormValue("time"),
		Notes:     c.FormValue("notes"),
		PromoCode: c.FormValue("promo_code"),
	})
	if err != nil {
		return fail(c, "client.book.fail", err)
	}
	applog.Audit(c, "client.book", map[string]any{
		"appointment": apt.ID, "service": apt.ServiceID, "total": apt.TotalAmount, "promo": apt.PromoCode,
	})
	return done(c, "/client/payment/"+apt.ID, fiber.Map{"appointment": apt})
}

// GET /client/payment/:id
func (h *BookingHandler) PaymentPage(c *fiber.Ctx) error {
	apt, err := h.Booking.PaymentView(currentUser(c), c.Params("id"))
	if err != nil {
		return fail(c, "client.payment.view.fail", err)
	}
	return render(c, "payment", fiber.Map{"Appointment": apt})
}

// POST /client/payment/:id
func (h *BookingHandler) Pay(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if h.PaymentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.PaymentTimeout)
		defer cancel()
	}
	apt, err := h.Booking.Pay(ctx, currentUser(c), c.Params("id"))
	if err != nil {
		return fail(c, "client.payment.fail", err)
	}
	applog.Audit(c, "client.payment", map[string]any{"appointment": apt.ID, "amount": apt.TotalAmount})
	return done(c, "/client/appointments", fiber.Map{"appointment": apt})
}
