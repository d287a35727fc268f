package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"servicehub/internal/domain"
	applog "servicehub/internal/log"
	"servicehub/internal/repos"
	"servicehub/internal/services"
	"servicehub/internal/validate"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type BillingHandler struct {
	Revenue  *services.RevenueService
	Invoices *services.InvoiceService
	Refunds  *services.RefundService
}

// GET /admin/revenue
func (h *BillingHandler) AdminRevenue(c *fiber.Ctx) error {
	r, err := h.Revenue.Platform()
	if err != nil {
		applog.Error(c, "admin.revenue.fail", err, nil)
		return err
	}
	return render(c, "admin_revenue", fiber.Map{"Revenue": r})
}

// GET /provider/revenue
func (h *BillingHandler) ProviderRevenue(c *fiber.Ctx) error {
	r, err := h.Revenue.Provider(currentUser(c).ID)
	if err != nil {
		applog.Error(c, "provider.revenue.fail", err, nil)
		return err
	}
	return render(c, "provider_revenue", fiber.Map{"Revenue": r})
}

// invoiceFilter scopes providers to their own invoices.
func invoiceFilter(c *fiber.Ctx) (services.InvoiceFilter, bool) {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "q"})
		return services.InvoiceFilter{}, false
	}
	f := services.InvoiceFilter{Q: q, Status: domain.PaymentStatus(c.Query("status"))}
	u := currentUser(c)
	if u.Is(domain.RoleProvider) {
		f.ProviderID = u.ID
	} else if p := c.Query("provider"); p != "" {
		f.ProviderID, _ = validate.ID(p)
	}
	return f, true
}

// GET /admin/invoices and /provider/invoices
func (h *BillingHandler) ListInvoices(c *fiber.Ctx) error {
	f, ok := invoiceFilter(c)
	if !ok {
		return message(c, fiber.StatusBadRequest, "Enter a valid keyword (letters/numbers only)")
	}
	invs, err := h.Invoices.List(f)
	if err != nil {
		applog.Error(c, "invoices.list.fail", err, nil)
		return err
	}
	return render(c, "invoices", fiber.Map{
		"Invoices": invs,
		"Totals":   services.TotalsOf(invs),
		"Q":        f.Q,
		"Status":   string(f.Status),
		"Base":     "/" + string(currentUser(c).Role) + "/invoices",
	})
}

// GET /admin/invoices/export and /provider/invoices/export
func (h *BillingHandler) ExportInvoices(c *fiber.Ctx) error {
	f, ok := invoiceFilter(c)
	if !ok {
		return message(c, fiber.StatusBadRequest, "Enter a valid keyword (letters/numbers only)")
	}
	invs, err := h.Invoices.List(f)
	if err != nil {
		return err
	}
	c.Attachment("invoices_" + time.Now().UTC().Format("2006-01-02") + ".xlsx")
	c.Set(fiber.HeaderContentType, xlsxMIME)
	if err := services.WriteXLSX(c, invs); err != nil {
		applog.Error(c, "invoices.export.fail", err, nil)
		return err
	}
	applog.Audit(c, "invoices.export", map[string]any{"count": len(invs)})
	return nil
}

// GET /admin/refunds?q=&status=
func (h *BillingHandler) AdminRefunds(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "q"})
		return message(c, fiber.StatusBadRequest, "Enter a valid keyword (letters/numbers only)")
	}
	status := domain.RefundStatus(c.Query("status"))
	shown, err := h.Refunds.List(repos.RefundFilter{Q: q, Status: status})
	if err != nil {
		applog.Error(c, "admin.refunds.list.fail", err, nil)
		return err
	}
	all, err := h.Refunds.List(repos.RefundFilter{})
	if err != nil {
		return err
	}
	return render(c, "admin_refunds", fiber.Map{
		"Refunds": shown, "Stats": services.RefundStatsOf(all), "Q": q, "Status": string(status),
	})
}

func (h *BillingHandler) process(c *fiber.Ctx, approve bool) error {
	id := c.Params("id")
	action := "admin.refunds.reject"
	if approve {
		action = "admin.refunds.approve"
	}
	r, err := h.Refunds.Process(id, approve, c.FormValue("notes"))
	if err != nil {
		return fail(c, action+".fail", err)
	}
	applog.Audit(c, action, map[string]any{"refund": id, "amount": r.Amount})
	return done(c, back(c, "/admin/refunds"), fiber.Map{"refund": r})
}

// POST /admin/refunds/:id/approve
func (h *BillingHandler) ApproveRefund(c *fiber.Ctx) error { return h.process(c, true) }

// POST /admin/refunds/:id/reject
func (h *BillingHandler) RejectRefund(c *fiber.Ctx) error { return h.process(c, false) }

// GET /client/refunds
func (h *BillingHandler) ClientRefunds(c *fiber.Ctx) error {
	u := currentUser(c)
	refunds, err := h.Refunds.List(repos.RefundFilter{ClientID: u.ID})
	if err != nil {
		applog.Error(c, "client.refunds.list.fail", err, nil)
		return err
	}
	eligible, err := h.Refunds.Eligible(u.ID)
	if err != nil {
		return err
	}
	return render(c, "client_refunds", fiber.Map{"Refunds": refunds, "Eligible": eligible})
}

// POST /client/refunds
func (h *BillingHandler) RequestRefund(c *fiber.Ctx) error {
	r, err := h.Refunds.Request(currentUser(c), c.FormValue("appointment_id"), c.FormValue("amount"), c.FormValue("reason"))
	if err != nil {
		return fail(c, "client.refunds.request.fail", err)
	}
	applog.Audit(c, "client.refunds.request", map[string]any{"refund": r.ID, "appointment": r.AppointmentID, "amount": r.Amount})
	return done(c, "/client/refunds", fiber.Map{"refund": r})
}
