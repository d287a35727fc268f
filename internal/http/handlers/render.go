package handlers

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	applog "servicehub/internal/log"
	"servicehub/internal/services"
)

// wantsJSON reports whether the client asked for the page's view-model
// instead of HTML.
func wantsJSON(c *fiber.Ctx) bool {
	if c.Query("format") == "json" {
		return true
	}
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if wantsJSON(c) {
		return c.JSON(data)
	}
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		// Locals is empty on the first request of a session; the cookie
		// carries the same token.
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

// message renders the notfound page (or a JSON error) with status.
func message(c *fiber.Ctx, status int, msg string) error {
	c.Status(status)
	if wantsJSON(c) {
		return c.JSON(fiber.Map{"error": msg})
	}
	return render(c, "notfound", fiber.Map{"Message": msg})
}

var conflicts = []error{
	services.ErrUserExists, services.ErrSlotUnavailable, services.ErrAlreadyPaid,
	services.ErrCodeTaken, services.ErrCategoryExists, services.ErrRefundExists,
	services.ErrReviewExists, services.ErrRefundProcessed,
}

var badRequests = []error{
	services.ErrInvalidInput, services.ErrInvalidTransition, services.ErrTooEarly,
	services.ErrNotPayable, services.ErrPromoInvalid, services.ErrCategoryInUse,
	services.ErrRefundIneligible, services.ErrNotReviewable, services.ErrBadCreds,
	services.ErrNotApproved,
}

// classify maps a service error to a status and a message safe to show.
// A zero status means the error is internal.
func classify(err error) (int, string, services.FieldErrors) {
	var fe services.FieldErrors
	var minErr *services.MinAmountError
	switch {
	case errors.As(err, &fe):
		return fiber.StatusBadRequest, fieldMessage(fe), fe
	case errors.As(err, &minErr):
		return fiber.StatusBadRequest, sentence(minErr.Error()), nil
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound, "This item is no longer available", nil
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden, "Access denied", nil
	case errors.Is(err, services.ErrProcessorUnavailable):
		return fiber.StatusBadGateway, "Payment could not be processed. Please try again.", nil
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "Payment timed out. Please try again.", nil
	}
	if lo.ContainsBy(conflicts, func(e error) bool { return errors.Is(err, e) }) {
		return fiber.StatusConflict, sentence(err.Error()), nil
	}
	if lo.ContainsBy(badRequests, func(e error) bool { return errors.Is(err, e) }) {
		return fiber.StatusBadRequest, sentence(err.Error()), nil
	}
	return 0, "", nil
}

// fail answers a failed action. Business errors become a 4xx page with a
// readable message; anything else goes to the app ErrorHandler.
func fail(c *fiber.Ctx, action string, err error) error {
	status, msg, fe := classify(err)
	if status == 0 {
		applog.Error(c, action, err, nil)
		return err
	}
	fields := map[string]any{"error": err.Error()}
	if status == fiber.StatusForbidden {
		applog.Security(c, action, fields)
	} else {
		applog.Info(c, action, fields)
	}
	c.Status(status)
	if wantsJSON(c) {
		body := fiber.Map{"error": msg}
		if fe != nil {
			body["fields"] = fe
		}
		return c.JSON(body)
	}
	return render(c, "notfound", fiber.Map{"Message": msg, "Errors": fe, "Back": back(c, "")})
}

// done finishes a successful POST: JSON clients get data, browsers are
// redirected to to.
func done(c *fiber.Ctx, to string, data fiber.Map) error {
	if wantsJSON(c) {
		if data == nil {
			data = fiber.Map{}
		}
		data["ok"] = true
		return c.JSON(data)
	}
	return c.Redirect(to)
}

// back returns the Referer path when it points into this site.
func back(c *fiber.Ctx, def string) string {
	ref := c.Get(fiber.HeaderReferer)
	if i := strings.Index(ref, "://"); i >= 0 {
		ref = ref[i+3:]
		if j := strings.Index(ref, "/"); j >= 0 && ref[:j] == c.Hostname() {
			return ref[j:]
		}
		return def
	}
	if strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//") {
		return ref
	}
	return def
}

func fieldMessage(fe services.FieldErrors) string {
	keys := lo.Keys(fe)
	sort.Strings(keys)
	return strings.Join(lo.Map(keys, func(k string, _ int) string { return fe[k] }), ". ")
}

func sentence(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
