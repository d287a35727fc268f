package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicehub/internal/services"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{services.ErrNotFound, fiber.StatusNotFound, "This item is no longer available"},
		{fmt.Errorf("load: %w", services.ErrForbidden), fiber.StatusForbidden, "Access denied"},
		{services.ErrSlotUnavailable, fiber.StatusConflict, ""},
		{services.ErrPromoInvalid, fiber.StatusBadRequest, ""},
		{&services.MinAmountError{Min: 30}, fiber.StatusBadRequest, ""},
		{services.FieldErrors{"b": "Second", "a": "First"}, fiber.StatusBadRequest, "First. Second"},
		{services.ErrProcessorUnavailable, fiber.StatusBadGateway, ""},
		{context.DeadlineExceeded, fiber.StatusGatewayTimeout, ""},
		{errors.New("disk on fire"), 0, ""},
	}
	for _, tc := range cases {
		status, msg, _ := classify(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		if tc.msg != "" {
			assert.Equal(t, tc.msg, msg)
		}
		if status != 0 {
			assert.NotEmpty(t, msg)
		}
	}
}

func TestBackOnlyFollowsSameSite(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(back(c, "/fallback")) })

	for ref, want := range map[string]string{
		"":                               "/fallback",
		"http://example.com/admin/users": "/admin/users",
		"https://evil.test/phish":        "/fallback",
		"/client/search?q=yoga":          "/client/search?q=yoga",
		"//evil.test/x":                  "/fallback",
	} {
		req := httptest.NewRequest("GET", "http://example.com/", nil)
		if ref != "" {
			req.Header.Set(fiber.HeaderReferer, ref)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		buf := make([]byte, 128)
		n, _ := resp.Body.Read(buf)
		assert.Equal(t, want, string(buf[:n]), ref)
	}
}

func TestWantsJSON(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		if wantsJSON(c) {
			return c.SendString("json")
		}
		return c.SendString("html")
	})
	for _, tc := range []struct {
		target, accept, want string
	}{
		{"/", "", "html"},
		{"/", "text/html,application/xhtml+xml", "html"},
		{"/", "application/json", "json"},
		{"/?format=json", "text/html", "json"},
	} {
		req := httptest.NewRequest("GET", tc.target, nil)
		if tc.accept != "" {
			req.Header.Set(fiber.HeaderAccept, tc.accept)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		buf := make([]byte, 8)
		n, _ := resp.Body.Read(buf)
		assert.Equal(t, tc.want, string(buf[:n]), "%s %s", tc.target, tc.accept)
	}
}
