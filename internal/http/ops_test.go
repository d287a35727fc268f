package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicehub/internal/config"
)

func TestHealthAndNotFound(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, body(t, resp))

	resp = ta.do(httptest.NewRequest(http.MethodGet, "/no/such/page", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Page not found")

	resp = ta.do(httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInternalErrorsStayInternal(t *testing.T) {
	ta := newTestApp(t)
	client := ta.loggedIn("client@example.com", "client123")
	// Break the appointments query while sessions keep working.
	_, err := ta.db.Exec(`ALTER TABLE appointments RENAME TO appointments_gone`)
	require.NoError(t, err)

	resp := client.get("/client/appointments", false)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	page := body(t, resp)
	assert.Contains(t, page, "Something went wrong")
	assert.NotContains(t, page, "sql")
	assert.NotContains(t, page, "database")

	resp = client.get("/client/appointments", true)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Something went wrong. Please try again."}`, body(t, resp))

	assert.GreaterOrEqual(t, ta.logged("server.error"), 2)
}

func TestGlobalRateLimit(t *testing.T) {
	ta := newTestApp(t, func(c *config.Config) { c.RateLimit = 3 })
	for i := 0; i < 3; i++ {
		resp := ta.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode, "request %d", i)
	}
	resp := ta.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, 1, ta.logged("rate.global.hit"))

	// Static assets are not counted.
	resp = ta.do(httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAvailabilityRateLimit(t *testing.T) {
	ta := newTestApp(t)
	for i := 0; i < 15; i++ {
		resp := ta.do(httptest.NewRequest(http.MethodGet, "/api/v1/availability?serviceId=service-1&date=2024-02-14", nil))
		require.NotEqual(t, http.StatusTooManyRequests, resp.StatusCode, "limited too early at %d", i)
	}
	resp := ta.do(httptest.NewRequest(http.MethodGet, "/api/v1/quote?serviceId=service-1", nil))
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, body(t, resp), "rate limit exceeded")
	assert.Equal(t, 1, ta.logged("rate.availability.hit"))
}

func TestBodySizeLimit(t *testing.T) {
	ta := newTestApp(t)
	s := ta.session()

	oversize := bytes.Repeat([]byte("A"), (1<<20)+10)
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(oversize))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	s.cookies(req)
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		// fasthttp may refuse the body before fiber sees it.
		assert.True(t, strings.Contains(err.Error(), "body size exceeds") || strings.Contains(err.Error(), "too large"), err.Error())
		return
	}
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}
