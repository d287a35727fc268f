package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnonymousIsSentToLogin(t *testing.T) {
	ta := newTestApp(t)
	for _, path := range []string{"/admin", "/provider/services", "/client/appointments", "/profile", "/chat"} {
		resp := ta.do(httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
	}
}

func TestWrongRoleIsDenied(t *testing.T) {
	ta := newTestApp(t)
	client := ta.loggedIn("client@example.com", "client123")

	resp := client.get("/admin/users", false)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Access denied")

	resp = client.get("/provider", true)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Access denied"}`, body(t, resp))

	entries := ta.logs.FilterMessage("access.denied.admin").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "warn", entries[0].Level.String())
	fields, _ := entries[0].ContextMap()["fields"].(map[string]any)
	assert.Equal(t, "client", fields["role"])
	assert.Equal(t, "client-1", fields["user_id"])
	assert.NotContains(t, fields, "sid")
	assert.Equal(t, 1, ta.logged("access.denied.provider"))
	ta.assertNotLogged(client.sid)
}

func TestProviderCannotTouchAnotherProvidersService(t *testing.T) {
	ta := newTestApp(t)
	mike := ta.loggedIn("mike@example.com", "mike123")

	// service-1 belongs to provider-1.
	resp := mike.post("/provider/services/service-1/toggle", nil, true)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 1, ta.logged("provider.services.toggle.fail"))

	resp = mike.post("/provider/services/service-1", url.Values{
		"name": {"Stolen"}, "price": {"1"}, "duration": {"60"}, "category_id": {"cat-1"},
	}, true)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var name string
	require.NoError(t, ta.db.Get(&name, `SELECT name FROM services WHERE id = 'service-1'`))
	assert.Equal(t, "Hair Cut & Styling", name)
}

func TestClientCannotPaySomeoneElsesAppointment(t *testing.T) {
	ta := newTestApp(t)
	john := ta.loggedIn("john@example.com", "john123")

	// apt-2 belongs to client-1.
	resp := john.get("/client/payment/apt-2", false)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = john.post("/client/payment/apt-2", nil, true)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCSRFRequiredOnPost(t *testing.T) {
	ta := newTestApp(t)
	s := ta.session()

	form := url.Values{"email": {"client@example.com"}, "password": {"client123"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: s.csrf})
	resp := ta.do(req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Security check failed")

	form.Set("csrf", "forged-token")
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: s.csrf})
	resp = ta.do(req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	assert.Equal(t, 2, ta.logged("csrf.fail"))
	assert.Zero(t, ta.logged("auth.login.success"))
}

func TestAdminCannotSuspendSelf(t *testing.T) {
	ta := newTestApp(t)
	admin := ta.loggedIn("admin@example.com", "admin123")
	resp := admin.post("/admin/users/admin-1/suspend", nil, true)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = admin.post("/admin/users/admin-1/delete", nil, true)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
