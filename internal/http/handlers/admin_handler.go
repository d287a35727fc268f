package handlers

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"servicehub/internal/domain"
	applog "servicehub/internal/log"
	"servicehub/internal/repos"
	"servicehub/internal/services"
	"servicehub/internal/validate"
)

// maxImportSize bounds an uploaded user CSV.
const maxImportSize = 512 << 10

type AdminHandler struct {
	Users *services.UserService
	Dash  *services.DashboardService
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	d, err := h.Dash.Admin()
	if err != nil {
		applog.Error(c, "admin.dashboard.fail", err, nil)
		return err
	}
	return render(c, "admin_dashboard", fiber.Map{"Dash": d})
}

// GET /admin/users
func (h *AdminHandler) UsersPage(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "q"})
		return message(c, fiber.StatusBadRequest, "Enter a valid keyword (letters/numbers only)")
	}
	f := repos.UserFilter{Q: q, Status: c.Query("status")}
	if r := c.Query("role"); r != "" {
		if role, ok := domain.ParseRole(r); ok {
			f.Role = role
		}
	}
	users, err := h.Users.List(f)
	if err != nil {
		applog.Error(c, "admin.users.list.fail", err, nil)
		return err
	}
	stats, err := h.Users.Stats()
	if err != nil {
		return err
	}
	return render(c, "admin_users", fiber.Map{
		"Users": users, "Stats": stats, "Q": q, "Role": string(f.Role), "Status": f.Status,
	})
}

// POST /admin/users
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	u, err := h.Users.Create(services.UserForm{
		FullName:   c.FormValue("full_name"),
		Email:      c.FormValue("email"),
		Password:   c.FormValue("password"),
		Role:       c.FormValue("role"),
		Phone:      c.FormValue("phone"),
		Location:   c.FormValue("location"),
		Bio:        c.FormValue("bio"),
		IsApproved: validate.Bool(c.FormValue("is_approved")),
	})
	if err != nil {
		return fail(c, "admin.users.create.fail", err)
	}
	applog.Audit(c, "admin.users.create", map[string]any{"target": u.ID, "role": string(u.Role)})
	return done(c, "/admin/users", fiber.Map{"user": u})
}

// POST /admin/users/:id/approve
func (h *AdminHandler) ApproveUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Users.Approve(id); err != nil {
		return fail(c, "admin.users.approve.fail", err)
	}
	applog.Audit(c, "admin.users.approve", map[string]any{"target": id})
	return done(c, back(c, "/admin/users"), nil)
}

// POST /admin/users/:id/suspend
func (h *AdminHandler) SuspendUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if u := currentUser(c); u != nil && u.ID == id {
		return fail(c, "admin.users.suspend.fail", services.ErrForbidden)
	}
	if err := h.Users.Suspend(id); err != nil {
		return fail(c, "admin.users.suspend.fail", err)
	}
	applog.Audit(c, "admin.users.suspend", map[string]any{"target": id})
	return done(c, back(c, "/admin/users"), nil)
}

// POST /admin/users/:id/delete
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Users.Delete(currentUser(c).ID, id); err != nil {
		return fail(c, "admin.users.delete.fail", err)
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"target": id})
	return done(c, "/admin/users", nil)
}

// POST /admin/users/:id/password sets the given password, or a generated
// one when the field is empty, and shows it once.
func (h *AdminHandler) ResetPassword(c *fiber.Ctx) error {
	id := c.Params("id")
	pw := c.FormValue("password")
	if pw == "" {
		var err error
		if pw, err = services.GeneratePassword(); err != nil {
			return err
		}
	}
	u, err := h.Users.Get(id)
	if err != nil {
		return fail(c, "admin.users.password.fail", err)
	}
	if err := h.Users.SetPassword(id, pw); err != nil {
		return fail(c, "admin.users.password.fail", err)
	}
	applog.Audit(c, "admin.users.password", map[string]any{"target": id})
	return render(c, "notice", fiber.Map{
		"Title":    "Password updated",
		"Message":  "New password for " + u.Email + ":",
		"Password": pw,
		"Back":     "/admin/users",
	})
}

// GET /admin/users/export
func (h *AdminHandler) ExportUsers(c *fiber.Ctx) error {
	name := "users_export_" + time.Now().UTC().Format("2006-01-02") + ".csv"
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment(name)
	if err := h.Users.ExportCSV(c); err != nil {
		applog.Error(c, "admin.users.export.fail", err, nil)
		return err
	}
	applog.Audit(c, "admin.users.export", nil)
	return nil
}

// GET /admin/users/sample
func (h *AdminHandler) SampleUsers(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment("user_import_sample.csv")
	return c.SendString(services.SampleCSV())
}

// POST /admin/users/import (multipart field "file")
func (h *AdminHandler) ImportUsers(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "file"})
		return message(c, fiber.StatusBadRequest, "Please choose a CSV file to import")
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".csv") || fh.Size > maxImportSize {
		applog.Security(c, "validation.fail", map[string]any{"field": "file", "name": fh.Filename, "size": fh.Size})
		return message(c, fiber.StatusBadRequest, "Please upload a CSV file under 512 KB")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := h.Users.ImportCSV(f)
	if err != nil {
		if status, _, _ := classify(err); status == 0 {
			applog.Error(c, "admin.users.import.fail", err, nil)
			return message(c, fiber.StatusBadRequest, "Could not read the CSV file")
		}
		return fail(c, "admin.users.import.fail", err)
	}
	applog.Audit(c, "admin.users.import", map[string]any{
		"imported": len(res.Imported), "skipped": res.Skipped, "invalid": res.Invalid,
	})
	return render(c, "import_result", fiber.Map{"Result": res, "Imported": len(res.Imported)})
}
