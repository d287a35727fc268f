package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"servicehub/internal/domain"
	"servicehub/internal/log"
	"servicehub/internal/services"
	"servicehub/internal/validate"
)

type AuthHandler struct {
	Auth          *services.AuthService
	SecureCookies bool
}

func (h *AuthHandler) ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   h.SecureCookies,
		})
	}
	return sid
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	if u := currentUser(c); u != nil && u.IsApproved {
		return c.Redirect(homeFor(u))
	}
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) loginFailed(c *fiber.Ctx, email, reason string) error {
	log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": reason})
	c.Status(fiber.StatusUnauthorized)
	return render(c, "login", fiber.Map{"Err": "Invalid email or password", "Email": email})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := h.ensureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok {
		return h.loginFailed(c, email, "bad_format")
	}
	if !validate.Password(pass) {
		return h.loginFailed(c, email, "bad_password_format")
	}

	u, err := h.Auth.Login(sid, email, pass)
	switch {
	case errors.Is(err, services.ErrNotApproved):
		log.Security(c, "auth.login.pending", map[string]any{"email": email})
		return done(c, "/pending-approval", fiber.Map{"pending": true})
	case errors.Is(err, services.ErrBadCreds):
		return h.loginFailed(c, email, "bad_credentials")
	case err != nil:
		log.Error(c, "auth.login.error", err, nil)
		return err
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": email, "user_id": u.ID})
	return done(c, homeFor(u), fiber.Map{"user": u})
}

func (h *AuthHandler) SignupForm(c *fiber.Ctx) error {
	return render(c, "signup", fiber.Map{"Role": c.Query("role", string(domain.RoleClient))})
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	sid := h.ensureSID(c)
	form := fiber.Map{
		"FullName": c.FormValue("full_name"),
		"Email":    c.FormValue("email"),
		"Role":     c.FormValue("role"),
	}
	reject := func(status int, errs services.FieldErrors) error {
		log.Security(c, "validation.fail", map[string]any{"form": "signup", "fields": len(errs)})
		form["Errors"] = errs
		c.Status(status)
		if wantsJSON(c) {
			return c.JSON(fiber.Map{"error": fieldMessage(errs), "fields": errs})
		}
		return render(c, "signup", form)
	}
	if c.FormValue("password") != c.FormValue("confirm_password") {
		return reject(fiber.StatusBadRequest, services.FieldErrors{"confirm_password": "Passwords do not match"})
	}

	u, err := h.Auth.SignUp(c.FormValue("email"), c.FormValue("password"), c.FormValue("full_name"), domain.Role(c.FormValue("role")))
	var fe services.FieldErrors
	switch {
	case errors.As(err, &fe):
		return reject(fiber.StatusBadRequest, fe)
	case errors.Is(err, services.ErrUserExists):
		return reject(fiber.StatusConflict, services.FieldErrors{"email": sentence(err.Error())})
	case err != nil:
		log.Error(c, "auth.signup.error", err, nil)
		return err
	}
	log.Audit(c, "auth.signup", map[string]any{"user_id": u.ID, "role": string(u.Role)})

	if !u.IsApproved {
		return done(c, "/pending-approval", fiber.Map{"user": u, "pending": true})
	}
	if _, err := h.Auth.Login(sid, u.Email, c.FormValue("password")); err != nil {
		log.Error(c, "auth.signup.login", err, nil)
		return done(c, "/login", fiber.Map{"user": u})
	}
	return done(c, homeFor(u), fiber.Map{"user": u})
}

func (h *AuthHandler) PendingApproval(c *fiber.Ctx) error {
	return render(c, "pending_approval", nil)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	fields := map[string]any{}
	if u := currentUser(c); u != nil {
		fields["user_id"] = u.ID
	}
	sid := h.ensureSID(c)
	_ = h.Auth.Logout(sid)
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.SecureCookies,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", fields)
	return c.Redirect("/")
}
