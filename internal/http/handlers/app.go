package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"servicehub/internal/config"
	"servicehub/internal/domain"
	applog "servicehub/internal/log"
	"servicehub/web"
)

// paymentGrace is added to the simulated processor delay when bounding a
// payment request.
const paymentGrace = 5 * time.Second

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code, msg = fe.Code, fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	c.Status(code)
	if wantsJSON(c) {
		return c.JSON(fiber.Map{"error": msg})
	}
	// Avoid leaking internals; best-effort render
	if rerr := c.Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.SendString(msg)
	}
	return nil
}

// NewApp builds the fiber app with middleware and every route.
func NewApp(cfg config.Config, s *Services) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        web.Engine(),
		ErrorHandler: errorHandler,
		BodyLimit:    1 << 20, // 1 MiB
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(applog.Access())
	app.Use(helmet.New())
	app.Use(SessionUser(s.Auth))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/static/") || cfg.RateLimit <= 0
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return message(c, fiber.StatusTooManyRequests, "Too many requests. Please slow down.")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.SecureCookies,
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"error": err.Error()})
			return message(c, fiber.StatusForbidden, "Security check failed. Please refresh and try again.")
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	if cfg.StaticDir != "" {
		app.Static("/static", cfg.StaticDir)
	} else {
		app.Use("/static", filesystem.New(filesystem.Config{Root: web.Static(), MaxAge: 3600}))
	}

	d := NewDeps(s, cfg)
	routes(app, s, d)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return message(c, fiber.StatusNotFound, "Page not found")
	})
	return app
}

func routes(app *fiber.App, s *Services, d *Deps) {
	// Public pages
	app.Get("/", d.CategoryHandler.Home)
	app.Get("/login", d.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			c.Status(fiber.StatusTooManyRequests)
			return render(c, "login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Login)
	app.Get("/signup", d.AuthHandler.SignupForm)
	app.Post("/signup", limiter.New(limiter.Config{Max: 10, Expiration: 10 * time.Minute}), d.AuthHandler.Signup)
	app.Post("/logout", d.AuthHandler.Logout)
	app.Get("/pending-approval", d.AuthHandler.PendingApproval)

	// API
	api := app.Group("/api/v1")
	availLimiter := limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/availability", availLimiter, d.AvailabilityHandler.Check)
	api.Get("/quote", availLimiter, d.AvailabilityHandler.Quote)

	// Any signed-in user
	signedIn := RequireUser(s.Auth)
	app.Get("/profile", signedIn, d.ProfileHandler.Show)
	app.Post("/profile", signedIn, d.ProfileHandler.Update)
	app.Get("/notifications", signedIn, d.NotificationHandler.List)
	app.Post("/notifications/read-all", signedIn, d.NotificationHandler.MarkAllRead)
	app.Post("/notifications/:id/read", signedIn, d.NotificationHandler.MarkRead)
	app.Post("/notifications/:id/delete", signedIn, d.NotificationHandler.Delete)
	app.Get("/chat", signedIn, d.ChatHandler.View)
	app.Post("/chat", signedIn, d.ChatHandler.Send)

	// Admin
	admin := app.Group("/admin", RequireRole(s.Auth, domain.RoleAdmin))
	admin.Get("/", d.AdminHandler.Dashboard)
	admin.Get("/users", d.AdminHandler.UsersPage)
	admin.Post("/users", d.AdminHandler.CreateUser)
	admin.Get("/users/export", d.AdminHandler.ExportUsers)
	admin.Get("/users/sample", d.AdminHandler.SampleUsers)
	admin.Post("/users/import", d.AdminHandler.ImportUsers)
	admin.Post("/users/:id/approve", d.AdminHandler.ApproveUser)
	admin.Post("/users/:id/suspend", d.AdminHandler.SuspendUser)
	admin.Post("/users/:id/password", d.AdminHandler.ResetPassword)
	admin.Post("/users/:id/delete", d.AdminHandler.DeleteUser)
	admin.Get("/categories", d.CategoryHandler.List)
	admin.Post("/categories", d.CategoryHandler.Save)
	admin.Post("/categories/:id/delete", d.CategoryHandler.Delete)
	admin.Get("/services", d.ServiceHandler.AdminList)
	admin.Post("/services/:id/toggle", d.ServiceHandler.Toggle)
	admin.Post("/services/:id/delete", d.ServiceHandler.Delete)
	admin.Get("/appointments", d.AppointmentHandler.AdminList)
	admin.Get("/revenue", d.BillingHandler.AdminRevenue)
	admin.Get("/invoices", d.BillingHandler.ListInvoices)
	admin.Get("/invoices/export", d.BillingHandler.ExportInvoices)
	admin.Get("/refunds", d.BillingHandler.AdminRefunds)
	admin.Post("/refunds/:id/approve", d.BillingHandler.ApproveRefund)
	admin.Post("/refunds/:id/reject", d.BillingHandler.RejectRefund)

	// Provider
	provider := app.Group("/provider", RequireRole(s.Auth, domain.RoleProvider))
	provider.Get("/", d.DashboardHandler.Provider)
	provider.Get("/services", d.ServiceHandler.ProviderList)
	provider.Post("/services", d.ServiceHandler.Create)
	provider.Post("/services/:id", d.ServiceHandler.Update)
	provider.Post("/services/:id/toggle", d.ServiceHandler.Toggle)
	provider.Post("/services/:id/delete", d.ServiceHandler.Delete)
	provider.Get("/appointments", d.AppointmentHandler.ProviderList)
	provider.Post("/appointments/:id/status", d.AppointmentHandler.SetStatus)
	provider.Get("/promotions", d.PromotionHandler.List)
	provider.Post("/promotions", d.PromotionHandler.Save)
	provider.Post("/promotions/:id", d.PromotionHandler.Save)
	provider.Post("/promotions/:id/toggle", d.PromotionHandler.Toggle)
	provider.Post("/promotions/:id/delete", d.PromotionHandler.Delete)
	provider.Get("/clients", d.DashboardHandler.Clients)
	provider.Get("/revenue", d.BillingHandler.ProviderRevenue)
	provider.Get("/invoices", d.BillingHandler.ListInvoices)
	provider.Get("/invoices/export", d.BillingHandler.ExportInvoices)
	provider.Get("/reviews", d.ReviewHandler.ProviderList)

	// Client
	client := app.Group("/client", RequireRole(s.Auth, domain.RoleClient))
	client.Get("/", d.DashboardHandler.Client)
	client.Get("/search", limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}), d.SearchHandler.Search)
	client.Get("/book/:serviceId", d.BookingHandler.Page)
	client.Post("/book/:serviceId", d.BookingHandler.Book)
	client.Get("/payment/:id", d.BookingHandler.PaymentPage)
	client.Post("/payment/:id", d.BookingHandler.Pay)
	client.Get("/appointments", d.AppointmentHandler.ClientList)
	client.Post("/appointments/:id/cancel", d.AppointmentHandler.Cancel)
	client.Get("/refunds", d.BillingHandler.ClientRefunds)
	client.Post("/refunds", d.BillingHandler.RequestRefund)
	client.Get("/reviews", d.ReviewHandler.ClientList)
	client.Post("/reviews", d.ReviewHandler.Create)
	client.Post("/reviews/:id", d.ReviewHandler.Update)
	client.Post("/reviews/:id/delete", d.ReviewHandler.Delete)
	client.Get("/favorites", d.FavoriteHandler.List)
	client.Post("/favorites/:serviceId/toggle", d.FavoriteHandler.Toggle)
	client.Post("/favorites/:serviceId/delete", d.FavoriteHandler.Remove)
}
