package handlers

import (
	"github.com/jmoiron/sqlx"

	"servicehub/internal/config"
	"servicehub/internal/repos"
	"servicehub/internal/services"
)

// Services is the wired service layer shared by the web app and the CLI.
type Services struct {
	Auth     *services.AuthService
	Users    *services.UserService
	Notes    *services.NotificationService
	Catalog  *services.CatalogService
	Booking  *services.BookingService
	Apts     *services.AppointmentService
	Refunds  *services.RefundService
	Reviews  *services.ReviewService
	Promos   *services.PromotionService
	Favs     *services.FavoriteService
	Chat     *services.ChatService
	Invoices *services.InvoiceService
	Revenue  *services.RevenueService
	Dash     *services.DashboardService
}

// NewServices wires repositories and services over db. A nil clock means
// wall time.
func NewServices(db *sqlx.DB, cfg config.Config, clock services.Clock) *Services {
	userRepo := repos.NewUserRepo(db)
	aptRepo := repos.NewAppointmentRepo(db)
	svcRepo := repos.NewServiceRepo(db)
	reviewRepo := repos.NewReviewRepo(db)
	favRepo := repos.NewFavoriteRepo(db)

	notes := services.NewNotificationService(repos.NewNotificationRepo(db))
	notes.Clock = clock
	auth := services.NewAuthService(userRepo)
	auth.Clock = clock
	users := services.NewUserService(userRepo, notes)
	users.Clock = clock
	catalog := services.NewCatalogService(repos.NewCategoryRepo(db), svcRepo)
	catalog.Clock = clock
	booking := services.NewBookingService(svcRepo, userRepo, aptRepo, repos.NewPromotionRepo(db), reviewRepo, notes,
		services.SimulatedProcessor{Delay: cfg.PaymentDelay}, cfg.CommissionRate)
	booking.Clock = clock
	apts := services.NewAppointmentService(aptRepo, notes)
	apts.Clock = clock
	refunds := services.NewRefundService(repos.NewRefundRepo(db), aptRepo, notes)
	refunds.Clock = clock
	reviews := services.NewReviewService(reviewRepo, aptRepo, notes)
	reviews.Clock = clock
	promos := services.NewPromotionService(booking.Promos)
	promos.Clock = clock
	favs := services.NewFavoriteService(favRepo, svcRepo)
	favs.Clock = clock
	chat := services.NewChatService(repos.NewMessageRepo(db), userRepo, aptRepo)
	chat.Clock = clock
	revenue := services.NewRevenueService(aptRepo)

	return &Services{
		Auth:     auth,
		Users:    users,
		Notes:    notes,
		Catalog:  catalog,
		Booking:  booking,
		Apts:     apts,
		Refunds:  refunds,
		Reviews:  reviews,
		Promos:   promos,
		Favs:     favs,
		Chat:     chat,
		Invoices: services.NewInvoiceService(aptRepo),
		Revenue:  revenue,
		Dash:     services.NewDashboardService(users, apts, reviewRepo, favRepo, revenue),
	}
}

type Deps struct {
	AuthHandler         *AuthHandler
	AdminHandler        *AdminHandler
	CategoryHandler     *CategoryHandler
	ServiceHandler      *ServiceHandler
	SearchHandler       *SearchHandler
	AvailabilityHandler *AvailabilityHandler
	BookingHandler      *BookingHandler
	AppointmentHandler  *AppointmentHandler
	BillingHandler      *BillingHandler
	PromotionHandler    *PromotionHandler
	FavoriteHandler     *FavoriteHandler
	ReviewHandler       *ReviewHandler
	NotificationHandler *NotificationHandler
	ChatHandler         *ChatHandler
	ProfileHandler      *ProfileHandler
	DashboardHandler    *DashboardHandler
}

func NewDeps(s *Services, cfg config.Config) *Deps {
	return &Deps{
		AuthHandler:         &AuthHandler{Auth: s.Auth, SecureCookies: cfg.SecureCookies},
		AdminHandler:        &AdminHandler{Users: s.Users, Dash: s.Dash},
		CategoryHandler:     &CategoryHandler{Catalog: s.Catalog},
		ServiceHandler:      &ServiceHandler{Catalog: s.Catalog},
		SearchHandler:       &SearchHandler{Catalog: s.Catalog, Favs: s.Favs},
		AvailabilityHandler: &AvailabilityHandler{Booking: s.Booking},
		BookingHandler:      &BookingHandler{Booking: s.Booking, PaymentTimeout: cfg.PaymentDelay*3 + paymentGrace},
		AppointmentHandler:  &AppointmentHandler{Apts: s.Apts},
		BillingHandler:      &BillingHandler{Revenue: s.Revenue, Invoices: s.Invoices, Refunds: s.Refunds},
		PromotionHandler:    &PromotionHandler{Promos: s.Promos},
		FavoriteHandler:     &FavoriteHandler{Favs: s.Favs},
		ReviewHandler:       &ReviewHandler{Reviews: s.Reviews},
		NotificationHandler: &NotificationHandler{Notes: s.Notes},
		ChatHandler:         &ChatHandler{Chat: s.Chat},
		ProfileHandler:      &ProfileHandler{Users: s.Users, Dash: s.Dash},
		DashboardHandler:    &DashboardHandler{Dash: s.Dash},
	}
}
