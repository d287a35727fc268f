package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"servicehub/internal/domain"
	applog "servicehub/internal/log"
	"servicehub/internal/repos"
	"servicehub/internal/validate"
)

// SlotTimes are the bookable start times of a working day, in UTC.
var SlotTimes = []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00", "18:00"}

const humanTime = "Jan 2, 2006 at 3:04 PM"

type BookingService struct {
	Svcs      *repos.ServiceRepo
	Users     *repos.UserRepo
	Apts      *repos.AppointmentRepo
	Promos    *repos.PromotionRepo
	Reviews   *repos.ReviewRepo
	Notes     *NotificationService
	Processor PaymentProcessor

	CommissionRate float64
	RetryAttempts  uint
	RetryDelay     time.Duration
	Clock          Clock
}

func NewBookingService(svcs *repos.ServiceRepo, users *repos.UserRepo, apts *repos.AppointmentRepo,
	promos *repos.PromotionRepo, reviews *repos.ReviewRepo, notes *NotificationService,
	processor PaymentProcessor, commissionRate float64) *BookingService {
	return &BookingService{
		Svcs: svcs, Users: users, Apts: apts, Promos: promos, Reviews: reviews, Notes: notes,
		Processor:      processor,
		CommissionRate: commissionRate,
		RetryAttempts:  3,
		RetryDelay:     200 * time.Millisecond,
	}
}

// Quote is the price breakdown shown before booking.
type Quote struct {
	ServiceID  string  `json:"service_id"`
	Price      float64 `json:"price"`
	PromoCode  string  `json:"promo_code,omitempty"`
	Discount   float64 `json:"discount"`
	Total      float64 `json:"total"`
	Commission float64 `json:"commission"`
}

type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

type SlotDay struct {
	Date   string `json:"date"`
	Closed bool   `json:"closed"`
	Slots  []Slot `json:"slots"`
}

// BookingView is the booking page view-model.
type BookingView struct {
	Service       repos.ServiceRow    `json:"service"`
	Provider      *domain.User        `json:"provider"`
	Reviews       []domain.ReviewView `json:"reviews"`
	ReviewCount   int                 `json:"review_count"`
	AverageRating float64             `json:"average_rating"`
	SlotTimes     []string            `json:"slot_times"`
	Quote         Quote               `json:"quote"`
}

type BookForm struct {
	ServiceID string
	Date      string // YYYY-MM-DD
	Time      string // HH:00
	Notes     string
	PromoCode string
}

func (s *BookingService) View(serviceID string) (BookingView, error) {
	svc, err := s.Svcs.GetRow(serviceID)
	if err != nil {
		return BookingView{}, notFound(err)
	}
	if !svc.IsActive {
		return BookingView{}, ErrNotFound
	}
	provider, err := s.Users.ByID(svc.ProviderID)
	if err != nil {
		return BookingView{}, notFound(err)
	}
	reviews, err := s.Reviews.ByProvider(svc.ProviderID)
	if err != nil {
		return BookingView{}, err
	}
	q, _ := s.Quote(serviceID, "")
	return BookingView{
		Service:       svc,
		Provider:      provider,
		Reviews:       lo.Slice(reviews, 0, 3),
		ReviewCount:   len(reviews),
		AverageRating: AverageRating(reviews),
		SlotTimes:     SlotTimes,
		Quote:         q,
	}, nil
}

// AverageRating rounds to one decimal; no reviews gives zero.
func AverageRating(reviews []domain.ReviewView) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := lo.SumBy(reviews, func(r domain.ReviewView) int { return r.Rating })
	return float64(int(float64(sum)/float64(len(reviews))*10+0.5)) / 10
}

// ApplyPromo resolves code for a service price. The code must belong to the
// service's provider, be active, be inside its date window and have uses
// left; price must reach the promotion minimum.
func (s *BookingService) ApplyPromo(svc domain.Service, code string) (domain.Promotion, float64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	p, err := s.Promos.ByCode(code)
	if err != nil {
		if repos.IsNotFound(err) {
			return domain.Promotion{}, 0, ErrPromoInvalid
		}
		return domain.Promotion{}, 0, err
	}
	now := s.Clock.now()
	switch {
	case p.ProviderID != svc.ProviderID,
		!p.IsActive,
		now.Before(domain.ParseTime(p.StartDate)),
		// EndDate is the day's last whole second; the window runs through it.
		!now.Before(domain.ParseTime(p.EndDate).Add(time.Second)),
		p.MaxUses > 0 && p.UsedCount >= p.MaxUses:
		return domain.Promotion{}, 0, ErrPromoInvalid
	}
	if svc.Price < p.MinAmount {
		return domain.Promotion{}, 0, &MinAmountError{Min: p.MinAmount}
	}
	return p, round2(p.Discount(svc.Price)), nil
}

func (s *BookingService) Quote(serviceID, code string) (Quote, error) {
	svc, err := s.Svcs.Get(serviceID)
	if err != nil {
		return Quote{}, notFound(err)
	}
	q := Quote{ServiceID: svc.ID, Price: svc.Price}
	if strings.TrimSpace(code) != "" {
		p, d, err := s.ApplyPromo(svc, code)
		if err != nil {
			return s.priced(q), err
		}
		q.PromoCode, q.Discount = p.Code, d
	}
	return s.priced(q), nil
}

func (s *BookingService) priced(q Quote) Quote {
	q.Total = round2(q.Price - q.Discount)
	q.Commission = round2(q.Total * s.CommissionRate)
	return q
}

// Slots lists a provider's day. Days that have started and Sundays are
// closed; slots held by pending or confirmed appointments are unavailable.
func (s *BookingService) Slots(providerID, date string) (SlotDay, error) {
	day, ok := validate.Date(date)
	if !ok {
		return SlotDay{}, FieldErrors{"date": "Please choose a valid date"}
	}
	out := SlotDay{Date: day.Format("2006-01-02")}
	if !day.After(s.Clock.now()) || day.Weekday() == time.Sunday {
		out.Closed = true
		out.Slots = lo.Map(SlotTimes, func(t string, _ int) Slot { return Slot{Time: t} })
		return out, nil
	}
	held, err := s.Apts.HeldSlots(providerID, domain.Timestamp(day), domain.Timestamp(day.AddDate(0, 0, 1)))
	if err != nil {
		return SlotDay{}, err
	}
	taken := lo.SliceToMap(held, func(ts string) (string, bool) {
		return domain.ParseTime(ts).Format("15:04"), true
	})
	out.Slots = lo.Map(SlotTimes, func(t string, _ int) Slot { return Slot{Time: t, Available: !taken[t]} })
	return out, nil
}

// ServiceSlots is Slots for the provider of serviceID.
func (s *BookingService) ServiceSlots(serviceID, date string) (SlotDay, error) {
	svc, err := s.Svcs.Get(serviceID)
	if err != nil {
		return SlotDay{}, notFound(err)
	}
	return s.Slots(svc.ProviderID, date)
}

// Book creates a pending appointment and notifies the provider.
func (s *BookingService) Book(client *domain.User, form BookForm) (domain.Appointment, error) {
	if !client.Is(domain.RoleClient) {
		return domain.Appointment{}, ErrForbidden
	}
	svc, err := s.Svcs.Get(form.ServiceID)
	if err != nil {
		return domain.Appointment{}, notFound(err)
	}
	if !svc.IsActive {
		return domain.Appointment{}, ErrNotFound
	}
	fe := FieldErrors{}
	slot, ok := validate.Slot(form.Time)
	if !ok || !lo.Contains(SlotTimes, slot) {
		fe["time"] = "Please choose a time slot"
	}
	notes, ok := validate.Text(form.Notes, 1000)
	if !ok {
		fe["notes"] = "Notes are too long"
	}
	day, err := s.Slots(svc.ProviderID, form.Date)
	if err != nil {
		var dfe FieldErrors
		if !errors.As(err, &dfe) {
			return domain.Appointment{}, err
		}
		for k, v := range dfe {
			fe[k] = v
		}
	}
	if err := fe.orNil(); err != nil {
		return domain.Appointment{}, err
	}
	if day.Closed || !lo.ContainsBy(day.Slots, func(x Slot) bool { return x.Time == slot && x.Available }) {
		return domain.Appointment{}, ErrSlotUnavailable
	}

	q := s.priced(Quote{ServiceID: svc.ID, Price: svc.Price})
	var promoID string
	if strings.TrimSpace(form.PromoCode) != "" {
		p, d, err := s.ApplyPromo(svc, form.PromoCode)
		if err != nil {
			return domain.Appointment{}, err
		}
		promoID = p.ID
		q.PromoCode, q.Discount = p.Code, d
		q = s.priced(q)
	}

	when, _ := time.Parse("2006-01-02 15:04", day.Date+" "+slot)
	now := s.Clock.stamp()
	apt := domain.Appointment{
		ID:               newID(),
		ClientID:         client.ID,
		ProviderID:       svc.ProviderID,
		ServiceID:        svc.ID,
		AppointmentDate:  domain.Timestamp(when),
		Status:           domain.StatusPending,
		Notes:            notes,
		TotalAmount:      q.Total,
		CommissionAmount: q.Commission,
		PromoCode:        q.PromoCode,
		PaymentStatus:    domain.PaymentUnpaid,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if promoID == "" {
		err = s.Apts.Create(apt)
	} else if err = s.Apts.CreateRedeeming(apt, promoID); repos.IsNotFound(err) {
		err = ErrPromoInvalid
	}
	if err != nil {
		return domain.Appointment{}, err
	}
	s.Notes.Notify(svc.ProviderID, domain.NotifyAppointment, "New Appointment Booked",
		fmt.Sprintf("%s has booked %s for %s", client.FullName, svc.Name, when.Format(humanTime)))
	return apt, nil
}

// PaymentView loads a client's appointment for the payment page.
func (s *BookingService) PaymentView(client *domain.User, appointmentID string) (domain.AppointmentView, error) {
	apt, err := s.Apts.GetView(appointmentID)
	if err != nil {
		return domain.AppointmentView{}, notFound(err)
	}
	if apt.ClientID != client.ID {
		return domain.AppointmentView{}, ErrForbidden
	}
	return apt, nil
}

// Pay charges the appointment through the processor, retrying transient
// failures, then marks it paid and notifies both parties.
func (s *BookingService) Pay(ctx context.Context, client *domain.User, appointmentID string) (domain.AppointmentView, error) {
	apt, err := s.PaymentView(client, appointmentID)
	if err != nil {
		return apt, err
	}
	switch {
	case apt.PaymentStatus == domain.PaymentPaid:
		return apt, ErrAlreadyPaid
	case apt.PaymentStatus == domain.PaymentRefunded, apt.Status == domain.StatusCancelled:
		return apt, ErrNotPayable
	}

	attempts := s.RetryAttempts
	if attempts == 0 {
		attempts = 1
	}
	err = retry.Do(
		func() error { return s.Processor.Charge(ctx, "pi_"+apt.ID, apt.TotalAmount) },
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(s.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(func(err error) bool { return errors.Is(err, ErrProcessorUnavailable) }),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			applog.L().Warn("payment.retry", zap.String("action", "payment.retry"),
				zap.String("appointment_id", apt.ID), zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return apt, fmt.Errorf("charge %s: %w", apt.ID, err)
	}

	if err := s.Apts.SetPaymentStatus(apt.ID, domain.PaymentUnpaid, domain.PaymentPaid, s.Clock.stamp()); err != nil {
		if repos.IsNotFound(err) {
			return apt, ErrAlreadyPaid
		}
		return apt, err
	}
	apt.PaymentStatus = domain.PaymentPaid
	s.Notes.Notify(apt.ProviderID, domain.NotifyPayment, "Payment Received",
		fmt.Sprintf("Payment of $%.2f received for %s service", apt.TotalAmount, apt.ServiceName))
	s.Notes.Notify(apt.ClientID, domain.NotifyPayment, "Payment Successful",
		fmt.Sprintf("Payment of $%.2f for %s has been processed successfully", apt.TotalAmount, apt.ServiceName))
	return apt, nil
}
