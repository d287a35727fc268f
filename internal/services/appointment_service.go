package services

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"servicehub/internal/domain"
	"servicehub/internal/repos"
)

type AppointmentService struct {
	Apts  *repos.AppointmentRepo
	Notes *NotificationService
	Clock Clock
}

func NewAppointmentService(apts *repos.AppointmentRepo, notes *NotificationService) *AppointmentService {
	return &AppointmentService{Apts: apts, Notes: notes}
}

// providerTransitions lists the status changes a provider may make.
var providerTransitions = map[domain.AppointmentStatus][]domain.AppointmentStatus{
	domain.StatusPending:   {domain.StatusConfirmed, domain.StatusCancelled},
	domain.StatusConfirmed: {domain.StatusCompleted, domain.StatusCancelled},
}

// NextStatuses returns the buttons a provider sees for an appointment.
func NextStatuses(s domain.AppointmentStatus) []domain.AppointmentStatus {
	return providerTransitions[s]
}

type ClientAppointments struct {
	Upcoming []domain.AppointmentView `json:"upcoming"`
	Past     []domain.AppointmentView `json:"past"`
}

type ProviderAppointments struct {
	All      []domain.AppointmentView                              `json:"all"`
	ByStatus map[domain.AppointmentStatus][]domain.AppointmentView `json:"by_status"`
}

type AppointmentStats struct {
	Total      int     `json:"total"`
	Pending    int     `json:"pending"`
	Confirmed  int     `json:"confirmed"`
	Completed  int     `json:"completed"`
	Cancelled  int     `json:"cancelled"`
	Commission float64 `json:"commission"`
}

// AdminAppointmentFilter is the admin list query. Range is today, week or
// month; week and month keep everything dated since that long ago.
type AdminAppointmentFilter struct {
	Q      string
	Status domain.AppointmentStatus
	Range  string
}

// ForClient splits a client's appointments into upcoming (open and in the
// future) and past.
func (s *AppointmentService) ForClient(clientID string) (ClientAppointments, error) {
	all, err := s.Apts.ByClient(clientID)
	if err != nil {
		return ClientAppointments{}, err
	}
	now := s.Clock.now()
	upcoming, past := lo.FilterReject(all, func(a domain.AppointmentView, _ int) bool {
		return a.Status.Open() && a.When().After(now)
	})
	return ClientAppointments{Upcoming: upcoming, Past: past}, nil
}

func (s *AppointmentService) ForProvider(providerID string) (ProviderAppointments, error) {
	all, err := s.Apts.ByProvider(providerID)
	if err != nil {
		return ProviderAppointments{}, err
	}
	return ProviderAppointments{
		All:      all,
		ByStatus: lo.GroupBy(all, func(a domain.AppointmentView) domain.AppointmentStatus { return a.Status }),
	}, nil
}

// Upcoming returns at most n open future appointments, soonest first.
func (s *AppointmentService) Upcoming(all []domain.AppointmentView, n int) []domain.AppointmentView {
	now := s.Clock.now()
	out := lo.Filter(all, func(a domain.AppointmentView, _ int) bool {
		return a.Status.Open() && a.When().After(now)
	})
	out = lo.Reverse(out)
	return lo.Slice(out, 0, n)
}

func (s *AppointmentService) ForAdmin(f AdminAppointmentFilter) ([]domain.AppointmentView, error) {
	rf := repos.AppointmentFilter{Q: f.Q}
	if f.Status.Valid() {
		rf.Statuses = []domain.AppointmentStatus{f.Status}
	}
	now := s.Clock.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch f.Range {
	case "today":
		rf.From, rf.To = domain.Timestamp(today), domain.Timestamp(today.AddDate(0, 0, 1))
	case "week":
		rf.From = domain.Timestamp(now.AddDate(0, 0, -7))
	case "month":
		rf.From = domain.Timestamp(now.AddDate(0, -1, 0))
	}
	return s.Apts.List(rf)
}

func StatsOf(all []domain.AppointmentView) AppointmentStats {
	by := lo.CountValuesBy(all, func(a domain.AppointmentView) domain.AppointmentStatus { return a.Status })
	completed := lo.Filter(all, func(a domain.AppointmentView, _ int) bool { return a.Status == domain.StatusCompleted })
	return AppointmentStats{
		Total:      len(all),
		Pending:    by[domain.StatusPending],
		Confirmed:  by[domain.StatusConfirmed],
		Completed:  by[domain.StatusCompleted],
		Cancelled:  by[domain.StatusCancelled],
		Commission: round2(lo.SumBy(completed, func(a domain.AppointmentView) float64 { return a.CommissionAmount })),
	}
}

func (s *AppointmentService) AllStats() (AppointmentStats, error) {
	all, err := s.Apts.List(repos.AppointmentFilter{})
	if err != nil {
		return AppointmentStats{}, err
	}
	return StatsOf(all), nil
}

// Transition applies a provider's status change and notifies the client.
// Completing requires the appointment time to have passed.
func (s *AppointmentService) Transition(provider *domain.User, id string, to domain.AppointmentStatus) (domain.AppointmentView, error) {
	apt, err := s.Apts.GetView(id)
	if err != nil {
		return domain.AppointmentView{}, notFound(err)
	}
	if apt.ProviderID != provider.ID {
		return apt, ErrForbidden
	}
	if !lo.Contains(providerTransitions[apt.Status], to) {
		return apt, ErrInvalidTransition
	}
	if to == domain.StatusCompleted && apt.When().After(s.Clock.now()) {
		return apt, ErrTooEarly
	}
	if err := s.move(&apt, to); err != nil {
		return apt, err
	}
	title, msg := transitionMessage(apt, to)
	s.Notes.Notify(apt.ClientID, domain.NotifyAppointment, title, msg)
	return apt, nil
}

// Cancel lets a client cancel their own pending or confirmed appointment.
func (s *AppointmentService) Cancel(client *domain.User, id string) (domain.AppointmentView, error) {
	apt, err := s.Apts.GetView(id)
	if err != nil {
		return domain.AppointmentView{}, notFound(err)
	}
	if apt.ClientID != client.ID {
		return apt, ErrForbidden
	}
	if !apt.Status.Open() {
		return apt, ErrInvalidTransition
	}
	if err := s.move(&apt, domain.StatusCancelled); err != nil {
		return apt, err
	}
	s.Notes.Notify(apt.ProviderID, domain.NotifyAppointment, "Appointment Cancelled",
		fmt.Sprintf("%s cancelled their appointment scheduled for %s", apt.ClientName, apt.When().Format("Jan 2, 2006")))
	return apt, nil
}

func (s *AppointmentService) move(apt *domain.AppointmentView, to domain.AppointmentStatus) error {
	at := s.Clock.stamp()
	if err := s.Apts.UpdateStatus(apt.ID, apt.Status, to, at); err != nil {
		if repos.IsNotFound(err) {
			return ErrInvalidTransition
		}
		return err
	}
	apt.Status = to
	apt.UpdatedAt = at
	return nil
}

func transitionMessage(apt domain.AppointmentView, to domain.AppointmentStatus) (string, string) {
	when := apt.When().Format(humanTime)
	switch to {
	case domain.StatusConfirmed:
		return "Appointment Confirmed", fmt.Sprintf("Your %s appointment with %s has been confirmed for %s", apt.ServiceName, apt.ProviderName, when)
	case domain.StatusCompleted:
		return "Appointment Completed", fmt.Sprintf("Your %s appointment with %s is complete. Leave a review to help other clients", apt.ServiceName, apt.ProviderName)
	default:
		return "Appointment Cancelled", fmt.Sprintf("Your %s appointment with %s on %s has been cancelled", apt.ServiceName, apt.ProviderName, when)
	}
}
