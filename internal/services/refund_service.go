package services

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"servicehub/internal/domain"
	"servicehub/internal/repos"
	"servicehub/internal/validate"
)

type RefundService struct {
	Refunds *repos.RefundRepo
	Apts    *repos.AppointmentRepo
	Notes   *NotificationService
	Clock   Clock
}

func NewRefundService(refunds *repos.RefundRepo, apts *repos.AppointmentRepo, notes *NotificationService) *RefundService {
	return &RefundService{Refunds: refunds, Apts: apts, Notes: notes}
}

type RefundStats struct {
	Total          int     `json:"total"`
	Pending        int     `json:"pending"`
	Approved       int     `json:"approved"`
	Rejected       int     `json:"rejected"`
	ApprovedAmount float64 `json:"approved_amount"`
}

func RefundStatsOf(all []domain.RefundView) RefundStats {
	by := lo.CountValuesBy(all, func(r domain.RefundView) domain.RefundStatus { return r.Status })
	approved := lo.Filter(all, func(r domain.RefundView, _ int) bool { return r.Status == domain.RefundApproved })
	return RefundStats{
		Total:          len(all),
		Pending:        by[domain.RefundPending],
		Approved:       by[domain.RefundApproved],
		Rejected:       by[domain.RefundRejected],
		ApprovedAmount: round2(lo.SumBy(approved, func(r domain.RefundView) float64 { return r.Amount })),
	}
}

func (s *RefundService) List(f repos.RefundFilter) ([]domain.RefundView, error) {
	return s.Refunds.List(f)
}

// Eligible returns the client's completed or cancelled appointments that
// have no refund yet.
func (s *RefundService) Eligible(clientID string) ([]domain.AppointmentView, error) {
	apts, err := s.Apts.List(repos.AppointmentFilter{
		ClientID: clientID,
		Statuses: []domain.AppointmentStatus{domain.StatusCompleted, domain.StatusCancelled},
	})
	if err != nil {
		return nil, err
	}
	existing, err := s.Refunds.List(repos.RefundFilter{ClientID: clientID})
	if err != nil {
		return nil, err
	}
	has := lo.SliceToMap(existing, func(r domain.RefundView) (string, bool) { return r.AppointmentID, true })
	return lo.Reject(apts, func(a domain.AppointmentView, _ int) bool { return has[a.ID] }), nil
}

// Request files a refund for amount in (0, total] with a reason.
func (s *RefundService) Request(client *domain.User, appointmentID, amount, reason string) (domain.Refund, error) {
	apt, err := s.Apts.Get(appointmentID)
	if err != nil {
		return domain.Refund{}, notFound(err)
	}
	if apt.ClientID != client.ID {
		return domain.Refund{}, ErrForbidden
	}
	if apt.Status != domain.StatusCompleted && apt.Status != domain.StatusCancelled {
		return domain.Refund{}, ErrRefundIneligible
	}
	if _, err := s.Refunds.ByAppointment(apt.ID); err == nil {
		return domain.Refund{}, ErrRefundExists
	} else if !repos.IsNotFound(err) {
		return domain.Refund{}, err
	}
	fe := FieldErrors{}
	amt, ok := validate.Money(amount)
	if !ok || amt <= 0 || amt > apt.TotalAmount {
		fe["amount"] = fmt.Sprintf("Amount must be between $0.01 and $%.2f", apt.TotalAmount)
	}
	reason, ok = validate.Text(reason, 1000)
	if !ok || reason == "" {
		fe["reason"] = "Please tell us why you want a refund"
	}
	if err := fe.orNil(); err != nil {
		return domain.Refund{}, err
	}
	r := domain.Refund{
		ID:            newID(),
		AppointmentID: apt.ID,
		ClientID:      client.ID,
		ProviderID:    apt.ProviderID,
		Amount:        round2(amt),
		Reason:        reason,
		Status:        domain.RefundPending,
		RequestedAt:   s.Clock.stamp(),
		RefundMethod:  "original_payment",
	}
	if err := s.Refunds.Create(r); err != nil {
		return domain.Refund{}, err
	}
	return r, nil
}

// Process approves or rejects a pending refund. Approval marks the
// appointment refunded. The client is notified either way.
func (s *RefundService) Process(id string, approve bool, notes string) (domain.Refund, error) {
	r, err := s.Refunds.Get(id)
	if err != nil {
		return domain.Refund{}, notFound(err)
	}
	if r.Status != domain.RefundPending {
		return r, ErrRefundProcessed
	}
	status, def := domain.RefundRejected, "Refund rejected"
	if approve {
		status, def = domain.RefundApproved, "Refund approved"
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		notes = def
	}
	at := s.Clock.stamp()
	if err := s.Refunds.Process(id, status, notes, at); err != nil {
		if repos.IsNotFound(err) {
			return r, ErrRefundProcessed
		}
		return r, err
	}
	r.Status, r.AdminNotes, r.ProcessedAt = status, notes, at
	if approve {
		if err := s.Apts.SetPaymentStatus(r.AppointmentID, "", domain.PaymentRefunded, at); err != nil && !repos.IsNotFound(err) {
			return r, err
		}
	}
	s.Notes.Notify(r.ClientID, domain.NotifyPayment, refundTitle(status),
		fmt.Sprintf("Your refund request of $%.2f has been %s. %s", r.Amount, status, notes))
	return r, nil
}

func refundTitle(s domain.RefundStatus) string {
	if s == domain.RefundApproved {
		return "Refund Approved"
	}
	return "Refund Rejected"
}
