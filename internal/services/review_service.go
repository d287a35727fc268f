package services

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"servicehub/internal/domain"
	"servicehub/internal/repos"
	"servicehub/internal/validate"
)

type ReviewService struct {
	Reviews *repos.ReviewRepo
	Apts    *repos.AppointmentRepo
	Notes   *NotificationService
	Clock   Clock
}

func NewReviewService(reviews *repos.ReviewRepo, apts *repos.AppointmentRepo, notes *NotificationService) *ReviewService {
	return &ReviewService{Reviews: reviews, Apts: apts, Notes: notes}
}

type ClientReviews struct {
	Reviews []domain.ReviewView      `json:"reviews"`
	Pending []domain.AppointmentView `json:"pending"`
}

// ForClient returns the client's reviews and completed appointments still
// waiting for one.
func (s *ReviewService) ForClient(clientID string) (ClientReviews, error) {
	reviews, err := s.Reviews.ByClient(clientID)
	if err != nil {
		return ClientReviews{}, err
	}
	done, err := s.Apts.List(repos.AppointmentFilter{
		ClientID: clientID,
		Statuses: []domain.AppointmentStatus{domain.StatusCompleted},
	})
	if err != nil {
		return ClientReviews{}, err
	}
	reviewed := lo.SliceToMap(reviews, func(r domain.ReviewView) (string, bool) { return r.AppointmentID, true })
	return ClientReviews{
		Reviews: reviews,
		Pending: lo.Reject(done, func(a domain.AppointmentView, _ int) bool { return reviewed[a.ID] }),
	}, nil
}

func (s *ReviewService) ForProvider(providerID string) ([]domain.ReviewView, error) {
	return s.Reviews.ByProvider(providerID)
}

func parseReview(rating, comment string) (int, string, error) {
	fe := FieldErrors{}
	n, ok := validate.Rating(rating)
	if !ok {
		fe["rating"] = "Rating must be between 1 and 5"
	}
	comment, ok = validate.Text(comment, 1000)
	if !ok {
		fe["comment"] = "Comment is too long"
	}
	return n, comment, fe.orNil()
}

// Create reviews a completed appointment the client owns, once.
func (s *ReviewService) Create(client *domain.User, appointmentID, rating, comment string) (domain.Review, error) {
	apt, err := s.Apts.GetView(appointmentID)
	if err != nil {
		return domain.Review{}, notFound(err)
	}
	if apt.ClientID != client.ID {
		return domain.Review{}, ErrForbidden
	}
	if apt.Status != domain.StatusCompleted {
		return domain.Review{}, ErrNotReviewable
	}
	exists, err := s.Reviews.ExistsForAppointment(apt.ID)
	if err != nil {
		return domain.Review{}, err
	}
	if exists {
		return domain.Review{}, ErrReviewExists
	}
	n, text, err := parseReview(rating, comment)
	if err != nil {
		return domain.Review{}, err
	}
	rv := domain.Review{
		ID:            newID(),
		ClientID:      client.ID,
		ProviderID:    apt.ProviderID,
		ServiceID:     apt.ServiceID,
		AppointmentID: apt.ID,
		Rating:        n,
		Comment:       text,
		CreatedAt:     s.Clock.stamp(),
	}
	if err := s.Reviews.Create(rv); err != nil {
		return domain.Review{}, err
	}
	s.Notes.Notify(apt.ProviderID, domain.NotifyReview, "New Review Received",
		fmt.Sprintf("%s left a %d-star review for your %s service", client.FullName, n, apt.ServiceName))
	return rv, nil
}

func (s *ReviewService) Update(client *domain.User, id, rating, comment string) (domain.Review, error) {
	rv, err := s.ownedReview(client, id)
	if err != nil {
		return rv, err
	}
	n, text, err := parseReview(rating, comment)
	if err != nil {
		return rv, err
	}
	rv.Rating, rv.Comment = n, strings.TrimSpace(text)
	return rv, notFound(s.Reviews.Update(id, n, rv.Comment))
}

func (s *ReviewService) Delete(client *domain.User, id string) error {
	if _, err := s.ownedReview(client, id); err != nil {
		return err
	}
	return notFound(s.Reviews.Delete(id))
}

func (s *ReviewService) ownedReview(client *domain.User, id string) (domain.Review, error) {
	rv, err := s.Reviews.Get(id)
	if err != nil {
		return rv, notFound(err)
	}
	if rv.ClientID != client.ID {
		return domain.Review{}, ErrForbidden
	}
	return rv, nil
}
