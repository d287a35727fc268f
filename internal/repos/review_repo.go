package repos

import (
	"github.com/jmoiron/sqlx"

	"servicehub/internal/domain"
)

type ReviewRepo struct{ db *sqlx.DB }

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

const reviewViewSelect = `
  SELECT r.id, r.client_id, r.provider_id, r.service_id, r.appointment_id, r.rating, r.comment, r.created_at,
    COALESCE(cu.full_name,'') AS client_name,
    COALESCE(pu.full_name,'') AS provider_name,
    COALESCE(s.name,'') AS service_name
  FROM reviews r
  LEFT JOIN users cu ON cu.id = r.client_id
  LEFT JOIN users pu ON pu.id = r.provider_id
  LEFT JOIN services s ON s.id = r.service_id`

func (r *ReviewRepo) Get(id string) (domain.Review, error) {
	var rv domain.Review
	err := r.db.Get(&rv, `SELECT id,client_id,provider_id,service_id,appointment_id,rating,comment,created_at FROM reviews WHERE id=?`, id)
	return rv, err
}

func (r *ReviewRepo) ByProvider(providerID string) ([]domain.ReviewView, error) {
	var out []domain.ReviewView
	err := r.db.Select(&out, reviewViewSelect+` WHERE r.provider_id = ? ORDER BY r.created_at DESC`, providerID)
	return out, err
}

func (r *ReviewRepo) ByClient(clientID string) ([]domain.ReviewView, error) {
	var out []domain.ReviewView
	err := r.db.Select(&out, reviewViewSelect+` WHERE r.client_id = ? ORDER BY r.created_at DESC`, clientID)
	return out, err
}

func (r *ReviewRepo) ExistsForAppointment(appointmentID string) (bool, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM reviews WHERE appointment_id=?`, appointmentID)
	return n > 0, err
}

func (r *ReviewRepo) Create(rv domain.Review) error {
	_, err := r.db.Exec(`
	  INSERT INTO reviews(id,client_id,provider_id,service_id,appointment_id,rating,comment,created_at)
	  VALUES(?,?,?,?,?,?,?,?)`,
		rv.ID, rv.ClientID, rv.ProviderID, rv.ServiceID, rv.AppointmentID, rv.Rating, rv.Comment, rv.CreatedAt)
	return err
}

func (r *ReviewRepo) Update(id string, rating int, comment string) error {
	return mustAffect(r.db.Exec(`UPDATE reviews SET rating=?, comment=? WHERE id=?`, rating, comment, id))
}

func (r *ReviewRepo) Delete(id string) error {
	return mustAffect(r.db.Exec(`DELETE FROM reviews WHERE id=?`, id))
}
