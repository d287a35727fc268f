package repos

import (
	"github.com/jmoiron/sqlx"

	"servicehub/internal/domain"
)

type RefundRepo struct{ db *sqlx.DB }

func NewRefundRepo(db *sqlx.DB) *RefundRepo { return &RefundRepo{db: db} }

const refundCols = `f.id, f.appointment_id, f.client_id, f.provider_id, f.amount, f.reason, f.status,
  f.requested_at, f.processed_at, f.admin_notes, f.refund_method`

const refundViewSelect = `
  SELECT ` + refundCols + `,
    COALESCE(cu.full_name,'') AS client_name,
    COALESCE(pu.full_name,'') AS provider_name,
    COALESCE(s.name,'') AS service_name,
    COALESCE(a.appointment_date,'') AS appointment_date,
    COALESCE(a.total_amount,0) AS appointment_total
  FROM refunds f
  LEFT JOIN appointments a ON a.id = f.appointment_id
  LEFT JOIN users cu ON cu.id = f.client_id
  LEFT JOIN users pu ON pu.id = f.provider_id
  LEFT JOIN services s ON s.id = a.service_id`

// RefundFilter narrows the refund list. Zero values match everything.
type RefundFilter struct {
	ClientID   string
	ProviderID string
	Status     domain.RefundStatus
	Q          string // client, provider, service or reason
}

func (r *RefundRepo) Get(id string) (domain.Refund, error) {
	var f domain.Refund
	err := r.db.Get(&f, `SELECT `+refundCols+` FROM refunds f WHERE f.id=?`, id)
	return f, err
}

func (r *RefundRepo) ByAppointment(appointmentID string) (domain.Refund, error) {
	var f domain.Refund
	err := r.db.Get(&f, `SELECT `+refundCols+` FROM refunds f WHERE f.appointment_id=?`, appointmentID)
	return f, err
}

// List returns refunds newest request first.
func (r *RefundRepo) List(fl RefundFilter) ([]domain.RefundView, error) {
	where := `1=1`
	args := []any{}
	if fl.ClientID != "" {
		where += ` AND f.client_id = ?`
		args = append(args, fl.ClientID)
	}
	if fl.ProviderID != "" {
		where += ` AND f.provider_id = ?`
		args = append(args, fl.ProviderID)
	}
	if fl.Status != "" {
		where += ` AND f.status = ?`
		args = append(args, fl.Status)
	}
	if fl.Q != "" {
		q := "%" + lower(fl.Q) + "%"
		where += ` AND (LOWER(COALESCE(cu.full_name,'')) LIKE ? OR LOWER(COALESCE(pu.full_name,'')) LIKE ?
		  OR LOWER(COALESCE(s.name,'')) LIKE ? OR LOWER(f.reason) LIKE ?)`
		args = append(args, q, q, q, q)
	}
	var out []domain.RefundView
	err := r.db.Select(&out, refundViewSelect+` WHERE `+where+` ORDER BY f.requested_at DESC, f.id`, args...)
	return out, err
}

func (r *RefundRepo) All() ([]domain.RefundView, error) { return r.List(RefundFilter{}) }

func (r *RefundRepo) Create(f domain.Refund) error {
	_, err := r.db.Exec(`
	  INSERT INTO refunds(id,appointment_id,client_id,provider_id,amount,reason,status,requested_at,refund_method)
	  VALUES(?,?,?,?,?,?,?,?,?)`,
		f.ID, f.AppointmentID, f.ClientID, f.ProviderID, f.Amount, f.Reason, f.Status, f.RequestedAt, f.RefundMethod)
	return err
}

// Process settles a pending refund; it fails with sql.ErrNoRows when the
// refund is missing or already processed.
func (r *RefundRepo) Process(id string, status domain.RefundStatus, notes, at string) error {
	return mustAffect(r.db.Exec(`
	  UPDATE refunds SET status=?, admin_notes=?, processed_at=?
	  WHERE id=? AND status='pending'`, status, notes, at, id))
}
