package repos

import (
	"github.com/jmoiron/sqlx"

	"servicehub/internal/domain"
)

type AppointmentRepo struct{ db *sqlx.DB }

func NewAppointmentRepo(db *sqlx.DB) *AppointmentRepo { return &AppointmentRepo{db: db} }

// AppointmentFilter narrows appointment listings. Zero values match everything.
type AppointmentFilter struct {
	ClientID   string
	ProviderID string
	Statuses   []domain.AppointmentStatus
	Q          string // client, provider or service name
	From, To   string // appointment_date bounds, RFC3339, inclusive/exclusive
}

const appointmentCols = `a.id, a.client_id, a.provider_id, a.service_id, a.appointment_date, a.status,
  a.notes, a.total_amount, a.commission_amount, a.promo_code, a.payment_status, a.created_at, a.updated_at`

const appointmentViewSelect = `
  SELECT ` + appointmentCols + `,
    COALESCE(cu.full_name,'') AS client_name,
    COALESCE(cu.email,'') AS client_email,
    COALESCE(cu.phone,'') AS client_phone,
    COALESCE(pu.full_name,'') AS provider_name,
    COALESCE(s.name,'') AS service_name,
    COALESCE(s.duration,0) AS service_duration,
    COALESCE(s.category_id,'') AS category_id,
    COALESCE(c.name,'') AS category_name
  FROM appointments a
  LEFT JOIN users cu ON cu.id = a.client_id
  LEFT JOIN users pu ON pu.id = a.provider_id
  LEFT JOIN services s ON s.id = a.service_id
  LEFT JOIN categories c ON c.id = s.category_id`

func (r *AppointmentRepo) Create(a domain.Appointment) error {
	return insertAppointment(r.db, a)
}

// CreateRedeeming inserts a and counts one use of promotion promoID in the
// same transaction. An exhausted promotion yields sql.ErrNoRows and nothing
// is written.
func (r *AppointmentRepo) CreateRedeeming(a domain.Appointment, promoID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := insertAppointment(tx, a); err != nil {
		return err
	}
	if err := redeemPromotion(tx, promoID); err != nil {
		return err
	}
	return tx.Commit()
}

func insertAppointment(ex sqlx.Execer, a domain.Appointment) error {
	_, err := ex.Exec(`
	  INSERT INTO appointments
	    (id, client_id, provider_id, service_id, appointment_date, status, notes,
	     total_amount, commission_amount, promo_code, payment_status, created_at, updated_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.ClientID, a.ProviderID, a.ServiceID, a.AppointmentDate, a.Status, a.Notes,
		a.TotalAmount, a.CommissionAmount, a.PromoCode, a.PaymentStatus, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *AppointmentRepo) Get(id string) (domain.Appointment, error) {
	var a domain.Appointment
	err := r.db.Get(&a, `SELECT `+appointmentCols+` FROM appointments a WHERE a.id = ?`, id)
	return a, err
}

func (r *AppointmentRepo) GetView(id string) (domain.AppointmentView, error) {
	var a domain.AppointmentView
	err := r.db.Get(&a, appointmentViewSelect+` WHERE a.id = ?`, id)
	return a, err
}

// List returns matching appointments, latest appointment date first.
func (r *AppointmentRepo) List(f AppointmentFilter) ([]domain.AppointmentView, error) {
	where := `1=1`
	args := []any{}
	if f.ClientID != "" {
		where += ` AND a.client_id = ?`
		args = append(args, f.ClientID)
	}
	if f.ProviderID != "" {
		where += ` AND a.provider_id = ?`
		args = append(args, f.ProviderID)
	}
	if len(f.Statuses) > 0 {
		q, a, err := sqlx.In(` AND a.status IN (?)`, f.Statuses)
		if err != nil {
			return nil, err
		}
		where += q
		args = append(args, a...)
	}
	if f.Q != "" {
		q := "%" + lower(f.Q) + "%"
		where += ` AND (LOWER(COALESCE(cu.full_name,'')) LIKE ? OR LOWER(COALESCE(pu.full_name,'')) LIKE ? OR LOWER(COALESCE(s.name,'')) LIKE ?)`
		args = append(args, q, q, q)
	}
	if f.From != "" {
		where += ` AND a.appointment_date >= ?`
		args = append(args, f.From)
	}
	if f.To != "" {
		where += ` AND a.appointment_date < ?`
		args = append(args, f.To)
	}
	var out []domain.AppointmentView
	err := r.db.Select(&out, appointmentViewSelect+` WHERE `+where+` ORDER BY a.appointment_date DESC, a.id`, args...)
	return out, err
}

func (r *AppointmentRepo) ByClient(clientID string) ([]domain.AppointmentView, error) {
	return r.List(AppointmentFilter{ClientID: clientID})
}

func (r *AppointmentRepo) ByProvider(providerID string) ([]domain.AppointmentView, error) {
	return r.List(AppointmentFilter{ProviderID: providerID})
}

func (r *AppointmentRepo) Completed() ([]domain.AppointmentView, error) {
	return r.List(AppointmentFilter{Statuses: []domain.AppointmentStatus{domain.StatusCompleted}})
}

// HeldSlots returns appointment dates in [from, to) still holding a
// provider's time.
func (r *AppointmentRepo) HeldSlots(providerID, from, to string) ([]string, error) {
	var out []string
	err := r.db.Select(&out, `
	  SELECT appointment_date FROM appointments
	  WHERE provider_id = ? AND status IN ('pending','confirmed')
	    AND appointment_date >= ? AND appointment_date < ?`, providerID, from, to)
	return out, err
}

// UpdateStatus moves an appointment from one status to another; it fails
// with sql.ErrNoRows when the current status is not from.
func (r *AppointmentRepo) UpdateStatus(id string, from, to domain.AppointmentStatus, at string) error {
	return mustAffect(r.db.Exec(`UPDATE appointments SET status=?, updated_at=? WHERE id=? AND status=?`,
		to, at, id, from))
}

// SetPaymentStatus changes the payment status only when it currently is
// from; an empty from matches any status.
func (r *AppointmentRepo) SetPaymentStatus(id string, from, to domain.PaymentStatus, at string) error {
	return mustAffect(r.db.Exec(`UPDATE appointments SET payment_status=?, updated_at=?
	  WHERE id=? AND (?='' OR payment_status=?)`, to, at, id, from, from))
}
