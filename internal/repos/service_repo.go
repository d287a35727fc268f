package repos

import (
	"github.com/jmoiron/sqlx"

	"servicehub/internal/domain"
)

type ServiceRepo struct{ db *sqlx.DB }

func NewServiceRepo(db *sqlx.DB) *ServiceRepo { return &ServiceRepo{db: db} }

// ServiceRow is a service joined with provider and category names.
type ServiceRow struct {
	domain.Service
	ProviderName  string `db:"provider_name" json:"provider_name"`
	CategoryName  string `db:"category_name" json:"category_name"`
	ProviderEmail string `db:"provider_email" json:"provider_email"`
}

// ServiceFilter narrows a service search. Active nil means both states.
type ServiceFilter struct {
	Q          string
	CategoryID string
	ProviderID string
	Active     *bool
}

const serviceCols = `s.id, s.provider_id, s.category_id, s.name, s.description, s.price, s.duration,
  s.image_url, s.is_active, s.created_at, s.updated_at`

const serviceRowSelect = `
  SELECT ` + serviceCols + `,
    COALESCE(u.full_name,'') AS provider_name,
    COALESCE(u.email,'') AS provider_email,
    COALESCE(c.name,'') AS category_name
  FROM services s
  LEFT JOIN users u ON u.id = s.provider_id
  LEFT JOIN categories c ON c.id = s.category_id`

func (r *ServiceRepo) Get(id string) (domain.Service, error) {
	var s domain.Service
	err := r.db.Get(&s, `SELECT `+serviceCols+` FROM services s WHERE s.id = ?`, id)
	return s, err
}

func (r *ServiceRepo) GetRow(id string) (ServiceRow, error) {
	var s ServiceRow
	err := r.db.Get(&s, serviceRowSelect+` WHERE s.id = ?`, id)
	return s, err
}

// Search matches q against name, description and provider name.
func (r *ServiceRepo) Search(f ServiceFilter) ([]ServiceRow, error) {
	where := `1=1`
	args := []any{}
	if f.Q != "" {
		q := "%" + lower(f.Q) + "%"
		where += ` AND (LOWER(s.name) LIKE ? OR LOWER(s.description) LIKE ? OR LOWER(COALESCE(u.full_name,'')) LIKE ?)`
		args = append(args, q, q, q)
	}
	if f.CategoryID != "" {
		where += ` AND s.category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.ProviderID != "" {
		where += ` AND s.provider_id = ?`
		args = append(args, f.ProviderID)
	}
	if f.Active != nil {
		where += ` AND s.is_active = ?`
		args = append(args, *f.Active)
	}
	var out []ServiceRow
	err := r.db.Select(&out, serviceRowSelect+` WHERE `+where+` ORDER BY s.created_at DESC, s.id`, args...)
	return out, err
}

func (r *ServiceRepo) ByProvider(providerID string) ([]ServiceRow, error) {
	return r.Search(ServiceFilter{ProviderID: providerID})
}

func (r *ServiceRepo) Create(s domain.Service) error {
	_, err := r.db.Exec(`
	  INSERT INTO services(id,provider_id,category_id,name,description,price,duration,image_url,is_active,created_at,updated_at)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		s.ID, s.ProviderID, s.CategoryID, s.Name, s.Description, s.Price, s.Duration,
		orDefault(s.ImageURL, "/static/service.svg"), s.IsActive, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *ServiceRepo) Update(s domain.Service) error {
	return mustAffect(r.db.Exec(`
	  UPDATE services SET category_id=?, name=?, description=?, price=?, duration=?, is_active=?, updated_at=?
	  WHERE id=?`,
		s.CategoryID, s.Name, s.Description, s.Price, s.Duration, s.IsActive, s.UpdatedAt, s.ID))
}

func (r *ServiceRepo) SetActive(id string, active bool, at string) error {
	return mustAffect(r.db.Exec(`UPDATE services SET is_active=?, updated_at=? WHERE id=?`, active, at, id))
}

func (r *ServiceRepo) Delete(id string) error {
	return mustAffect(r.db.Exec(`DELETE FROM services WHERE id=?`, id))
}
