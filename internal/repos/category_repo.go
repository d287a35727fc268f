package repos

import (
	"github.com/jmoiron/sqlx"

	"servicehub/internal/domain"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// CategoryRow is a category with the number of services filed under it.
type CategoryRow struct {
	domain.Category
	ServiceCount int `db:"service_count" json:"service_count"`
}

func (r *CategoryRepo) List() ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.Select(&out, `SELECT id,name,description,icon,created_at FROM categories ORDER BY name`)
	return out, err
}

func (r *CategoryRepo) ListWithCounts(q string) ([]CategoryRow, error) {
	var out []CategoryRow
	err := r.db.Select(&out, `
	  SELECT c.id, c.name, c.description, c.icon, c.created_at, COUNT(s.id) AS service_count
	  FROM categories c
	  LEFT JOIN services s ON s.category_id = c.id
	  WHERE (? = '' OR LOWER(c.name) LIKE ?)
	  GROUP BY c.id
	  ORDER BY c.name`, q, "%"+lower(q)+"%")
	return out, err
}

func (r *CategoryRepo) Get(id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.Get(&c, `SELECT id,name,description,icon,created_at FROM categories WHERE id=?`, id)
	return c, err
}

// NameTaken reports whether another category already uses name.
func (r *CategoryRepo) NameTaken(name, exceptID string) (bool, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM categories WHERE LOWER(name)=LOWER(?) AND id<>?`, name, exceptID)
	return n > 0, err
}

func (r *CategoryRepo) Create(c domain.Category) error {
	_, err := r.db.Exec(`INSERT INTO categories(id,name,description,icon,created_at) VALUES(?,?,?,?,?)`,
		c.ID, c.Name, c.Description, c.Icon, c.CreatedAt)
	return err
}

func (r *CategoryRepo) Update(c domain.Category) error {
	return mustAffect(r.db.Exec(`UPDATE categories SET name=?, description=?, icon=? WHERE id=?`,
		c.Name, c.Description, c.Icon, c.ID))
}

func (r *CategoryRepo) ServiceCount(id string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM services WHERE category_id=?`, id)
	return n, err
}

func (r *CategoryRepo) Delete(id string) error {
	return mustAffect(r.db.Exec(`DELETE FROM categories WHERE id=?`, id))
}
