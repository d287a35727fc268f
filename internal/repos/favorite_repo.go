package repos

import (
	"github.com/jmoiron/sqlx"

	"servicehub/internal/domain"
)

type FavoriteRepo struct{ db *sqlx.DB }

func NewFavoriteRepo(db *sqlx.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

// FavoriteRow is a favorite joined with the service it points at.
type FavoriteRow struct {
	domain.Favorite
	ServiceName  string  `db:"service_name" json:"service_name"`
	Description  string  `db:"description" json:"description"`
	Price        float64 `db:"price" json:"price"`
	Duration     int     `db:"duration" json:"duration"`
	IsActive     bool    `db:"is_active" json:"is_active"`
	ProviderID   string  `db:"provider_id" json:"provider_id"`
	ProviderName string  `db:"provider_name" json:"provider_name"`
	CategoryID   string  `db:"category_id" json:"category_id"`
	CategoryName string  `db:"category_name" json:"category_name"`
}

func (r *FavoriteRepo) Find(clientID, serviceID string) (domain.Favorite, error) {
	var f domain.Favorite
	err := r.db.Get(&f, `SELECT id,client_id,service_id,created_at FROM favorites WHERE client_id=? AND service_id=?`,
		clientID, serviceID)
	return f, err
}

func (r *FavoriteRepo) Add(f domain.Favorite) error {
	_, err := r.db.Exec(`
	  INSERT INTO favorites(id, client_id, service_id, created_at)
	  VALUES(?, ?, ?, ?)
	  ON CONFLICT(client_id, service_id) DO NOTHING
	`, f.ID, f.ClientID, f.ServiceID, f.CreatedAt)
	return err
}

func (r *FavoriteRepo) Remove(clientID, serviceID string) error {
	return mustAffect(r.db.Exec(`DELETE FROM favorites WHERE client_id=? AND service_id=?`, clientID, serviceID))
}

// List returns a client's favorites newest first.
func (r *FavoriteRepo) List(clientID string) ([]FavoriteRow, error) {
	var out []FavoriteRow
	err := r.db.Select(&out, `
	  SELECT f.id, f.client_id, f.service_id, f.created_at,
	    s.name AS service_name, s.description, s.price, s.duration, s.is_active, s.provider_id,
	    COALESCE(u.full_name,'') AS provider_name,
	    s.category_id, COALESCE(c.name,'') AS category_name
	  FROM favorites f
	  JOIN services s ON s.id = f.service_id
	  LEFT JOIN users u ON u.id = s.provider_id
	  LEFT JOIN categories c ON c.id = s.category_id
	  WHERE f.client_id = ?
	  ORDER BY f.created_at DESC
	`, clientID)
	return out, err
}
