package repos

import (
	"github.com/jmoiron/sqlx"

	"servicehub/internal/domain"
)

type PromotionRepo struct{ db *sqlx.DB }

func NewPromotionRepo(db *sqlx.DB) *PromotionRepo { return &PromotionRepo{db: db} }

const promotionCols = `id, provider_id, code, description, discount_type, discount_value, min_amount,
  max_uses, used_count, start_date, end_date, is_active, created_at`

func (r *PromotionRepo) Get(id string) (domain.Promotion, error) {
	var p domain.Promotion
	err := r.db.Get(&p, `SELECT `+promotionCols+` FROM promotions WHERE id=?`, id)
	return p, err
}

// ByCode looks a code up case-insensitively.
func (r *PromotionRepo) ByCode(code string) (domain.Promotion, error) {
	var p domain.Promotion
	err := r.db.Get(&p, `SELECT `+promotionCols+` FROM promotions WHERE UPPER(code)=UPPER(?)`, code)
	return p, err
}

func (r *PromotionRepo) ByProvider(providerID string) ([]domain.Promotion, error) {
	var out []domain.Promotion
	err := r.db.Select(&out, `SELECT `+promotionCols+` FROM promotions WHERE provider_id=? ORDER BY created_at DESC`, providerID)
	return out, err
}

func (r *PromotionRepo) CodeTaken(code, exceptID string) (bool, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM promotions WHERE UPPER(code)=UPPER(?) AND id<>?`, code, exceptID)
	return n > 0, err
}

func (r *PromotionRepo) Create(p domain.Promotion) error {
	_, err := r.db.Exec(`
	  INSERT INTO promotions(id,provider_id,code,description,discount_type,discount_value,min_amount,
	    max_uses,used_count,start_date,end_date,is_active,created_at)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.ProviderID, p.Code, p.Description, p.DiscountType, p.DiscountValue, p.MinAmount,
		p.MaxUses, p.UsedCount, p.StartDate, p.EndDate, p.IsActive, p.CreatedAt)
	return err
}

func (r *PromotionRepo) Update(p domain.Promotion) error {
	return mustAffect(r.db.Exec(`
	  UPDATE promotions SET code=?, description=?, discount_type=?, discount_value=?, min_amount=?,
	    max_uses=?, start_date=?, end_date=?, is_active=?
	  WHERE id=?`,
		p.Code, p.Description, p.DiscountType, p.DiscountValue, p.MinAmount,
		p.MaxUses, p.StartDate, p.EndDate, p.IsActive, p.ID))
}

func (r *PromotionRepo) SetActive(id string, active bool) error {
	return mustAffect(r.db.Exec(`UPDATE promotions SET is_active=? WHERE id=?`, active, id))
}

// redeemPromotion counts one redemption while uses remain.
func redeemPromotion(ex sqlx.Execer, id string) error {
	return mustAffect(ex.Exec(`
	  UPDATE promotions SET used_count = used_count + 1
	  WHERE id=? AND (max_uses = 0 OR used_count < max_uses)`, id))
}

func (r *PromotionRepo) Delete(id string) error {
	return mustAffect(r.db.Exec(`DELETE FROM promotions WHERE id=?`, id))
}
