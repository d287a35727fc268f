package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"servicehub/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

var userCols = userColsOf("")

// userColsOf builds the user select list, qualified with alias when set.
func userColsOf(alias string) string {
	a := ""
	if alias != "" {
		a = alias + "."
	}
	return a + `id, ` + a + `email, ` + a + `full_name, COALESCE(` + a + `phone,'') AS phone, COALESCE(` + a + `avatar_url,'') AS avatar_url, ` +
		a + `role, ` + a + `is_approved, COALESCE(` + a + `bio,'') AS bio, COALESCE(` + a + `location,'') AS location, ` +
		`COALESCE(` + a + `website,'') AS website, ` + a + `password_hash, ` + a + `created_at, ` + a + `updated_at`
}

// UserFilter narrows the admin user list. Zero values match everything.
type UserFilter struct {
	Q      string
	Role   domain.Role
	Status string // approved|pending
}

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailTaken reports whether another user already owns email.
func (r *UserRepo) EmailTaken(email, exceptID string) (bool, error) {
	var n int
	err := r.DB.Get(&n, `SELECT COUNT(*) FROM users WHERE LOWER(email)=LOWER(?) AND id<>?`, email, exceptID)
	return n > 0, err
}

// List returns users newest first.
func (r *UserRepo) List(f UserFilter) ([]domain.User, error) {
	where := `1=1`
	args := []any{}
	if f.Q != "" {
		where += ` AND (LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?)`
		q := "%" + lower(f.Q) + "%"
		args = append(args, q, q)
	}
	if f.Role != "" {
		where += ` AND role = ?`
		args = append(args, f.Role)
	}
	switch f.Status {
	case "approved":
		where += ` AND is_approved = 1`
	case "pending":
		where += ` AND is_approved = 0`
	}
	var out []domain.User
	err := r.DB.Select(&out, `SELECT `+userCols+` FROM users WHERE `+where+` ORDER BY created_at DESC, id`, args...)
	return out, err
}

func (r *UserRepo) ByRole(role domain.Role) ([]domain.User, error) {
	return r.List(UserFilter{Role: role})
}

func (r *UserRepo) Create(u *domain.User) error {
	_, err := r.DB.Exec(`
	  INSERT INTO users(id,email,full_name,phone,avatar_url,role,is_approved,bio,location,website,password_hash,created_at,updated_at)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		u.ID, u.Email, u.FullName, nullable(u.Phone), nullable(u.AvatarURL), u.Role, u.IsApproved,
		nullable(u.Bio), nullable(u.Location), nullable(u.Website), u.Hash, u.CreatedAt, u.UpdatedAt)
	return err
}

// UpdateProfile writes the self-editable fields.
func (r *UserRepo) UpdateProfile(u *domain.User) error {
	_, err := r.DB.Exec(`
	  UPDATE users SET email=?, full_name=?, phone=?, bio=?, location=?, website=?, updated_at=?
	  WHERE id=?`,
		u.Email, u.FullName, nullable(u.Phone), nullable(u.Bio), nullable(u.Location), nullable(u.Website), u.UpdatedAt, u.ID)
	return err
}

func (r *UserRepo) SetApproved(id string, approved bool, at string) error {
	return mustAffect(r.DB.Exec(`UPDATE users SET is_approved=?, updated_at=? WHERE id=?`, approved, at, id))
}

func (r *UserRepo) SetPasswordHash(id, hash, at string) error {
	return mustAffect(r.DB.Exec(`UPDATE users SET password_hash=?, updated_at=? WHERE id=?`, hash, at, id))
}

// RoleCounts returns the number of users per role plus unapproved providers.
func (r *UserRepo) RoleCounts() (map[domain.Role]int, int, error) {
	var rows []struct {
		Role domain.Role `db:"role"`
		N    int         `db:"n"`
	}
	if err := r.DB.Select(&rows, `SELECT role, COUNT(*) AS n FROM users GROUP BY role`); err != nil {
		return nil, 0, err
	}
	out := map[domain.Role]int{}
	for _, x := range rows {
		out[x.Role] = x.N
	}
	var pending int
	err := r.DB.Get(&pending, `SELECT COUNT(*) FROM users WHERE role='provider' AND is_approved=0`)
	return out, pending, err
}

func (r *UserRepo) BindSession(sid, userID string) error {
	_, err := r.DB.Exec(`INSERT INTO sessions(id,user_id,last_seen)
                          VALUES(?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=CURRENT_TIMESTAMP`, sid, userID)
	return err
}

func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
      SELECT `+userColsOf("u")+`
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`, sid)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(`UPDATE sessions SET user_id=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

// DeleteUserCascade removes a user with their sessions, favorites and
// notifications. Appointments, reviews and refunds are kept for the record;
// a provider's services are deactivated.
func (r *UserRepo) DeleteUserCascade(userID string) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM sessions WHERE user_id=?`,
		`DELETE FROM favorites WHERE client_id=?`,
		`DELETE FROM notifications WHERE user_id=?`,
		`UPDATE services SET is_active=0 WHERE provider_id=?`,
	} {
		if _, err := tx.Exec(q, userID); err != nil {
			return err
		}
	}
	res, err := tx.Exec(`DELETE FROM users WHERE id=?`, userID)
	if err := mustAffect(res, err); err != nil {
		return err
	}
	return tx.Commit()
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool { return errors.Is(err, sql.ErrNoRows) }
