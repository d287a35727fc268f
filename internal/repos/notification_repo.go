package repos

import (
	"github.com/jmoiron/sqlx"

	"servicehub/internal/domain"
)

type NotificationRepo struct{ db *sqlx.DB }

func NewNotificationRepo(db *sqlx.DB) *NotificationRepo { return &NotificationRepo{db: db} }

const notificationCols = `id, user_id, title, message, type, is_read, created_at`

// ByUser returns a user's notifications newest first, optionally limited
// to one type and to unread ones.
func (r *NotificationRepo) ByUser(userID string, typ domain.NotificationType, unreadOnly bool) ([]domain.Notification, error) {
	var out []domain.Notification
	err := r.db.Select(&out, `
	  SELECT `+notificationCols+` FROM notifications
	  WHERE user_id=? AND (?='' OR type=?) AND (?=0 OR is_read=0)
	  ORDER BY created_at DESC, id`, userID, typ, typ, unreadOnly)
	return out, err
}

func (r *NotificationRepo) Create(n domain.Notification) error {
	_, err := r.db.Exec(`INSERT INTO notifications(`+notificationCols+`) VALUES(?,?,?,?,?,?,?)`,
		n.ID, n.UserID, n.Title, n.Message, n.Type, n.IsRead, n.CreatedAt)
	return err
}

func (r *NotificationRepo) MarkRead(userID, id string) error {
	return mustAffect(r.db.Exec(`UPDATE notifications SET is_read=1 WHERE id=? AND user_id=?`, id, userID))
}

func (r *NotificationRepo) MarkAllRead(userID string) (int64, error) {
	res, err := r.db.Exec(`UPDATE notifications SET is_read=1 WHERE user_id=? AND is_read=0`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *NotificationRepo) Delete(userID, id string) error {
	return mustAffect(r.db.Exec(`DELETE FROM notifications WHERE id=? AND user_id=?`, id, userID))
}

func (r *NotificationRepo) UnreadCount(userID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM notifications WHERE user_id=? AND is_read=0`, userID)
	return n, err
}
