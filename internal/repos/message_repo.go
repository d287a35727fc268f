package repos

import (
	"github.com/jmoiron/sqlx"

	"servicehub/internal/domain"
)

type MessageRepo struct{ db *sqlx.DB }

func NewMessageRepo(db *sqlx.DB) *MessageRepo { return &MessageRepo{db: db} }

const messageCols = `id, sender_id, receiver_id, body, is_read, created_at`

// Involving returns every message sent or received by userID, oldest first.
func (r *MessageRepo) Involving(userID string) ([]domain.Message, error) {
	var out []domain.Message
	err := r.db.Select(&out, `SELECT `+messageCols+` FROM messages
	  WHERE sender_id=? OR receiver_id=? ORDER BY created_at, rowid`, userID, userID)
	return out, err
}

// Thread returns the conversation between two users, oldest first.
func (r *MessageRepo) Thread(a, b string) ([]domain.Message, error) {
	var out []domain.Message
	err := r.db.Select(&out, `SELECT `+messageCols+` FROM messages
	  WHERE (sender_id=? AND receiver_id=?) OR (sender_id=? AND receiver_id=?)
	  ORDER BY created_at, rowid`, a, b, b, a)
	return out, err
}

func (r *MessageRepo) Create(m domain.Message) error {
	_, err := r.db.Exec(`INSERT INTO messages(`+messageCols+`) VALUES(?,?,?,?,?,?)`,
		m.ID, m.SenderID, m.ReceiverID, m.Body, m.IsRead, m.CreatedAt)
	return err
}

// MarkThreadRead marks messages from sender to receiver as read.
func (r *MessageRepo) MarkThreadRead(receiverID, senderID string) error {
	_, err := r.db.Exec(`UPDATE messages SET is_read=1 WHERE receiver_id=? AND sender_id=? AND is_read=0`,
		receiverID, senderID)
	return err
}
