package domain

type Review struct {
	ID            string `db:"id" json:"id"`
	ClientID      string `db:"client_id" json:"client_id"`
	ProviderID    string `db:"provider_id" json:"provider_id"`
	ServiceID     string `db:"service_id" json:"service_id"`
	AppointmentID string `db:"appointment_id" json:"appointment_id"`
	Rating        int    `db:"rating" json:"rating"`
	Comment       string `db:"comment" json:"comment"`
	CreatedAt     string `db:"created_at" json:"created_at"`
}

type ReviewView struct {
	Review
	ClientName   string `db:"client_name" json:"client_name"`
	ProviderName string `db:"provider_name" json:"provider_name"`
	ServiceName  string `db:"service_name" json:"service_name"`
}

type NotificationType string

const (
	NotifyAppointment NotificationType = "appointment"
	NotifyPayment     NotificationType = "payment"
	NotifyReview      NotificationType = "review"
	NotifyReminder    NotificationType = "reminder"
	NotifyPromotion   NotificationType = "promotion"
	NotifyReport      NotificationType = "report"
	NotifySystem      NotificationType = "system"
)

type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Type      NotificationType `db:"type" json:"type"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	CreatedAt string           `db:"created_at" json:"created_at"`
}

type Message struct {
	ID         string `db:"id" json:"id"`
	SenderID   string `db:"sender_id" json:"sender_id"`
	ReceiverID string `db:"receiver_id" json:"receiver_id"`
	Body       string `db:"body" json:"message"`
	IsRead     bool   `db:"is_read" json:"is_read"`
	CreatedAt  string `db:"created_at" json:"created_at"`
}
