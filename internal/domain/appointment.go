package domain

import "time"

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Open reports whether the appointment still holds its slot.
func (s AppointmentStatus) Open() bool { return s == StatusPending || s == StatusConfirmed }

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type Appointment struct {
	ID               string            `db:"id" json:"id"`
	ClientID         string            `db:"client_id" json:"client_id"`
	ProviderID       string            `db:"provider_id" json:"provider_id"`
	ServiceID        string            `db:"service_id" json:"service_id"`
	AppointmentDate  string            `db:"appointment_date" json:"appointment_date"`
	Status           AppointmentStatus `db:"status" json:"status"`
	Notes            string            `db:"notes" json:"notes"`
	TotalAmount      float64           `db:"total_amount" json:"total_amount"`
	CommissionAmount float64           `db:"commission_amount" json:"commission_amount"`
	PromoCode        string            `db:"promo_code" json:"promo_code,omitempty"`
	PaymentStatus    PaymentStatus     `db:"payment_status" json:"payment_status"`
	CreatedAt        string            `db:"created_at" json:"created_at"`
	UpdatedAt        string            `db:"updated_at" json:"updated_at"`
}

// When parses AppointmentDate; an unparsable value yields the zero time.
func (a Appointment) When() time.Time { return ParseTime(a.AppointmentDate) }

// Earnings is what the provider keeps after platform commission.
func (a Appointment) Earnings() float64 { return a.TotalAmount - a.CommissionAmount }

// AppointmentView is an appointment joined with the names the pages show.
type AppointmentView struct {
	Appointment
	ClientName    string `db:"client_name" json:"client_name"`
	ClientEmail   string `db:"client_email" json:"client_email"`
	ClientPhone   string `db:"client_phone" json:"client_phone,omitempty"`
	ProviderName  string `db:"provider_name" json:"provider_name"`
	ServiceName   string `db:"service_name" json:"service_name"`
	CategoryID    string `db:"category_id" json:"category_id"`
	CategoryName  string `db:"category_name" json:"category_name"`
	ServiceLength int    `db:"service_duration" json:"service_duration"`
}
