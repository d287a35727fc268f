package domain

type RefundStatus string

const (
	RefundPending  RefundStatus = "pending"
	RefundApproved RefundStatus = "approved"
	RefundRejected RefundStatus = "rejected"
)

type Refund struct {
	ID            string       `db:"id" json:"id"`
	AppointmentID string       `db:"appointment_id" json:"appointment_id"`
	ClientID      string       `db:"client_id" json:"client_id"`
	ProviderID    string       `db:"provider_id" json:"provider_id"`
	Amount        float64      `db:"amount" json:"amount"`
	Reason        string       `db:"reason" json:"reason"`
	Status        RefundStatus `db:"status" json:"status"`
	RequestedAt   string       `db:"requested_at" json:"requested_at"`
	ProcessedAt   string       `db:"processed_at" json:"processed_at,omitempty"`
	AdminNotes    string       `db:"admin_notes" json:"admin_notes,omitempty"`
	RefundMethod  string       `db:"refund_method" json:"refund_method"`
}

type RefundView struct {
	Refund
	ClientName      string  `db:"client_name" json:"client_name"`
	ProviderName    string  `db:"provider_name" json:"provider_name"`
	ServiceName     string  `db:"service_name" json:"service_name"`
	AppointmentDate string  `db:"appointment_date" json:"appointment_date"`
	AppointmentPaid float64 `db:"appointment_total" json:"appointment_total"`
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type Promotion struct {
	ID            string       `db:"id" json:"id"`
	ProviderID    string       `db:"provider_id" json:"provider_id"`
	Code          string       `db:"code" json:"code"`
	Description   string       `db:"description" json:"description"`
	DiscountType  DiscountType `db:"discount_type" json:"discount_type"`
	DiscountValue float64      `db:"discount_value" json:"discount_value"`
	MinAmount     float64      `db:"min_amount" json:"min_amount"`
	MaxUses       int          `db:"max_uses" json:"max_uses"` // 0 means unlimited
	UsedCount     int          `db:"used_count" json:"used_count"`
	StartDate     string       `db:"start_date" json:"start_date"`
	EndDate       string       `db:"end_date" json:"end_date"`
	IsActive      bool         `db:"is_active" json:"is_active"`
	CreatedAt     string       `db:"created_at" json:"created_at"`
}

// Discount returns the amount taken off price, never more than price.
func (p Promotion) Discount(price float64) float64 {
	d := p.DiscountValue
	if p.DiscountType == DiscountPercentage {
		d = price * p.DiscountValue / 100
	}
	if d > price {
		d = price
	}
	if d < 0 {
		d = 0
	}
	return d
}

// Invoice is derived from a completed appointment; it is never stored.
type Invoice struct {
	ID               string        `json:"id"`
	AppointmentID    string        `json:"appointment_id"`
	ProviderID       string        `json:"provider_id"`
	ClientID         string        `json:"client_id"`
	ServiceID        string        `json:"service_id"`
	Amount           float64       `json:"amount"`
	CommissionAmount float64       `json:"commission_amount"`
	GrossAmount      float64       `json:"gross_amount"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	PaymentRef       string        `json:"payment_ref"`
	CreatedAt        string        `json:"created_at"`
	PaidAt           string        `json:"paid_at"`
	ClientName       string        `json:"client_name"`
	ProviderName     string        `json:"provider_name"`
	ServiceName      string        `json:"service_name"`
}
