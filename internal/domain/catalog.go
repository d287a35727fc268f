package domain

type Category struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Icon        string `db:"icon" json:"icon"`
	CreatedAt   string `db:"created_at" json:"created_at"`
}

type Service struct {
	ID          string  `db:"id" json:"id"`
	ProviderID  string  `db:"provider_id" json:"provider_id"`
	CategoryID  string  `db:"category_id" json:"category_id"`
	Name        string  `db:"name" json:"name"`
	Description string  `db:"description" json:"description"`
	Price       float64 `db:"price" json:"price"`
	Duration    int     `db:"duration" json:"duration"` // minutes
	ImageURL    string  `db:"image_url" json:"image_url"`
	IsActive    bool    `db:"is_active" json:"is_active"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	UpdatedAt   string  `db:"updated_at" json:"updated_at"`
}

type Favorite struct {
	ID        string `db:"id" json:"id"`
	ClientID  string `db:"client_id" json:"client_id"`
	ServiceID string `db:"service_id" json:"service_id"`
	CreatedAt string `db:"created_at" json:"created_at"`
}
