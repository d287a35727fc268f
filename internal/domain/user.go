package domain

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleProvider Role = "provider"
	RoleClient   Role = "client"
)

// ParseRole returns the role named by s, falling back to client for anything
// unrecognised.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleProvider, RoleClient:
		return Role(s), true
	}
	return RoleClient, false
}

type User struct {
	ID         string `db:"id" json:"id"`
	Email      string `db:"email" json:"email"`
	FullName   string `db:"full_name" json:"full_name"`
	Phone      string `db:"phone" json:"phone,omitempty"`
	AvatarURL  string `db:"avatar_url" json:"avatar_url,omitempty"`
	Role       Role   `db:"role" json:"role"`
	IsApproved bool   `db:"is_approved" json:"is_approved"`
	Bio        string `db:"bio" json:"bio,omitempty"`
	Location   string `db:"location" json:"location,omitempty"`
	Website    string `db:"website" json:"website,omitempty"`
	Hash       string `db:"password_hash" json:"-"`
	CreatedAt  string `db:"created_at" json:"created_at"`
	UpdatedAt  string `db:"updated_at" json:"updated_at"`
}

func (u *User) Is(r Role) bool { return u != nil && u.Role == r }
