package services

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"servicehub/internal/domain"
	"servicehub/internal/repos"
	"servicehub/internal/validate"
)

type AuthService struct {
	Users *repos.UserRepo
	Clock Clock
}

func NewAuthService(users *repos.UserRepo) *AuthService {
	return &AuthService{Users: users}
}

// SignUp registers a provider or client. Clients can log in right away;
// providers wait for an admin.
func (s *AuthService) SignUp(email, password, fullName string, role domain.Role) (*domain.User, error) {
	fe := FieldErrors{}
	email, ok := validate.Email(email)
	if !ok {
		fe["email"] = "Please enter a valid email address"
	}
	if !validate.Password(password) {
		fe["password"] = "Password must be at least 6 characters"
	}
	name, ok := validate.Name(fullName)
	if !ok {
		fe["full_name"] = "Full name is required"
	}
	if role != domain.RoleProvider && role != domain.RoleClient {
		fe["role"] = "Choose provider or client"
	}
	if err := fe.orNil(); err != nil {
		return nil, err
	}
	taken, err := s.Users.EmailTaken(email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUserExists
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), repos.HashCost)
	if err != nil {
		return nil, err
	}
	now := s.Clock.stamp()
	u := &domain.User{
		ID:         newID(),
		Email:      email,
		FullName:   name,
		Role:       role,
		IsApproved: role == domain.RoleClient,
		Hash:       string(h),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(strings.TrimSpace(email))
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if !u.IsApproved {
		return u, ErrNotApproved
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}
