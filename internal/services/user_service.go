package services

import (
	"crypto/rand"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"

	"servicehub/internal/domain"
	"servicehub/internal/repos"
	"servicehub/internal/validate"
)

// CSVHeader is the column order used for export and the sample file.
var CSVHeader = []string{"full_name", "email", "phone", "role", "is_approved", "location", "bio"}

const sampleCSV = `full_name,email,phone,role,is_approved,location,bio
John Sample,john.sample@example.org,+1234567890,client,true,New York,Sample client user
Jane Smith,jane.smith@example.org,+1234567891,provider,false,Los Angeles,Professional hair stylist
Admin User,admin.user@example.org,+1234567892,admin,true,San Francisco,System administrator
`

const passwordCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*"

type UserService struct {
	Users *repos.UserRepo
	Notes *NotificationService
	Clock Clock
}

func NewUserService(users *repos.UserRepo, notes *NotificationService) *UserService {
	return &UserService{Users: users, Notes: notes}
}

// UserStats summarises the user base for the admin pages.
type UserStats struct {
	Total            int `json:"total"`
	Admins           int `json:"admins"`
	Providers        int `json:"providers"`
	Clients          int `json:"clients"`
	PendingProviders int `json:"pending_providers"`
}

// UserForm is the admin create-user form.
type UserForm struct {
	FullName   string
	Email      string
	Password   string
	Role       string
	Phone      string
	Location   string
	Bio        string
	IsApproved bool
}

// ProfileForm holds the fields a user may change about themselves.
type ProfileForm struct {
	FullName string
	Email    string
	Phone    string
	Bio      string
	Location string
	Website  string
}

// ImportResult counts what happened to each CSV data row.
type ImportResult struct {
	Imported []domain.User `json:"imported"`
	Skipped  int           `json:"skipped_duplicates"`
	Invalid  int           `json:"invalid"`
}

func (s *UserService) List(f repos.UserFilter) ([]domain.User, error) {
	return s.Users.List(f)
}

func (s *UserService) Get(id string) (*domain.User, error) {
	u, err := s.Users.ByID(id)
	return u, notFound(err)
}

func (s *UserService) Stats() (UserStats, error) {
	counts, pending, err := s.Users.RoleCounts()
	if err != nil {
		return UserStats{}, err
	}
	return UserStats{
		Total:            counts[domain.RoleAdmin] + counts[domain.RoleProvider] + counts[domain.RoleClient],
		Admins:           counts[domain.RoleAdmin],
		Providers:        counts[domain.RoleProvider],
		Clients:          counts[domain.RoleClient],
		PendingProviders: pending,
	}, nil
}

// Validate checks a create form and returns its normalised copy.
func (f UserForm) Validate() (UserForm, FieldErrors) {
	fe := FieldErrors{}
	var ok bool
	if f.FullName, ok = validate.Name(f.FullName); !ok {
		fe["full_name"] = "Full name is required"
	}
	if strings.TrimSpace(f.Email) == "" {
		fe["email"] = "Email is required"
	} else if f.Email, ok = validate.Email(f.Email); !ok {
		fe["email"] = "Please enter a valid email address"
	}
	if f.Password == "" {
		fe["password"] = "Password is required"
	} else if !validate.Password(f.Password) {
		fe["password"] = "Password must be at least 6 characters"
	}
	if strings.TrimSpace(f.Role) == "" {
		fe["role"] = "Role is required"
	} else if f.Role, ok = validate.Role(f.Role); !ok {
		fe["role"] = "Please select a valid role"
	}
	if f.Phone, ok = validate.Phone(f.Phone); !ok {
		fe["phone"] = "Please enter a valid phone number"
	}
	f.Location = strings.TrimSpace(f.Location)
	f.Bio = strings.TrimSpace(f.Bio)
	return f, fe
}

func (s *UserService) Create(form UserForm) (*domain.User, error) {
	form, fe := form.Validate()
	if err := fe.orNil(); err != nil {
		return nil, err
	}
	taken, err := s.Users.EmailTaken(form.Email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, FieldErrors{"email": ErrUserExists.Error()}
	}
	return s.insert(form)
}

func (s *UserService) insert(form UserForm) (*domain.User, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(form.Password), repos.HashCost)
	if err != nil {
		return nil, err
	}
	now := s.Clock.stamp()
	u := &domain.User{
		ID:         newID(),
		Email:      form.Email,
		FullName:   form.FullName,
		Phone:      form.Phone,
		Role:       domain.Role(form.Role),
		IsApproved: form.IsApproved,
		Location:   form.Location,
		Bio:        form.Bio,
		Hash:       string(h),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Approve(id string) error {
	if err := notFound(s.Users.SetApproved(id, true, s.Clock.stamp())); err != nil {
		return err
	}
	if s.Notes != nil {
		s.Notes.Notify(id, domain.NotifySystem, "Account Approved",
			"Your account has been approved. You can now sign in.")
	}
	return nil
}

func (s *UserService) Suspend(id string) error {
	return notFound(s.Users.SetApproved(id, false, s.Clock.stamp()))
}

// Delete removes a user; admins cannot delete themselves.
func (s *UserService) Delete(actorID, id string) error {
	if actorID == id {
		return ErrForbidden
	}
	return notFound(s.Users.DeleteUserCascade(id))
}

// SetPassword replaces a user's password after validating it.
func (s *UserService) SetPassword(id, password string) error {
	if !validate.Password(password) {
		return FieldErrors{"password": "Password must be at least 6 characters"}
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), repos.HashCost)
	if err != nil {
		return err
	}
	return notFound(s.Users.SetPasswordHash(id, string(h), s.Clock.stamp()))
}

// GeneratePassword returns a random 12 character password.
func GeneratePassword() (string, error) {
	const length = 12
	max := big.NewInt(int64(len(passwordCharset)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = passwordCharset[n.Int64()]
	}
	return string(b), nil
}

// UpdateProfile applies a user's own edits.
func (s *UserService) UpdateProfile(u *domain.User, form ProfileForm) (*domain.User, error) {
	fe := FieldErrors{}
	name, ok := validate.Name(form.FullName)
	if !ok {
		fe["full_name"] = "Full name is required"
	}
	email, ok := validate.Email(form.Email)
	if !ok {
		fe["email"] = "Please enter a valid email address"
	}
	phone, ok := validate.Phone(form.Phone)
	if !ok {
		fe["phone"] = "Please enter a valid phone number"
	}
	bio, ok := validate.Text(form.Bio, 500)
	if !ok {
		fe["bio"] = "Bio is too long"
	}
	if err := fe.orNil(); err != nil {
		return nil, err
	}
	if !strings.EqualFold(email, u.Email) {
		taken, err := s.Users.EmailTaken(email, u.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, FieldErrors{"email": ErrUserExists.Error()}
		}
	}
	next := *u
	next.FullName = name
	next.Email = email
	next.Phone = phone
	next.Bio = bio
	next.Location = strings.TrimSpace(form.Location)
	next.Website = strings.TrimSpace(form.Website)
	next.UpdatedAt = s.Clock.stamp()
	if err := s.Users.UpdateProfile(&next); err != nil {
		return nil, err
	}
	return &next, nil
}

// ImportCSV creates users from CSV rows. The first record is the header;
// columns are matched by name and unknown ones are ignored. Every imported
// user gets a generated password.
func (s *UserService) ImportCSV(r io.Reader) (ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return ImportResult{}, FieldErrors{"file": "CSV file is empty"}
	}
	if err != nil {
		return ImportResult{}, fmt.Errorf("read csv header: %w", err)
	}
	cols := lo.Map(header, func(h string, _ int) string {
		return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	})

	var res ImportResult
	seen := map[string]bool{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read csv: %w", err)
		}
		form := rowToForm(cols, rec)
		if form.FullName == "" || form.Email == "" {
			res.Invalid++
			continue
		}
		email, ok := validate.Email(form.Email)
		if !ok {
			res.Invalid++
			continue
		}
		form.Email = email
		if seen[email] {
			res.Skipped++
			continue
		}
		seen[email] = true
		taken, err := s.Users.EmailTaken(email, "")
		if err != nil {
			return res, err
		}
		if taken {
			res.Skipped++
			continue
		}
		if form.Phone, ok = validate.Phone(form.Phone); !ok {
			form.Phone = ""
		}
		if form.Password, err = GeneratePassword(); err != nil {
			return res, err
		}
		u, err := s.insert(form)
		if err != nil {
			return res, err
		}
		res.Imported = append(res.Imported, *u)
	}
	return res, nil
}

func rowToForm(cols, rec []string) UserForm {
	var f UserForm
	f.Role = string(domain.RoleClient)
	for i, col := range cols {
		if i >= len(rec) {
			break
		}
		v := strings.TrimSpace(rec[i])
		switch col {
		case "full_name", "name":
			f.FullName = v
		case "email":
			f.Email = v
		case "phone":
			f.Phone = v
		case "role":
			if r, ok := validate.Role(v); ok {
				f.Role = r
			}
		case "is_approved", "approved":
			f.IsApproved = strings.EqualFold(v, "true") || v == "1"
		case "bio":
			f.Bio = v
		case "location":
			f.Location = v
		}
	}
	return f
}

// ExportCSV writes every user, newest first, with CSVHeader columns.
func (s *UserService) ExportCSV(w io.Writer) error {
	users, err := s.Users.List(repos.UserFilter{})
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, u := range users {
		if err := cw.Write([]string{
			u.FullName, u.Email, u.Phone, string(u.Role),
			strconv.FormatBool(u.IsApproved), u.Location, u.Bio,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func SampleCSV() string { return sampleCSV }
