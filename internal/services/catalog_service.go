package services

import (
	"strings"

	"github.com/samber/lo"

	"servicehub/internal/domain"
	"servicehub/internal/repos"
	"servicehub/internal/validate"
)

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Svcs  *repos.ServiceRepo
	Clock Clock
}

func NewCatalogService(cats *repos.CategoryRepo, svcs *repos.ServiceRepo) *CatalogService {
	return &CatalogService{Cats: cats, Svcs: svcs}
}

type CategoryStats struct {
	Total         int `json:"total"`
	TotalServices int `json:"total_services"`
	InUse         int `json:"in_use"`
}

type ServiceStats struct {
	Total        int     `json:"total"`
	Active       int     `json:"active"`
	Inactive     int     `json:"inactive"`
	AveragePrice float64 `json:"average_price"`
}

// ServiceForm is the provider's create/edit form.
type ServiceForm struct {
	Name        string
	Description string
	Price       string
	Duration    string
	CategoryID  string
	IsActive    bool
}

func (s *CatalogService) ListCategories() ([]domain.Category, error) {
	return s.Cats.List()
}

func (s *CatalogService) CategoriesWithCounts(q string) ([]repos.CategoryRow, CategoryStats, error) {
	rows, err := s.Cats.ListWithCounts(q)
	if err != nil {
		return nil, CategoryStats{}, err
	}
	all := rows
	if q != "" {
		if all, err = s.Cats.ListWithCounts(""); err != nil {
			return nil, CategoryStats{}, err
		}
	}
	stats := CategoryStats{
		Total:         len(all),
		TotalServices: lo.SumBy(all, func(c repos.CategoryRow) int { return c.ServiceCount }),
		InUse:         lo.CountBy(all, func(c repos.CategoryRow) bool { return c.ServiceCount > 0 }),
	}
	return rows, stats, nil
}

func (s *CatalogService) SaveCategory(id, name, description, icon string) (domain.Category, error) {
	name, ok := validate.Name(name)
	if !ok {
		return domain.Category{}, FieldErrors{"name": "Category name is required"}
	}
	taken, err := s.Cats.NameTaken(name, id)
	if err != nil {
		return domain.Category{}, err
	}
	if taken {
		return domain.Category{}, ErrCategoryExists
	}
	c := domain.Category{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(description),
		Icon:        strings.TrimSpace(icon),
	}
	if id == "" {
		c.ID = newID()
		c.CreatedAt = s.Clock.stamp()
		return c, s.Cats.Create(c)
	}
	return c, notFound(s.Cats.Update(c))
}

// DeleteCategory refuses while any service is filed under the category.
func (s *CatalogService) DeleteCategory(id string) error {
	n, err := s.Cats.ServiceCount(id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCategoryInUse
	}
	return notFound(s.Cats.Delete(id))
}

func (s *CatalogService) Search(f repos.ServiceFilter) ([]repos.ServiceRow, error) {
	return s.Svcs.Search(f)
}

func (s *CatalogService) GetService(id string) (repos.ServiceRow, error) {
	row, err := s.Svcs.GetRow(id)
	return row, notFound(err)
}

func ServiceStatsOf(rows []repos.ServiceRow) ServiceStats {
	st := ServiceStats{Total: len(rows)}
	st.Active = lo.CountBy(rows, func(r repos.ServiceRow) bool { return r.IsActive })
	st.Inactive = st.Total - st.Active
	if st.Total > 0 {
		st.AveragePrice = round2(lo.SumBy(rows, func(r repos.ServiceRow) float64 { return r.Price }) / float64(st.Total))
	}
	return st
}

func (f ServiceForm) parse() (domain.Service, FieldErrors) {
	fe := FieldErrors{}
	var svc domain.Service
	var ok bool
	if svc.Name, ok = validate.Name(f.Name); !ok {
		fe["name"] = "Service name is required"
	}
	if svc.Description, ok = validate.Text(f.Description, 1000); !ok {
		fe["description"] = "Description is too long"
	}
	if svc.Price, ok = validate.Money(f.Price); !ok || svc.Price <= 0 {
		fe["price"] = "Price must be greater than zero"
	}
	if svc.Duration, ok = validate.Int(f.Duration); !ok || svc.Duration <= 0 {
		fe["duration"] = "Duration must be greater than zero"
	}
	if svc.CategoryID, ok = validate.ID(f.CategoryID); !ok {
		fe["category_id"] = "Please select a category"
	}
	svc.IsActive = f.IsActive
	return svc, fe
}

// CreateService adds a service owned by providerID.
func (s *CatalogService) CreateService(providerID string, form ServiceForm) (domain.Service, error) {
	svc, fe := form.parse()
	if len(fe) == 0 {
		if _, err := s.Cats.Get(svc.CategoryID); err != nil {
			if !repos.IsNotFound(err) {
				return domain.Service{}, err
			}
			fe["category_id"] = "Please select a category"
		}
	}
	if err := fe.orNil(); err != nil {
		return domain.Service{}, err
	}
	now := s.Clock.stamp()
	svc.ID = newID()
	svc.ProviderID = providerID
	svc.CreatedAt, svc.UpdatedAt = now, now
	return svc, s.Svcs.Create(svc)
}

// UpdateService edits a service the provider owns.
func (s *CatalogService) UpdateService(providerID, id string, form ServiceForm) (domain.Service, error) {
	cur, err := s.owned(providerID, id)
	if err != nil {
		return domain.Service{}, err
	}
	next, fe := form.parse()
	if err := fe.orNil(); err != nil {
		return domain.Service{}, err
	}
	next.ID = cur.ID
	next.ProviderID = cur.ProviderID
	next.ImageURL = cur.ImageURL
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = s.Clock.stamp()
	return next, notFound(s.Svcs.Update(next))
}

// ToggleService flips is_active. A provider may only toggle their own
// services; admins may toggle any.
func (s *CatalogService) ToggleService(actor *domain.User, id string) (domain.Service, error) {
	cur, err := s.authorized(actor, id)
	if err != nil {
		return domain.Service{}, err
	}
	cur.IsActive = !cur.IsActive
	return cur, notFound(s.Svcs.SetActive(id, cur.IsActive, s.Clock.stamp()))
}

func (s *CatalogService) DeleteService(actor *domain.User, id string) error {
	if _, err := s.authorized(actor, id); err != nil {
		return err
	}
	return notFound(s.Svcs.Delete(id))
}

func (s *CatalogService) authorized(actor *domain.User, id string) (domain.Service, error) {
	if actor.Is(domain.RoleAdmin) {
		svc, err := s.Svcs.Get(id)
		return svc, notFound(err)
	}
	return s.owned(actor.ID, id)
}

func (s *CatalogService) owned(providerID, id string) (domain.Service, error) {
	svc, err := s.Svcs.Get(id)
	if err != nil {
		return domain.Service{}, notFound(err)
	}
	if svc.ProviderID != providerID {
		return domain.Service{}, ErrForbidden
	}
	return svc, nil
}
