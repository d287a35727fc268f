package services

import (
	"strings"
	"time"

	"servicehub/internal/domain"
	"servicehub/internal/repos"
	"servicehub/internal/validate"
)

type PromotionService struct {
	Promos *repos.PromotionRepo
	Clock  Clock
}

func NewPromotionService(promos *repos.PromotionRepo) *PromotionService {
	return &PromotionService{Promos: promos}
}

type PromotionForm struct {
	Code          string
	Description   string
	DiscountType  string
	DiscountValue string
	MinAmount     string
	MaxUses       string
	StartDate     string // YYYY-MM-DD
	EndDate       string // YYYY-MM-DD
	IsActive      bool
}

func (s *PromotionService) List(providerID string) ([]domain.Promotion, error) {
	return s.Promos.ByProvider(providerID)
}

func (f PromotionForm) parse() (domain.Promotion, FieldErrors) {
	fe := FieldErrors{}
	var p domain.Promotion
	var ok bool
	if p.Code, ok = validate.Code(f.Code); !ok {
		fe["code"] = "Code must be 3-20 letters, digits, dashes or underscores"
	}
	p.Description, _ = validate.Text(f.Description, 200)
	p.DiscountType = domain.DiscountType(strings.ToLower(strings.TrimSpace(f.DiscountType)))
	if p.DiscountType != domain.DiscountPercentage && p.DiscountType != domain.DiscountFixed {
		fe["discount_type"] = "Choose percentage or fixed"
	}
	if p.DiscountValue, ok = validate.Money(f.DiscountValue); !ok || p.DiscountValue <= 0 {
		fe["discount_value"] = "Discount must be greater than zero"
	} else if p.DiscountType == domain.DiscountPercentage && p.DiscountValue > 100 {
		fe["discount_value"] = "Percentage cannot exceed 100"
	}
	if strings.TrimSpace(f.MinAmount) != "" {
		if p.MinAmount, ok = validate.Money(f.MinAmount); !ok {
			fe["min_amount"] = "Minimum amount must be zero or more"
		}
	}
	if strings.TrimSpace(f.MaxUses) != "" {
		if p.MaxUses, ok = validate.Int(f.MaxUses); !ok {
			fe["max_uses"] = "Max uses must be zero (unlimited) or more"
		}
	}
	start, okStart := validate.Date(f.StartDate)
	end, okEnd := validate.Date(f.EndDate)
	if !okStart {
		fe["start_date"] = "Start date is required"
	}
	if !okEnd {
		fe["end_date"] = "End date is required"
	}
	if okStart && okEnd && end.Before(start) {
		fe["end_date"] = "End date must be on or after the start date"
	}
	p.StartDate = domain.Timestamp(start)
	// The end date is inclusive of its whole day.
	p.EndDate = domain.Timestamp(end.AddDate(0, 0, 1).Add(-time.Second))
	p.IsActive = f.IsActive
	return p, fe
}

// Save creates (id empty) or updates one of the provider's promotions.
func (s *PromotionService) Save(providerID, id string, form PromotionForm) (domain.Promotion, error) {
	p, fe := form.parse()
	if err := fe.orNil(); err != nil {
		return domain.Promotion{}, err
	}
	taken, err := s.Promos.CodeTaken(p.Code, id)
	if err != nil {
		return domain.Promotion{}, err
	}
	if taken {
		return domain.Promotion{}, FieldErrors{"code": ErrCodeTaken.Error()}
	}
	if id == "" {
		p.ID = newID()
		p.ProviderID = providerID
		p.CreatedAt = s.Clock.stamp()
		return p, s.Promos.Create(p)
	}
	cur, err := s.owned(providerID, id)
	if err != nil {
		return domain.Promotion{}, err
	}
	p.ID, p.ProviderID, p.UsedCount, p.CreatedAt = cur.ID, cur.ProviderID, cur.UsedCount, cur.CreatedAt
	return p, notFound(s.Promos.Update(p))
}

func (s *PromotionService) Toggle(providerID, id string) (domain.Promotion, error) {
	p, err := s.owned(providerID, id)
	if err != nil {
		return p, err
	}
	p.IsActive = !p.IsActive
	return p, notFound(s.Promos.SetActive(id, p.IsActive))
}

func (s *PromotionService) Delete(providerID, id string) error {
	if _, err := s.owned(providerID, id); err != nil {
		return err
	}
	return notFound(s.Promos.Delete(id))
}

func (s *PromotionService) owned(providerID, id string) (domain.Promotion, error) {
	p, err := s.Promos.Get(id)
	if err != nil {
		return p, notFound(err)
	}
	if p.ProviderID != providerID {
		return domain.Promotion{}, ErrForbidden
	}
	return p, nil
}
