package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicehub/internal/domain"
	"servicehub/internal/services"
)

func springForm() services.PromotionForm {
	return services.PromotionForm{
		Code: "spring10", Description: "Spring sale", DiscountType: "percentage", DiscountValue: "10",
		MinAmount: "20", MaxUses: "0", StartDate: "2024-03-01", EndDate: "2024-03-31", IsActive: true,
	}
}

func TestPromotionSave(t *testing.T) {
	e := newEnv(t)

	p, err := e.promoSvc.Save("provider-1", "", springForm())
	require.NoError(t, err)
	assert.Equal(t, "SPRING10", p.Code)
	assert.Equal(t, domain.DiscountPercentage, p.DiscountType)
	assert.Equal(t, "2024-03-01T00:00:00Z", p.StartDate)
	assert.Equal(t, "2024-03-31T23:59:59Z", p.EndDate, "end date covers the whole day")

	list, err := e.promoSvc.List("provider-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	dup := springForm()
	dup.Code = "welcome20"
	_, err = e.promoSvc.Save("provider-2", "", dup)
	var fe services.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "code")

	f := springForm()
	f.Description = "Longer spring sale"
	f.EndDate = "2024-04-15"
	upd, err := e.promoSvc.Save("provider-1", p.ID, f)
	require.NoError(t, err, "saving under its own code is fine")
	assert.Equal(t, "Longer spring sale", upd.Description)

	_, err = e.promoSvc.Save("provider-2", p.ID, f)
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestPromotionForm_Validation(t *testing.T) {
	e := newEnv(t)

	f := springForm()
	f.Code = "x"
	f.DiscountValue = "150"
	f.EndDate = "2024-02-01"
	_, err := e.promoSvc.Save("provider-1", "", f)
	var fe services.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "code")
	assert.Contains(t, fe, "discount_value")
	assert.Contains(t, fe, "end_date")

	f = springForm()
	f.DiscountType = "bogo"
	_, err = e.promoSvc.Save("provider-1", "", f)
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "discount_type")

	f = springForm()
	f.DiscountType = "fixed"
	f.DiscountValue = "150"
	_, err = e.promoSvc.Save("provider-1", "", f)
	assert.NoError(t, err, "fixed amounts have no upper bound")
}

func TestPromotionToggleDelete(t *testing.T) {
	e := newEnv(t)

	_, err := e.promoSvc.Toggle("provider-2", "promo-1")
	assert.ErrorIs(t, err, services.ErrForbidden)

	p, err := e.promoSvc.Toggle("provider-1", "promo-1")
	require.NoError(t, err)
	assert.False(t, p.IsActive)

	_, err = e.booking.Quote("service-1", "WELCOME20")
	assert.ErrorIs(t, err, services.ErrPromoInvalid, "inactive code")

	require.NoError(t, e.promoSvc.Delete("provider-1", "promo-1"))
	assert.ErrorIs(t, e.promoSvc.Delete("provider-1", "promo-1"), services.ErrNotFound)
}

func TestPromotionDiscount(t *testing.T) {
	pct := domain.Promotion{DiscountType: domain.DiscountPercentage, DiscountValue: 25}
	assert.Equal(t, 20.0, pct.Discount(80))

	fixed := domain.Promotion{DiscountType: domain.DiscountFixed, DiscountValue: 100}
	assert.Equal(t, 40.0, fixed.Discount(40), "capped at price")
}
