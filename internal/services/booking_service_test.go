package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicehub/internal/domain"
	"servicehub/internal/services"
)

func TestQuote_PercentagePromo(t *testing.T) {
	e := newEnv(t)

	q, err := e.booking.Quote("service-1", " welcome20 ")
	require.NoError(t, err)
	assert.Equal(t, "WELCOME20", q.PromoCode)
	assert.Equal(t, 50.0, q.Price)
	assert.Equal(t, 10.0, q.Discount)
	assert.Equal(t, 40.0, q.Total)
	assert.Equal(t, 4.0, q.Commission)
}

func TestQuote_PromoRules(t *testing.T) {
	e := newEnv(t)

	q, err := e.booking.Quote("service-2", "RELAX10")
	require.NoError(t, err)
	assert.Equal(t, 70.0, q.Total)

	_, err = e.booking.Quote("service-1", "RELAX10")
	assert.ErrorIs(t, err, services.ErrPromoInvalid, "code of another provider")

	_, err = e.booking.Quote("service-1", "NOPE")
	assert.ErrorIs(t, err, services.ErrPromoInvalid)

	q, err = e.booking.Quote("service-5", "RELAX10")
	var minErr *services.MinAmountError
	require.ErrorAs(t, err, &minErr)
	assert.Equal(t, 50.0, minErr.Min)
	assert.Equal(t, 40.0, q.Total, "price without discount is still quoted")

	e.booking.Clock = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }
	_, err = e.booking.Quote("service-2", "RELAX10")
	assert.ErrorIs(t, err, services.ErrPromoInvalid, "expired code")
}

func TestQuote_PromoWindowAndActive(t *testing.T) {
	e := newEnv(t)
	at := func(ts time.Time) { e.booking.Clock = func() time.Time { return ts } }

	// RELAX10 runs 2024-02-01 through 2024-02-29.
	at(time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC))
	_, err := e.booking.Quote("service-2", "RELAX10")
	assert.ErrorIs(t, err, services.ErrPromoInvalid, "not started yet")

	at(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	_, err = e.booking.Quote("service-2", "RELAX10")
	assert.NoError(t, err, "first second of the start day")

	at(time.Date(2024, 2, 29, 23, 59, 59, 500_000_000, time.UTC))
	q, err := e.booking.Quote("service-2", "RELAX10")
	require.NoError(t, err, "last second of the end day")
	assert.Equal(t, 10.0, q.Discount)

	at(seedNow)
	require.NoError(t, e.promos.SetActive("promo-2", false))
	_, err = e.booking.Quote("service-2", "RELAX10")
	assert.ErrorIs(t, err, services.ErrPromoInvalid, "inactive code")
}

func TestBook_PromoEndDateFromForm(t *testing.T) {
	e := newEnv(t)
	f := services.PromotionForm{
		Code: "LASTDAY", DiscountType: "fixed", DiscountValue: "5",
		StartDate: "2024-02-01", EndDate: "2024-02-12", IsActive: true,
	}
	_, err := e.promoSvc.Save("provider-1", "", f)
	require.NoError(t, err)

	e.booking.Clock = func() time.Time { return time.Date(2024, 2, 12, 23, 59, 59, 0, time.UTC) }
	q, err := e.booking.Quote("service-1", "lastday")
	require.NoError(t, err)
	assert.Equal(t, 45.0, q.Total)

	e.booking.Clock = func() time.Time { return time.Date(2024, 2, 13, 0, 0, 0, 0, time.UTC) }
	_, err = e.booking.Quote("service-1", "lastday")
	assert.ErrorIs(t, err, services.ErrPromoInvalid)
}

func TestQuote_ExhaustedPromo(t *testing.T) {
	e := newEnv(t)
	p, err := e.promos.ByCode("RELAX10")
	require.NoError(t, err)
	p.MaxUses = p.UsedCount
	require.NoError(t, e.promos.Update(p))

	_, err = e.booking.Quote("service-2", "RELAX10")
	assert.ErrorIs(t, err, services.ErrPromoInvalid)
}

func TestSlots(t *testing.T) {
	e := newEnv(t)

	day, err := e.booking.Slots("provider-1", "2024-02-15")
	require.NoError(t, err)
	assert.False(t, day.Closed)
	require.Len(t, day.Slots, len(services.SlotTimes))
	for _, s := range day.Slots {
		assert.Equal(t, s.Time != "14:00", s.Available, s.Time)
	}

	sunday, err := e.booking.Slots("provider-1", "2024-02-18")
	require.NoError(t, err)
	assert.True(t, sunday.Closed)

	today, err := e.booking.Slots("provider-1", "2024-02-12")
	require.NoError(t, err)
	assert.True(t, today.Closed)

	_, err = e.booking.Slots("provider-1", "15/02/2024")
	var fe services.FieldErrors
	assert.ErrorAs(t, err, &fe)
}

func TestBook_PendingWithPromo(t *testing.T) {
	e := newEnv(t)
	client := e.user(t, "client-1")

	apt, err := e.booking.Book(client, services.BookForm{
		ServiceID: "service-1", Date: "2024-02-15", Time: "10:00", PromoCode: "welcome20", Notes: "window seat",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, apt.Status)
	assert.Equal(t, domain.PaymentUnpaid, apt.PaymentStatus)
	assert.Equal(t, "2024-02-15T10:00:00Z", apt.AppointmentDate)
	assert.Equal(t, 40.0, apt.TotalAmount)
	assert.Equal(t, 4.0, apt.CommissionAmount)
	assert.Equal(t, "WELCOME20", apt.PromoCode)

	p, err := e.promos.ByCode("WELCOME20")
	require.NoError(t, err)
	assert.Equal(t, 16, p.UsedCount)
	assert.Contains(t, e.titles(t, "provider-1"), "New Appointment Booked")

	_, err = e.booking.Book(client, services.BookForm{ServiceID: "service-1", Date: "2024-02-15", Time: "10:00"})
	assert.ErrorIs(t, err, services.ErrSlotUnavailable, "slot now held")

	_, err = e.booking.Book(client, services.BookForm{ServiceID: "service-7", Date: "2024-02-15", Time: "14:00"})
	assert.ErrorIs(t, err, services.ErrSlotUnavailable, "provider busy with apt-1")
}

func TestBook_Rejects(t *testing.T) {
	e := newEnv(t)

	_, err := e.booking.Book(e.user(t, "provider-2"), services.BookForm{ServiceID: "service-1", Date: "2024-02-15", Time: "10:00"})
	assert.ErrorIs(t, err, services.ErrForbidden)

	client := e.user(t, "client-1")
	_, err = e.booking.Book(client, services.BookForm{ServiceID: "service-1", Date: "2024-02-15", Time: "10:30"})
	var fe services.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "time")

	_, err = e.booking.Book(client, services.BookForm{ServiceID: "service-1", Date: "2024-02-18", Time: "10:00"})
	assert.ErrorIs(t, err, services.ErrSlotUnavailable, "sunday")

	_, err = e.booking.Book(client, services.BookForm{ServiceID: "missing", Date: "2024-02-15", Time: "10:00"})
	assert.ErrorIs(t, err, services.ErrNotFound)
}

type flakyProcessor struct {
	failures int32
	err      error
	calls    atomic.Int32
}

func (p *flakyProcessor) Charge(context.Context, string, float64) error {
	if p.calls.Add(1) <= p.failures {
		return p.err
	}
	return nil
}

func TestPay_RetriesTransientFailure(t *testing.T) {
	e := newEnv(t)
	proc := &flakyProcessor{failures: 1, err: services.ErrProcessorUnavailable}
	e.booking.Processor = proc
	client := e.user(t, "client-1")

	apt, err := e.booking.Pay(context.Background(), client, "apt-2")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, apt.PaymentStatus)
	assert.EqualValues(t, 2, proc.calls.Load())

	stored, err := e.apts.Get("apt-2")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)
	assert.Contains(t, e.titles(t, "provider-2"), "Payment Received")
	assert.Contains(t, e.titles(t, "client-1"), "Payment Successful")

	_, err = e.booking.Pay(context.Background(), client, "apt-2")
	assert.ErrorIs(t, err, services.ErrAlreadyPaid)
}

func TestPay_PermanentFailureIsNotRetried(t *testing.T) {
	e := newEnv(t)
	declined := errors.New("card declined")
	proc := &flakyProcessor{failures: 10, err: declined}
	e.booking.Processor = proc

	_, err := e.booking.Pay(context.Background(), e.user(t, "client-1"), "apt-2")
	assert.ErrorIs(t, err, declined)
	assert.EqualValues(t, 1, proc.calls.Load())

	stored, err := e.apts.Get("apt-2")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentUnpaid, stored.PaymentStatus)
}

func TestPay_Guards(t *testing.T) {
	e := newEnv(t)

	_, err := e.booking.Pay(context.Background(), e.user(t, "client-2"), "apt-2")
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = e.booking.Pay(context.Background(), e.user(t, "client-1"), "apt-6")
	assert.ErrorIs(t, err, services.ErrNotPayable)
}

func TestSimulatedProcessor_HonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := services.SimulatedProcessor{Delay: time.Hour}.Charge(ctx, "pi_x", 10)
	assert.ErrorIs(t, err, context.Canceled)

	assert.NoError(t, services.SimulatedProcessor{Delay: time.Millisecond}.Charge(context.Background(), "pi_x", 10))
}

func TestView_ReviewsAndRating(t *testing.T) {
	e := newEnv(t)

	v, err := e.booking.View("service-1")
	require.NoError(t, err)
	assert.Equal(t, "provider-1", v.Provider.ID)
	assert.Equal(t, 1, v.ReviewCount)
	assert.Equal(t, 5.0, v.AverageRating)
	assert.Equal(t, "John Doe", v.Reviews[0].ClientName)
	assert.Equal(t, 5.0, v.Quote.Commission)
}
