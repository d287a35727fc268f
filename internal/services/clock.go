package services

import (
	"time"

	"github.com/google/uuid"

	"servicehub/internal/domain"
	"servicehub/internal/repos"
)

// Clock lets tests pin the time services see.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

func (c Clock) stamp() string { return domain.Timestamp(c.now()) }

func newID() string { return uuid.NewString() }

// round2 rounds money to cents.
func round2(f float64) float64 {
	if f < 0 {
		return -round2(-f)
	}
	return float64(int64(f*100+0.5)) / 100
}

// notFound maps a missing row to ErrNotFound.
func notFound(err error) error {
	if repos.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}
