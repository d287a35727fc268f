package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrBadCreds          = errors.New("invalid email or password")
	ErrNotApproved       = errors.New("account is awaiting approval")
	ErrUserExists        = errors.New("an account with this email already exists")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("not allowed")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("status change not allowed")
	ErrTooEarly          = errors.New("appointment has not taken place yet")
	ErrSlotUnavailable   = errors.New("time slot is not available")
	ErrAlreadyPaid       = errors.New("appointment is already paid")
	ErrNotPayable        = errors.New("appointment cannot be paid")
	ErrPromoInvalid      = errors.New("invalid or expired promo code")
	ErrCodeTaken         = errors.New("promo code already exists")
	ErrCategoryExists    = errors.New("category already exists")
	ErrCategoryInUse     = errors.New("category still has services")
	ErrRefundExists      = errors.New("a refund was already requested for this appointment")
	ErrRefundIneligible  = errors.New("appointment is not eligible for a refund")
	ErrRefundProcessed   = errors.New("refund was already processed")
	ErrReviewExists      = errors.New("appointment was already reviewed")
	ErrNotReviewable     = errors.New("only completed appointments can be reviewed")
)

// MinAmountError reports a promo code whose minimum order was not reached.
type MinAmountError struct {
	Min float64
}

func (e *MinAmountError) Error() string {
	return fmt.Sprintf("minimum amount of $%.2f required", e.Min)
}

// FieldErrors maps form field names to user-facing messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

// orNil returns nil for an empty set so callers can `return fe.orNil()`.
func (e FieldErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
