package services

import (
	"context"
	"errors"
	"time"
)

// ErrProcessorUnavailable marks a charge failure worth retrying.
var ErrProcessorUnavailable = errors.New("payment processor unavailable")

// PaymentProcessor charges a client for an appointment.
type PaymentProcessor interface {
	Charge(ctx context.Context, ref string, amount float64) error
}

// SimulatedProcessor stands in for a gateway: it waits Delay and succeeds.
type SimulatedProcessor struct {
	Delay time.Duration
}

func (p SimulatedProcessor) Charge(ctx context.Context, _ string, _ float64) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
