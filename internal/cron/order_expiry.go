package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/cartloom/cartloom-backend/internal/orders"
	"github.com/cartloom/cartloom-backend/pkg/enums"
	"github.com/cartloom/cartloom-backend/pkg/logger"
)

// OrderExpiryJob cancels orders that were never paid. Stock is only
// decremented on payment verification, so a pending order holds no
// inventory and cancellation restores nothing.
type OrderExpiryJob struct {
	repo orders.Repository
	ttl  time.Duration
	logg *logger.Logger
	now  func() time.Time
}

func NewOrderExpiryJob(repo orders.Repository, ttl time.Duration, logg *logger.Logger) *OrderExpiryJob {
	return &OrderExpiryJob{
		repo: repo,
		ttl:  ttl,
		logg: logg,
		now:  time.Now,
	}
}

func (j *OrderExpiryJob) Name() string { return "order-expiry" }

func (j *OrderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.ttl)
	stale, err := j.repo.FindPendingBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("listing stale pending orders: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	var errs error
	cancelled := 0
	for _, order := range stale {
		err := j.repo.UpdateFields(ctx, order.ID, map[string]any{
			"status": enums.OrderStatusCancelled,
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("cancelling order %s: %w", order.OrderNumber, err))
			continue
		}
		cancelled++
	}

	j.logg.Info(ctx, fmt.Sprintf("cancelled %d of %d expired pending orders", cancelled, len(stale)))
	return errs
}
