package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/cartloom/cartloom-backend/internal/cart"
	"github.com/cartloom/cartloom-backend/pkg/logger"
)

// CartCleanupJob deletes guest cart items idle past the configured
// window. Authenticated carts are keyed by user id and never touched.
type CartCleanupJob struct {
	repo    cart.Repository
	idleTTL time.Duration
	logg    *logger.Logger
	now     func() time.Time
}

func NewCartCleanupJob(repo cart.Repository, idleTTL time.Duration, logg *logger.Logger) *CartCleanupJob {
	return &CartCleanupJob{
		repo:    repo,
		idleTTL: idleTTL,
		logg:    logg,
		now:     time.Now,
	}
}

func (j *CartCleanupJob) Name() string { return "cart-cleanup" }

func (j *CartCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.idleTTL)
	deleted, err := j.repo.DeleteIdleGuestItems(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("deleting idle guest cart items: %w", err)
	}
	if deleted > 0 {
		j.logg.Info(ctx, fmt.Sprintf("removed %d idle guest cart items", deleted))
	}
	return nil
}
