package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mfbrokers/internal/mfapi"
	"mfbrokers/internal/repository"
)

const (
	// maxRetries bounds how often a failed sync is retried after the
	// initial attempt.
	maxRetries = 3
	// DefaultRetryDelay is the fixed backoff between failed sync attempts.
	DefaultRetryDelay = 60 * time.Second
)

// PriceSyncWorker periodically refreshes stored current prices from the
// upstream fund API. It runs fully decoupled from request handling and
// holds no lock across the API call; the bulk update opens only after the
// response has arrived.
type PriceSyncWorker struct {
	investments repository.InvestmentRepository
	fundAPI     mfapi.ClientInterface
	interval    time.Duration
	retryDelay  time.Duration
	logger      *zap.Logger
}

// NewPriceSyncWorker creates a new price sync worker.
func NewPriceSyncWorker(
	investments repository.InvestmentRepository,
	fundAPI mfapi.ClientInterface,
	interval time.Duration,
	retryDelay time.Duration,
	logger *zap.Logger,
) *PriceSyncWorker {
	return &PriceSyncWorker{
		investments: investments,
		fundAPI:     fundAPI,
		interval:    interval,
		retryDelay:  retryDelay,
		logger:      logger,
	}
}

// Run blocks until ctx is cancelled, executing one sync per interval tick.
func (w *PriceSyncWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce executes a sync: one initial attempt plus up to maxRetries
// retries with fixed backoff. Exhaustion is logged and swallowed: this is
// a detached background job with no caller waiting on it.
func (w *PriceSyncWorker) RunOnce(ctx context.Context) {
	logger := w.logger.With(zap.String("run_id", uuid.New().String()))

	maxAttempts := 1 + maxRetries
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		updated, err := w.sync(ctx)
		if err == nil {
			logger.Info("price sync complete", zap.Int64("rows_updated", updated))
			return
		}
		logger.Warn("price sync attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retryDelay):
		}
	}
	logger.Error("price sync gave up", zap.Int("attempts", maxAttempts))
}

// sync performs one refresh: collect held scheme codes, fetch their latest
// NAVs in a single batch call, apply one conditional bulk update. An empty
// code set short-circuits with zero external calls and zero writes.
func (w *PriceSyncWorker) sync(ctx context.Context) (int64, error) {
	codes, err := w.investments.DistinctSchemeCodes(ctx)
	if err != nil {
		return 0, fmt.Errorf("collect scheme codes: %w", err)
	}
	if len(codes) == 0 {
		return 0, nil
	}

	schemes, err := w.fundAPI.SchemesByCodes(ctx, codes)
	if err != nil {
		return 0, fmt.Errorf("fetch latest prices: %w", err)
	}

	// Schemes absent from the response are simply not in the map: their
	// holdings keep the stale price rather than being nulled.
	prices := make(map[int]decimal.Decimal, len(schemes))
	for i := range schemes {
		prices[schemes[i].SchemeCode] = schemes[i].NAV()
	}
	if len(prices) == 0 {
		return 0, nil
	}

	updated, err := w.investments.BulkUpdateCurrentPrices(ctx, prices)
	if err != nil {
		return 0, fmt.Errorf("apply price update: %w", err)
	}
	return updated, nil
}
