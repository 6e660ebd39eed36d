package worker

import (
	"context"
	"time"

	"sjsage522/filmwaiver/internal/store"
	"sjsage522/filmwaiver/logger"
	"sjsage522/filmwaiver/pkg/errors"
	"sjsage522/filmwaiver/services/publisher"
)

// DefaultRetryDelay is the pause before retrying a refresh that failed with
// a retryable error
const DefaultRetryDelay = 5 * time.Second

// Refresher is the part of the store the worker drives
type Refresher interface {
	Refresh(ctx context.Context) (store.Result, error)
}

// Worker keeps the snapshot warm by refreshing it on an interval and trims
// the published stream after every round
type Worker struct {
	refresher       Refresher
	publisher       publisher.Publisher
	refreshInterval time.Duration
	retryDelay      time.Duration
	log             *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(refresher Refresher, pub publisher.Publisher, refreshInterval time.Duration) *Worker {
	if pub == nil {
		pub = publisher.Nop{}
	}
	return &Worker{
		refresher:       refresher,
		publisher:       pub,
		refreshInterval: refreshInterval,
		retryDelay:      DefaultRetryDelay,
		log:             logger.ForWorker(),
	}
}

// Start refreshes immediately and then every interval until ctx is done
func (w *Worker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.refreshInterval).Msg("Refresh worker started")

	ticker := time.NewTicker(w.refreshInterval)
	defer ticker.Stop()

	for {
		w.runOnce(ctx)

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Refresh worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// runOnce refreshes the snapshot, retrying once on a retryable failure, and
// trims the stream
func (w *Worker) runOnce(ctx context.Context) {
	start := time.Now()
	res, err := w.refresher.Refresh(ctx)
	if err != nil && errors.IsRetryable(err) {
		w.log.Warn().Err(err).Dur("retry_in", w.retryDelay).Msg("Scheduled refresh failed, retrying")
		select {
		case <-ctx.Done():
		case <-time.After(w.retryDelay):
			res, err = w.refresher.Refresh(ctx)
		}
	}

	if err != nil {
		w.log.Error().Err(err).Dur("duration", time.Since(start)).Msg("Scheduled refresh failed")
	} else {
		w.log.Info().
			Str("origin", res.Origin).
			Int("records", len(res.Records)).
			Dur("duration", time.Since(start)).
			Msg("Scheduled refresh finished")
	}

	// Trim the stream after refreshing
	if err := w.publisher.TrimStreams(ctx); err != nil {
		w.log.Error().Err(err).Msg("Stream trimming failed")
	}
}
