package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/cinefind/moviesearch/internal/core/domain"
	"github.com/cinefind/moviesearch/internal/core/ports"
)

// Housekeeper periodically deletes reset tokens that are consumed, or expired
// for longer than domain.ResetTokenRetention.
type Housekeeper struct {
	store    ports.Store
	log      zerolog.Logger
	interval time.Duration
	now      func() time.Time

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewHousekeeper defaults interval to one hour.
func NewHousekeeper(store ports.Store, interval time.Duration, log zerolog.Logger) *Housekeeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Housekeeper{
		store:    store,
		log:      log.With().Str("component", "housekeeper").Logger(),
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs one sweep immediately and then one per interval. Non-blocking.
func (h *Housekeeper) Start() {
	if !h.started.CompareAndSwap(false, true) {
		return
	}
	go h.run()
	h.log.Info().Dur("interval", h.interval).Msg("housekeeper started")
}

// Stop blocks until an in-progress sweep has finished.
func (h *Housekeeper) Stop() {
	h.stopOnce.Do(func() { close(h.stopCh) })
	if !h.started.Load() {
		return
	}
	<-h.doneCh
	h.log.Info().Msg("housekeeper stopped")
}

func (h *Housekeeper) run() {
	defer close(h.doneCh)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.Sweep(context.Background())
	for {
		select {
		case <-ticker.C:
			h.Sweep(context.Background())
		case <-h.stopCh:
			return
		}
	}
}

// Sweep deletes stale reset tokens once and returns how many were removed.
func (h *Housekeeper) Sweep(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, h.interval)
	defer cancel()

	n, err := h.store.ResetTokens().DeleteStale(ctx, h.now().Add(-domain.ResetTokenRetention))
	if err != nil {
		h.log.Error().Err(err).Msg("delete stale reset tokens")
		return 0
	}
	h.log.Debug().Int64("deleted", n).Msg("housekeeping sweep completed")
	return n
}
