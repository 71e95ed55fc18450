package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kachele/neuralsync-backend/internal/config"
	"github.com/kachele/neuralsync-backend/internal/service"
)

// SyncWorker polls every workspace's timed-question scheduler against
// the playback position its client last reported, and fires the
// questions that are due.
type SyncWorker struct {
	workspaces *service.WorkspaceService
	dialogue   *service.DialogueService
	interval   time.Duration
	log        zerolog.Logger
}

// NewSyncWorker creates a new SyncWorker.
func NewSyncWorker(workspaces *service.WorkspaceService, dialogue *service.DialogueService, cfg *config.Config, log zerolog.Logger) *SyncWorker {
	return &SyncWorker{
		workspaces: workspaces,
		dialogue:   dialogue,
		interval:   cfg.SyncPollInterval,
		log:        log.With().Str("component", "sync_worker").Logger(),
	}
}

// Start begins the polling loop. Call in a goroutine.
func (w *SyncWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

// sweep fires every question due in this tick. Several triggers can
// share one window; they all fire now, in list order, not one per tick.
func (w *SyncWorker) sweep() {
	for _, ws := range w.workspaces.All() {
		for {
			q, at, ok := ws.Scheduler().Due()
			if !ok {
				break
			}
			w.dialogue.FireTimedQuestion(ws, q, at)
		}
	}
}
