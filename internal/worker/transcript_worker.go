package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kachele/neuralsync-backend/internal/config"
	"github.com/kachele/neuralsync-backend/internal/stream"
)

// TranscriptWorker consumes the transcript topic and appends each chat
// message to a per-workspace Redis list. Write-behind: chat stays fully
// functional when the worker is not running.
type TranscriptWorker struct {
	feed *stream.Feed
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

// NewTranscriptWorker creates a new TranscriptWorker.
func NewTranscriptWorker(feed *stream.Feed, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *TranscriptWorker {
	return &TranscriptWorker{
		feed: feed,
		rdb:  rdb,
		ttl:  cfg.TranscriptTTL,
		log:  log.With().Str("component", "transcript_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine; it returns when
// ctx is cancelled, after draining messages already delivered.
func (w *TranscriptWorker) Start(ctx context.Context) {
	messages, err := w.feed.SubscribeTranscript(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("Subscribe failed, worker not running")
		return
	}

	w.log.Info().Msg("Worker started")

	for msg := range messages {
		w.persist(msg.Payload)
		msg.Ack()
	}

	w.log.Info().Msg("Worker stopped")
}

func (w *TranscriptWorker) persist(payload []byte) {
	var rec stream.TranscriptRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	entry, err := json.Marshal(rec.Message)
	if err != nil {
		w.log.Error().Err(err).Msg("Marshal error")
		return
	}

	// Detached context: shutdown must not lose already-delivered messages.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := "workspace:" + rec.WorkspaceID + ":transcript"
	pipe := w.rdb.Pipeline()
	pipe.RPush(ctx, key, entry)
	pipe.Expire(ctx, key, w.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Str("workspace_id", rec.WorkspaceID).Msg("Persist error")
	}
}
