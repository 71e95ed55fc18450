package stream

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/kachele/neuralsync-backend/internal/model"
)

// TranscriptTopic carries every chat message of every workspace to the
// archive worker.
const TranscriptTopic = "transcript"

// WorkspaceTopic names the event topic of one workspace.
func WorkspaceTopic(workspaceID string) string {
	return "workspace." + workspaceID
}

// TranscriptRecord is the archive-worker payload for one chat message.
type TranscriptRecord struct {
	WorkspaceID string            `json:"workspace_id"`
	Message     model.ChatMessage `json:"message"`
}

// Feed fans orchestration events out to per-workspace WebSocket
// subscribers and to the transcript worker over an in-process pub/sub.
type Feed struct {
	pubSub *gochannel.GoChannel
	log    zerolog.Logger
}

// NewFeed creates the in-process event feed.
func NewFeed(log zerolog.Logger) *Feed {
	return &Feed{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NopLogger{},
		),
		log: log.With().Str("component", "event_feed").Logger(),
	}
}

// Publish emits an event on a workspace topic. Marshal failures are
// logged, never propagated: event delivery must not break the
// operation that produced it.
func (f *Feed) Publish(workspaceID string, event Event, data interface{}) {
	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		f.log.Error().Err(err).Str("event", string(event)).Msg("Marshal event")
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := f.pubSub.Publish(WorkspaceTopic(workspaceID), msg); err != nil {
		f.log.Error().Err(err).Str("event", string(event)).Msg("Publish event")
	}
}

// PublishTranscript hands a chat message to the archive worker.
func (f *Feed) PublishTranscript(rec TranscriptRecord) {
	payload, err := json.Marshal(rec)
	if err != nil {
		f.log.Error().Err(err).Msg("Marshal transcript record")
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := f.pubSub.Publish(TranscriptTopic, msg); err != nil {
		f.log.Error().Err(err).Msg("Publish transcript record")
	}
}

// Subscribe returns the event channel of one workspace. The channel
// closes when ctx is cancelled.
func (f *Feed) Subscribe(ctx context.Context, workspaceID string) (<-chan *message.Message, error) {
	return f.pubSub.Subscribe(ctx, WorkspaceTopic(workspaceID))
}

// SubscribeTranscript returns the archive channel.
func (f *Feed) SubscribeTranscript(ctx context.Context) (<-chan *message.Message, error) {
	return f.pubSub.Subscribe(ctx, TranscriptTopic)
}

// Close shuts the pub/sub down, closing all subscriber channels.
func (f *Feed) Close() error {
	return f.pubSub.Close()
}
