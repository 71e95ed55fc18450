package stream

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kachele/neuralsync-backend/internal/model"
)

func TestFeedPublishSubscribe(t *testing.T) {
	feed := NewFeed(zerolog.Nop())
	defer feed.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := feed.Subscribe(ctx, "ws-1")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	other, err := feed.Subscribe(ctx, "ws-2")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	feed.Publish("ws-1", EventNotification, NotificationPayload{Level: "info", Message: "salut"})

	select {
	case msg := <-messages:
		var env Envelope
		if err := json.Unmarshal(msg.Payload, &env); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if env.Event != EventNotification {
			t.Fatalf("event = %q", env.Event)
		}
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("event never delivered")
	}

	// Topics are per workspace: ws-2 must not see ws-1 traffic.
	select {
	case msg := <-other:
		t.Fatalf("cross-workspace delivery: %s", msg.Payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFeedTranscript(t *testing.T) {
	feed := NewFeed(zerolog.Nop())
	defer feed.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := feed.SubscribeTranscript(ctx)
	if err != nil {
		t.Fatalf("SubscribeTranscript: %v", err)
	}

	feed.PublishTranscript(TranscriptRecord{
		WorkspaceID: "ws-1",
		Message:     model.ChatMessage{Sender: model.SenderUser, Text: "bonjour"},
	})

	select {
	case msg := <-messages:
		var rec TranscriptRecord
		if err := json.Unmarshal(msg.Payload, &rec); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if rec.WorkspaceID != "ws-1" || rec.Message.Text != "bonjour" {
			t.Fatalf("record = %+v", rec)
		}
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("record never delivered")
	}
}
