package stream

import "github.com/kachele/neuralsync-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	// ActionPosition reports the current playback position of timed
	// media. Sent periodically while the player is open.
	ActionPosition Action = "position"
	ActionPing     Action = "ping"
)

// RequestPayload is the single client→server message shape.
type RequestPayload struct {
	Action          Action  `json:"action"`
	PositionSeconds float64 `json:"position_seconds,omitempty"`
	Playing         bool    `json:"playing,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventChatMessage    Event = "chat_message"
	EventThinking       Event = "thinking"
	EventUploadProgress Event = "upload_progress"
	EventUploadStatus   Event = "upload_status"
	EventAnalysisReady  Event = "analysis_ready"
	EventStats          Event = "stats"
	EventNotification   Event = "notification"
	EventPausePlayback  Event = "pause_playback"
	EventQuestionFired  Event = "question_fired"
	EventPong           Event = "pong"
	EventError          Event = "error"
)

// Envelope wraps every server→client message.
type Envelope struct {
	Event Event       `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// ThinkingPayload toggles the transient "thinking" indicator. The off
// message is guaranteed on both success and failure paths.
type ThinkingPayload struct {
	Active bool `json:"active"`
}

type UploadProgressPayload struct {
	Percent int `json:"percent"`
}

// NotificationPayload is a transient toast. Level is one of
// info, success, warning, error.
type NotificationPayload struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// StatsPayload carries the session counters plus derived accuracy.
type StatsPayload struct {
	model.SessionStats
	Accuracy int `json:"accuracy"`
}

// PausePayload orders the player to pause for a fired timed question.
type PausePayload struct {
	AtSecond int `json:"at_second"`
}

// QuestionFiredPayload announces a timed question reaching its moment.
type QuestionFiredPayload struct {
	Question string `json:"question"`
	AtSecond int    `json:"at_second"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}
