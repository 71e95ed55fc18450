package model

import "time"

// Sender identifies the author of a chat message.
type Sender string

const (
	SenderAI   Sender = "ai"
	SenderUser Sender = "user"
)

// ChatMessage is one entry of the append-only session chat log.
// Fallback marks an AI message that substituted a canned question
// because proactive generation failed.
type ChatMessage struct {
	Sender   Sender    `json:"sender"`
	Text     string    `json:"text"`
	SentAt   time.Time `json:"sent_at"`
	Fallback bool      `json:"is_fallback,omitempty"`
}

// PendingQuestion is the single in-flight question awaiting the user's
// answer. While set, the user's next message is routed to answer
// evaluation instead of free-form Q&A.
type PendingQuestion struct {
	Question      string `json:"question"`
	CorrectAnswer string `json:"correct_answer"`
}
