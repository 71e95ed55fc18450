package model

import (
	"math"
	"time"
)

// Mode enumerates the content categories of a learning session. The mode
// determines accepted file types and the style of Socratic questioning.
type Mode string

const (
	ModeVideo    Mode = "video"
	ModeProblem  Mode = "problem"
	ModeDocument Mode = "document"
	ModeCreative Mode = "creative"
)

// Valid reports whether m is one of the four supported modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeVideo, ModeProblem, ModeDocument, ModeCreative:
		return true
	}
	return false
}

// Session represents the live learning session of a workspace. TutorID is
// the identifier issued by the tutor service; it stays empty when session
// creation failed and the workspace is running degraded.
type Session struct {
	TutorID   string    `json:"session_id"`
	Mode      Mode      `json:"mode"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStats are the cumulative dialogue counters of one session.
// Mutated only by the dialogue controller's completion handlers.
type SessionStats struct {
	QuestionsAsked int `json:"questions_asked"`
	CorrectAnswers int `json:"correct_answers"`
	HintsUsed      int `json:"hints_used"`
}

// Accuracy derives the rounded percentage of correct answers.
// Defined as 0 while no question has been asked.
func (s SessionStats) Accuracy() int {
	if s.QuestionsAsked == 0 {
		return 0
	}
	return int(math.Round(float64(s.CorrectAnswers) / float64(s.QuestionsAsked) * 100))
}

// OpenWorkspaceRequest is the payload for opening a workspace in a mode.
type OpenWorkspaceRequest struct {
	Mode  Mode   `json:"mode" binding:"required"`
	Title string `json:"title" binding:"omitempty,max=255"`
}

// SubmitMessageRequest is the payload for a user chat submission.
type SubmitMessageRequest struct {
	Text string `json:"text" binding:"required"`
}
