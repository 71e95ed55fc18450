package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Analysis is the payload returned by the tutor service after content
// analysis. All sections are optional; which ones are present depends on
// the session mode and the uploaded material.
type Analysis struct {
	Summary              string                `json:"summary,omitempty"`
	KeyConcepts          []string              `json:"key_concepts,omitempty"`
	InteractiveQuestions []InteractiveQuestion `json:"interactive_questions,omitempty"`
	QuizQuestions        []QuizQuestion        `json:"quiz_questions,omitempty"`
	Improvements         []Improvement         `json:"improvements,omitempty"`
	Timestamps           []TimestampMarker     `json:"timestamps,omitempty"`
}

// InteractiveQuestion is a Socratic question extracted from the content.
// Timestamp is set for video-mode questions bound to a playback moment
// ("MM:SS" or "HH:MM:SS").
type InteractiveQuestion struct {
	Question  string `json:"question"`
	Answer    string `json:"answer,omitempty"`
	Hint      string `json:"hint,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// QuizQuestion is a multiple-choice question from document analysis.
type QuizQuestion struct {
	Level       string   `json:"level,omitempty"`
	Question    string   `json:"question"`
	Options     []string `json:"options,omitempty"`
	Correct     int      `json:"correct,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// Improvement is a creative-mode improvement suggestion.
type Improvement struct {
	Aspect     string `json:"aspect"`
	Suggestion string `json:"suggestion"`
	Why        string `json:"why,omitempty"`
	Priority   string `json:"priority,omitempty"`
}

// TimestampMarker is a key moment of a timed medium.
type TimestampMarker struct {
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
}

// ParseClock converts a "MM:SS" or "HH:MM:SS" clock string to seconds.
// Components must be non-negative integers; minutes/seconds of an
// hour-form stamp are not range-checked beyond that, matching the
// permissive source format.
func ParseClock(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock format: %q", clock)
	}

	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid clock component %q in %q", p, clock)
		}
		total = total*60 + n
	}
	return total, nil
}
