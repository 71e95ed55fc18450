package model

import "testing"

func TestModeValid(t *testing.T) {
	for _, m := range []Mode{ModeVideo, ModeProblem, ModeDocument, ModeCreative} {
		if !m.Valid() {
			t.Errorf("Valid(%q) = false", m)
		}
	}
	for _, m := range []Mode{"", "audio", "VIDEO"} {
		if m.Valid() {
			t.Errorf("Valid(%q) = true", m)
		}
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name  string
		stats SessionStats
		want  int
	}{
		{"no questions yet", SessionStats{}, 0},
		{"all correct", SessionStats{QuestionsAsked: 4, CorrectAnswers: 4}, 100},
		{"none correct", SessionStats{QuestionsAsked: 4}, 0},
		{"rounds up", SessionStats{QuestionsAsked: 3, CorrectAnswers: 2}, 67},
		{"rounds down", SessionStats{QuestionsAsked: 3, CorrectAnswers: 1}, 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.Accuracy(); got != tt.want {
				t.Errorf("Accuracy() = %d, want %d", got, tt.want)
			}
		})
	}
}
