package service

import (
	"sync"

	"github.com/kachele/neuralsync-backend/internal/model"
)

// fireTolerance is the half-window, in seconds, around a question's
// timestamp within which the question fires.
const fireTolerance = 1.0

type timedTrigger struct {
	at       int
	fired    bool
	question model.InteractiveQuestion
}

// QuestionScheduler arms the timestamped interactive questions of a
// video workspace and decides when one is due against the playback
// position the client last reported. Each trigger fires at most once;
// re-arming resets all triggers.
type QuestionScheduler struct {
	mu       sync.Mutex
	triggers []timedTrigger
	position float64
	playing  bool
}

func NewQuestionScheduler() *QuestionScheduler {
	return &QuestionScheduler{}
}

// Arm replaces the trigger set from a fresh analysis. Questions without
// a parseable positive timestamp are skipped.
func (s *QuestionScheduler) Arm(questions []model.InteractiveQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.triggers = s.triggers[:0]
	for _, q := range questions {
		if q.Timestamp == "" {
			continue
		}
		at, err := model.ParseClock(q.Timestamp)
		if err != nil || at <= 0 {
			continue
		}
		s.triggers = append(s.triggers, timedTrigger{at: at, question: q})
	}
}

// SetPosition records the playback position reported by the client.
func (s *QuestionScheduler) SetPosition(seconds float64, playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = seconds
	s.playing = playing
}

// Armed reports how many triggers are currently armed and unfired.
func (s *QuestionScheduler) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.triggers {
		if !t.fired {
			n++
		}
	}
	return n
}

// Due returns the first unfired question whose timestamp lies within the
// tolerance window of the current position, marking it fired. The second
// return is the trigger second. Nothing is due while playback is paused.
func (s *QuestionScheduler) Due() (model.InteractiveQuestion, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing {
		return model.InteractiveQuestion{}, 0, false
	}
	for i := range s.triggers {
		t := &s.triggers[i]
		if t.fired {
			continue
		}
		diff := s.position - float64(t.at)
		if diff >= -fireTolerance && diff <= fireTolerance {
			t.fired = true
			return t.question, t.at, true
		}
	}
	return model.InteractiveQuestion{}, 0, false
}
