package service

import (
	"testing"

	"github.com/kachele/neuralsync-backend/internal/model"
)

func TestSchedulerArm(t *testing.T) {
	s := NewQuestionScheduler()
	s.Arm([]model.InteractiveQuestion{
		{Question: "a", Timestamp: "01:30"},
		{Question: "b", Timestamp: "00:00"},  // zero second, never armed
		{Question: "c", Timestamp: "broken"}, // unparseable, skipped
		{Question: "d"},                      // untimed, skipped
		{Question: "e", Timestamp: "1:02:00"},
	})

	if got := s.Armed(); got != 2 {
		t.Fatalf("Armed() = %d, want 2", got)
	}
}

func TestSchedulerDue(t *testing.T) {
	arm := func() *QuestionScheduler {
		s := NewQuestionScheduler()
		s.Arm([]model.InteractiveQuestion{{Question: "q1", Timestamp: "01:30"}})
		return s
	}

	t.Run("fires inside tolerance window", func(t *testing.T) {
		s := arm()
		s.SetPosition(89.2, true)
		q, at, ok := s.Due()
		if !ok {
			t.Fatal("expected question due at 89.2s")
		}
		if q.Question != "q1" || at != 90 {
			t.Fatalf("Due() = %q at %d, want q1 at 90", q.Question, at)
		}
	})

	t.Run("does not fire outside window", func(t *testing.T) {
		s := arm()
		s.SetPosition(88.0, true)
		if _, _, ok := s.Due(); ok {
			t.Fatal("fired 2s before the timestamp")
		}
		s.SetPosition(92.0, true)
		if _, _, ok := s.Due(); ok {
			t.Fatal("fired 2s after the timestamp")
		}
	})

	t.Run("does not fire while paused", func(t *testing.T) {
		s := arm()
		s.SetPosition(90, false)
		if _, _, ok := s.Due(); ok {
			t.Fatal("fired while paused")
		}
	})

	t.Run("fires at most once", func(t *testing.T) {
		s := arm()
		s.SetPosition(90, true)
		if _, _, ok := s.Due(); !ok {
			t.Fatal("expected first fire")
		}
		if _, _, ok := s.Due(); ok {
			t.Fatal("trigger fired twice")
		}
		// Seeking back over the timestamp must not re-fire it.
		s.SetPosition(89.5, true)
		if _, _, ok := s.Due(); ok {
			t.Fatal("trigger re-fired after seek-back")
		}
	})

	t.Run("rearm resets fired triggers", func(t *testing.T) {
		s := arm()
		s.SetPosition(90, true)
		s.Due()
		s.Arm([]model.InteractiveQuestion{{Question: "q1", Timestamp: "01:30"}})
		if _, _, ok := s.Due(); !ok {
			t.Fatal("expected fire after rearm")
		}
	})

	t.Run("co-timed triggers all fire in list order", func(t *testing.T) {
		s := NewQuestionScheduler()
		s.Arm([]model.InteractiveQuestion{
			{Question: "first", Timestamp: "00:10"},
			{Question: "second", Timestamp: "00:11"},
		})
		// 10.5s is within tolerance of both timestamps. Draining Due
		// must yield both triggers, in list order, without a new
		// position report in between.
		s.SetPosition(10.5, true)
		q, _, ok := s.Due()
		if !ok || q.Question != "first" {
			t.Fatalf("Due() = %q, want first", q.Question)
		}
		q, _, ok = s.Due()
		if !ok || q.Question != "second" {
			t.Fatalf("second Due() = %q, want second", q.Question)
		}
		if _, _, ok := s.Due(); ok {
			t.Fatal("drained scheduler still reported a due trigger")
		}
	})
}
