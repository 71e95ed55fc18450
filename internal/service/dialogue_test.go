package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kachele/neuralsync-backend/internal/model"
	"github.com/kachele/neuralsync-backend/internal/tutor"
)

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t)
	ws := env.openWorkspace(t, model.ModeProblem)

	t.Run("empty message", func(t *testing.T) {
		if err := env.dialogue.Submit(context.Background(), ws.ID, "   "); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("err = %v, want ErrEmptyMessage", err)
		}
	})

	t.Run("unknown workspace", func(t *testing.T) {
		if err := env.dialogue.Submit(context.Background(), "nope", "hello"); !errors.Is(err, ErrWorkspaceNotFound) {
			t.Fatalf("err = %v, want ErrWorkspaceNotFound", err)
		}
	})

	t.Run("degraded workspace", func(t *testing.T) {
		env2 := newTestEnv(t)
		env2.tutor.createSessionFn = func(context.Context, model.Mode, string) (string, error) {
			return "", errTutorDown
		}
		degraded := env2.openWorkspace(t, model.ModeProblem)
		if err := env2.dialogue.Submit(context.Background(), degraded.ID, "hello"); !errors.Is(err, ErrNoActiveSession) {
			t.Fatalf("err = %v, want ErrNoActiveSession", err)
		}
	})
}

func TestSubmitFreeFormQuestion(t *testing.T) {
	env := newTestEnv(t)
	ws := env.openWorkspace(t, model.ModeDocument)

	env.tutor.askFn = func(_ context.Context, sessionID, question string) (string, error) {
		if sessionID != "sess-1" {
			t.Errorf("sessionID = %q, want sess-1", sessionID)
		}
		if question != "Explique la photosynthèse" {
			t.Errorf("question = %q", question)
		}
		return "La photosynthèse convertit la lumière en énergie.", nil
	}

	if err := env.dialogue.Submit(context.Background(), ws.ID, "Explique la photosynthèse"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	snap := env.snapshot(t, ws.ID)
	if len(snap.Chat) != 2 {
		t.Fatalf("chat length = %d, want 2", len(snap.Chat))
	}
	if snap.Chat[0].Sender != model.SenderUser || snap.Chat[1].Sender != model.SenderAI {
		t.Fatalf("unexpected senders: %v, %v", snap.Chat[0].Sender, snap.Chat[1].Sender)
	}
	if snap.Stats.QuestionsAsked != 1 {
		t.Fatalf("QuestionsAsked = %d, want 1", snap.Stats.QuestionsAsked)
	}
}

func TestSubmitAskFailure(t *testing.T) {
	env := newTestEnv(t)
	ws := env.openWorkspace(t, model.ModeDocument)

	env.tutor.askFn = func(context.Context, string, string) (string, error) {
		return "", &tutor.ServiceError{Message: "Quota dépassé"}
	}

	if err := env.dialogue.Submit(context.Background(), ws.ID, "question"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	snap := env.snapshot(t, ws.ID)
	last := snap.Chat[len(snap.Chat)-1]
	if last.Sender != model.SenderAI || !strings.Contains(last.Text, "Quota dépassé") {
		t.Fatalf("error reply = %q, want server reason surfaced", last.Text)
	}
	if snap.Stats.QuestionsAsked != 0 {
		t.Fatalf("QuestionsAsked = %d, want 0 after failed ask", snap.Stats.QuestionsAsked)
	}
}

func TestSubmitEvaluatesPendingAnswer(t *testing.T) {
	run := func(t *testing.T, correct bool, wantPrefix string) {
		env := newTestEnv(t)
		ws := env.openWorkspace(t, model.ModeProblem)

		ws.mu.Lock()
		ws.pending = &model.PendingQuestion{Question: "Combien font 2+2 ?", CorrectAnswer: "4"}
		ws.mu.Unlock()

		env.tutor.evaluateFn = func(_ context.Context, _, question, userAnswer, correctAnswer string) (*tutor.Evaluation, error) {
			if question != "Combien font 2+2 ?" || userAnswer != "4" || correctAnswer != "4" {
				t.Errorf("evaluate args: %q %q %q", question, userAnswer, correctAnswer)
			}
			return &tutor.Evaluation{IsCorrect: correct, Feedback: "feedback", Encouragement: "continue"}, nil
		}

		if err := env.dialogue.Submit(context.Background(), ws.ID, "4"); err != nil {
			t.Fatalf("Submit: %v", err)
		}

		snap := env.snapshot(t, ws.ID)
		if snap.Pending != "" {
			t.Fatal("pending question not cleared")
		}
		last := snap.Chat[len(snap.Chat)-1]
		if !strings.HasPrefix(last.Text, wantPrefix) {
			t.Fatalf("reply = %q, want prefix %q", last.Text, wantPrefix)
		}
		if !strings.Contains(last.Text, "feedback") || !strings.Contains(last.Text, "continue") {
			t.Fatalf("reply = %q, missing feedback or encouragement", last.Text)
		}
		if snap.Stats.QuestionsAsked != 1 {
			t.Fatalf("QuestionsAsked = %d, want 1", snap.Stats.QuestionsAsked)
		}
		wantCorrect := 0
		if correct {
			wantCorrect = 1
		}
		if snap.Stats.CorrectAnswers != wantCorrect {
			t.Fatalf("CorrectAnswers = %d, want %d", snap.Stats.CorrectAnswers, wantCorrect)
		}
	}

	t.Run("correct answer", func(t *testing.T) { run(t, true, "✅ Correct!") })
	t.Run("wrong answer", func(t *testing.T) { run(t, false, "❌ Not quite right.") })
}

func TestSubmitAnswerlessPendingRoutesToAsk(t *testing.T) {
	env := newTestEnv(t)
	ws := env.openWorkspace(t, model.ModeVideo)

	// A timed question may carry no expected answer. It cannot be
	// graded, so the reply stays a free-form exchange.
	ws.mu.Lock()
	ws.pending = &model.PendingQuestion{Question: "Que remarques-tu ici ?"}
	ws.mu.Unlock()

	env.tutor.evaluateFn = func(context.Context, string, string, string, string) (*tutor.Evaluation, error) {
		t.Error("answerless pending question reached answer evaluation")
		return nil, errTutorDown
	}
	asked := false
	env.tutor.askFn = func(context.Context, string, string) (string, error) {
		asked = true
		return "Intéressant !", nil
	}

	if err := env.dialogue.Submit(context.Background(), ws.ID, "je vois un triangle"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !asked {
		t.Fatal("reply was not routed to the ask path")
	}
	if snap := env.snapshot(t, ws.ID); snap.Stats.CorrectAnswers != 0 {
		t.Fatalf("CorrectAnswers = %d, want 0", snap.Stats.CorrectAnswers)
	}
}

func TestSubmitEvaluationFailure(t *testing.T) {
	env := newTestEnv(t)
	ws := env.openWorkspace(t, model.ModeProblem)

	ws.mu.Lock()
	ws.pending = &model.PendingQuestion{Question: "q", CorrectAnswer: "a"}
	ws.mu.Unlock()

	env.tutor.evaluateFn = func(context.Context, string, string, string, string) (*tutor.Evaluation, error) {
		return nil, errTutorDown
	}

	if err := env.dialogue.Submit(context.Background(), ws.ID, "réponse"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	snap := env.snapshot(t, ws.ID)
	if snap.Pending != "" {
		t.Fatal("pending question survived a failed evaluation")
	}
	if snap.Stats.QuestionsAsked != 0 || snap.Stats.CorrectAnswers != 0 {
		t.Fatalf("stats moved on failed evaluation: %+v", snap.Stats)
	}
	last := snap.Chat[len(snap.Chat)-1]
	if last.Sender != model.SenderAI || !strings.Contains(last.Text, "Désolé") {
		t.Fatalf("reply = %q, want apology", last.Text)
	}
}

func TestSubmitRejectsConcurrent(t *testing.T) {
	env := newTestEnv(t)
	ws := env.openWorkspace(t, model.ModeDocument)

	entered := make(chan struct{})
	release := make(chan struct{})
	env.tutor.askFn = func(context.Context, string, string) (string, error) {
		close(entered)
		<-release
		return "ok", nil
	}

	done := make(chan error, 1)
	go func() {
		done <- env.dialogue.Submit(context.Background(), ws.ID, "premier")
	}()
	<-entered

	if err := env.dialogue.Submit(context.Background(), ws.ID, "deuxième"); !errors.Is(err, ErrOperationInFlight) {
		t.Fatalf("err = %v, want ErrOperationInFlight", err)
	}

	// The rejected message must not have reached the chat log.
	snap := env.snapshot(t, ws.ID)
	for _, msg := range snap.Chat {
		if msg.Text == "deuxième" {
			t.Fatal("rejected message appended to chat")
		}
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Submit: %v", err)
	}
}

func TestActivateQuestion(t *testing.T) {
	env := newTestEnv(t)
	ws := env.openWorkspace(t, model.ModeDocument)

	ws.mu.Lock()
	ws.questions = []model.InteractiveQuestion{
		{Question: "Q0", Answer: "A0"},
		{Question: "Q1", Answer: "A1"},
	}
	ws.mu.Unlock()

	if err := env.dialogue.Activate(ws.ID, 1); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	snap := env.snapshot(t, ws.ID)
	if snap.Pending != "Q1" {
		t.Fatalf("pending = %q, want Q1", snap.Pending)
	}
	if last := snap.Chat[len(snap.Chat)-1]; last.Text != "Q1" {
		t.Fatalf("chat tail = %q, want Q1", last.Text)
	}

	if err := env.dialogue.Activate(ws.ID, 5); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("err = %v, want ErrQuestionNotFound", err)
	}
	if err := env.dialogue.Activate(ws.ID, -1); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("err = %v, want ErrQuestionNotFound", err)
	}
}

func TestHint(t *testing.T) {
	t.Run("no pending question", func(t *testing.T) {
		env := newTestEnv(t)
		ws := env.openWorkspace(t, model.ModeProblem)

		if err := env.dialogue.Hint(context.Background(), ws.ID); !errors.Is(err, ErrNoPendingQuestion) {
			t.Fatalf("err = %v, want ErrNoPendingQuestion", err)
		}
	})

	t.Run("hint counts against the session", func(t *testing.T) {
		env := newTestEnv(t)
		ws := env.openWorkspace(t, model.ModeProblem)

		ws.mu.Lock()
		ws.pending = &model.PendingQuestion{Question: "résous x+1=2"}
		ws.mu.Unlock()

		env.tutor.hintFn = func(_ context.Context, _, problem, _ string) (string, error) {
			if problem != "résous x+1=2" {
				t.Errorf("problem = %q", problem)
			}
			return "isole x", nil
		}

		if err := env.dialogue.Hint(context.Background(), ws.ID); err != nil {
			t.Fatalf("Hint: %v", err)
		}

		snap := env.snapshot(t, ws.ID)
		if snap.Stats.HintsUsed != 1 {
			t.Fatalf("HintsUsed = %d, want 1", snap.Stats.HintsUsed)
		}
		if last := snap.Chat[len(snap.Chat)-1]; last.Text != "💡 Hint: isole x" {
			t.Fatalf("chat tail = %q", last.Text)
		}
		if snap.Pending == "" {
			t.Fatal("hint cleared the pending question")
		}
	})

	t.Run("tutor failure leaves counters alone", func(t *testing.T) {
		env := newTestEnv(t)
		ws := env.openWorkspace(t, model.ModeProblem)

		ws.mu.Lock()
		ws.pending = &model.PendingQuestion{Question: "q"}
		ws.mu.Unlock()

		env.tutor.hintFn = func(context.Context, string, string, string) (string, error) {
			return "", errTutorDown
		}

		if err := env.dialogue.Hint(context.Background(), ws.ID); err == nil {
			t.Fatal("expected error")
		}
		if snap := env.snapshot(t, ws.ID); snap.Stats.HintsUsed != 0 {
			t.Fatalf("HintsUsed = %d, want 0", snap.Stats.HintsUsed)
		}
	})
}

func TestFireTimedQuestion(t *testing.T) {
	env := newTestEnv(t)
	ws := env.openWorkspace(t, model.ModeVideo)

	env.dialogue.FireTimedQuestion(ws, model.InteractiveQuestion{Question: "Que vient-il de se passer ?", Answer: "a"}, 90)

	snap := env.snapshot(t, ws.ID)
	if snap.Pending != "Que vient-il de se passer ?" {
		t.Fatalf("pending = %q", snap.Pending)
	}
	if last := snap.Chat[len(snap.Chat)-1]; last.Sender != model.SenderAI {
		t.Fatalf("sender = %v, want ai", last.Sender)
	}
}
