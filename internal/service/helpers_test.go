package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kachele/neuralsync-backend/internal/config"
	"github.com/kachele/neuralsync-backend/internal/model"
	"github.com/kachele/neuralsync-backend/internal/stream"
	"github.com/kachele/neuralsync-backend/internal/tutor"
)

// fakeTutor implements TutorClient with per-test overrides.
type fakeTutor struct {
	createSessionFn func(ctx context.Context, mode model.Mode, title string) (string, error)
	analyzeFn       func(ctx context.Context, p tutor.AnalyzeParams) (*model.Analysis, error)
	firstQuestionFn func(ctx context.Context, sessionID string, mode model.Mode) (*tutor.FirstQuestion, error)
	askFn           func(ctx context.Context, sessionID, question string) (string, error)
	evaluateFn      func(ctx context.Context, sessionID, question, userAnswer, correctAnswer string) (*tutor.Evaluation, error)
	hintFn          func(ctx context.Context, sessionID, problem, currentProgress string) (string, error)
}

func (f *fakeTutor) CreateSession(ctx context.Context, mode model.Mode, title string) (string, error) {
	if f.createSessionFn != nil {
		return f.createSessionFn(ctx, mode, title)
	}
	return "sess-1", nil
}

func (f *fakeTutor) Analyze(ctx context.Context, p tutor.AnalyzeParams) (*model.Analysis, error) {
	if f.analyzeFn != nil {
		return f.analyzeFn(ctx, p)
	}
	return &model.Analysis{Summary: "summary"}, nil
}

func (f *fakeTutor) GenerateFirstQuestion(ctx context.Context, sessionID string, mode model.Mode) (*tutor.FirstQuestion, error) {
	if f.firstQuestionFn != nil {
		return f.firstQuestionFn(ctx, sessionID, mode)
	}
	return &tutor.FirstQuestion{Question: "Première question ?"}, nil
}

func (f *fakeTutor) Ask(ctx context.Context, sessionID, question string) (string, error) {
	if f.askFn != nil {
		return f.askFn(ctx, sessionID, question)
	}
	return "Réponse du tuteur", nil
}

func (f *fakeTutor) Evaluate(ctx context.Context, sessionID, question, userAnswer, correctAnswer string) (*tutor.Evaluation, error) {
	if f.evaluateFn != nil {
		return f.evaluateFn(ctx, sessionID, question, userAnswer, correctAnswer)
	}
	return &tutor.Evaluation{IsCorrect: true, Feedback: "Bien vu"}, nil
}

func (f *fakeTutor) Hint(ctx context.Context, sessionID, problem, currentProgress string) (string, error) {
	if f.hintFn != nil {
		return f.hintFn(ctx, sessionID, problem, currentProgress)
	}
	return "essaie autrement", nil
}

var errTutorDown = errors.New("tutor down")

type testEnv struct {
	tutor      *fakeTutor
	feed       *stream.Feed
	workspaces *WorkspaceService
	upload     *UploadService
	dialogue   *DialogueService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ft := &fakeTutor{}
	feed := stream.NewFeed(zerolog.Nop())
	t.Cleanup(func() { feed.Close() })

	cfg := &config.Config{
		MaxUploadBytes:   1 << 20,
		SyncPollInterval: 10 * time.Millisecond,
	}

	workspaces := NewWorkspaceService(ft, feed, zerolog.Nop())
	return &testEnv{
		tutor:      ft,
		feed:       feed,
		workspaces: workspaces,
		upload:     NewUploadService(workspaces, ft, feed, cfg, zerolog.Nop()),
		dialogue:   NewDialogueService(workspaces, ft, feed, zerolog.Nop()),
	}
}

func (e *testEnv) openWorkspace(t *testing.T, mode model.Mode) *Workspace {
	t.Helper()

	ws, err := e.workspaces.Open(context.Background(), mode, "test")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return ws
}

func (e *testEnv) snapshot(t *testing.T, workspaceID string) *WorkspaceSnapshot {
	t.Helper()

	snap, err := e.workspaces.Snapshot(workspaceID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	return snap
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}
