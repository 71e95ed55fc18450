package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kachele/neuralsync-backend/internal/model"
	"github.com/kachele/neuralsync-backend/internal/stream"
	"github.com/kachele/neuralsync-backend/internal/tutor"
)

// DialogueService is the chat controller of a workspace. It routes each
// user message either to answer evaluation (when a question is pending)
// or to free-form Q&A, and owns the session counters.
type DialogueService struct {
	workspaces *WorkspaceService
	tutor      TutorClient
	feed       *stream.Feed
	log        zerolog.Logger
}

func NewDialogueService(workspaces *WorkspaceService, tutorClient TutorClient, feed *stream.Feed, log zerolog.Logger) *DialogueService {
	return &DialogueService{
		workspaces: workspaces,
		tutor:      tutorClient,
		feed:       feed,
		log:        log.With().Str("component", "dialogue_service").Logger(),
	}
}

// Submit handles one user chat message. The reply goes to answer
// evaluation only when a gradeable question is pending, meaning one
// that carries an expected answer; otherwise it is a free-form ask.
// At most one submission is processed per workspace at a time; a
// second one arriving while the first is in flight is rejected before
// its text is appended.
func (s *DialogueService) Submit(ctx context.Context, workspaceID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	ws, err := s.workspaces.Get(workspaceID)
	if err != nil {
		return err
	}

	ws.mu.Lock()
	switch {
	case ws.session.TutorID == "":
		ws.mu.Unlock()
		return ErrNoActiveSession
	case ws.busy:
		ws.mu.Unlock()
		return ErrOperationInFlight
	}
	ws.busy = true
	sessionID := ws.session.TutorID
	pending := ws.pending
	ws.mu.Unlock()

	defer func() {
		ws.mu.Lock()
		ws.busy = false
		ws.mu.Unlock()
	}()

	s.workspaces.AppendChat(ws, model.ChatMessage{Sender: model.SenderUser, Text: text, SentAt: time.Now()})

	s.setThinking(ws, true)
	defer s.setThinking(ws, false)

	if pending != nil && pending.CorrectAnswer != "" {
		s.evaluate(ctx, ws, sessionID, pending, text)
	} else {
		s.ask(ctx, ws, sessionID, text)
	}
	return nil
}

// evaluate grades the user's answer to the pending question. The slot
// is cleared whether or not grading succeeded, so one attempt consumes
// the question; counters only move on a successful evaluation.
func (s *DialogueService) evaluate(ctx context.Context, ws *Workspace, sessionID string, pending *model.PendingQuestion, answer string) {
	eval, err := s.tutor.Evaluate(ctx, sessionID, pending.Question, answer, pending.CorrectAnswer)

	ws.mu.Lock()
	ws.pending = nil
	if err == nil {
		ws.stats.QuestionsAsked++
		if eval.IsCorrect {
			ws.stats.CorrectAnswers++
		}
	}
	ws.mu.Unlock()

	if err != nil {
		s.log.Warn().Err(err).Str("workspace_id", ws.ID).Msg("Evaluate answer")
		reason := tutor.Reason(err, "Une erreur est survenue")
		s.workspaces.AppendChat(ws, model.ChatMessage{
			Sender: model.SenderAI,
			Text:   "Désolé, je n'ai pas pu évaluer ta réponse : " + reason,
			SentAt: time.Now(),
		})
		return
	}

	prefix := "❌ Not quite right."
	if eval.IsCorrect {
		prefix = "✅ Correct!"
	}
	reply := prefix + "\n\n" + eval.Feedback
	if eval.Encouragement != "" {
		reply += "\n\n" + eval.Encouragement
	}

	s.workspaces.AppendChat(ws, model.ChatMessage{Sender: model.SenderAI, Text: reply, SentAt: time.Now()})
	s.workspaces.PublishStats(ws)
}

// ask forwards a free-form question to the tutor service.
func (s *DialogueService) ask(ctx context.Context, ws *Workspace, sessionID, text string) {
	response, err := s.tutor.Ask(ctx, sessionID, text)
	if err != nil {
		s.log.Warn().Err(err).Str("workspace_id", ws.ID).Msg("Ask tutor")
		reason := tutor.Reason(err, "Une erreur est survenue")
		s.workspaces.AppendChat(ws, model.ChatMessage{
			Sender: model.SenderAI,
			Text:   "Désolé, une erreur est survenue : " + reason,
			SentAt: time.Now(),
		})
		return
	}

	ws.mu.Lock()
	ws.stats.QuestionsAsked++
	ws.mu.Unlock()

	s.workspaces.AppendChat(ws, model.ChatMessage{Sender: model.SenderAI, Text: response, SentAt: time.Now()})
	s.workspaces.PublishStats(ws)
}

// Activate puts the interactive question at the given index into the
// pending slot and posts it to the chat, for the "answer now" control
// of the question panel.
func (s *DialogueService) Activate(workspaceID string, index int) error {
	ws, err := s.workspaces.Get(workspaceID)
	if err != nil {
		return err
	}

	ws.mu.Lock()
	if ws.session.TutorID == "" {
		ws.mu.Unlock()
		return ErrNoActiveSession
	}
	if index < 0 || index >= len(ws.questions) {
		ws.mu.Unlock()
		return ErrQuestionNotFound
	}
	q := ws.questions[index]
	if ws.pending != nil {
		s.log.Warn().Str("workspace_id", ws.ID).Msg("Overwriting pending question")
	}
	ws.pending = &model.PendingQuestion{Question: q.Question, CorrectAnswer: q.Answer}
	ws.mu.Unlock()

	s.workspaces.AppendChat(ws, model.ChatMessage{Sender: model.SenderAI, Text: q.Question, SentAt: time.Now()})
	return nil
}

// Hint requests one hint for the pending question. The hint counts
// against the session even when the user later answers correctly.
func (s *DialogueService) Hint(ctx context.Context, workspaceID string) error {
	ws, err := s.workspaces.Get(workspaceID)
	if err != nil {
		return err
	}

	ws.mu.Lock()
	if ws.session.TutorID == "" {
		ws.mu.Unlock()
		return ErrNoActiveSession
	}
	if ws.pending == nil {
		ws.mu.Unlock()
		s.feed.Publish(ws.ID, stream.EventNotification, stream.NotificationPayload{
			Level:   "warning",
			Message: "Aucune question active",
		})
		return ErrNoPendingQuestion
	}
	sessionID := ws.session.TutorID
	question := ws.pending.Question
	ws.mu.Unlock()

	hint, err := s.tutor.Hint(ctx, sessionID, question, "")
	if err != nil {
		s.log.Warn().Err(err).Str("workspace_id", ws.ID).Msg("Request hint")
		s.feed.Publish(ws.ID, stream.EventNotification, stream.NotificationPayload{
			Level:   "error",
			Message: tutor.Reason(err, "Impossible d'obtenir un indice"),
		})
		return err
	}

	ws.mu.Lock()
	ws.stats.HintsUsed++
	ws.mu.Unlock()

	s.workspaces.AppendChat(ws, model.ChatMessage{Sender: model.SenderAI, Text: "💡 Hint: " + hint, SentAt: time.Now()})
	s.workspaces.PublishStats(ws)
	return nil
}

// FireTimedQuestion delivers a video question whose timestamp was
// reached: the player is told to pause, the question lands in the chat
// and the pending slot is taken.
func (s *DialogueService) FireTimedQuestion(ws *Workspace, q model.InteractiveQuestion, atSecond int) {
	ws.mu.Lock()
	if ws.pending != nil {
		s.log.Warn().Str("workspace_id", ws.ID).Msg("Overwriting pending question")
	}
	ws.pending = &model.PendingQuestion{Question: q.Question, CorrectAnswer: q.Answer}
	ws.mu.Unlock()

	s.log.Info().
		Str("workspace_id", ws.ID).
		Int("at_second", atSecond).
		Msg("Timed question fired")

	s.feed.Publish(ws.ID, stream.EventPausePlayback, stream.PausePayload{AtSecond: atSecond})
	s.feed.Publish(ws.ID, stream.EventQuestionFired, stream.QuestionFiredPayload{Question: q.Question, AtSecond: atSecond})
	s.workspaces.AppendChat(ws, model.ChatMessage{Sender: model.SenderAI, Text: q.Question, SentAt: time.Now()})
}

func (s *DialogueService) setThinking(ws *Workspace, active bool) {
	s.feed.Publish(ws.ID, stream.EventThinking, stream.ThinkingPayload{Active: active})
}
