package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kachele/neuralsync-backend/internal/model"
	"github.com/kachele/neuralsync-backend/internal/stream"
)

// Workspace is the live state of one learning workspace. All fields are
// guarded by mu; the mutex is never held across a tutor-service call.
type Workspace struct {
	ID string

	mu         sync.Mutex
	session    model.Session
	sessionErr string
	stats      model.SessionStats
	upload     model.UploadState
	chat       []model.ChatMessage
	pending    *model.PendingQuestion
	analysis   *model.Analysis
	questions  []model.InteractiveQuestion
	busy       bool
	uploading  bool
	scheduler  *QuestionScheduler
}

// Scheduler exposes the workspace's timed-question scheduler.
func (w *Workspace) Scheduler() *QuestionScheduler {
	return w.scheduler
}

// QuestionView is an interactive question as shown to the client. The
// expected answer stays server-side.
type QuestionView struct {
	Question  string `json:"question"`
	Hint      string `json:"hint,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// AnalysisView is the client-facing projection of an analysis. List
// sections are capped to what the workspace panels display; the
// dialogue controller keeps the full interactive-question list, which
// QuestionCount summarizes.
type AnalysisView struct {
	Summary              string                  `json:"summary,omitempty"`
	KeyConcepts          []string                `json:"key_concepts,omitempty"`
	InteractiveQuestions []QuestionView          `json:"interactive_questions,omitempty"`
	QuizQuestions        []model.QuizQuestion    `json:"quiz_questions,omitempty"`
	Improvements         []model.Improvement     `json:"improvements,omitempty"`
	Timestamps           []model.TimestampMarker `json:"timestamps,omitempty"`
	QuestionCount        int                     `json:"question_count"`
}

// WorkspaceSnapshot is the full observable state of a workspace, served
// on reconnect so a client can rebuild its view.
type WorkspaceSnapshot struct {
	ID      string        `json:"id"`
	Session model.Session `json:"session"`
	// SessionError explains a degraded workspace, one whose tutor
	// session could not be created. Cleared once a retry succeeds.
	SessionError string              `json:"session_error,omitempty"`
	Upload       model.UploadState   `json:"upload"`
	Chat         []model.ChatMessage `json:"chat"`
	Pending      string              `json:"pending_question,omitempty"`
	Analysis     *AnalysisView       `json:"analysis,omitempty"`
	Stats        stream.StatsPayload `json:"stats"`
}

// WorkspaceService owns the in-memory workspace registry and the
// session lifecycle against the tutor service.
type WorkspaceService struct {
	mu    sync.RWMutex
	items map[string]*Workspace

	tutor TutorClient
	feed  *stream.Feed
	log   zerolog.Logger
}

func NewWorkspaceService(tutorClient TutorClient, feed *stream.Feed, log zerolog.Logger) *WorkspaceService {
	return &WorkspaceService{
		items: make(map[string]*Workspace),
		tutor: tutorClient,
		feed:  feed,
		log:   log.With().Str("component", "workspace_service").Logger(),
	}
}

// Open creates a workspace in the given mode and registers a learning
// session with the tutor service. Session creation failure degrades the
// workspace instead of failing it: the workspace is still registered
// with an empty session id and the failure is carried in the snapshot
// (the client has not subscribed to the event stream yet at this
// point), so the client can retry.
func (s *WorkspaceService) Open(ctx context.Context, mode model.Mode, title string) (*Workspace, error) {
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}

	ws := &Workspace{
		ID: uuid.NewString(),
		session: model.Session{
			Mode:      mode,
			Title:     title,
			CreatedAt: time.Now(),
		},
		upload:    model.UploadState{Phase: model.UploadIdle},
		scheduler: NewQuestionScheduler(),
	}

	s.mu.Lock()
	s.items[ws.ID] = ws
	s.mu.Unlock()

	tutorID, err := s.tutor.CreateSession(ctx, mode, title)
	if err != nil {
		s.log.Warn().Err(err).Str("workspace_id", ws.ID).Msg("Create tutor session")
		ws.mu.Lock()
		ws.sessionErr = "Impossible de créer la session. Certaines fonctionnalités seront limitées."
		ws.mu.Unlock()
		return ws, nil
	}

	ws.mu.Lock()
	ws.session.TutorID = tutorID
	ws.mu.Unlock()

	s.log.Info().
		Str("workspace_id", ws.ID).
		Str("session_id", tutorID).
		Str("mode", string(mode)).
		Msg("Workspace opened")
	return ws, nil
}

// RetrySession re-attempts tutor session creation for a degraded
// workspace. It is a no-op when the workspace already holds a session.
func (s *WorkspaceService) RetrySession(ctx context.Context, workspaceID string) error {
	ws, err := s.Get(workspaceID)
	if err != nil {
		return err
	}

	ws.mu.Lock()
	mode, title := ws.session.Mode, ws.session.Title
	hasSession := ws.session.TutorID != ""
	ws.mu.Unlock()

	if hasSession {
		return nil
	}

	tutorID, err := s.tutor.CreateSession(ctx, mode, title)
	if err != nil {
		return err
	}

	ws.mu.Lock()
	ws.session.TutorID = tutorID
	ws.sessionErr = ""
	ws.mu.Unlock()

	s.feed.Publish(workspaceID, stream.EventNotification, stream.NotificationPayload{
		Level:   "success",
		Message: "Session créée avec succès.",
	})
	return nil
}

// Get looks a workspace up by id.
func (s *WorkspaceService) Get(workspaceID string) (*Workspace, error) {
	s.mu.RLock()
	ws, ok := s.items[workspaceID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrWorkspaceNotFound
	}
	return ws, nil
}

// All returns every registered workspace, for the sync worker's sweep.
func (s *WorkspaceService) All() []*Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Workspace, 0, len(s.items))
	for _, ws := range s.items {
		out = append(out, ws)
	}
	return out
}

// Close removes a workspace from the registry. In-flight operations on
// it finish against the detached state.
func (s *WorkspaceService) Close(workspaceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[workspaceID]; !ok {
		return ErrWorkspaceNotFound
	}
	delete(s.items, workspaceID)
	s.log.Info().Str("workspace_id", workspaceID).Msg("Workspace closed")
	return nil
}

// Snapshot builds the full observable state of a workspace.
func (s *WorkspaceService) Snapshot(workspaceID string) (*WorkspaceSnapshot, error) {
	ws, err := s.Get(workspaceID)
	if err != nil {
		return nil, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	snap := &WorkspaceSnapshot{
		ID:           ws.ID,
		Session:      ws.session,
		SessionError: ws.sessionErr,
		Upload:       ws.upload,
		Chat:         append([]model.ChatMessage(nil), ws.chat...),
		Stats:        stream.StatsPayload{SessionStats: ws.stats, Accuracy: ws.stats.Accuracy()},
	}
	if ws.pending != nil {
		snap.Pending = ws.pending.Question
	}
	if ws.analysis != nil {
		snap.Analysis = projectAnalysis(ws.analysis)
	}
	return snap, nil
}

// Stats returns the current session counters with derived accuracy.
func (s *WorkspaceService) Stats(workspaceID string) (stream.StatsPayload, error) {
	ws, err := s.Get(workspaceID)
	if err != nil {
		return stream.StatsPayload{}, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	return stream.StatsPayload{SessionStats: ws.stats, Accuracy: ws.stats.Accuracy()}, nil
}

// AppendChat appends a message to the workspace chat log and emits it on
// the event feed and the transcript topic.
func (s *WorkspaceService) AppendChat(ws *Workspace, msg model.ChatMessage) {
	ws.mu.Lock()
	ws.chat = append(ws.chat, msg)
	ws.mu.Unlock()

	s.feed.Publish(ws.ID, stream.EventChatMessage, msg)
	s.feed.PublishTranscript(stream.TranscriptRecord{WorkspaceID: ws.ID, Message: msg})
}

// PublishStats emits the current counters of a workspace.
func (s *WorkspaceService) PublishStats(ws *Workspace) {
	ws.mu.Lock()
	payload := stream.StatsPayload{SessionStats: ws.stats, Accuracy: ws.stats.Accuracy()}
	ws.mu.Unlock()

	s.feed.Publish(ws.ID, stream.EventStats, payload)
}

// projectAnalysis caps the display sections of an analysis. Limits match
// the workspace panels: three interactive questions, three quiz
// questions, five improvement cards.
func projectAnalysis(a *model.Analysis) *AnalysisView {
	view := &AnalysisView{
		Summary:       a.Summary,
		KeyConcepts:   a.KeyConcepts,
		QuizQuestions: capSlice(a.QuizQuestions, 3),
		Improvements:  capSlice(a.Improvements, 5),
		Timestamps:    a.Timestamps,
		QuestionCount: len(a.InteractiveQuestions),
	}
	for _, q := range capSlice(a.InteractiveQuestions, 3) {
		view.InteractiveQuestions = append(view.InteractiveQuestions, QuestionView{
			Question:  q.Question,
			Hint:      q.Hint,
			Timestamp: q.Timestamp,
		})
	}
	return view
}

func capSlice[T any](in []T, n int) []T {
	if len(in) > n {
		return in[:n]
	}
	return in
}
