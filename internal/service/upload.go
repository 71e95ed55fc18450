package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kachele/neuralsync-backend/internal/config"
	"github.com/kachele/neuralsync-backend/internal/model"
	"github.com/kachele/neuralsync-backend/internal/stream"
	"github.com/kachele/neuralsync-backend/internal/tutor"
)

// fallbackFirstQuestions are the canned openers used per mode when
// proactive question generation fails.
var fallbackFirstQuestions = map[model.Mode]string{
	model.ModeVideo:    "Après avoir analysé cette vidéo, qu'en as-tu retenu comme point le plus important ?",
	model.ModeProblem:  "Avant de te guider, dis-moi : par où commencerais-tu pour résoudre ce problème ?",
	model.ModeDocument: "Maintenant que j'ai parcouru ce document, quelles sont les idées principales que tu en tires ?",
	model.ModeCreative: "Peux-tu m'expliquer ce que tu as cherché à exprimer dans ce travail ?",
}

// UploadService runs the upload-and-analyze pipeline of a workspace:
// IDLE → UPLOADING → SERVER_PROCESSING → READY | FAILED.
type UploadService struct {
	workspaces *WorkspaceService
	tutor      TutorClient
	feed       *stream.Feed
	cfg        *config.Config
	log        zerolog.Logger
}

func NewUploadService(workspaces *WorkspaceService, tutorClient TutorClient, feed *stream.Feed, cfg *config.Config, log zerolog.Logger) *UploadService {
	return &UploadService{
		workspaces: workspaces,
		tutor:      tutorClient,
		feed:       feed,
		cfg:        cfg,
		log:        log.With().Str("component", "upload_service").Logger(),
	}
}

// UploadParams describes one upload submission.
type UploadParams struct {
	WorkspaceID string
	Filename    string
	Size        int64
	File        io.Reader
	Context     string
	SpeedMode   bool
}

// Submit validates and runs one upload. At most one upload runs per
// workspace; a second submission while one is in flight is rejected
// without disturbing the running pipeline.
func (s *UploadService) Submit(ctx context.Context, p UploadParams) error {
	ws, err := s.workspaces.Get(p.WorkspaceID)
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(p.Filename))

	ws.mu.Lock()
	switch {
	case ws.session.TutorID == "":
		ws.mu.Unlock()
		return ErrNoActiveSession
	case ws.uploading:
		ws.mu.Unlock()
		return ErrUploadInFlight
	case !model.AcceptsExtension(ws.session.Mode, ext):
		ws.mu.Unlock()
		return ErrUnsupportedFile
	case p.Size > s.cfg.MaxUploadBytes:
		ws.mu.Unlock()
		return ErrFileTooLarge
	}
	ws.uploading = true
	ws.upload = model.UploadState{Phase: model.UploadUploading}
	sessionID := ws.session.TutorID
	mode := ws.session.Mode
	ws.mu.Unlock()

	s.publishUploadState(ws)

	analysis, err := s.tutor.Analyze(ctx, tutor.AnalyzeParams{
		SessionID: sessionID,
		Filename:  p.Filename,
		Size:      p.Size,
		File:      p.File,
		Context:   p.Context,
		SpeedMode: p.SpeedMode,
		OnProgress: func(percent int) {
			s.onProgress(ws, percent)
		},
	})
	if err != nil {
		s.fail(ws, tutor.Reason(err, "Échec de l'analyse du contenu"))
		return err
	}

	s.intake(ws, mode, analysis)

	go s.openDialogue(context.WithoutCancel(ctx), ws, sessionID, mode)
	return nil
}

// onProgress forwards transfer percentages to the client. Reaching 100%
// flips the pipeline into SERVER_PROCESSING: the bytes are sent and the
// analysis is now running remotely.
func (s *UploadService) onProgress(ws *Workspace, percent int) {
	ws.mu.Lock()
	ws.upload.Percent = percent
	if percent >= 100 && ws.upload.Phase == model.UploadUploading {
		ws.upload.Phase = model.UploadServerProcessing
	}
	phase := ws.upload.Phase
	ws.mu.Unlock()

	s.feed.Publish(ws.ID, stream.EventUploadProgress, stream.UploadProgressPayload{Percent: percent})
	if phase == model.UploadServerProcessing && percent >= 100 {
		s.publishUploadState(ws)
	}
}

func (s *UploadService) fail(ws *Workspace, reason string) {
	ws.mu.Lock()
	ws.uploading = false
	ws.upload = model.UploadState{Phase: model.UploadFailed, Reason: reason}
	ws.mu.Unlock()

	s.log.Warn().Str("workspace_id", ws.ID).Str("reason", reason).Msg("Upload failed")
	s.publishUploadState(ws)
	s.feed.Publish(ws.ID, stream.EventNotification, stream.NotificationPayload{
		Level:   "error",
		Message: reason,
	})
}

// intake installs a fresh analysis: the chat restarts, the question list
// is replaced and, in video mode, the timed-question scheduler is
// re-armed from the questions' timestamps.
func (s *UploadService) intake(ws *Workspace, mode model.Mode, analysis *model.Analysis) {
	ws.mu.Lock()
	ws.uploading = false
	ws.upload = model.UploadState{Phase: model.UploadReady, Percent: 100}
	ws.analysis = analysis
	ws.questions = analysis.InteractiveQuestions
	ws.chat = nil
	ws.pending = nil
	ws.mu.Unlock()

	if mode == model.ModeVideo {
		ws.scheduler.Arm(analysis.InteractiveQuestions)
	}

	s.log.Info().
		Str("workspace_id", ws.ID).
		Int("interactive_questions", len(analysis.InteractiveQuestions)).
		Msg("Analysis ready")

	s.publishUploadState(ws)
	s.feed.Publish(ws.ID, stream.EventAnalysisReady, projectAnalysis(analysis))
	s.feed.Publish(ws.ID, stream.EventNotification, stream.NotificationPayload{
		Level:   "success",
		Message: "Analyse terminée !",
	})
}

// openDialogue posts the opening question right after an analysis. It
// asks the tutor service for a proactive one and falls back to a canned
// opener when that fails, so the dialogue always starts. The question
// lands in the chat only; it does not occupy the pending slot, so the
// user's reply stays a free-form exchange.
func (s *UploadService) openDialogue(ctx context.Context, ws *Workspace, sessionID string, mode model.Mode) {
	intro := "🧠 J'ai analysé ton contenu. Voici ma première question pour toi :"
	question := ""
	fallback := false

	fq, err := s.tutor.GenerateFirstQuestion(ctx, sessionID, mode)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("workspace_id", ws.ID).Msg("Generate first question")
		question = fallbackFirstQuestions[mode]
		fallback = true
		intro = "🤔 Pendant que Gemini réfléchit, commençons par ceci :"
	case fq.IsFallback:
		question = fq.Question
		fallback = true
		intro = "🤔 Pendant que Gemini réfléchit, commençons par ceci :"
	default:
		question = fq.Question
	}

	now := time.Now()
	s.workspaces.AppendChat(ws, model.ChatMessage{Sender: model.SenderAI, Text: intro, SentAt: now})
	s.workspaces.AppendChat(ws, model.ChatMessage{
		Sender:   model.SenderAI,
		Text:     question,
		SentAt:   now,
		Fallback: fallback,
	})
}

func (s *UploadService) publishUploadState(ws *Workspace) {
	ws.mu.Lock()
	state := ws.upload
	ws.mu.Unlock()
	s.feed.Publish(ws.ID, stream.EventUploadStatus, state)
}
