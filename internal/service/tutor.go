package service

import (
	"context"

	"github.com/kachele/neuralsync-backend/internal/model"
	"github.com/kachele/neuralsync-backend/internal/tutor"
)

// TutorClient is the slice of the tutor-service client the workspace
// services depend on. Satisfied by *tutor.Client.
type TutorClient interface {
	CreateSession(ctx context.Context, mode model.Mode, title string) (string, error)
	Analyze(ctx context.Context, p tutor.AnalyzeParams) (*model.Analysis, error)
	GenerateFirstQuestion(ctx context.Context, sessionID string, mode model.Mode) (*tutor.FirstQuestion, error)
	Ask(ctx context.Context, sessionID, question string) (string, error)
	Evaluate(ctx context.Context, sessionID, question, userAnswer, correctAnswer string) (*tutor.Evaluation, error)
	Hint(ctx context.Context, sessionID, problem, currentProgress string) (string, error)
}

var _ TutorClient = (*tutor.Client)(nil)
