package tutor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kachele/neuralsync-backend/internal/config"
	"github.com/kachele/neuralsync-backend/internal/model"
)

// Client talks to the external content-analysis service. All endpoints
// are JSON-over-HTTP POST; failure classification follows three classes:
// transport errors (wrapped), malformed bodies (ErrMalformedResponse)
// and explicit rejections (*ServiceError).
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a tutor-service client with the configured timeout.
func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.TutorBaseURL, "/"),
		http:    &http.Client{Timeout: cfg.TutorTimeout},
		log:     log.With().Str("component", "tutor_client").Logger(),
	}
}

// Evaluation is the tutor's verdict on a user's answer.
type Evaluation struct {
	IsCorrect     bool   `json:"is_correct"`
	Feedback      string `json:"feedback"`
	Encouragement string `json:"encouragement,omitempty"`
}

// FirstQuestion is a proactively generated opening question.
// IsFallback is set when the service itself substituted a canned one.
type FirstQuestion struct {
	Question   string `json:"question"`
	IsFallback bool   `json:"is_fallback"`
}

// AnalyzeParams describes one upload-for-analysis call.
type AnalyzeParams struct {
	SessionID string
	Filename  string
	Size      int64
	File      io.Reader
	Context   string
	SpeedMode bool
	// OnProgress receives monotonically increasing transfer percentages
	// in (0,100]. Optional.
	OnProgress func(percent int)
}

// CreateSession registers a new learning session with the tutor service
// and returns its identifier.
func (c *Client) CreateSession(ctx context.Context, mode model.Mode, title string) (string, error) {
	var out struct {
		SessionID string `json:"session_id"`
	}
	err := c.postJSON(ctx, "/session/create/", map[string]interface{}{
		"mode":  mode,
		"title": title,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.SessionID, nil
}

// Analyze uploads a file as multipart form data and returns the analysis
// payload. The request streams the file; transfer progress is reported
// through p.OnProgress.
func (c *Client) Analyze(ctx context.Context, p AnalyzeParams) (*model.Analysis, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	src := p.File
	if p.OnProgress != nil && p.Size > 0 {
		src = &progressReader{r: p.File, total: p.Size, onProgress: p.OnProgress}
	}

	go func() {
		err := writeAnalyzeForm(mw, p, src)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/", pr)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tutor upload: %w", err)
	}
	defer res.Body.Close()

	var out struct {
		Analysis *model.Analysis `json:"analysis"`
	}
	if err := decodeResponse(res, &out); err != nil {
		return nil, err
	}
	if out.Analysis == nil {
		return nil, ErrMalformedResponse
	}
	return out.Analysis, nil
}

// GenerateFirstQuestion asks the tutor service for a proactive opening
// question matching the analyzed content.
func (c *Client) GenerateFirstQuestion(ctx context.Context, sessionID string, mode model.Mode) (*FirstQuestion, error) {
	var out FirstQuestion
	err := c.postJSON(ctx, "/first-question/", map[string]interface{}{
		"session_id": sessionID,
		"mode":       mode,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Question == "" {
		return nil, ErrMalformedResponse
	}
	return &out, nil
}

// Ask sends a free-form user question and returns the tutor's response.
func (c *Client) Ask(ctx context.Context, sessionID, question string) (string, error) {
	var out struct {
		Response string `json:"response"`
	}
	err := c.postJSON(ctx, "/ask/", map[string]interface{}{
		"session_id": sessionID,
		"question":   question,
		"context":    map[string]interface{}{},
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Response, nil
}

// Evaluate submits a user's answer to a pending question for grading.
func (c *Client) Evaluate(ctx context.Context, sessionID, question, userAnswer, correctAnswer string) (*Evaluation, error) {
	var out struct {
		Evaluation *Evaluation `json:"evaluation"`
	}
	err := c.postJSON(ctx, "/answer/", map[string]interface{}{
		"session_id":     sessionID,
		"question":       question,
		"user_answer":    userAnswer,
		"correct_answer": correctAnswer,
		"context":        map[string]interface{}{},
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Evaluation == nil {
		return nil, ErrMalformedResponse
	}
	return out.Evaluation, nil
}

// Hint requests a single subtle hint for the given problem.
func (c *Client) Hint(ctx context.Context, sessionID, problem, currentProgress string) (string, error) {
	var out struct {
		Hint string `json:"hint"`
	}
	err := c.postJSON(ctx, "/hint/", map[string]interface{}{
		"session_id":       sessionID,
		"problem":          problem,
		"current_progress": currentProgress,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Hint, nil
}

// ────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ────────────────────────────────────────────────────────────────────────────

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tutor request: %w", err)
	}
	defer res.Body.Close()

	return decodeResponse(res, out)
}

// decodeResponse classifies a tutor-service reply and, on success,
// decodes its body into out.
func decodeResponse(res *http.Response, out interface{}) error {
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	// The service reports rejections both as non-2xx statuses and as
	// success:false bodies; both carry an optional "error" string.
	var env struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		if json.Unmarshal(raw, &env) == nil {
			return &ServiceError{Message: env.Error}
		}
		return &ServiceError{}
	}

	if err := json.Unmarshal(raw, &env); err != nil {
		return ErrMalformedResponse
	}
	if env.Success == nil || !*env.Success {
		return &ServiceError{Message: env.Error}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return ErrMalformedResponse
		}
	}
	return nil
}

func writeAnalyzeForm(mw *multipart.Writer, p AnalyzeParams, src io.Reader) error {
	if err := mw.WriteField("session_id", p.SessionID); err != nil {
		return err
	}
	if err := mw.WriteField("context", p.Context); err != nil {
		return err
	}
	if err := mw.WriteField("speed_mode", strconv.FormatBool(p.SpeedMode)); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("file", p.Filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, src)
	return err
}

// progressReader reports transfer percentage as the wrapped reader is
// consumed. It only ever emits increases, so progress is monotonic by
// construction.
type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	last       int
	onProgress func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		pct := int(p.read * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct > p.last {
			p.last = pct
			p.onProgress(pct)
		}
	}
	return n, err
}
