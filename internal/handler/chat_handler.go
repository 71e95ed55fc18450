package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kachele/neuralsync-backend/internal/model"
	"github.com/kachele/neuralsync-backend/internal/response"
	"github.com/kachele/neuralsync-backend/internal/service"
	"github.com/kachele/neuralsync-backend/internal/tutor"
	"github.com/kachele/neuralsync-backend/internal/validator"
)

// ChatHandler serves the dialogue endpoints of a workspace.
type ChatHandler struct {
	dialogueService  *service.DialogueService
	workspaceService *service.WorkspaceService
}

func NewChatHandler(dialogueService *service.DialogueService, workspaceService *service.WorkspaceService) *ChatHandler {
	return &ChatHandler{dialogueService: dialogueService, workspaceService: workspaceService}
}

// SubmitMessage godoc
// POST /api/v1/workspaces/:id/messages
// Blocks until the tutor reply landed; messages stream over the
// workspace WebSocket, the response only carries the counters.
func (h *ChatHandler) SubmitMessage(c *gin.Context) {
	workspaceID := c.Param("id")

	var req model.SubmitMessageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.dialogueService.Submit(c.Request.Context(), workspaceID, req.Text); err != nil {
		h.failDialogue(c, err)
		return
	}

	stats, err := h.workspaceService.Stats(workspaceID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrWorkspaceNotFound)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// ActivateQuestion godoc
// POST /api/v1/workspaces/:id/questions/:index/activate
// Puts an interactive question into the pending slot ("answer now").
func (h *ChatHandler) ActivateQuestion(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.dialogueService.Activate(c.Param("id"), index); err != nil {
		h.failDialogue(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "activated"})
}

// Hint godoc
// POST /api/v1/workspaces/:id/hint
func (h *ChatHandler) Hint(c *gin.Context) {
	workspaceID := c.Param("id")

	if err := h.dialogueService.Hint(c.Request.Context(), workspaceID); err != nil {
		h.failDialogue(c, err)
		return
	}

	stats, err := h.workspaceService.Stats(workspaceID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrWorkspaceNotFound)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

func (h *ChatHandler) failDialogue(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkspaceNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrWorkspaceNotFound)
	case errors.Is(err, service.ErrEmptyMessage):
		response.Fail(c, http.StatusBadRequest, response.ErrEmptyMessage)
	case errors.Is(err, service.ErrNoActiveSession):
		response.Fail(c, http.StatusConflict, response.ErrNoActiveSession)
	case errors.Is(err, service.ErrOperationInFlight):
		response.Fail(c, http.StatusConflict, response.ErrOperationInFlight)
	case errors.Is(err, service.ErrNoPendingQuestion):
		response.Fail(c, http.StatusConflict, response.ErrNoPendingQuestion)
	case errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrQuestionNotFound)
	default:
		reason := tutor.Reason(err, response.GetMessage(response.ErrTutorUnavailable))
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrTutorUnavailable, reason)
	}
}
