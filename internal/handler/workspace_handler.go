package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kachele/neuralsync-backend/internal/model"
	"github.com/kachele/neuralsync-backend/internal/response"
	"github.com/kachele/neuralsync-backend/internal/service"
	"github.com/kachele/neuralsync-backend/internal/validator"
)

// WorkspaceHandler serves the workspace lifecycle endpoints.
type WorkspaceHandler struct {
	workspaceService *service.WorkspaceService
}

func NewWorkspaceHandler(workspaceService *service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

// OpenWorkspace godoc
// POST /api/v1/workspaces
func (h *WorkspaceHandler) OpenWorkspace(c *gin.Context) {
	var req model.OpenWorkspaceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ws, err := h.workspaceService.Open(c.Request.Context(), req.Mode, req.Title)
	if err != nil {
		if errors.Is(err, service.ErrInvalidMode) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidMode)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	snap, err := h.workspaceService.Snapshot(ws.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, snap)
}

// RetrySession godoc
// POST /api/v1/workspaces/:id/session
// Re-attempts tutor session creation for a degraded workspace.
func (h *WorkspaceHandler) RetrySession(c *gin.Context) {
	workspaceID := c.Param("id")

	if err := h.workspaceService.RetrySession(c.Request.Context(), workspaceID); err != nil {
		if errors.Is(err, service.ErrWorkspaceNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrWorkspaceNotFound)
			return
		}
		response.Fail(c, http.StatusBadGateway, response.ErrSessionCreate)
		return
	}

	snap, err := h.workspaceService.Snapshot(workspaceID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrWorkspaceNotFound)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// GetWorkspace godoc
// GET /api/v1/workspaces/:id
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	snap, err := h.workspaceService.Snapshot(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrWorkspaceNotFound)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// GetStats godoc
// GET /api/v1/workspaces/:id/stats
func (h *WorkspaceHandler) GetStats(c *gin.Context) {
	stats, err := h.workspaceService.Stats(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrWorkspaceNotFound)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// CloseWorkspace godoc
// DELETE /api/v1/workspaces/:id
func (h *WorkspaceHandler) CloseWorkspace(c *gin.Context) {
	if err := h.workspaceService.Close(c.Param("id")); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrWorkspaceNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "workspace closed"})
}
