package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kachele/neuralsync-backend/internal/response"
	"github.com/kachele/neuralsync-backend/internal/service"
	"github.com/kachele/neuralsync-backend/internal/tutor"
)

// UploadHandler serves the content upload endpoint.
type UploadHandler struct {
	uploadService    *service.UploadService
	workspaceService *service.WorkspaceService
}

func NewUploadHandler(uploadService *service.UploadService, workspaceService *service.WorkspaceService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, workspaceService: workspaceService}
}

// Upload godoc
// POST /api/v1/workspaces/:id/upload
// Multipart form: file (required), context, speed_mode.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	err = h.uploadService.Submit(c.Request.Context(), service.UploadParams{
		WorkspaceID: c.Param("id"),
		Filename:    fileHeader.Filename,
		Size:        fileHeader.Size,
		File:        file,
		Context:     c.PostForm("context"),
		SpeedMode:   c.PostForm("speed_mode") == "true",
	})
	if err != nil {
		h.failUpload(c, err)
		return
	}

	snap, err := h.workspaceService.Snapshot(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrWorkspaceNotFound)
		return
	}
	response.Success(c, http.StatusOK, snap.Analysis)
}

func (h *UploadHandler) failUpload(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkspaceNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrWorkspaceNotFound)
	case errors.Is(err, service.ErrNoActiveSession):
		response.Fail(c, http.StatusConflict, response.ErrNoActiveSession)
	case errors.Is(err, service.ErrUploadInFlight):
		response.Fail(c, http.StatusConflict, response.ErrUploadInFlight)
	case errors.Is(err, service.ErrUnsupportedFile):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
	default:
		reason := tutor.Reason(err, response.GetMessage(response.ErrUploadFailed))
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrUploadFailed, reason)
	}
}
