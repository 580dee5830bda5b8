package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"taskmanager/internal/service"
	"taskmanager/internal/upload"
)

const uploadField = "files"

// DocumentHandler serves task document upload and download.
type DocumentHandler struct {
	svc service.DocumentService
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(svc service.DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

func incomingFile(fh *multipart.FileHeader) service.IncomingFile {
	return service.IncomingFile{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// Upload godoc
// @Summary Upload PDF files for a task (max 3 per task)
// @Description The whole batch is rejected if any file is not a non-empty PDF. When the task has fewer free slots than files, the first files fill the slots and the rest are discarded.
// @Tags tasks
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param files formData file true "PDF files"
// @Success 200 {object} TaskResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id}/upload [post]
func (h *DocumentHandler) Upload(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return respondError(c, upload.ErrEmptyBatch)
	}

	headers := form.File[uploadField]
	files := make([]service.IncomingFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, incomingFile(fh))
	}

	task, err := h.svc.Upload(c.Request().Context(), p, id, files)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newTaskResponse(task))
}

// Download godoc
// @Summary Download an uploaded PDF
// @Tags tasks
// @Produce application/pdf
// @Security BearerAuth
// @Param fileName path string true "Stored file name"
// @Success 200 {file} file
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/file/{fileName} [get]
func (h *DocumentHandler) Download(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}

	name := c.Param("fileName")
	rc, err := h.svc.Open(c.Request().Context(), p, name)
	if err != nil {
		return respondError(c, err)
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", name))
	return c.Stream(http.StatusOK, "application/pdf", rc)
}
