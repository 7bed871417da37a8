package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billora/internal/service"
)

// FileHandler handles standalone file uploads. Schedule attachments are
// uploaded here first; the returned key is then referenced from the invoice
// payload.
type FileHandler struct {
	fileService service.FileService
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Upload handles POST /api/v1/files
func (h *FileHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "file is required")
		return
	}
	defer file.Close()

	key, err := h.fileService.Upload(c.Request.Context(), service.FolderAttachments, filePayload(file, header))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, gin.H{"key": key})
}

// PresignURL handles GET /api/v1/files/url?key=...
func (h *FileHandler) PresignURL(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "key query parameter is required")
		return
	}

	url, err := h.fileService.PresignURL(c.Request.Context(), key)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"url": url})
}
