package handler

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"royalchat/internal/domain/service"
	"royalchat/pkg/errors"
	"royalchat/pkg/logger"
	"royalchat/pkg/response"
)

type FileHandler struct {
	fileService service.FileUploadService
	maxFileSize int64
}

func NewFileHandler(fileService service.FileUploadService) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		maxFileSize: 10 * 1024 * 1024,
	}
}

var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"audio/mpeg": true,
	"audio/ogg":  true,
	"audio/webm": true,
	"video/mp4":  true,
	"video/webm": true,
}

// UploadChatFile stores an attachment and returns its URL. The caller
// then sends a message referencing the URL; nothing links the two on the
// server side until that happens.
func (h *FileHandler) UploadChatFile(c echo.Context) error {
	url, err := h.upload(c, "chat")
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"fileUrl": url,
	})
}

func (h *FileHandler) UploadAvatar(c echo.Context) error {
	url, err := h.upload(c, "avatars")
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"fileUrl": url,
	})
}

func (h *FileHandler) upload(c echo.Context, folder string) (string, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return "", errors.BadRequest("Missing or invalid file", err)
	}

	if file.Size > h.maxFileSize {
		return "", errors.BadRequest(fmt.Sprintf("File size exceeds maximum allowed (%dMB)", h.maxFileSize/(1024*1024)), nil)
	}

	fileType := file.Header.Get("Content-Type")
	if !allowedUploadTypes[fileType] && !strings.HasPrefix(fileType, "image/") {
		logger.Warn("Rejected upload with content type %s", fileType)
		return "", errors.BadRequest("File type not supported", nil)
	}

	src, err := file.Open()
	if err != nil {
		return "", errors.Internal("Unable to read file", err)
	}
	defer src.Close()

	url, err := h.fileService.UploadFile(c.Request().Context(), src, fileType, folder)
	if err != nil {
		logger.Error("Upload failed: %v", err)
		return "", errors.Internal("Failed to upload file", err)
	}

	return url, nil
}
