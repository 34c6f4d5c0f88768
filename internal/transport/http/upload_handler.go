package http

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirerelay/internal/utils"
)

// UploadsRoute is where stored files are served from.
const UploadsRoute = "/uploads"

// UploadHandler stores attachments on disk.
type UploadHandler struct {
	dir      string
	maxBytes int64
	log      *zerolog.Logger
}

// NewUploadHandler creates an upload handler writing into dir.
func NewUploadHandler(dir string, maxBytes int64, logger *zerolog.Logger) *UploadHandler {
	return &UploadHandler{dir: dir, maxBytes: maxBytes, log: logger}
}

// UploadResponse is returned for a stored file. Path is what clients put in
// a message attachment.
type UploadResponse struct {
	Path         string `json:"path"`
	OriginalName string `json:"originalName"`
}

// Upload handles a multipart upload in field "file".
// POST /api/upload
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no file uploaded"})
		return
	}
	if header.Size > h.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large"})
		return
	}

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		h.log.Error().Err(err).Str("dir", h.dir).Msg("failed to create upload dir")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	name := utils.StoredFileName(header.Filename)
	if err := c.SaveUploadedFile(header, filepath.Join(h.dir, name)); err != nil {
		h.log.Error().Err(err).Str("file", name).Msg("failed to store upload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	identity, _ := identityFrom(c)
	h.log.Info().
		Int64("user_id", identity.ID).
		Str("file", name).
		Int64("size", header.Size).
		Msg("file uploaded")
	c.JSON(http.StatusOK, UploadResponse{
		Path:         UploadsRoute + "/" + name,
		OriginalName: filepath.Base(header.Filename),
	})
}
