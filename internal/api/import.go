package api

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/importer"
)

func (h *Handler) uploadDir() string {
	if h.opts.UploadDir != "" {
		return h.opts.UploadDir
	}
	return os.TempDir()
}

// SpoolUpload saves the upload under a random name in the upload dir; the caller
// removes it.
func (h *Handler) SpoolUpload(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > h.opts.MaxUploadBytes {
		return "", fmt.Errorf("file exceeds %d bytes", h.opts.MaxUploadBytes)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	path := filepath.Join(h.uploadDir(), "salesdash_import_"+uuid.NewString()+ext)
	if err := c.SaveUploadedFile(fh, path); err != nil {
		return "", err
	}
	return path, nil
}

// RunImport replaces the dataset with the uploaded file and forwards progress events
// to fn. It returns the final event.
func (h *Handler) RunImport(ctx context.Context, path, filename string, preserve bool, fn func(importer.ProgressEvent)) importer.ProgressEvent {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	ch := h.coordinator.Import(ctx, importer.ImportOptions{
		FilePath:         path,
		OriginalFilename: filename,
		PreserveStatuses: preserve,
	})
	return importer.Drain(ch, fn)
}

// Import replaces the dataset from an upload, streaming progress as SSE
// POST /api/import
func (h *Handler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	path, err := h.SpoolUpload(c, fh)
	if err != nil {
		h.logger.Warn("spool upload", zap.String("filename", fh.Filename), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to save upload: " + err.Error()})
		return
	}
	defer os.Remove(path)

	preserve := c.DefaultPostForm("preserveStatuses", "true") == "true"

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	h.RunImport(c.Request.Context(), path, filepath.Base(fh.Filename), preserve, func(event importer.ProgressEvent) {
		data, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", data)
		flusher.Flush()
	})
}
