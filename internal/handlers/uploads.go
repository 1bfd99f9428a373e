package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"memories-backend/internal/infrastructure/storage"
	appErrors "memories-backend/pkg/errors"
)

// UploadHandler serves stored attachments. Files are public to anyone who
// knows the name.
type UploadHandler struct {
	files  storage.Store
	errs   ErrorResponder
	logger *zap.Logger
}

// NewUploadHandler creates an upload handler.
func NewUploadHandler(files storage.Store, errs ErrorResponder, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{files: files, errs: errs, logger: logger}
}

// Serve handles GET /uploads/{filename}
// @Summary Download an attachment
// @Tags uploads
// @Produce octet-stream
// @Param filename path string true "Stored file name"
// @Success 200 {file} binary
// @Failure 404 {object} errors.ErrorResponse
// @Router /uploads/{filename} [get]
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	rc, err := h.files.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.errs.Handle(w, r, appErrors.NewNotFoundError("File not found"))
			return
		}
		h.errs.Handle(w, r, appErrors.NewStorageError("open upload", err))
		return
	}
	defer rc.Close()

	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, name, time.Time{}, rs)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("Upload stream interrupted", zap.String("filename", name), zap.Error(err))
	}
}
