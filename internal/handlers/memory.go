package handlers

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"memories-backend/internal/domain"
	"memories-backend/internal/service/memory"
	"memories-backend/pkg/api"
	appErrors "memories-backend/pkg/errors"
)

// multipartMemory is the part of a multipart body kept in memory; larger
// bodies spill to temporary files.
const multipartMemory = 8 << 20

// MemoryHandler serves the owner-scoped memory endpoints.
type MemoryHandler struct {
	memories memory.Service
	errs     ErrorResponder
	logger   *zap.Logger
}

// NewMemoryHandler creates a memory handler.
func NewMemoryHandler(memories memory.Service, errs ErrorResponder, logger *zap.Logger) *MemoryHandler {
	return &MemoryHandler{memories: memories, errs: errs, logger: logger}
}

// Create handles POST /api/memories/
// @Summary Create a memory
// @Description Accepts multipart/form-data with optional media and voice files, or JSON without attachments.
// @Tags memories
// @Accept mpfd,json
// @Produce json
// @Param title formData string true "Title"
// @Param content formData string true "Content"
// @Param category formData string false "Category"
// @Param media formData file false "Image or video"
// @Param voice formData file false "Voice note"
// @Success 201 {object} api.MemoryEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 413 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /api/memories/ [post]
func (h *MemoryHandler) Create(w http.ResponseWriter, r *http.Request, user *domain.User) {
	p, err := readPayload(r, "media")
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	defer p.close()

	m, err := h.memories.Create(r.Context(), user.ID, memory.CreateInput{
		Title:    deref(p.title),
		Content:  deref(p.content),
		Category: p.category,
		Media:    p.media,
		Voice:    p.voice,
	})
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	api.Success(w, http.StatusCreated, api.MemoryEnvelope{
		Message: fmt.Sprintf("%s, your memory has been saved!", user),
		Memory:  toAPIMemory(m, ""),
	})
}

// List handles GET /api/memories/
// @Summary List the caller's memories
// @Tags memories
// @Produce json
// @Param category query string false "Exact category filter"
// @Success 200 {object} api.MemoryListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /api/memories/ [get]
func (h *MemoryHandler) List(w http.ResponseWriter, r *http.Request, user *domain.User) {
	memories, err := h.memories.List(r.Context(), user.ID, r.URL.Query().Get("category"))
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	base := baseURL(r)
	out := make([]api.Memory, 0, len(memories))
	for _, m := range memories {
		out = append(out, toAPIMemory(m, base))
	}

	api.Success(w, http.StatusOK, api.MemoryListResponse{
		Message:  fmt.Sprintf("%s, here are your memories.", user),
		Memories: out,
	})
}

// Get handles GET /api/memories/{id}
// @Summary Get one memory
// @Tags memories
// @Produce json
// @Param id path int true "Memory ID"
// @Success 200 {object} api.Memory
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /api/memories/{id} [get]
func (h *MemoryHandler) Get(w http.ResponseWriter, r *http.Request, user *domain.User) {
	id, err := memoryID(r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	m, err := h.memories.Get(r.Context(), user.ID, id)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, toAPIMemory(m, baseURL(r)))
}

// Update handles PUT /api/memories/{id}
// @Summary Update a memory
// @Description Omitted fields keep their values. An empty category clears it. The media file may be sent as "media" or "file".
// @Tags memories
// @Accept mpfd,json
// @Produce json
// @Param id path int true "Memory ID"
// @Param request body api.UpdateMemoryRequest false "JSON variant"
// @Success 200 {object} api.MemoryEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /api/memories/{id} [put]
func (h *MemoryHandler) Update(w http.ResponseWriter, r *http.Request, user *domain.User) {
	id, err := memoryID(r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	p, err := readPayload(r, "media", "file")
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	defer p.close()

	m, err := h.memories.Update(r.Context(), user.ID, id, memory.UpdateInput{
		Title:    p.title,
		Content:  p.content,
		Category: p.category,
		Media:    p.media,
		Voice:    p.voice,
	})
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, api.MemoryEnvelope{
		Message: "Memory updated successfully!",
		Memory:  toAPIMemory(m, ""),
	})
}

// Delete handles DELETE /api/memories/{id}
// @Summary Delete a memory
// @Tags memories
// @Produce json
// @Param id path int true "Memory ID"
// @Success 200 {object} api.MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /api/memories/{id} [delete]
func (h *MemoryHandler) Delete(w http.ResponseWriter, r *http.Request, user *domain.User) {
	id, err := memoryID(r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	if err := h.memories.Delete(r.Context(), user.ID, id); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, api.MessageResponse{Message: "Memory deleted successfully!"})
}

// memoryID parses the {id} route parameter. Anything that is not a positive
// integer is treated like an unknown memory.
func memoryID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.NewNotFoundError("Memory not found")
	}
	return id, nil
}

// payload holds the memory fields of a request in any accepted encoding.
// A nil field was not sent.
type payload struct {
	title, content, category *string
	media, voice             *memory.Upload
	closers                  []io.Closer
	form                     *multipart.Form
}

func (p *payload) close() {
	for _, c := range p.closers {
		c.Close()
	}
	if p.form != nil {
		p.form.RemoveAll()
	}
}

// readPayload accepts multipart/form-data, urlencoded forms and JSON.
// mediaFields lists the form file names accepted for the media attachment,
// in order of preference.
func readPayload(r *http.Request, mediaFields ...string) (*payload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			if isMaxBytes(err) {
				return nil, err
			}
			return nil, appErrors.NewValidationError("Invalid multipart body").WithCause(err)
		}
		p := &payload{form: r.MultipartForm}
		p.readValues(r.PostForm)

		for _, field := range mediaFields {
			up, err := p.openFile(r.MultipartForm, field)
			if err != nil {
				p.close()
				return nil, err
			}
			if up != nil {
				p.media = up
				break
			}
		}
		up, err := p.openFile(r.MultipartForm, "voice")
		if err != nil {
			p.close()
			return nil, err
		}
		p.voice = up
		return p, nil

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			if isMaxBytes(err) {
				return nil, err
			}
			return nil, appErrors.NewValidationError("Invalid form body").WithCause(err)
		}
		p := &payload{}
		p.readValues(r.PostForm)
		return p, nil

	default:
		var req api.UpdateMemoryRequest
		if err := decodeJSON(r, &req); err != nil {
			return nil, err
		}
		return &payload{title: req.Title, content: req.Content, category: req.Category}, nil
	}
}

func (p *payload) readValues(values map[string][]string) {
	get := func(key string) *string {
		if vs, ok := values[key]; ok && len(vs) > 0 {
			v := vs[0]
			return &v
		}
		return nil
	}
	p.title = get("title")
	p.content = get("content")
	p.category = get("category")
}

// openFile returns the first file sent under field, or nil when there is none.
func (p *payload) openFile(form *multipart.Form, field string) (*memory.Upload, error) {
	headers := form.File[field]
	if len(headers) == 0 || headers[0].Filename == "" {
		return nil, nil
	}

	f, err := headers[0].Open()
	if err != nil {
		return nil, appErrors.NewInternalError("Could not read upload").WithCause(err)
	}
	p.closers = append(p.closers, f)
	return &memory.Upload{Filename: headers[0].Filename, Content: f}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
