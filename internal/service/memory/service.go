// Package memory provides owner-scoped CRUD for memories and their attachments.
package memory

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"memories-backend/internal/domain"
	"memories-backend/internal/infrastructure/storage"
	"memories-backend/internal/repository"
	appErrors "memories-backend/pkg/errors"
)

const (
	msgTitleContentRequired = "Title and content are required."
	msgNotFound             = "Memory not found"
)

// Upload is an attachment as received from the client.
type Upload struct {
	Filename string
	Content  io.Reader
}

// CreateInput carries the fields of a new memory.
type CreateInput struct {
	Title    string
	Content  string
	Category *string
	Media    *Upload
	Voice    *Upload
}

// UpdateInput carries the fields to change. Nil fields keep their stored values.
type UpdateInput struct {
	Title    *string
	Content  *string
	Category *string // empty string clears the category
	Media    *Upload
	Voice    *Upload
}

// Service defines the memory operations. Every call is scoped to ownerID;
// memories of other users behave as if they did not exist.
type Service interface {
	Create(ctx context.Context, ownerID int64, in CreateInput) (*domain.Memory, error)
	List(ctx context.Context, ownerID int64, category string) ([]*domain.Memory, error)
	Get(ctx context.Context, ownerID, id int64) (*domain.Memory, error)
	Update(ctx context.Context, ownerID, id int64, in UpdateInput) (*domain.Memory, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type fields struct {
	Title   string `validate:"required"`
	Content string `validate:"required"`
}

// Recorder receives memory lifecycle events.
type Recorder interface {
	RecordMemoryCreated()
	RecordMemoryDeleted()
	RecordUpload(kind string)
}

type nopRecorder struct{}

func (nopRecorder) RecordMemoryCreated() {}
func (nopRecorder) RecordMemoryDeleted() {}
func (nopRecorder) RecordUpload(string)  {}

type service struct {
	repo     repository.MemoryRepository
	files    storage.Store
	validate *validator.Validate
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// Option customises the service.
type Option func(*service)

// WithClock replaces the clock used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithRecorder reports lifecycle events to r.
func WithRecorder(r Recorder) Option {
	return func(s *service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewService creates a memory service.
func NewService(repo repository.MemoryRepository, files storage.Store, logger *zap.Logger, opts ...Option) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &service{
		repo:     repo,
		files:    files,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		recorder: nopRecorder{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) timestamp() time.Time {
	// Postgres keeps microseconds.
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *service) Create(ctx context.Context, ownerID int64, in CreateInput) (*domain.Memory, error) {
	if err := s.check(in.Title, in.Content); err != nil {
		return nil, err
	}

	mediaURL, err := s.saveUpload(ctx, "media", in.Media)
	if err != nil {
		return nil, err
	}
	voiceURL, err := s.saveUpload(ctx, "voice", in.Voice)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	m := &domain.Memory{
		UserID:    ownerID,
		Title:     in.Title,
		Content:   in.Content,
		Category:  normalizeCategory(in.Category),
		MediaURL:  mediaURL,
		VoiceURL:  voiceURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateMemory(ctx, m); err != nil {
		return nil, appErrors.NewDatabaseError("create memory", err)
	}

	s.recorder.RecordMemoryCreated()
	s.logger.Info("Memory created", zap.Int64("memory_id", m.ID), zap.Int64("user_id", ownerID))
	return m, nil
}

func (s *service) List(ctx context.Context, ownerID int64, category string) ([]*domain.Memory, error) {
	memories, err := s.repo.FindMemories(ctx, repository.MemoryQuery{UserID: ownerID, Category: category})
	if err != nil {
		return nil, appErrors.NewDatabaseError("list memories", err)
	}
	if memories == nil {
		memories = []*domain.Memory{}
	}
	return memories, nil
}

func (s *service) Get(ctx context.Context, ownerID, id int64) (*domain.Memory, error) {
	m, err := s.repo.FindMemory(ctx, ownerID, id)
	if err != nil {
		return nil, s.lookupError("find memory", err)
	}
	return m, nil
}

func (s *service) Update(ctx context.Context, ownerID, id int64, in UpdateInput) (*domain.Memory, error) {
	m, err := s.repo.FindMemory(ctx, ownerID, id)
	if err != nil {
		return nil, s.lookupError("find memory", err)
	}

	if in.Title != nil {
		m.Title = *in.Title
	}
	if in.Content != nil {
		m.Content = *in.Content
	}
	if in.Category != nil {
		m.Category = normalizeCategory(in.Category)
	}
	if err := s.check(m.Title, m.Content); err != nil {
		return nil, err
	}

	if url, err := s.saveUpload(ctx, "media", in.Media); err != nil {
		return nil, err
	} else if url != nil {
		m.MediaURL = url
	}
	if url, err := s.saveUpload(ctx, "voice", in.Voice); err != nil {
		return nil, err
	} else if url != nil {
		m.VoiceURL = url
	}

	m.UpdatedAt = s.timestamp()
	if err := s.repo.UpdateMemory(ctx, m); err != nil {
		return nil, s.lookupError("update memory", err)
	}

	s.logger.Info("Memory updated", zap.Int64("memory_id", m.ID), zap.Int64("user_id", ownerID))
	return m, nil
}

func (s *service) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.repo.DeleteMemory(ctx, ownerID, id); err != nil {
		return s.lookupError("delete memory", err)
	}
	s.recorder.RecordMemoryDeleted()
	s.logger.Info("Memory deleted", zap.Int64("memory_id", id), zap.Int64("user_id", ownerID))
	return nil
}

func (s *service) check(title, content string) error {
	err := s.validate.Struct(fields{Title: title, Content: content})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return appErrors.NewValidationError(msgTitleContentRequired)
	}
	return appErrors.NewValidationError(msgTitleContentRequired).WithCause(err)
}

// saveUpload stores an allowed attachment and returns its public path.
// Missing, disallowed or unnameable uploads yield nil without error.
func (s *service) saveUpload(ctx context.Context, kind string, up *Upload) (*string, error) {
	if up == nil || up.Filename == "" || up.Content == nil {
		return nil, nil
	}
	if !storage.AllowedFile(up.Filename) {
		s.logger.Debug("Dropping upload with disallowed extension", zap.String("filename", up.Filename))
		return nil, nil
	}
	name := storage.SanitizeFilename(up.Filename)
	if name == "" {
		s.logger.Debug("Dropping upload with unusable name", zap.String("filename", up.Filename))
		return nil, nil
	}

	if err := s.files.Save(ctx, name, up.Content); err != nil {
		return nil, appErrors.NewStorageError("save upload", err)
	}
	s.recorder.RecordUpload(kind)
	url := storage.PublicPath(name)
	return &url, nil
}

func (s *service) lookupError(op string, err error) error {
	if repository.IsNotFound(err) {
		return appErrors.NewNotFoundError(msgNotFound)
	}
	return appErrors.NewDatabaseError(op, err)
}

func normalizeCategory(c *string) *string {
	if c == nil || *c == "" {
		return nil
	}
	v := *c
	return &v
}
