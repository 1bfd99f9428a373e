// Package credential registers users and checks their passwords.
package credential

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"memories-backend/internal/domain"
	"memories-backend/internal/repository"
	"memories-backend/pkg/auth"
	appErrors "memories-backend/pkg/errors"
)

// Service defines the account operations.
type Service interface {
	// Register validates and stores a new account.
	Register(ctx context.Context, firstName, email, password string) (*domain.User, error)

	// Authenticate returns the user whose email and password match.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// UserByID loads an account by id.
	UserByID(ctx context.Context, id int64) (*domain.User, error)
}

// Recorder receives the outcome of register and login attempts.
type Recorder interface {
	RecordAuthAttempt(operation, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuthAttempt(string, string) {}

type service struct {
	users    repository.UserRepository
	hasher   *auth.PasswordHasher
	validate *validator.Validate
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// Option customises the service.
type Option func(*service)

// WithRecorder reports attempt outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(s *service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithClock replaces the clock used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService creates a credential service.
func NewService(users repository.UserRepository, hasher *auth.PasswordHasher, logger *zap.Logger, opts ...Option) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &service{
		users:    users,
		hasher:   hasher,
		validate: newValidator(),
		recorder: nopRecorder{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Register(ctx context.Context, firstName, email, password string) (*domain.User, error) {
	user, err := s.register(ctx, firstName, email, password)
	s.recorder.RecordAuthAttempt("register", outcome(err))
	return user, err
}

func (s *service) register(ctx context.Context, firstName, email, password string) (*domain.User, error) {
	if err := s.validate.Struct(registration{FirstName: firstName, Email: email, Password: password}); err != nil {
		tags := failedTags(err)
		switch {
		case tags["required"]:
			return nil, appErrors.NewValidationError(msgRegisterRequired)
		case tags[tagEmailFormat]:
			return nil, appErrors.NewFormatError(msgInvalidEmail)
		case tags[tagStrongPassword]:
			return nil, appErrors.NewWeakPasswordError(msgWeakPassword)
		default:
			return nil, appErrors.NewValidationError(msgRegisterRequired).WithCause(err)
		}
	}

	if _, err := s.users.FindUserByEmail(ctx, email); err == nil {
		return nil, appErrors.NewConflictError(msgEmailTaken)
	} else if !repository.IsNotFound(err) {
		return nil, appErrors.NewDatabaseError("find user by email", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, appErrors.NewWeakPasswordError(msgWeakPassword).WithCause(err)
		}
		return nil, appErrors.NewInternalError("failed to hash password").WithCause(err)
	}

	user := &domain.User{
		FirstName:    firstName,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			return nil, appErrors.NewConflictError(msgEmailTaken).WithCause(err)
		}
		return nil, appErrors.NewDatabaseError("create user", err)
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID))
	return user, nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.authenticate(ctx, email, password)
	s.recorder.RecordAuthAttempt("login", outcome(err))
	return user, err
}

func (s *service) authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if err := s.validate.Struct(login{Email: email, Password: password}); err != nil {
		return nil, appErrors.NewValidationError(msgLoginRequired)
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewInvalidCredentialsError()
		}
		return nil, appErrors.NewDatabaseError("find user by email", err)
	}

	if !s.hasher.Matches(user.PasswordHash, password) {
		s.logger.Debug("Password mismatch", zap.Int64("user_id", user.ID))
		return nil, appErrors.NewInvalidCredentialsError()
	}
	return user, nil
}

func (s *service) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFoundError("User not found")
		}
		return nil, appErrors.NewDatabaseError("find user by id", err)
	}
	return user, nil
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	if appErr := appErrors.GetAppError(err); appErr != nil {
		return string(appErr.Type)
	}
	return "error"
}
