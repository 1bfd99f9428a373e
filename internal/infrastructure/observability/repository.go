package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"memories-backend/internal/domain"
	"memories-backend/internal/repository"
)

// Repository is the combined data access surface that gets instrumented.
type Repository interface {
	repository.UserRepository
	repository.MemoryRepository
}

// InstrumentRepository wraps repo so every call records a span and, when
// collector is non-nil, an operation count and latency.
func InstrumentRepository(repo Repository, tracer trace.Tracer, collector *Collector) Repository {
	return &instrumentedRepository{inner: repo, tracer: tracer, metrics: collector}
}

type instrumentedRepository struct {
	inner   Repository
	tracer  trace.Tracer
	metrics *Collector
}

func (r *instrumentedRepository) observe(ctx context.Context, op, table string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	ctx, span := r.tracer.Start(ctx, "repository."+op, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if r.metrics != nil {
		var failed error
		if err != nil && !errors.Is(err, repository.ErrNotFound) && !errors.Is(err, repository.ErrDuplicate) {
			failed = err
		}
		r.metrics.RecordDBOperation(op, table, time.Since(start), failed)
	}
	return err
}

func (r *instrumentedRepository) CreateUser(ctx context.Context, user *domain.User) error {
	return r.observe(ctx, "CreateUser", "users", nil, func(ctx context.Context) error {
		return r.inner.CreateUser(ctx, user)
	})
}

func (r *instrumentedRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user *domain.User
	err := r.observe(ctx, "FindUserByEmail", "users", nil, func(ctx context.Context) error {
		var err error
		user, err = r.inner.FindUserByEmail(ctx, email)
		return err
	})
	return user, err
}

func (r *instrumentedRepository) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User
	attrs := []attribute.KeyValue{attribute.Int64("user.id", id)}
	err := r.observe(ctx, "FindUserByID", "users", attrs, func(ctx context.Context) error {
		var err error
		user, err = r.inner.FindUserByID(ctx, id)
		return err
	})
	return user, err
}

func (r *instrumentedRepository) CreateMemory(ctx context.Context, memory *domain.Memory) error {
	attrs := []attribute.KeyValue{attribute.Int64("user.id", memory.UserID)}
	return r.observe(ctx, "CreateMemory", "memories", attrs, func(ctx context.Context) error {
		return r.inner.CreateMemory(ctx, memory)
	})
}

func (r *instrumentedRepository) FindMemory(ctx context.Context, userID, id int64) (*domain.Memory, error) {
	var memory *domain.Memory
	attrs := []attribute.KeyValue{attribute.Int64("user.id", userID), attribute.Int64("memory.id", id)}
	err := r.observe(ctx, "FindMemory", "memories", attrs, func(ctx context.Context) error {
		var err error
		memory, err = r.inner.FindMemory(ctx, userID, id)
		return err
	})
	return memory, err
}

func (r *instrumentedRepository) FindMemories(ctx context.Context, query repository.MemoryQuery) ([]*domain.Memory, error) {
	var memories []*domain.Memory
	attrs := []attribute.KeyValue{
		attribute.Int64("user.id", query.UserID),
		attribute.String("memory.category", query.Category),
	}
	err := r.observe(ctx, "FindMemories", "memories", attrs, func(ctx context.Context) error {
		var err error
		memories, err = r.inner.FindMemories(ctx, query)
		return err
	})
	return memories, err
}

func (r *instrumentedRepository) UpdateMemory(ctx context.Context, memory *domain.Memory) error {
	attrs := []attribute.KeyValue{attribute.Int64("user.id", memory.UserID), attribute.Int64("memory.id", memory.ID)}
	return r.observe(ctx, "UpdateMemory", "memories", attrs, func(ctx context.Context) error {
		return r.inner.UpdateMemory(ctx, memory)
	})
}

func (r *instrumentedRepository) DeleteMemory(ctx context.Context, userID, id int64) error {
	attrs := []attribute.KeyValue{attribute.Int64("user.id", userID), attribute.Int64("memory.id", id)}
	return r.observe(ctx, "DeleteMemory", "memories", attrs, func(ctx context.Context) error {
		return r.inner.DeleteMemory(ctx, userID, id)
	})
}
