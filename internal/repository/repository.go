// Package repository defines the data access interfaces for users and memories.
//
// Every memory operation takes the owner's id alongside the memory id, so an
// implementation can never return or touch a row that belongs to someone else.
package repository

import (
	"context"
	"errors"

	"memories-backend/internal/domain"
)

var (
	// ErrNotFound is returned when no row matches, including rows owned by another user.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository persists user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// MemoryQuery selects the memories listed for one owner.
type MemoryQuery struct {
	UserID   int64
	Category string // exact match; empty means all categories
}

// MemoryRepository persists memories scoped by owner.
type MemoryRepository interface {
	CreateMemory(ctx context.Context, memory *domain.Memory) error
	FindMemory(ctx context.Context, userID, id int64) (*domain.Memory, error)
	FindMemories(ctx context.Context, query MemoryQuery) ([]*domain.Memory, error)
	UpdateMemory(ctx context.Context, memory *domain.Memory) error
	DeleteMemory(ctx context.Context, userID, id int64) error
}

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate reports whether err is ErrDuplicate.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
