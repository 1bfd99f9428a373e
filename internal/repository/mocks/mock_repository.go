// Package mocks provides mock implementations of repository interfaces for testing.
package mocks

import (
	"context"
	"sort"
	"sync"

	"memories-backend/internal/domain"
	"memories-backend/internal/repository"
)

// MockRepository is an in-memory UserRepository and MemoryRepository.
// This is useful for unit testing services without requiring a real database.
type MockRepository struct {
	mu sync.RWMutex

	users    map[int64]*domain.User
	memories map[int64]*domain.Memory
	nextUser int64
	nextMem  int64

	// For testing error scenarios
	shouldFailOn map[string]error
}

var (
	_ repository.UserRepository   = (*MockRepository)(nil)
	_ repository.MemoryRepository = (*MockRepository)(nil)
)

// NewMockRepository creates a new mock repository instance.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		users:        make(map[int64]*domain.User),
		memories:     make(map[int64]*domain.Memory),
		shouldFailOn: make(map[string]error),
	}
}

// SetError configures the mock to return an error for a specific method.
func (m *MockRepository) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn[method] = err
}

// ClearErrors removes all configured errors.
func (m *MockRepository) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn = make(map[string]error)
}

func (m *MockRepository) checkError(method string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shouldFailOn[method]
}

// User operations

func (m *MockRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if err := m.checkError("CreateUser"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}

	m.nextUser++
	user.ID = m.nextUser
	userCopy := *user
	m.users[user.ID] = &userCopy
	return nil
}

func (m *MockRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := m.checkError("FindUserByEmail"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			userCopy := *u
			return &userCopy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockRepository) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	if err := m.checkError("FindUserByID"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	userCopy := *u
	return &userCopy, nil
}

// Memory operations

func (m *MockRepository) CreateMemory(ctx context.Context, memory *domain.Memory) error {
	if err := m.checkError("CreateMemory"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextMem++
	memory.ID = m.nextMem
	m.memories[memory.ID] = cloneMemory(memory)
	return nil
}

func (m *MockRepository) FindMemory(ctx context.Context, userID, id int64) (*domain.Memory, error) {
	if err := m.checkError("FindMemory"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	mem, ok := m.memories[id]
	if !ok || !mem.OwnedBy(userID) {
		return nil, repository.ErrNotFound
	}
	return cloneMemory(mem), nil
}

func (m *MockRepository) FindMemories(ctx context.Context, query repository.MemoryQuery) ([]*domain.Memory, error) {
	if err := m.checkError("FindMemories"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.Memory
	for _, mem := range m.memories {
		if !mem.OwnedBy(query.UserID) {
			continue
		}
		if query.Category != "" && (mem.Category == nil || *mem.Category != query.Category) {
			continue
		}
		out = append(out, cloneMemory(mem))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockRepository) UpdateMemory(ctx context.Context, memory *domain.Memory) error {
	if err := m.checkError("UpdateMemory"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.memories[memory.ID]
	if !ok || !existing.OwnedBy(memory.UserID) {
		return repository.ErrNotFound
	}
	updated := cloneMemory(memory)
	updated.CreatedAt = existing.CreatedAt
	m.memories[memory.ID] = updated
	return nil
}

func (m *MockRepository) DeleteMemory(ctx context.Context, userID, id int64) error {
	if err := m.checkError("DeleteMemory"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	mem, ok := m.memories[id]
	if !ok || !mem.OwnedBy(userID) {
		return repository.ErrNotFound
	}
	delete(m.memories, id)
	return nil
}

// MemoryCount returns the number of stored memories across all users.
func (m *MockRepository) MemoryCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.memories)
}

func cloneMemory(mem *domain.Memory) *domain.Memory {
	c := *mem
	c.Category = cloneString(mem.Category)
	c.MediaURL = cloneString(mem.MediaURL)
	c.VoiceURL = cloneString(mem.VoiceURL)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
