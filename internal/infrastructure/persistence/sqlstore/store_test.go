package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memories-backend/internal/domain"
	"memories-backend/internal/repository"
)

var (
	_ repository.UserRepository   = (*Store)(nil)
	_ repository.MemoryRepository = (*Store)(nil)
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "memories.db")
	s, err := Open(context.Background(), DriverSQLite, dsn, Options{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, email string) *domain.User {
	t.Helper()
	u := &domain.User{
		FirstName:    "Ana",
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func strp(s string) *string { return &s }

func TestStore_Users(t *testing.T) {
	ctx := context.Background()

	t.Run("Should assign an id and find the user by email and id", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "ana@example.com")
		assert.NotZero(t, u.ID)

		byEmail, err := s.FindUserByEmail(ctx, "ana@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)
		assert.Equal(t, "Ana", byEmail.FirstName)
		assert.Equal(t, "hash", byEmail.PasswordHash)
		assert.True(t, u.CreatedAt.Equal(byEmail.CreatedAt))

		byID, err := s.FindUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", byID.Email)
	})

	t.Run("Should reject a second user with the same email", func(t *testing.T) {
		s := newTestStore(t)
		seedUser(t, s, "dup@example.com")

		err := s.CreateUser(ctx, &domain.User{FirstName: "B", Email: "dup@example.com", PasswordHash: "x", CreatedAt: time.Now()})
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("Should report unknown users as not found", func(t *testing.T) {
		s := newTestStore(t)

		_, err := s.FindUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)

		_, err = s.FindUserByID(ctx, 42)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestStore_Memories(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)

	newMemory := func(userID int64, title string, category *string) *domain.Memory {
		return &domain.Memory{
			UserID:    userID,
			Title:     title,
			Content:   title + " content",
			Category:  category,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	t.Run("Should round-trip a memory with nullable fields", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "a@example.com")

		m := newMemory(u.ID, "Trip", strp("travel"))
		m.MediaURL = strp("/uploads/beach.jpg")
		require.NoError(t, s.CreateMemory(ctx, m))
		assert.NotZero(t, m.ID)

		got, err := s.FindMemory(ctx, u.ID, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "Trip", got.Title)
		assert.Equal(t, "Trip content", got.Content)
		require.NotNil(t, got.Category)
		assert.Equal(t, "travel", *got.Category)
		require.NotNil(t, got.MediaURL)
		assert.Equal(t, "/uploads/beach.jpg", *got.MediaURL)
		assert.Nil(t, got.VoiceURL)
		assert.True(t, now.Equal(got.CreatedAt))
	})

	t.Run("Should scope reads and writes to the owner", func(t *testing.T) {
		s := newTestStore(t)
		owner := seedUser(t, s, "owner@example.com")
		other := seedUser(t, s, "other@example.com")

		m := newMemory(owner.ID, "Private", nil)
		require.NoError(t, s.CreateMemory(ctx, m))

		_, err := s.FindMemory(ctx, other.ID, m.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		list, err := s.FindMemories(ctx, repository.MemoryQuery{UserID: other.ID})
		require.NoError(t, err)
		assert.Empty(t, list)

		hijack := *m
		hijack.UserID = other.ID
		hijack.Title = "Stolen"
		assert.ErrorIs(t, s.UpdateMemory(ctx, &hijack), repository.ErrNotFound)
		assert.ErrorIs(t, s.DeleteMemory(ctx, other.ID, m.ID), repository.ErrNotFound)

		got, err := s.FindMemory(ctx, owner.ID, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "Private", got.Title)
	})

	t.Run("Should list in insertion order and filter by category", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "list@example.com")

		for _, m := range []*domain.Memory{
			newMemory(u.ID, "first", strp("work")),
			newMemory(u.ID, "second", nil),
			newMemory(u.ID, "third", strp("work")),
		} {
			require.NoError(t, s.CreateMemory(ctx, m))
		}

		all, err := s.FindMemories(ctx, repository.MemoryQuery{UserID: u.ID})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "first", all[0].Title)
		assert.Equal(t, "third", all[2].Title)

		work, err := s.FindMemories(ctx, repository.MemoryQuery{UserID: u.ID, Category: "work"})
		require.NoError(t, err)
		require.Len(t, work, 2)
		assert.Equal(t, "first", work[0].Title)
		assert.Equal(t, "third", work[1].Title)
	})

	t.Run("Should update and delete owned memories", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "upd@example.com")

		m := newMemory(u.ID, "Draft", strp("misc"))
		require.NoError(t, s.CreateMemory(ctx, m))

		m.Title = "Final"
		m.Category = nil
		m.VoiceURL = strp("/uploads/note.m4a")
		m.UpdatedAt = now.Add(time.Hour)
		require.NoError(t, s.UpdateMemory(ctx, m))

		got, err := s.FindMemory(ctx, u.ID, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "Final", got.Title)
		assert.Nil(t, got.Category)
		require.NotNil(t, got.VoiceURL)
		assert.Equal(t, "/uploads/note.m4a", *got.VoiceURL)
		assert.True(t, now.Add(time.Hour).Equal(got.UpdatedAt))

		require.NoError(t, s.DeleteMemory(ctx, u.ID, m.ID))
		_, err = s.FindMemory(ctx, u.ID, m.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.ErrorIs(t, s.DeleteMemory(ctx, u.ID, m.ID), repository.ErrNotFound)
	})
}

func TestRebind(t *testing.T) {
	assert.Equal(t, "SELECT ? FROM t WHERE a = ?", sqliteDialect.rebind("SELECT ? FROM t WHERE a = ?"))
	assert.Equal(t, "SELECT $1 FROM t WHERE a = $2", postgresDialect.rebind("SELECT ? FROM t WHERE a = ?"))
}

func TestDialectFor(t *testing.T) {
	d, err := dialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, d.driver)

	_, err = dialectFor("mysql")
	assert.Error(t, err)
}
