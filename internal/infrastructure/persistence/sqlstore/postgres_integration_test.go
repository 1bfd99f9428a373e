//go:build integration

package sqlstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"memories-backend/internal/domain"
	"memories-backend/internal/repository"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "memories",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithDeadline(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://test:test@%s:%s/memories?sslmode=disable", host, port.Port())
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	dsn := startPostgres(t)

	s, err := Open(ctx, DriverPostgres, dsn, Options{}, nil)
	require.NoError(t, err)
	defer s.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)

	u := &domain.User{FirstName: "Ana", Email: "ana@example.com", PasswordHash: "hash", CreatedAt: now}
	require.NoError(t, s.CreateUser(ctx, u))

	dup := &domain.User{FirstName: "Ana", Email: "ana@example.com", PasswordHash: "hash", CreatedAt: now}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), repository.ErrDuplicate)

	cat := "travel"
	m := &domain.Memory{UserID: u.ID, Title: "Trip", Content: "Beach", Category: &cat, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.CreateMemory(ctx, m))

	got, err := s.FindMemory(ctx, u.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trip", got.Title)
	assert.True(t, now.Equal(got.CreatedAt))

	list, err := s.FindMemories(ctx, repository.MemoryQuery{UserID: u.ID, Category: "travel"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.FindMemory(ctx, u.ID+1, m.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, s.DeleteMemory(ctx, u.ID, m.ID))
	assert.ErrorIs(t, s.DeleteMemory(ctx, u.ID, m.ID), repository.ErrNotFound)
}
