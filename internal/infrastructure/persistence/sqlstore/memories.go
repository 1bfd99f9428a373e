package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"memories-backend/internal/domain"
	"memories-backend/internal/repository"
)

const memoryColumns = `id, user_id, title, content, category, media_url, voice_url, created_at, updated_at`

// CreateMemory inserts the memory and sets its id.
func (s *Store) CreateMemory(ctx context.Context, m *domain.Memory) error {
	q := s.dialect.rebind(`INSERT INTO memories
		(user_id, title, content, category, media_url, voice_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, q,
			m.UserID, m.Title, m.Content,
			nullString(m.Category), nullString(m.MediaURL), nullString(m.VoiceURL),
			m.CreatedAt, m.UpdatedAt,
		).Scan(&m.ID)
		if err != nil {
			return fmt.Errorf("insert memory: %w", err)
		}
		return nil
	})
}

// FindMemory returns the memory with id only if userID owns it.
func (s *Store) FindMemory(ctx context.Context, userID, id int64) (*domain.Memory, error) {
	q := s.dialect.rebind(`SELECT ` + memoryColumns + ` FROM memories WHERE id = ? AND user_id = ?`)

	var memory *domain.Memory
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		m, err := rowToMemory(tx.QueryRowContext(ctx, q, id, userID))
		if err != nil {
			return err
		}
		memory = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return memory, nil
}

// FindMemories lists the owner's memories in insertion order.
func (s *Store) FindMemories(ctx context.Context, query repository.MemoryQuery) ([]*domain.Memory, error) {
	q := `SELECT ` + memoryColumns + ` FROM memories WHERE user_id = ?`
	args := []any{query.UserID}

	if query.Category != "" {
		q += ` AND category = ?`
		args = append(args, query.Category)
	}
	q = s.dialect.rebind(q + ` ORDER BY id`)

	var memories []*domain.Memory
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("select memories: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			m, err := rowToMemory(rows)
			if err != nil {
				return err
			}
			memories = append(memories, m)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return memories, nil
}

// UpdateMemory writes every mutable column of m. The owner and id select the row;
// a row owned by someone else is reported as repository.ErrNotFound.
func (s *Store) UpdateMemory(ctx context.Context, m *domain.Memory) error {
	q := s.dialect.rebind(`UPDATE memories
		SET title = ?, content = ?, category = ?, media_url = ?, voice_url = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q,
			m.Title, m.Content,
			nullString(m.Category), nullString(m.MediaURL), nullString(m.VoiceURL),
			m.UpdatedAt, m.ID, m.UserID,
		)
		if err != nil {
			return fmt.Errorf("update memory: %w", err)
		}
		return expectOneRow(res)
	})
}

// DeleteMemory removes the memory if userID owns it.
func (s *Store) DeleteMemory(ctx context.Context, userID, id int64) error {
	q := s.dialect.rebind(`DELETE FROM memories WHERE id = ? AND user_id = ?`)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q, id, userID)
		if err != nil {
			return fmt.Errorf("delete memory: %w", err)
		}
		return expectOneRow(res)
	})
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func rowToMemory(row scannable) (*domain.Memory, error) {
	var m domain.Memory
	var category, mediaURL, voiceURL sql.NullString

	err := row.Scan(&m.ID, &m.UserID, &m.Title, &m.Content, &category, &mediaURL, &voiceURL, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan memory: %w", err)
	}

	m.Category = stringPtr(category)
	m.MediaURL = stringPtr(mediaURL)
	m.VoiceURL = stringPtr(voiceURL)
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return &m, nil
}
