package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"memories-backend/internal/domain"
	"memories-backend/internal/repository"
)

const userColumns = `id, first_name, email, password, created_at`

// CreateUser inserts the user and sets its id. A taken email yields repository.ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	q := s.dialect.rebind(`INSERT INTO users (first_name, email, password, created_at)
		VALUES (?, ?, ?, ?) RETURNING id`)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, q, user.FirstName, user.Email, user.PasswordHash, user.CreatedAt).Scan(&user.ID)
		if err != nil {
			if s.dialect.isUniqueViolation(err) {
				return fmt.Errorf("email %q: %w", user.Email, repository.ErrDuplicate)
			}
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
}

// FindUserByEmail looks up a user by exact email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := s.dialect.rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	return s.findUser(ctx, q, email)
}

// FindUserByID looks up a user by id.
func (s *Store) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	q := s.dialect.rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return s.findUser(ctx, q, id)
}

func (s *Store) findUser(ctx context.Context, q string, arg any) (*domain.User, error) {
	var user *domain.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		u, err := rowToUser(tx.QueryRowContext(ctx, q, arg))
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func rowToUser(row scannable) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
