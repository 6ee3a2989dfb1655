package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// User is one row of the users table. Password always holds a bcrypt hash,
// never plaintext.
type User struct {
	UserID    string
	Username  string
	Email     string
	Password  string
	Role      int
	CreatedAt time.Time
}

// CreateUser allocates the next user id and inserts the account. The id
// counter bump and the insert share one transaction, so ids stay monotonic
// and gap-free: U001, U002, and so on.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string, role int) (*User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateUsername, username)
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE user_id_seq SET n = n + 1`); err != nil {
		return nil, fmt.Errorf("failed to advance user id counter: %w", err)
	}
	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT n FROM user_id_seq`).Scan(&seq); err != nil {
		return nil, fmt.Errorf("failed to read user id counter: %w", err)
	}

	user := &User{
		UserID:    fmt.Sprintf("U%03d", seq),
		Username:  username,
		Email:     email,
		Password:  passwordHash,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (user_id, username, email, password, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		user.UserID, user.Username, user.Email, user.Password, user.Role, user.CreatedAt,
	)
	if err != nil {
		// The UNIQUE indexes catch what the pre-checks miss.
		return nil, mapUserConstraint(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

func mapUserConstraint(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users.username"):
		return ErrDuplicateUsername
	case strings.Contains(msg, "users.email"):
		return ErrDuplicateEmail
	}
	return fmt.Errorf("failed to create user: %w", err)
}

// UserByUsername looks up an account by username.
func (s *Store) UserByUsername(ctx context.Context, username string) (*User, error) {
	return s.userBy(ctx, "username", username)
}

// UserByEmail looks up an account by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.userBy(ctx, "email", email)
}

func (s *Store) userBy(ctx context.Context, field, value string) (*User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	user := &User{}
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT user_id, username, email, password, role, created_at FROM users WHERE %s = ?`, field),
		value,
	).Scan(&user.UserID, &user.Username, &user.Email, &user.Password, &user.Role, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user with %s %s", ErrRecordNotFound, field, value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpdatePassword replaces the password hash for the account with the given
// email.
func (s *Store) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	if err := s.ready(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password = ? WHERE email = ?`, passwordHash, email)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("%w: user with email %s", ErrRecordNotFound, email)
	}
	return nil
}
