package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fianka/shop-api/internal/database"
	"github.com/fianka/shop-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{}
	query := `
		INSERT INTO users (name, email, password_hash, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, name, email, created_at`

	err = s.db.QueryRowContext(ctx, query, name, strings.ToLower(email), hash).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Authenticate checks email and password, returning ErrInvalidCredentials
// on either an unknown email or a wrong password so the two cases are
// indistinguishable to a caller.
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user := &models.User{}
	var hash []byte

	query := `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`
	err := s.db.QueryRowContext(ctx, query, strings.ToLower(email)).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&hash,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return nil, database.ErrInvalidCredentials
	}

	return user, nil
}

func (s *UserStore) Get(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}

	query := `SELECT id, name, email, created_at FROM users WHERE id = $1`
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}
