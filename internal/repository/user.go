package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"blogapi/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, email, password, first_name, last_name,
	n_articles, n_comments, n_likes, n_followers, n_following, created_at, updated_at`

// Create inserts a new user. A taken username or email is ErrDuplicateUser.
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (username, email, password, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		u.Username,
		u.Email,
		u.Password,
		u.FirstName,
		u.LastName,
	)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapPQError(err, "insert user", model.ErrDuplicateUser, nil)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return &u, nil
}

// GetByEmail retrieves a user by their (lowercased) email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &u, nil
}

func (r *userRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id)
}

func (r *userRepository) IncrementArticleCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	return incrementCounter(ctx, tx, "users", "n_articles", userID, delta, model.ErrUserNotFound)
}

func (r *userRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	return incrementCounter(ctx, tx, "users", "n_comments", userID, delta, model.ErrUserNotFound)
}

func (r *userRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	return incrementCounter(ctx, tx, "users", "n_likes", userID, delta, model.ErrUserNotFound)
}

func (r *userRepository) IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	return incrementCounter(ctx, tx, "users", "n_followers", userID, delta, model.ErrUserNotFound)
}

func (r *userRepository) IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	return incrementCounter(ctx, tx, "users", "n_following", userID, delta, model.ErrUserNotFound)
}
