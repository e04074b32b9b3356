package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"blogapi/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, tx *sqlx.Tx, follow model.Follow) (bool, error) {
	if err := follow.Validate(); err != nil {
		return false, err
	}
	query := `
		INSERT INTO follows (following_user_id, followed_user_id)
		VALUES ($1, $2)
		ON CONFLICT (following_user_id, followed_user_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, follow.FollowingUserID, follow.FollowedUserID)
	if err != nil {
		return false, mapPQError(err, "create follow", model.ErrAlreadyFollowing, model.ErrUserNotFound)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, tx *sqlx.Tx, followingID, followedID int64) error {
	query := `DELETE FROM follows WHERE following_user_id = $1 AND followed_user_id = $2`
	result, err := tx.ExecContext(ctx, query, followingID, followedID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotFollowing
	}

	return nil
}

type followRow struct {
	CreatedAt time.Time `db:"created_at"`
	model.FollowUser
}

// GetFollowers returns one page of users following userID, newest first.
func (r *followRepository) GetFollowers(ctx context.Context, userID int64, limit, offset int) ([]model.FollowEntry, error) {
	query := `
		SELECT f.created_at, u.id, u.username, u.first_name, u.last_name
		FROM follows f
		JOIN users u ON u.id = f.following_user_id
		WHERE f.followed_user_id = $1
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT $2 OFFSET $3
	`
	return r.selectEntries(ctx, query, userID, limit, offset)
}

// GetFollowing returns one page of users that userID follows, newest first.
func (r *followRepository) GetFollowing(ctx context.Context, userID int64, limit, offset int) ([]model.FollowEntry, error) {
	query := `
		SELECT f.created_at, u.id, u.username, u.first_name, u.last_name
		FROM follows f
		JOIN users u ON u.id = f.followed_user_id
		WHERE f.following_user_id = $1
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT $2 OFFSET $3
	`
	return r.selectEntries(ctx, query, userID, limit, offset)
}

func (r *followRepository) selectEntries(ctx context.Context, query string, args ...interface{}) ([]model.FollowEntry, error) {
	var rows []followRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	entries := make([]model.FollowEntry, len(rows))
	for i, row := range rows {
		entries[i] = model.FollowEntry{CreatedAt: row.CreatedAt, User: row.FollowUser}
	}
	return entries, nil
}
