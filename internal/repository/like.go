package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"blogapi/internal/model"
)

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

// targetColumn is the likes column holding a reference of the given kind.
func targetColumn(target model.PostRef) (string, error) {
	switch target.Kind {
	case model.PostArticle:
		return "article_id", nil
	case model.PostComment:
		return "comment_id", nil
	}
	return "", model.ErrMissingParent
}

func targetNotFound(target model.PostRef) error {
	if target.Kind == model.PostComment {
		return model.ErrCommentNotFound
	}
	return model.ErrArticleNotFound
}

// Create inserts a like. The partial unique indexes on (user_id, article_id)
// and (user_id, comment_id) surface as ErrDuplicateLike.
func (r *likeRepository) Create(ctx context.Context, tx *sqlx.Tx, like *model.Like) error {
	target, err := like.Target()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO likes (user_id, article_id, comment_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err = tx.QueryRowxContext(ctx, query, like.UserID, like.ArticleID, like.CommentID).
		Scan(&like.ID, &like.CreatedAt)
	if err != nil {
		return mapPQError(err, "insert like", model.ErrDuplicateLike, targetNotFound(target))
	}
	return nil
}

// Delete removes the user's like on target. Returns ErrLikeNotFound if
// nothing was deleted.
func (r *likeRepository) Delete(ctx context.Context, tx *sqlx.Tx, userID int64, target model.PostRef) error {
	column, err := targetColumn(target)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM likes WHERE user_id = $1 AND %s = $2`, column)
	result, err := tx.ExecContext(ctx, query, userID, target.ID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrLikeNotFound
	}
	return nil
}

func (r *likeRepository) Exists(ctx context.Context, userID int64, target model.PostRef) (bool, error) {
	column, err := targetColumn(target)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND %s = $2)`, column)
	return exists(ctx, r.db, query, userID, target.ID)
}

// ListByPost returns one page of the users who liked target, newest first.
func (r *likeRepository) ListByPost(ctx context.Context, target model.PostRef, limit, offset int) ([]model.Liker, error) {
	column, err := targetColumn(target)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT l.created_at, u.id, u.username
		FROM likes l
		JOIN users u ON u.id = l.user_id
		WHERE l.%s = $1
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $2 OFFSET $3
	`, column)

	var rows []struct {
		CreatedAt time.Time `db:"created_at"`
		ID        int64     `db:"id"`
		Username  string    `db:"username"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, target.ID, limit, offset); err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}

	likers := make([]model.Liker, len(rows))
	for i, row := range rows {
		likers[i] = model.Liker{
			CreatedAt: row.CreatedAt,
			User:      model.UserSummary{ID: row.ID, Username: row.Username},
		}
	}
	return likers, nil
}

// ListByUser returns one page of the posts userID has liked.
func (r *likeRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.PostRefTarget, error) {
	query := `
		SELECT article_id, comment_id
		FROM likes
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	var rows []struct {
		ArticleID *int64 `db:"article_id"`
		CommentID *int64 `db:"comment_id"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("list user likes: %w", err)
	}

	targets := make([]model.PostRefTarget, 0, len(rows))
	for _, row := range rows {
		ref, err := model.PostRefFromColumns(row.ArticleID, row.CommentID)
		if err != nil {
			return nil, err
		}
		if ref.IsNone() {
			continue
		}
		targets = append(targets, model.PostRefTarget{PostID: ref.ID, PostType: ref.Kind})
	}
	return targets, nil
}
