package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"blogapi/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment inside the caller's transaction and fills in
// its id and timestamps.
func (r *commentRepository) Create(ctx context.Context, tx *sqlx.Tx, c *model.Comment) error {
	if err := c.Validate(); err != nil {
		return err
	}
	parentNotFound := model.ErrArticleNotFound
	if c.ParentCommentID != nil {
		parentNotFound = model.ErrCommentNotFound
	}

	query := `
		INSERT INTO comments (author_id, article_id, parent_comment_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := tx.QueryRowxContext(ctx, query, c.AuthorID, c.ArticleID, c.ParentCommentID, c.Content).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return mapPQError(err, "insert comment", nil, parentNotFound)
	}
	return nil
}

type commentRow struct {
	model.Comment
	AuthorUsername string `db:"author_username"`
}

func (row commentRow) toComment() model.Comment {
	c := row.Comment
	c.Author = &model.UserSummary{ID: c.AuthorID, Username: row.AuthorUsername}
	return c
}

// GetByID retrieves a single comment with its author.
func (r *commentRepository) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	query := `
		SELECT c.id, c.author_id, c.article_id, c.parent_comment_id, c.content,
		       c.n_likes, c.n_comments, c.created_at, c.updated_at,
		       u.username AS author_username
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.id = $1
	`
	var row commentRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	c := row.toComment()
	return &c, nil
}

func (r *commentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)`, id)
}

// ListByParent returns one page of the direct children of an article or a
// comment, newest first.
func (r *commentRepository) ListByParent(ctx context.Context, parent model.PostRef, limit, offset int) ([]model.Comment, error) {
	var column string
	switch parent.Kind {
	case model.PostArticle:
		column = "article_id"
	case model.PostComment:
		column = "parent_comment_id"
	default:
		return nil, model.ErrMissingParent
	}

	query := fmt.Sprintf(`
		SELECT c.id, c.author_id, c.article_id, c.parent_comment_id, c.content,
		       c.n_likes, c.n_comments, c.created_at, c.updated_at,
		       u.username AS author_username
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.%s = $1
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2 OFFSET $3
	`, column)

	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, parent.ID, limit, offset); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = row.toComment()
	}
	return comments, nil
}

// Update changes a comment's content. Only the owner can update.
func (r *commentRepository) Update(ctx context.Context, id, authorID int64, content string) error {
	query := `
		UPDATE comments
		SET content = $1, updated_at = NOW()
		WHERE id = $2 AND author_id = $3
	`
	result, err := r.db.ExecContext(ctx, query, content, id, authorID)
	if err != nil {
		return mapPQError(err, "update comment", nil, nil)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrCommentNotFound
	}
	return nil
}

// Delete removes the comment if authorID owns it. Replies are orphaned by
// the schema. After the row lock, one statement deletes the comment and
// decrements n_likes of every user whose like on it is cascaded.
func (r *commentRepository) Delete(ctx context.Context, tx *sqlx.Tx, id, authorID int64) (model.PostRef, error) {
	if err := lockOwned(ctx, tx, "comments", id, authorID, model.ErrCommentNotFound); err != nil {
		return model.PostRef{}, err
	}

	query := `
		WITH deleted AS (
			DELETE FROM comments WHERE id = $1 AND author_id = $2
			RETURNING id, article_id, parent_comment_id
		), likers AS (
			UPDATE users SET n_likes = n_likes - 1
			WHERE id IN (
				SELECT l.user_id FROM likes l JOIN deleted d ON l.comment_id = d.id
			)
			RETURNING id
		)
		SELECT article_id, parent_comment_id FROM deleted
	`
	var parent struct {
		ArticleID       *int64 `db:"article_id"`
		ParentCommentID *int64 `db:"parent_comment_id"`
	}
	err := tx.GetContext(ctx, &parent, query, id, authorID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PostRef{}, model.ErrCommentNotFound
	}
	if err != nil {
		return model.PostRef{}, mapPQError(err, "delete comment", nil, nil)
	}
	return model.PostRefFromColumns(parent.ArticleID, parent.ParentCommentID)
}

func (r *commentRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, id int64, delta int) error {
	return incrementCounter(ctx, tx, "comments", "n_likes", id, delta, model.ErrCommentNotFound)
}

func (r *commentRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, id int64, delta int) error {
	return incrementCounter(ctx, tx, "comments", "n_comments", id, delta, model.ErrCommentNotFound)
}
