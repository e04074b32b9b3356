package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"blogapi/internal/model"
)

type articleRepository struct {
	db *sqlx.DB
}

func NewArticleRepository(db *sqlx.DB) ArticleRepository {
	return &articleRepository{db: db}
}

// Create inserts a new article inside the caller's transaction.
func (r *articleRepository) Create(ctx context.Context, tx *sqlx.Tx, authorID int64, req model.CreateArticleRequest) (*model.Article, error) {
	query := `
		INSERT INTO articles (author_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	article := &model.Article{
		AuthorID: &authorID,
		Title:    req.Title,
		Content:  req.Content,
	}
	err := tx.QueryRowxContext(ctx, query, authorID, req.Title, req.Content).
		Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
	if err != nil {
		return nil, mapPQError(err, "insert article", nil, model.ErrUserNotFound)
	}
	return article, nil
}

// GetByID returns the detail view with the author joined inline.
func (r *articleRepository) GetByID(ctx context.Context, id int64) (*model.Article, error) {
	query := `
		SELECT a.id, a.author_id, a.title, a.content, a.n_likes, a.n_comments,
		       a.created_at, a.updated_at, u.username AS author_username
		FROM articles a
		LEFT JOIN users u ON u.id = a.author_id
		WHERE a.id = $1
	`
	var row struct {
		model.Article
		AuthorUsername *string `db:"author_username"`
	}
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}

	article := row.Article
	article.Author = authorSummary(row.AuthorID, row.AuthorUsername)
	return &article, nil
}

func (r *articleRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM articles WHERE id = $1)`, id)
}

type articleSummaryRow struct {
	model.ArticleSummary
	AuthorID       *int64  `db:"author_id"`
	AuthorUsername *string `db:"author_username"`
}

func (r *articleRepository) List(ctx context.Context, limit, offset int) ([]model.ArticleSummary, error) {
	query := `
		SELECT a.id, a.title, a.n_likes, a.n_comments, a.created_at,
		       a.author_id, u.username AS author_username
		FROM articles a
		LEFT JOIN users u ON u.id = a.author_id
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $1 OFFSET $2
	`
	return r.selectSummaries(ctx, query, limit, offset)
}

func (r *articleRepository) ListByAuthor(ctx context.Context, authorID int64, limit, offset int) ([]model.ArticleSummary, error) {
	query := `
		SELECT a.id, a.title, a.n_likes, a.n_comments, a.created_at,
		       a.author_id, u.username AS author_username
		FROM articles a
		JOIN users u ON u.id = a.author_id
		WHERE a.author_id = $3
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $1 OFFSET $2
	`
	return r.selectSummaries(ctx, query, limit, offset, authorID)
}

func (r *articleRepository) selectSummaries(ctx context.Context, query string, args ...interface{}) ([]model.ArticleSummary, error) {
	var rows []articleSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	articles := make([]model.ArticleSummary, len(rows))
	for i, row := range rows {
		articles[i] = row.ArticleSummary
		articles[i].Author = authorSummary(row.AuthorID, row.AuthorUsername)
	}
	return articles, nil
}

// Update applies the non-nil fields of req. Missing and not-owned articles
// are both ErrArticleNotFound.
func (r *articleRepository) Update(ctx context.Context, id, authorID int64, req model.UpdateArticleRequest) error {
	query := `
		UPDATE articles
		SET title = COALESCE($1, title),
		    content = COALESCE($2, content),
		    updated_at = NOW()
		WHERE id = $3 AND author_id = $4
	`
	result, err := r.db.ExecContext(ctx, query, req.Title, req.Content, id, authorID)
	if err != nil {
		return mapPQError(err, "update article", nil, nil)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrArticleNotFound
	}
	return nil
}

// Delete removes the article and, in the same statement, decrements n_likes
// of every user whose like is cascaded. The row is locked first, so the
// statement sees every like committed before the lock was granted.
func (r *articleRepository) Delete(ctx context.Context, tx *sqlx.Tx, id, authorID int64) error {
	if err := lockOwned(ctx, tx, "articles", id, authorID, model.ErrArticleNotFound); err != nil {
		return err
	}

	query := `
		WITH deleted AS (
			DELETE FROM articles WHERE id = $1 AND author_id = $2
			RETURNING id
		), likers AS (
			UPDATE users SET n_likes = n_likes - 1
			WHERE id IN (
				SELECT l.user_id FROM likes l JOIN deleted d ON l.article_id = d.id
			)
			RETURNING id
		)
		SELECT COUNT(*) FROM deleted
	`
	var deleted int
	if err := tx.GetContext(ctx, &deleted, query, id, authorID); err != nil {
		return mapPQError(err, "delete article", nil, nil)
	}
	if deleted == 0 {
		return model.ErrArticleNotFound
	}
	return nil
}

func (r *articleRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, id int64, delta int) error {
	return incrementCounter(ctx, tx, "articles", "n_likes", id, delta, model.ErrArticleNotFound)
}

func (r *articleRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, id int64, delta int) error {
	return incrementCounter(ctx, tx, "articles", "n_comments", id, delta, model.ErrArticleNotFound)
}
