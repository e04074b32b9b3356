package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"blogapi/internal/model"
)

// CounterDrift is a denormalized counter that disagrees with the rows it
// counts.
type CounterDrift struct {
	Table  string
	ID     int64
	Column string
	Stored int
	Actual int
}

type auditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) AuditRepository {
	return &auditRepository{db: db}
}

type counterPair struct {
	Column string
	Stored int
	Actual int
}

const (
	articleAuditQuery = `
		SELECT a.n_likes, a.n_comments,
		       (SELECT COUNT(*) FROM likes WHERE article_id = a.id) AS likes,
		       (SELECT COUNT(*) FROM comments WHERE article_id = a.id) AS comments
		FROM articles a WHERE a.id = $1
	`
	commentAuditQuery = `
		SELECT c.n_likes, c.n_comments,
		       (SELECT COUNT(*) FROM likes WHERE comment_id = c.id) AS likes,
		       (SELECT COUNT(*) FROM comments WHERE parent_comment_id = c.id) AS comments
		FROM comments c WHERE c.id = $1
	`
	userAuditQuery = `
		SELECT u.n_articles, u.n_comments, u.n_likes, u.n_followers, u.n_following,
		       (SELECT COUNT(*) FROM articles WHERE author_id = u.id) AS articles,
		       (SELECT COUNT(*) FROM comments WHERE author_id = u.id) AS comments,
		       (SELECT COUNT(*) FROM likes WHERE user_id = u.id) AS likes,
		       (SELECT COUNT(*) FROM follows WHERE followed_user_id = u.id) AS followers,
		       (SELECT COUNT(*) FROM follows WHERE following_user_id = u.id) AS following
		FROM users u WHERE u.id = $1
	`
)

// CheckPost recounts a post's likes and direct comments. A post that no
// longer exists has nothing to drift.
func (r *auditRepository) CheckPost(ctx context.Context, post model.PostRef) ([]CounterDrift, error) {
	var table, query string
	switch post.Kind {
	case model.PostArticle:
		table, query = "articles", articleAuditQuery
	case model.PostComment:
		table, query = "comments", commentAuditQuery
	default:
		return nil, nil
	}

	var row struct {
		NLikes    int `db:"n_likes"`
		NComments int `db:"n_comments"`
		Likes     int `db:"likes"`
		Comments  int `db:"comments"`
	}
	err := r.db.GetContext(ctx, &row, query, post.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("audit %s: %w", table, err)
	}

	return collectDrift(table, post.ID, []counterPair{
		{Column: "n_likes", Stored: row.NLikes, Actual: row.Likes},
		{Column: "n_comments", Stored: row.NComments, Actual: row.Comments},
	}), nil
}

// CheckUser recounts every counter on the user row.
func (r *auditRepository) CheckUser(ctx context.Context, userID int64) ([]CounterDrift, error) {
	var row struct {
		NArticles  int `db:"n_articles"`
		NComments  int `db:"n_comments"`
		NLikes     int `db:"n_likes"`
		NFollowers int `db:"n_followers"`
		NFollowing int `db:"n_following"`
		Articles   int `db:"articles"`
		Comments   int `db:"comments"`
		Likes      int `db:"likes"`
		Followers  int `db:"followers"`
		Following  int `db:"following"`
	}
	err := r.db.GetContext(ctx, &row, userAuditQuery, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("audit users: %w", err)
	}

	return collectDrift("users", userID, []counterPair{
		{Column: "n_articles", Stored: row.NArticles, Actual: row.Articles},
		{Column: "n_comments", Stored: row.NComments, Actual: row.Comments},
		{Column: "n_likes", Stored: row.NLikes, Actual: row.Likes},
		{Column: "n_followers", Stored: row.NFollowers, Actual: row.Followers},
		{Column: "n_following", Stored: row.NFollowing, Actual: row.Following},
	}), nil
}

func collectDrift(table string, id int64, pairs []counterPair) []CounterDrift {
	var drift []CounterDrift
	for _, p := range pairs {
		if p.Stored != p.Actual {
			drift = append(drift, CounterDrift{Table: table, ID: id, Column: p.Column, Stored: p.Stored, Actual: p.Actual})
		}
	}
	return drift
}
