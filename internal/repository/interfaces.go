package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"blogapi/internal/model"
)

// Methods taking a *sqlx.Tx run inside a transaction owned by the caller.
// Counter methods apply relative deltas and report a missing row as the
// entity's not-found error.

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	IncrementArticleCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
}

type ArticleRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, authorID int64, req model.CreateArticleRequest) (*model.Article, error)
	GetByID(ctx context.Context, id int64) (*model.Article, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, limit, offset int) ([]model.ArticleSummary, error)
	ListByAuthor(ctx context.Context, authorID int64, limit, offset int) ([]model.ArticleSummary, error)
	Update(ctx context.Context, id, authorID int64, req model.UpdateArticleRequest) error
	// Delete removes an article owned by authorID and reverses n_likes of
	// every user whose like cascades away with it.
	Delete(ctx context.Context, tx *sqlx.Tx, id, authorID int64) error
	IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, id int64, delta int) error
	IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, id int64, delta int) error
}

type CommentRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, comment *model.Comment) error
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ListByParent(ctx context.Context, parent model.PostRef, limit, offset int) ([]model.Comment, error)
	Update(ctx context.Context, id, authorID int64, content string) error
	// Delete removes a comment owned by authorID, reverses n_likes of its
	// likers, and returns the comment's former parent.
	Delete(ctx context.Context, tx *sqlx.Tx, id, authorID int64) (model.PostRef, error)
	IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, id int64, delta int) error
	IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, id int64, delta int) error
}

type LikeRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, like *model.Like) error
	Delete(ctx context.Context, tx *sqlx.Tx, userID int64, target model.PostRef) error
	Exists(ctx context.Context, userID int64, target model.PostRef) (bool, error)
	ListByPost(ctx context.Context, target model.PostRef, limit, offset int) ([]model.Liker, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.PostRefTarget, error)
}

type FollowRepository interface {
	// Create reports false when the edge already exists.
	Create(ctx context.Context, tx *sqlx.Tx, follow model.Follow) (bool, error)
	Delete(ctx context.Context, tx *sqlx.Tx, followingID, followedID int64) error
	GetFollowers(ctx context.Context, userID int64, limit, offset int) ([]model.FollowEntry, error)
	GetFollowing(ctx context.Context, userID int64, limit, offset int) ([]model.FollowEntry, error)
}

// AuditRepository recounts relation rows and reports counters that
// disagree with them.
type AuditRepository interface {
	CheckPost(ctx context.Context, post model.PostRef) ([]CounterDrift, error)
	CheckUser(ctx context.Context, userID int64) ([]CounterDrift, error)
}
