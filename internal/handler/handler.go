package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"blogapi/internal/httputil"
	"blogapi/internal/model"
	"blogapi/internal/transport/http/middleware"
)

// Service contracts the handlers depend on. The concrete services in
// internal/service satisfy them.

type UserService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetPublicProfile(ctx context.Context, id int64) (*model.PublicProfile, error)
}

type TokenIssuer interface {
	IssueToken(user *model.User) (string, error)
}

type ArticleService interface {
	Create(ctx context.Context, authorID int64, req model.CreateArticleRequest) (*model.Article, error)
	GetByID(ctx context.Context, id int64) (*model.Article, error)
	List(ctx context.Context, page int) ([]model.ArticleSummary, error)
	ListByAuthor(ctx context.Context, userID int64, page int) ([]model.ArticleSummary, error)
	Update(ctx context.Context, id, authorID int64, req model.UpdateArticleRequest) error
	Delete(ctx context.Context, id, authorID int64) error
}

type CommentService interface {
	CommentOnArticle(ctx context.Context, articleID, authorID int64, req model.CreateCommentRequest) (*model.Comment, error)
	ReplyToComment(ctx context.Context, parentID, authorID int64, req model.CreateCommentRequest) (*model.Comment, error)
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	ListByArticle(ctx context.Context, articleID int64, page int) ([]model.Comment, error)
	ListReplies(ctx context.Context, commentID int64, page int) ([]model.Comment, error)
	Update(ctx context.Context, id, authorID int64, req model.UpdateCommentRequest) error
	Delete(ctx context.Context, id, authorID int64) error
}

type LikeService interface {
	Like(ctx context.Context, userID int64, target model.PostRef) error
	Unlike(ctx context.Context, userID int64, target model.PostRef) error
	ListByPost(ctx context.Context, target model.PostRef, page int) ([]model.Liker, error)
	ListByUser(ctx context.Context, userID int64, page int) ([]model.PostRefTarget, error)
}

type FollowService interface {
	Follow(ctx context.Context, actorID, targetID int64) error
	Unfollow(ctx context.Context, actorID, targetID int64) error
	GetFollowers(ctx context.Context, userID int64, page int) ([]model.FollowEntry, error)
	GetFollowing(ctx context.Context, userID int64, page int) ([]model.FollowEntry, error)
}

// parseID reads a positive int64 path parameter. Non-numeric ids are
// reported as not found, like any other id that matches no row.
func parseID(w http.ResponseWriter, r *http.Request, entityNotFound error) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		httputil.WriteServiceError(w, r, entityNotFound)
		return 0, false
	}
	return id, true
}

// requireUser reads the authenticated user id set by the auth middleware.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteServiceError(w, r, model.ErrMissingToken)
		return 0, false
	}
	return userID, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return false
	}
	return true
}

func page(r *http.Request) int {
	return model.ParsePage(r.URL.Query().Get("page"))
}
