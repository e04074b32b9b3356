package handler

import (
	"net/http"

	"blogapi/internal/httputil"
	"blogapi/internal/model"
)

// LikeHandler serves the likes sub-resource of both articles and comments.
// The Article*/Comment* methods only differ in how the path id is read.
type LikeHandler struct {
	likeService LikeService
}

func NewLikeHandler(likeService LikeService) *LikeHandler {
	return &LikeHandler{likeService: likeService}
}

func (h *LikeHandler) articleRef(w http.ResponseWriter, r *http.Request) (model.PostRef, bool) {
	id, ok := parseID(w, r, model.ErrArticleNotFound)
	return model.ArticleRef(id), ok
}

func (h *LikeHandler) commentRef(w http.ResponseWriter, r *http.Request) (model.PostRef, bool) {
	id, ok := parseID(w, r, model.ErrCommentNotFound)
	return model.CommentRef(id), ok
}

type refParser func(w http.ResponseWriter, r *http.Request) (model.PostRef, bool)

func (h *LikeHandler) list(target refParser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, ok := target(w, r)
		if !ok {
			return
		}

		likes, err := h.likeService.ListByPost(r.Context(), ref, page(r))
		if err != nil {
			httputil.WriteServiceError(w, r, err)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, model.LikeListResponse{Likes: likes})
	}
}

func (h *LikeHandler) like(target refParser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		ref, ok := target(w, r)
		if !ok {
			return
		}

		if err := h.likeService.Like(r.Context(), userID, ref); err != nil {
			httputil.WriteServiceError(w, r, err)
			return
		}

		httputil.WriteMessage(w, http.StatusCreated, "Post liked")
	}
}

func (h *LikeHandler) unlike(target refParser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		ref, ok := target(w, r)
		if !ok {
			return
		}

		if err := h.likeService.Unlike(r.Context(), userID, ref); err != nil {
			httputil.WriteServiceError(w, r, err)
			return
		}

		httputil.WriteNoContent(w)
	}
}

// GET /articles/{id}/likes
func (h *LikeHandler) ListArticleLikes(w http.ResponseWriter, r *http.Request) {
	h.list(h.articleRef)(w, r)
}

// POST /articles/{id}/likes
func (h *LikeHandler) LikeArticle(w http.ResponseWriter, r *http.Request) {
	h.like(h.articleRef)(w, r)
}

// DELETE /articles/{id}/likes
func (h *LikeHandler) UnlikeArticle(w http.ResponseWriter, r *http.Request) {
	h.unlike(h.articleRef)(w, r)
}

// GET /comments/{id}/likes
func (h *LikeHandler) ListCommentLikes(w http.ResponseWriter, r *http.Request) {
	h.list(h.commentRef)(w, r)
}

// POST /comments/{id}/likes
func (h *LikeHandler) LikeComment(w http.ResponseWriter, r *http.Request) {
	h.like(h.commentRef)(w, r)
}

// DELETE /comments/{id}/likes
func (h *LikeHandler) UnlikeComment(w http.ResponseWriter, r *http.Request) {
	h.unlike(h.commentRef)(w, r)
}
