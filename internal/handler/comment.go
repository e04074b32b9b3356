package handler

import (
	"net/http"

	"blogapi/internal/httputil"
	"blogapi/internal/model"
)

type CommentHandler struct {
	commentService CommentService
}

func NewCommentHandler(commentService CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// ListByArticle returns one page of an article's top-level comments.
// GET /articles/{id}/comments
func (h *CommentHandler) ListByArticle(w http.ResponseWriter, r *http.Request) {
	articleID, ok := parseID(w, r, model.ErrArticleNotFound)
	if !ok {
		return
	}

	comments, err := h.commentService.ListByArticle(r.Context(), articleID, page(r))
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.CommentListResponse{Comments: comments})
}

// CommentOnArticle adds a top-level comment.
// POST /articles/{id}/comments
func (h *CommentHandler) CommentOnArticle(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	articleID, ok := parseID(w, r, model.ErrArticleNotFound)
	if !ok {
		return
	}

	var req model.CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.commentService.CommentOnArticle(r.Context(), articleID, userID, req)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, model.CreatedResponse{ID: comment.ID})
}

// GET /comments/{id}
func (h *CommentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, model.ErrCommentNotFound)
	if !ok {
		return
	}

	comment, err := h.commentService.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.CommentResponse{Comment: comment})
}

// PATCH /comments/{id}
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, model.ErrCommentNotFound)
	if !ok {
		return
	}

	var req model.UpdateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.commentService.Update(r.Context(), id, userID, req); err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteNoContent(w)
}

// DELETE /comments/{id}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, model.ErrCommentNotFound)
	if !ok {
		return
	}

	if err := h.commentService.Delete(r.Context(), id, userID); err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteNoContent(w)
}

// ListReplies returns one page of a comment's direct replies.
// GET /comments/{id}/comments
func (h *CommentHandler) ListReplies(w http.ResponseWriter, r *http.Request) {
	commentID, ok := parseID(w, r, model.ErrCommentNotFound)
	if !ok {
		return
	}

	comments, err := h.commentService.ListReplies(r.Context(), commentID, page(r))
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.CommentListResponse{Comments: comments})
}

// Reply adds a reply to a comment.
// POST /comments/{id}/comments
func (h *CommentHandler) Reply(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	parentID, ok := parseID(w, r, model.ErrCommentNotFound)
	if !ok {
		return
	}

	var req model.CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.commentService.ReplyToComment(r.Context(), parentID, userID, req)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, model.CreatedResponse{ID: comment.ID})
}
