package handler

import (
	"net/http"

	"blogapi/internal/httputil"
	"blogapi/internal/model"
)

type ArticleHandler struct {
	articleService ArticleService
}

func NewArticleHandler(articleService ArticleService) *ArticleHandler {
	return &ArticleHandler{articleService: articleService}
}

// List returns one page of article summaries, newest first.
// GET /articles?page=N
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articleService.List(r.Context(), page(r))
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.ArticleListResponse{Articles: articles})
}

// Create handles article creation
// POST /articles
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	article, err := h.articleService.Create(r.Context(), userID, req)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, model.CreatedResponse{ID: article.ID})
}

// GetByID returns a single article with its author.
// GET /articles/{id}
func (h *ArticleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, model.ErrArticleNotFound)
	if !ok {
		return
	}

	article, err := h.articleService.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.ArticleResponse{Article: article})
}

// Update applies an owner's partial edit.
// PATCH /articles/{id}
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, model.ErrArticleNotFound)
	if !ok {
		return
	}

	var req model.UpdateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.articleService.Update(r.Context(), id, userID, req); err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteNoContent(w)
}

// Delete removes an owned article. Non-owners get 404.
// DELETE /articles/{id}
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, model.ErrArticleNotFound)
	if !ok {
		return
	}

	if err := h.articleService.Delete(r.Context(), id, userID); err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteNoContent(w)
}
