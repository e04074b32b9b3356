package handler

import (
	"net/http"

	"blogapi/internal/httputil"
	"blogapi/internal/model"
)

type UserHandler struct {
	userService    UserService
	articleService ArticleService
	likeService    LikeService
}

func NewUserHandler(userService UserService, articleService ArticleService, likeService LikeService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		articleService: articleService,
		likeService:    likeService,
	}
}

// Me returns the full profile of the authenticated user, private counters
// included.
// GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]*model.User{"user": user})
}

// MyLikes lists the posts the authenticated user has liked.
// GET /users/me/likes
func (h *UserHandler) MyLikes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	likes, err := h.likeService.ListByUser(r.Context(), userID, page(r))
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.UserLikesResponse{Likes: likes})
}

// GetProfile returns another user's public profile.
// GET /users/{id}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, model.ErrUserNotFound)
	if !ok {
		return
	}

	profile, err := h.userService.GetPublicProfile(r.Context(), userID)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]*model.PublicProfile{"user": profile})
}

// GetArticles lists a user's articles.
// GET /users/{id}/articles
func (h *UserHandler) GetArticles(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, model.ErrUserNotFound)
	if !ok {
		return
	}

	articles, err := h.articleService.ListByAuthor(r.Context(), userID, page(r))
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.ArticleListResponse{Articles: articles})
}
