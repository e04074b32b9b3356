package handler

import (
	"net/http"

	"blogapi/internal/httputil"
	"blogapi/internal/model"
)

type FollowHandler struct {
	followService FollowService
}

func NewFollowHandler(followService FollowService) *FollowHandler {
	return &FollowHandler{
		followService: followService,
	}
}

// Follow makes the authenticated user a follower of {id}.
// POST /users/{id}/followers
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	followeeID, ok := parseID(w, r, model.ErrUserNotFound)
	if !ok {
		return
	}

	if err := h.followService.Follow(r.Context(), followerID, followeeID); err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteMessage(w, http.StatusCreated, "Successfully followed user")
}

// DELETE /users/{id}/followers
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := requireUser(w, r)
	if !ok {
		return
	}
	followeeID, ok := parseID(w, r, model.ErrUserNotFound)
	if !ok {
		return
	}

	if err := h.followService.Unfollow(r.Context(), followerID, followeeID); err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteNoContent(w)
}

// GET /users/{id}/followers
func (h *FollowHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, model.ErrUserNotFound)
	if !ok {
		return
	}

	users, err := h.followService.GetFollowers(r.Context(), userID, page(r))
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.FollowListResponse{Users: users})
}

// GET /users/{id}/following
func (h *FollowHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, model.ErrUserNotFound)
	if !ok {
		return
	}

	users, err := h.followService.GetFollowing(r.Context(), userID, page(r))
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.FollowListResponse{Users: users})
}
