package handler

import (
	"net/http"

	"blogapi/internal/httputil"
	"blogapi/internal/model"
)

// AuthHandler groups auth-related HTTP endpoints and their dependencies.
type AuthHandler struct {
	userService UserService
	tokens      TokenIssuer
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(userService UserService, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
	}
}

// Register handles user sign-up
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), req)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	h.writeToken(w, r, http.StatusCreated, user)
}

// Login handles user login. GET reads the credentials from the query
// string, POST from the JSON body.
// POST, GET /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if r.Method == http.MethodGet {
		req.Email = r.URL.Query().Get("email")
		req.Password = r.URL.Query().Get("password")
	} else if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.Login(r.Context(), req)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}

	h.writeToken(w, r, http.StatusOK, user)
}

func (h *AuthHandler) writeToken(w http.ResponseWriter, r *http.Request, status int, user *model.User) {
	token, err := h.tokens.IssueToken(user)
	if err != nil {
		httputil.WriteServiceError(w, r, err)
		return
	}
	httputil.WriteJSON(w, status, model.AuthResponse{UserID: user.ID, Token: token})
}
