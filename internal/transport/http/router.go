package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"blogapi/internal/handler"
	"blogapi/internal/httputil"
	authmw "blogapi/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	ArticleHandler *handler.ArticleHandler
	CommentHandler *handler.CommentHandler
	LikeHandler    *handler.LikeHandler
	FollowHandler  *handler.FollowHandler
	Tokens         authmw.TokenVerifier
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(authmw.RequestLogger)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFound(w, "Route does not exist")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	requireAuth := authmw.AuthMiddleware(cfg.Tokens)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteMessage(w, http.StatusOK, "Welcome to the blog API")
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Get("/login", cfg.AuthHandler.Login)
		})

		r.Route("/articles", func(r chi.Router) {
			r.Get("/", cfg.ArticleHandler.List)
			r.With(requireAuth).Post("/", cfg.ArticleHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.ArticleHandler.GetByID)
				r.With(requireAuth).Patch("/", cfg.ArticleHandler.Update)
				r.With(requireAuth).Delete("/", cfg.ArticleHandler.Delete)

				r.Get("/likes", cfg.LikeHandler.ListArticleLikes)
				r.With(requireAuth).Post("/likes", cfg.LikeHandler.LikeArticle)
				r.With(requireAuth).Delete("/likes", cfg.LikeHandler.UnlikeArticle)

				r.Get("/comments", cfg.CommentHandler.ListByArticle)
				r.With(requireAuth).Post("/comments", cfg.CommentHandler.CommentOnArticle)
			})
		})

		r.Route("/comments/{id}", func(r chi.Router) {
			r.Get("/", cfg.CommentHandler.GetByID)
			r.With(requireAuth).Patch("/", cfg.CommentHandler.Update)
			r.With(requireAuth).Delete("/", cfg.CommentHandler.Delete)

			r.Get("/comments", cfg.CommentHandler.ListReplies)
			r.With(requireAuth).Post("/comments", cfg.CommentHandler.Reply)

			r.Get("/likes", cfg.LikeHandler.ListCommentLikes)
			r.With(requireAuth).Post("/likes", cfg.LikeHandler.LikeComment)
			r.With(requireAuth).Delete("/likes", cfg.LikeHandler.UnlikeComment)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(requireAuth).Get("/me", cfg.UserHandler.Me)
			r.With(requireAuth).Get("/me/likes", cfg.UserHandler.MyLikes)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.UserHandler.GetProfile)
				r.Get("/articles", cfg.UserHandler.GetArticles)
				r.Get("/following", cfg.FollowHandler.GetFollowing)
				r.Get("/followers", cfg.FollowHandler.GetFollowers)
				r.With(requireAuth).Post("/followers", cfg.FollowHandler.Follow)
				r.With(requireAuth).Delete("/followers", cfg.FollowHandler.Unfollow)
			})
		})
	})

	return r
}
