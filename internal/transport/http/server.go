package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"blogapi/internal/config"
	"blogapi/internal/database"
	"blogapi/internal/handler"
	"blogapi/internal/logging"
	"blogapi/internal/queue"
	"blogapi/internal/redis"
	"blogapi/internal/repository"
	"blogapi/internal/service"
)

const shutdownTimeout = 10 * time.Second

// NewHandler wires repositories, services and handlers into the router.
// publisher may be nil, which disables activity events.
func NewHandler(cfg *config.Config, db *sqlx.DB, publisher queue.Publisher) stdhttp.Handler {
	userRepo := repository.NewUserRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	followRepo := repository.NewFollowRepository(db)

	authService := service.NewAuthService(cfg)
	userService := service.NewUserService(userRepo)
	articleService := service.NewArticleService(articleRepo, userRepo, db, publisher)
	commentService := service.NewCommentService(commentRepo, articleRepo, userRepo, db, publisher)
	likeService := service.NewLikeService(likeRepo, articleRepo, commentRepo, userRepo, db, publisher)
	followService := service.NewFollowService(followRepo, userRepo, db, publisher)

	return NewRouter(RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userService, authService),
		UserHandler:    handler.NewUserHandler(userService, articleService, likeService),
		ArticleHandler: handler.NewArticleHandler(articleService),
		CommentHandler: handler.NewCommentHandler(commentService),
		LikeHandler:    handler.NewLikeHandler(likeService),
		FollowHandler:  handler.NewFollowHandler(followService),
		Tokens:         authService,
	})
}

// Run connects to the database and Redis, serves HTTP until ctx is
// cancelled, then drains in-flight requests.
func Run(ctx context.Context, cfg *config.Config) error {
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var publisher queue.Publisher
	redisClient, err := redis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		publisher = queue.NewPublisher(redisClient)
	}

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           NewHandler(cfg, db, publisher),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return Serve(ctx, srv)
}

// Serve runs srv until ctx is done and shuts it down gracefully.
func Serve(ctx context.Context, srv *stdhttp.Server) error {
	log := logging.Component("server").WithField("addr", srv.Addr)

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
