package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"blogapi/internal/logging"
	"blogapi/internal/model"
	"blogapi/internal/queue"
	"blogapi/internal/repository"
)

type LikeService struct {
	likeRepo    repository.LikeRepository
	articleRepo repository.ArticleRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	db          *sqlx.DB
	publisher   queue.Publisher
}

func NewLikeService(
	likeRepo repository.LikeRepository,
	articleRepo repository.ArticleRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	db *sqlx.DB,
	publisher queue.Publisher,
) *LikeService {
	return &LikeService{
		likeRepo:    likeRepo,
		articleRepo: articleRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		db:          db,
		publisher:   publisher,
	}
}

// Like records userID's like on target and bumps the target's and the
// user's n_likes in one transaction.
//
// The existence pre-check only gives an early answer. Two concurrent likes
// can both pass it; the unique index rejects the second insert with the
// same ErrDuplicateLike.
func (s *LikeService) Like(ctx context.Context, userID int64, target model.PostRef) error {
	like := model.NewLike(userID, target)
	if err := like.Validate(); err != nil {
		return err
	}

	liked, err := s.likeRepo.Exists(ctx, userID, target)
	if err != nil {
		return err
	}
	if liked {
		return model.ErrDuplicateLike
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.likeRepo.Create(ctx, tx, like); err != nil {
		return err
	}

	if err := s.incrementTargetLikes(ctx, tx, target, 1); err != nil {
		return err
	}

	if err := s.userRepo.IncrementLikeCount(ctx, tx, userID, 1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	logging.Component("like_service").
		WithField("user_id", userID).WithField("target", target.String()).
		Info("Post liked")

	publish(ctx, s.publisher, queue.NewPostLikedEvent(userID, target))
	return nil
}

// Unlike removes the like. "Not liked" and "no such post" are both
// ErrLikeNotFound, inferred from the delete.
func (s *LikeService) Unlike(ctx context.Context, userID int64, target model.PostRef) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.likeRepo.Delete(ctx, tx, userID, target); err != nil {
		return err
	}

	if err := s.incrementTargetLikes(ctx, tx, target, -1); err != nil {
		return err
	}

	if err := s.userRepo.IncrementLikeCount(ctx, tx, userID, -1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	logging.Component("like_service").
		WithField("user_id", userID).WithField("target", target.String()).
		Info("Post unliked")

	publish(ctx, s.publisher, queue.NewPostUnlikedEvent(userID, target))
	return nil
}

func (s *LikeService) incrementTargetLikes(ctx context.Context, tx *sqlx.Tx, target model.PostRef, delta int) error {
	switch target.Kind {
	case model.PostArticle:
		return s.articleRepo.IncrementLikeCount(ctx, tx, target.ID, delta)
	case model.PostComment:
		return s.commentRepo.IncrementLikeCount(ctx, tx, target.ID, delta)
	}
	return model.ErrMissingParent
}

// ListByPost returns one page of target's likers.
func (s *LikeService) ListByPost(ctx context.Context, target model.PostRef, page int) ([]model.Liker, error) {
	var (
		ok  bool
		err error
	)
	switch target.Kind {
	case model.PostArticle:
		ok, err = s.articleRepo.Exists(ctx, target.ID)
	case model.PostComment:
		ok, err = s.commentRepo.Exists(ctx, target.ID)
	default:
		return nil, model.ErrMissingParent
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		if target.Kind == model.PostComment {
			return nil, model.ErrCommentNotFound
		}
		return nil, model.ErrArticleNotFound
	}
	return s.likeRepo.ListByPost(ctx, target, model.PageSize, model.Offset(model.PageSize, page))
}

// ListByUser returns one page of the posts userID has liked.
func (s *LikeService) ListByUser(ctx context.Context, userID int64, page int) ([]model.PostRefTarget, error) {
	return s.likeRepo.ListByUser(ctx, userID, model.PageSize, model.Offset(model.PageSize, page))
}
