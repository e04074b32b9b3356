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

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	db         *sqlx.DB
	publisher  queue.Publisher
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	db *sqlx.DB,
	publisher queue.Publisher,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		db:         db,
		publisher:  publisher,
	}
}

func (s *FollowService) requireUser(ctx context.Context, userID int64) error {
	ok, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrUserNotFound
	}
	return nil
}

// Follow makes actorID follow targetID, bumping the target's n_followers
// and the actor's n_following.
func (s *FollowService) Follow(ctx context.Context, actorID, targetID int64) error {
	if err := s.requireUser(ctx, targetID); err != nil {
		return err
	}
	follow := model.Follow{FollowingUserID: actorID, FollowedUserID: targetID}
	if err := follow.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	created, err := s.followRepo.Create(ctx, tx, follow)
	if err != nil {
		return err
	}
	if !created {
		return model.ErrAlreadyFollowing
	}

	if err := s.userRepo.IncrementFollowerCount(ctx, tx, targetID, 1); err != nil {
		return err
	}
	if err := s.userRepo.IncrementFollowingCount(ctx, tx, actorID, 1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	logging.Component("follow_service").
		WithField("follower_id", actorID).WithField("followed_id", targetID).
		Info("User followed")

	publish(ctx, s.publisher, queue.NewUserFollowedEvent(actorID, targetID))
	return nil
}

// Unfollow removes the edge. Unfollowing someone not followed is
// ErrNotFollowing and leaves counters untouched.
func (s *FollowService) Unfollow(ctx context.Context, actorID, targetID int64) error {
	if err := s.requireUser(ctx, targetID); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.followRepo.Delete(ctx, tx, actorID, targetID); err != nil {
		return err
	}

	if err := s.userRepo.IncrementFollowerCount(ctx, tx, targetID, -1); err != nil {
		return err
	}
	if err := s.userRepo.IncrementFollowingCount(ctx, tx, actorID, -1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	logging.Component("follow_service").
		WithField("follower_id", actorID).WithField("followed_id", targetID).
		Info("User unfollowed")

	publish(ctx, s.publisher, queue.NewUserUnfollowedEvent(actorID, targetID))
	return nil
}

func (s *FollowService) GetFollowers(ctx context.Context, userID int64, page int) ([]model.FollowEntry, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.GetFollowers(ctx, userID, model.PageSize, model.Offset(model.PageSize, page))
}

func (s *FollowService) GetFollowing(ctx context.Context, userID int64, page int) ([]model.FollowEntry, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.GetFollowing(ctx, userID, model.PageSize, model.Offset(model.PageSize, page))
}
