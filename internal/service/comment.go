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

type CommentService struct {
	commentRepo repository.CommentRepository
	articleRepo repository.ArticleRepository
	userRepo    repository.UserRepository
	db          *sqlx.DB
	publisher   queue.Publisher
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	articleRepo repository.ArticleRepository,
	userRepo repository.UserRepository,
	db *sqlx.DB,
	publisher queue.Publisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		articleRepo: articleRepo,
		userRepo:    userRepo,
		db:          db,
		publisher:   publisher,
	}
}

// CommentOnArticle adds a top-level comment. A missing article surfaces
// from the insert or the counter update, so no pre-check is needed.
func (s *CommentService) CommentOnArticle(ctx context.Context, articleID, authorID int64, req model.CreateCommentRequest) (*model.Comment, error) {
	return s.create(ctx, model.ArticleRef(articleID), authorID, req)
}

// ReplyToComment adds a reply. A missing parent is reported as
// ErrCommentNotFound.
func (s *CommentService) ReplyToComment(ctx context.Context, parentID, authorID int64, req model.CreateCommentRequest) (*model.Comment, error) {
	return s.create(ctx, model.CommentRef(parentID), authorID, req)
}

// create inserts the comment, bumps the parent's n_comments and the
// author's n_comments in one transaction. A parent comment is checked
// before the transaction opens.
func (s *CommentService) create(ctx context.Context, parent model.PostRef, authorID int64, req model.CreateCommentRequest) (*model.Comment, error) {
	if err := model.Validate(req); err != nil {
		return nil, err
	}
	comment, err := model.NewComment(authorID, parent, req.Content)
	if err != nil {
		return nil, err
	}

	if parent.Kind == model.PostComment {
		ok, err := s.commentRepo.Exists(ctx, parent.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, model.ErrCommentNotFound
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.commentRepo.Create(ctx, tx, comment); err != nil {
		return nil, err
	}

	if err := s.incrementParentComments(ctx, tx, parent, 1); err != nil {
		return nil, err
	}

	if err := s.userRepo.IncrementCommentCount(ctx, tx, authorID, 1); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	logging.Component("comment_service").
		WithField("user_id", authorID).WithField("comment_id", comment.ID).WithField("parent", parent.String()).
		Info("Comment created")

	publish(ctx, s.publisher, queue.NewCommentCreatedEvent(comment.ID, authorID, parent))
	return comment, nil
}

func (s *CommentService) incrementParentComments(ctx context.Context, tx *sqlx.Tx, parent model.PostRef, delta int) error {
	switch parent.Kind {
	case model.PostArticle:
		return s.articleRepo.IncrementCommentCount(ctx, tx, parent.ID, delta)
	case model.PostComment:
		return s.commentRepo.IncrementCommentCount(ctx, tx, parent.ID, delta)
	}
	// Orphaned comment: no parent counter to touch.
	return nil
}

func (s *CommentService) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	return s.commentRepo.GetByID(ctx, id)
}

// ListByArticle returns one page of an article's top-level comments.
func (s *CommentService) ListByArticle(ctx context.Context, articleID int64, page int) ([]model.Comment, error) {
	ok, err := s.articleRepo.Exists(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrArticleNotFound
	}
	return s.commentRepo.ListByParent(ctx, model.ArticleRef(articleID), model.PageSize, model.Offset(model.PageSize, page))
}

// ListReplies returns one page of a comment's direct replies.
func (s *CommentService) ListReplies(ctx context.Context, commentID int64, page int) ([]model.Comment, error) {
	ok, err := s.commentRepo.Exists(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	return s.commentRepo.ListByParent(ctx, model.CommentRef(commentID), model.PageSize, model.Offset(model.PageSize, page))
}

func (s *CommentService) Update(ctx context.Context, id, authorID int64, req model.UpdateCommentRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.commentRepo.Update(ctx, id, authorID, *req.Content); err != nil {
		return err
	}

	logging.Component("comment_service").
		WithField("user_id", authorID).WithField("comment_id", id).
		Info("Comment updated")
	return nil
}

// Delete removes an owned comment, then reverses its parent's and its
// author's n_comments in the same transaction.
func (s *CommentService) Delete(ctx context.Context, id, authorID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	parent, err := s.commentRepo.Delete(ctx, tx, id, authorID)
	if err != nil {
		return err
	}

	if err := s.incrementParentComments(ctx, tx, parent, -1); err != nil {
		return err
	}

	if err := s.userRepo.IncrementCommentCount(ctx, tx, authorID, -1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	logging.Component("comment_service").
		WithField("user_id", authorID).WithField("comment_id", id).WithField("parent", parent.String()).
		Info("Comment deleted")

	publish(ctx, s.publisher, queue.NewCommentDeletedEvent(id, authorID, parent))
	return nil
}
