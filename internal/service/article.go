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

type ArticleService struct {
	articleRepo repository.ArticleRepository
	userRepo    repository.UserRepository
	db          *sqlx.DB
	publisher   queue.Publisher
}

func NewArticleService(
	articleRepo repository.ArticleRepository,
	userRepo repository.UserRepository,
	db *sqlx.DB,
	publisher queue.Publisher,
) *ArticleService {
	return &ArticleService{
		articleRepo: articleRepo,
		userRepo:    userRepo,
		db:          db,
		publisher:   publisher,
	}
}

// Create inserts an article and bumps the author's n_articles in one
// transaction.
func (s *ArticleService) Create(ctx context.Context, authorID int64, req model.CreateArticleRequest) (*model.Article, error) {
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	article, err := s.articleRepo.Create(ctx, tx, authorID, req)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.IncrementArticleCount(ctx, tx, authorID, 1); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	logging.Component("article_service").
		WithField("user_id", authorID).WithField("article_id", article.ID).
		Info("Article created")

	publish(ctx, s.publisher, queue.NewArticleCreatedEvent(article.ID, authorID))
	return article, nil
}

func (s *ArticleService) GetByID(ctx context.Context, id int64) (*model.Article, error) {
	return s.articleRepo.GetByID(ctx, id)
}

func (s *ArticleService) List(ctx context.Context, page int) ([]model.ArticleSummary, error) {
	return s.articleRepo.List(ctx, model.PageSize, model.Offset(model.PageSize, page))
}

// ListByAuthor returns one page of a user's articles.
func (s *ArticleService) ListByAuthor(ctx context.Context, userID int64, page int) ([]model.ArticleSummary, error) {
	ok, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return s.articleRepo.ListByAuthor(ctx, userID, model.PageSize, model.Offset(model.PageSize, page))
}

// Update applies an owner's partial edit.
func (s *ArticleService) Update(ctx context.Context, id, authorID int64, req model.UpdateArticleRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.articleRepo.Update(ctx, id, authorID, req); err != nil {
		return err
	}

	logging.Component("article_service").
		WithField("user_id", authorID).WithField("article_id", id).
		Info("Article updated")
	return nil
}

// Delete removes an owned article. Likers' n_likes are reversed by the
// delete itself; the author's n_articles is reversed here.
func (s *ArticleService) Delete(ctx context.Context, id, authorID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.articleRepo.Delete(ctx, tx, id, authorID); err != nil {
		return err
	}

	if err := s.userRepo.IncrementArticleCount(ctx, tx, authorID, -1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	logging.Component("article_service").
		WithField("user_id", authorID).WithField("article_id", id).
		Info("Article deleted")

	publish(ctx, s.publisher, queue.NewArticleDeletedEvent(id, authorID))
	return nil
}
