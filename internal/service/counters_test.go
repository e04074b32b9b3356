package service

import (
	"context"
	"database/sql/driver"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogapi/internal/model"
	"blogapi/internal/queue"
	"blogapi/internal/repository"
)

// These tests run the real repositories against go-sqlmock so the exact
// statement sequence of each transaction is asserted, including that a
// failure rolls back and touches no further counters.

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.ActivityEvent
}

func (p *fakePublisher) Publish(ctx context.Context, stream string, event queue.ActivityEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return "1-0", nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	mock      sqlmock.Sqlmock
	publisher *fakePublisher
	articles  *ArticleService
	comments  *CommentService
	likes     *LikeService
	follows   *FollowService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		sqlDB.Close()
	})

	db := sqlx.NewDb(sqlDB, "postgres")
	userRepo := repository.NewUserRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	followRepo := repository.NewFollowRepository(db)
	pub := &fakePublisher{}

	return &testEnv{
		mock:      mock,
		publisher: pub,
		articles:  NewArticleService(articleRepo, userRepo, db, pub),
		comments:  NewCommentService(commentRepo, articleRepo, userRepo, db, pub),
		likes:     NewLikeService(likeRepo, articleRepo, commentRepo, userRepo, db, pub),
		follows:   NewFollowService(followRepo, userRepo, db, pub),
	}
}

func (e *testEnv) expectExists(query string, result bool, args ...driver.Value) {
	e.mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(args...).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(result))
}

func (e *testEnv) expectCounter(table, column string, delta int, id int64, affected int64) {
	e.mock.ExpectExec(regexp.QuoteMeta("UPDATE "+table+" SET "+column+" = "+column+" + $1 WHERE id = $2")).
		WithArgs(delta, id).
		WillReturnResult(sqlmock.NewResult(0, affected))
}

// expectLock expects the owner row lock that precedes every delete.
func (e *testEnv) expectLock(table string, id, authorID int64, found bool) {
	rows := sqlmock.NewRows([]string{"id"})
	if found {
		rows.AddRow(id)
	}
	e.mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM "+table+" WHERE id = $1 AND author_id = $2 FOR UPDATE")).
		WithArgs(id, authorID).
		WillReturnRows(rows)
}

func insertedRow(id int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id, now, now)
}

// =============================================================================
// LIKES
// =============================================================================

func TestLikeService_Like_IncrementsBothCounters(t *testing.T) {
	env := newTestEnv(t)

	env.expectExists(`SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND article_id = $2)`, false, int64(2), int64(1))
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO likes`)).
		WithArgs(int64(2), int64(1), nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(10), time.Now()))
	env.expectCounter("articles", "n_likes", 1, 1, 1)
	env.expectCounter("users", "n_likes", 1, 2, 1)
	env.mock.ExpectCommit()

	err := env.likes.Like(context.Background(), 2, model.ArticleRef(1))
	require.NoError(t, err)
	assert.Equal(t, []string{queue.EventPostLiked}, env.publisher.types())
}

func TestLikeService_Like_DuplicatePreCheck(t *testing.T) {
	env := newTestEnv(t)

	env.expectExists(`SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND comment_id = $2)`, true, int64(2), int64(4))

	err := env.likes.Like(context.Background(), 2, model.CommentRef(4))
	assert.ErrorIs(t, err, model.ErrDuplicateLike)
	assert.Empty(t, env.publisher.types())
}

func TestLikeService_Like_UniqueIndexBackstop(t *testing.T) {
	env := newTestEnv(t)

	// A concurrent like slipped in between the pre-check and the insert.
	env.expectExists(`FROM likes`, false, int64(2), int64(1))
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO likes`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_likes_user_article"})
	env.mock.ExpectRollback()

	err := env.likes.Like(context.Background(), 2, model.ArticleRef(1))
	assert.ErrorIs(t, err, model.ErrDuplicateLike)
	assert.Empty(t, env.publisher.types())
}

func TestLikeService_Like_MissingTarget(t *testing.T) {
	env := newTestEnv(t)

	env.expectExists(`FROM likes`, false, int64(2), int64(99))
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO likes`)).
		WillReturnError(&pq.Error{Code: "23503"})
	env.mock.ExpectRollback()

	err := env.likes.Like(context.Background(), 2, model.ArticleRef(99))
	assert.ErrorIs(t, err, model.ErrArticleNotFound)
}

func TestLikeService_Like_CounterFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)

	env.expectExists(`FROM likes`, false, int64(2), int64(3))
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO likes`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(10), time.Now()))
	env.expectCounter("comments", "n_likes", 1, 3, 0)
	env.mock.ExpectRollback()

	err := env.likes.Like(context.Background(), 2, model.CommentRef(3))
	assert.ErrorIs(t, err, model.ErrCommentNotFound)
	assert.Empty(t, env.publisher.types())
}

func TestLikeService_Like_InvalidTarget(t *testing.T) {
	env := newTestEnv(t)

	err := env.likes.Like(context.Background(), 2, model.PostRef{})
	assert.ErrorIs(t, err, model.ErrMissingParent)
}

func TestLikeService_Unlike(t *testing.T) {
	t.Run("reverses both counters", func(t *testing.T) {
		env := newTestEnv(t)

		env.mock.ExpectBegin()
		env.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM likes WHERE user_id = $1 AND comment_id = $2`)).
			WithArgs(int64(2), int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		env.expectCounter("comments", "n_likes", -1, 3, 1)
		env.expectCounter("users", "n_likes", -1, 2, 1)
		env.mock.ExpectCommit()

		require.NoError(t, env.likes.Unlike(context.Background(), 2, model.CommentRef(3)))
		assert.Equal(t, []string{queue.EventPostUnliked}, env.publisher.types())
	})

	t.Run("not liked touches no counters", func(t *testing.T) {
		env := newTestEnv(t)

		env.mock.ExpectBegin()
		env.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM likes`)).
			WithArgs(int64(2), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		env.mock.ExpectRollback()

		err := env.likes.Unlike(context.Background(), 2, model.ArticleRef(1))
		assert.ErrorIs(t, err, model.ErrLikeNotFound)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestLikeService_ListByPost_MissingComment(t *testing.T) {
	env := newTestEnv(t)

	env.expectExists(`SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)`, false, int64(8))

	_, err := env.likes.ListByPost(context.Background(), model.CommentRef(8), 1)
	assert.ErrorIs(t, err, model.ErrCommentNotFound)
}

// =============================================================================
// COMMENTS
// =============================================================================

func TestCommentService_CommentOnArticle(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO comments`)).
		WithArgs(int64(3), int64(1), nil, "hello").
		WillReturnRows(insertedRow(20))
	env.expectCounter("articles", "n_comments", 1, 1, 1)
	env.expectCounter("users", "n_comments", 1, 3, 1)
	env.mock.ExpectCommit()

	comment, err := env.comments.CommentOnArticle(context.Background(), 1, 3, model.CreateCommentRequest{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, int64(20), comment.ID)
	assert.Equal(t, []string{queue.EventCommentCreated}, env.publisher.types())
}

func TestCommentService_CommentOnArticle_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.comments.CommentOnArticle(context.Background(), 1, 3, model.CreateCommentRequest{Content: ""})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCommentService_ReplyToComment(t *testing.T) {
	env := newTestEnv(t)

	env.expectExists(`SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)`, true, int64(5))
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO comments`)).
		WithArgs(int64(3), nil, int64(5), "reply").
		WillReturnRows(insertedRow(21))
	env.expectCounter("comments", "n_comments", 1, 5, 1)
	env.expectCounter("users", "n_comments", 1, 3, 1)
	env.mock.ExpectCommit()

	comment, err := env.comments.ReplyToComment(context.Background(), 5, 3, model.CreateCommentRequest{Content: "reply"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), *comment.ParentCommentID)
	assert.Nil(t, comment.ArticleID)
}

func TestCommentService_ReplyToComment_ValidatesBeforeParentLookup(t *testing.T) {
	env := newTestEnv(t)

	// no query is expected: validation fails before the parent is checked
	_, err := env.comments.ReplyToComment(context.Background(), 5, 3, model.CreateCommentRequest{Content: ""})
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Empty(t, env.publisher.types())
}

func TestCommentService_ReplyToComment_MissingParent(t *testing.T) {
	env := newTestEnv(t)

	env.expectExists(`FROM comments WHERE id = $1`, false, int64(5))

	_, err := env.comments.ReplyToComment(context.Background(), 5, 3, model.CreateCommentRequest{Content: "reply"})
	assert.ErrorIs(t, err, model.ErrCommentNotFound)
}

func TestCommentService_Delete(t *testing.T) {
	deleteQuery := regexp.QuoteMeta(`DELETE FROM comments WHERE id = $1 AND author_id = $2`)
	cols := []string{"article_id", "parent_comment_id"}

	t.Run("reply decrements parent comment", func(t *testing.T) {
		env := newTestEnv(t)

		env.mock.ExpectBegin()
		env.expectLock("comments", 9, 3, true)
		env.mock.ExpectQuery(deleteQuery).WithArgs(int64(9), int64(3)).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(nil, int64(5)))
		env.expectCounter("comments", "n_comments", -1, 5, 1)
		env.expectCounter("users", "n_comments", -1, 3, 1)
		env.mock.ExpectCommit()

		require.NoError(t, env.comments.Delete(context.Background(), 9, 3))
		assert.Equal(t, []string{queue.EventCommentDeleted}, env.publisher.types())
	})

	t.Run("article comment decrements article", func(t *testing.T) {
		env := newTestEnv(t)

		env.mock.ExpectBegin()
		env.expectLock("comments", 9, 3, true)
		env.mock.ExpectQuery(deleteQuery).WithArgs(int64(9), int64(3)).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), nil))
		env.expectCounter("articles", "n_comments", -1, 1, 1)
		env.expectCounter("users", "n_comments", -1, 3, 1)
		env.mock.ExpectCommit()

		require.NoError(t, env.comments.Delete(context.Background(), 9, 3))
	})

	t.Run("orphan skips parent", func(t *testing.T) {
		env := newTestEnv(t)

		env.mock.ExpectBegin()
		env.expectLock("comments", 9, 3, true)
		env.mock.ExpectQuery(deleteQuery).WithArgs(int64(9), int64(3)).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(nil, nil))
		env.expectCounter("users", "n_comments", -1, 3, 1)
		env.mock.ExpectCommit()

		require.NoError(t, env.comments.Delete(context.Background(), 9, 3))
	})

	t.Run("missing or not owned", func(t *testing.T) {
		env := newTestEnv(t)

		env.mock.ExpectBegin()
		env.expectLock("comments", 9, 4, false)
		env.mock.ExpectRollback()

		err := env.comments.Delete(context.Background(), 9, 4)
		assert.ErrorIs(t, err, model.ErrCommentNotFound)
		assert.Empty(t, env.publisher.types())
	})
}

func TestCommentService_Update_EmptyPatch(t *testing.T) {
	env := newTestEnv(t)

	err := env.comments.Update(context.Background(), 1, 1, model.UpdateCommentRequest{})
	assert.ErrorIs(t, err, model.ErrBadRequest)
}

// =============================================================================
// FOLLOWS
// =============================================================================

const userExistsQuery = `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`

func TestFollowService_Follow(t *testing.T) {
	env := newTestEnv(t)

	env.expectExists(userExistsQuery, true, int64(2))
	env.mock.ExpectBegin()
	env.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO follows`)).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.expectCounter("users", "n_followers", 1, 2, 1)
	env.expectCounter("users", "n_following", 1, 1, 1)
	env.mock.ExpectCommit()

	require.NoError(t, env.follows.Follow(context.Background(), 1, 2))
	assert.Equal(t, []string{queue.EventUserFollowed}, env.publisher.types())
}

func TestFollowService_Follow_Rejections(t *testing.T) {
	t.Run("missing target", func(t *testing.T) {
		env := newTestEnv(t)
		env.expectExists(userExistsQuery, false, int64(2))

		assert.ErrorIs(t, env.follows.Follow(context.Background(), 1, 2), model.ErrUserNotFound)
	})

	t.Run("self follow", func(t *testing.T) {
		env := newTestEnv(t)
		env.expectExists(userExistsQuery, true, int64(1))

		err := env.follows.Follow(context.Background(), 1, 1)
		assert.ErrorIs(t, err, model.ErrSelfFollow)
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("already following", func(t *testing.T) {
		env := newTestEnv(t)
		env.expectExists(userExistsQuery, true, int64(2))
		env.mock.ExpectBegin()
		env.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO follows`)).
			WithArgs(int64(1), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		env.mock.ExpectRollback()

		assert.ErrorIs(t, env.follows.Follow(context.Background(), 1, 2), model.ErrAlreadyFollowing)
	})
}

func TestFollowService_Unfollow(t *testing.T) {
	t.Run("reverses counters", func(t *testing.T) {
		env := newTestEnv(t)
		env.expectExists(userExistsQuery, true, int64(2))
		env.mock.ExpectBegin()
		env.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM follows`)).
			WithArgs(int64(1), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		env.expectCounter("users", "n_followers", -1, 2, 1)
		env.expectCounter("users", "n_following", -1, 1, 1)
		env.mock.ExpectCommit()

		require.NoError(t, env.follows.Unfollow(context.Background(), 1, 2))
	})

	t.Run("not following touches no counters", func(t *testing.T) {
		env := newTestEnv(t)
		env.expectExists(userExistsQuery, true, int64(2))
		env.mock.ExpectBegin()
		env.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM follows`)).
			WithArgs(int64(1), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		env.mock.ExpectRollback()

		assert.ErrorIs(t, env.follows.Unfollow(context.Background(), 1, 2), model.ErrNotFollowing)
		assert.Empty(t, env.publisher.types())
	})
}

// =============================================================================
// ARTICLES
// =============================================================================

func TestArticleService_Create(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO articles`)).
		WithArgs(int64(1), "T", "C").
		WillReturnRows(insertedRow(1))
	env.expectCounter("users", "n_articles", 1, 1, 1)
	env.mock.ExpectCommit()

	article, err := env.articles.Create(context.Background(), 1, model.CreateArticleRequest{Title: "T", Content: "C"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), article.ID)
	assert.Equal(t, []string{queue.EventArticleCreated}, env.publisher.types())
}

func TestArticleService_Delete(t *testing.T) {
	deleteQuery := regexp.QuoteMeta(`DELETE FROM articles WHERE id = $1 AND author_id = $2`)

	t.Run("owner decrements n_articles", func(t *testing.T) {
		env := newTestEnv(t)
		env.mock.ExpectBegin()
		env.expectLock("articles", 1, 1, true)
		env.mock.ExpectQuery(deleteQuery).WithArgs(int64(1), int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		env.expectCounter("users", "n_articles", -1, 1, 1)
		env.mock.ExpectCommit()

		require.NoError(t, env.articles.Delete(context.Background(), 1, 1))
		assert.Equal(t, []string{queue.EventArticleDeleted}, env.publisher.types())
	})

	t.Run("non owner is not found with no counter change", func(t *testing.T) {
		env := newTestEnv(t)
		env.mock.ExpectBegin()
		env.expectLock("articles", 1, 2, false)
		env.mock.ExpectRollback()

		err := env.articles.Delete(context.Background(), 1, 2)
		assert.ErrorIs(t, err, model.ErrArticleNotFound)
		assert.Empty(t, env.publisher.types())
	})
}

func TestArticleService_Update(t *testing.T) {
	env := newTestEnv(t)
	content := "new body"

	env.mock.ExpectExec(regexp.QuoteMeta(`UPDATE articles`)).
		WithArgs(nil, &content, int64(1), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, env.articles.Update(context.Background(), 1, 1, model.UpdateArticleRequest{Content: &content}))

	assert.ErrorIs(t, env.articles.Update(context.Background(), 1, 1, model.UpdateArticleRequest{}), model.ErrBadRequest)
}

func TestArticleService_ListByAuthor_MissingUser(t *testing.T) {
	env := newTestEnv(t)
	env.expectExists(userExistsQuery, false, int64(9))

	_, err := env.articles.ListByAuthor(context.Background(), 9, 1)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}
