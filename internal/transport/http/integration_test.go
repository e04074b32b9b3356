//go:build integration
// +build integration

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"blogapi/internal/config"
	"blogapi/internal/database"
	"blogapi/internal/model"
)

func setupPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("blogdb"),
		postgres.WithUsername("bloguser"),
		postgres.WithPassword("blogpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlx.Connect("postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(ctx, db))
	return db
}

type apiClient struct {
	t   *testing.T
	url string
}

// send performs one request without touching t, so it is safe to call from
// spawned goroutines.
func (c apiClient) send(method, path, token string, body interface{}, out interface{}) (int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, err
		}
	}
	req, err := http.NewRequest(method, c.url+"/api/v1"+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func (c apiClient) do(method, path, token string, body interface{}, out interface{}) int {
	c.t.Helper()
	status, err := c.send(method, path, token, body, out)
	require.NoError(c.t, err)
	return status
}

func (c apiClient) register(username string) model.AuthResponse {
	c.t.Helper()
	var auth model.AuthResponse
	status := c.do(http.MethodPost, "/auth/register", "", model.RegisterRequest{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "secret-password",
		FirstName: "Test",
		LastName:  "User",
	}, &auth)
	require.Equal(c.t, http.StatusCreated, status)
	return auth
}

func (c apiClient) article(id int64) *model.Article {
	c.t.Helper()
	var resp model.ArticleResponse
	require.Equal(c.t, http.StatusOK, c.do(http.MethodGet, fmt.Sprintf("/articles/%d", id), "", nil, &resp))
	return resp.Article
}

func (c apiClient) me(token string) *model.User {
	c.t.Helper()
	var resp struct {
		User *model.User `json:"user"`
	}
	require.Equal(c.t, http.StatusOK, c.do(http.MethodGet, "/users/me", token, nil, &resp))
	return resp.User
}

func newIntegrationServer(t *testing.T) apiClient {
	db := setupPostgres(t)
	cfg := &config.Config{JWTSecret: "integration-secret", JWTLifetime: 3600}
	srv := httptest.NewServer(NewHandler(cfg, db, nil))
	t.Cleanup(srv.Close)
	return apiClient{t: t, url: srv.URL}
}

func TestIntegration_LikeLifecycle(t *testing.T) {
	api := newIntegrationServer(t)

	author := api.register("alice")
	reader := api.register("bob")

	var created model.CreatedResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/articles", author.Token,
		model.CreateArticleRequest{Title: "Hello", Content: "First post"}, &created))
	assert.Equal(t, 1, api.me(author.Token).NArticles)

	likePath := fmt.Sprintf("/articles/%d/likes", created.ID)
	assert.Equal(t, http.StatusCreated, api.do(http.MethodPost, likePath, reader.Token, nil, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, likePath, reader.Token, nil, nil))
	assert.Equal(t, 1, api.article(created.ID).NLikes)
	assert.Equal(t, 1, api.me(reader.Token).NLikes)

	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, likePath, reader.Token, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, likePath, reader.Token, nil, nil))
	assert.Equal(t, 0, api.article(created.ID).NLikes)
	assert.Equal(t, 0, api.me(reader.Token).NLikes)
}

func TestIntegration_DeleteArticleReversesCounters(t *testing.T) {
	api := newIntegrationServer(t)

	author := api.register("carol")
	reader := api.register("dave")

	var article model.CreatedResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/articles", author.Token,
		model.CreateArticleRequest{Title: "Doomed", Content: "Short lived"}, &article))

	var comment model.CreatedResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, fmt.Sprintf("/articles/%d/comments", article.ID),
		reader.Token, model.CreateCommentRequest{Content: "Nice"}, &comment))
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, fmt.Sprintf("/articles/%d/likes", article.ID),
		reader.Token, nil, nil))
	assert.Equal(t, 1, api.article(article.ID).NComments)

	articlePath := fmt.Sprintf("/articles/%d", article.ID)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, articlePath, reader.Token, nil, nil))
	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, articlePath, author.Token, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, articlePath, "", nil, nil))

	assert.Equal(t, 0, api.me(author.Token).NArticles)
	readerAfter := api.me(reader.Token)
	assert.Equal(t, 0, readerAfter.NLikes)
	assert.Equal(t, 1, readerAfter.NComments)

	// the comment survives as an orphan
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, fmt.Sprintf("/comments/%d", comment.ID), "", nil, nil))
}

func TestIntegration_DeleteCommentReversesCounters(t *testing.T) {
	api := newIntegrationServer(t)

	author := api.register("grace")
	replier := api.register("heidi")
	liker := api.register("ivan")

	var article model.CreatedResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/articles", author.Token,
		model.CreateArticleRequest{Title: "Thread", Content: "Discuss"}, &article))

	var comment model.CreatedResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, fmt.Sprintf("/articles/%d/comments", article.ID),
		replier.Token, model.CreateCommentRequest{Content: "First"}, &comment))

	commentPath := fmt.Sprintf("/comments/%d", comment.ID)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, commentPath+"/likes", liker.Token, nil, nil))
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, commentPath+"/likes", author.Token, nil, nil))
	require.Equal(t, 1, api.me(liker.Token).NLikes)
	require.Equal(t, 1, api.article(article.ID).NComments)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, commentPath, liker.Token, nil, nil))
	assert.Equal(t, 1, api.me(liker.Token).NLikes)

	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, commentPath, replier.Token, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, commentPath, "", nil, nil))

	assert.Equal(t, 0, api.me(liker.Token).NLikes)
	assert.Equal(t, 0, api.me(author.Token).NLikes)
	assert.Equal(t, 0, api.me(replier.Token).NComments)
	assert.Equal(t, 0, api.article(article.ID).NComments)
}

func TestIntegration_ConcurrentLikesConverge(t *testing.T) {
	api := newIntegrationServer(t)

	author := api.register("erin")
	var article model.CreatedResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/articles", author.Token,
		model.CreateArticleRequest{Title: "Popular", Content: "Everyone likes this"}, &article))

	const likers = 20
	tokens := make([]string, likers)
	for i := range tokens {
		tokens[i] = api.register(fmt.Sprintf("liker%d", i)).Token
	}

	likePath := fmt.Sprintf("/articles/%d/likes", article.ID)
	statuses := make([]int, likers)
	errs := make([]error, likers)
	var wg sync.WaitGroup
	for i, token := range tokens {
		wg.Add(1)
		go func(i int, token string) {
			defer wg.Done()
			statuses[i], errs[i] = api.send(http.MethodPost, likePath, token, nil, nil)
		}(i, token)
	}
	wg.Wait()

	for i, status := range statuses {
		require.NoError(t, errs[i], "liker %d", i)
		assert.Equal(t, http.StatusCreated, status, "liker %d", i)
	}
	assert.Equal(t, likers, api.article(article.ID).NLikes)

	// concurrent duplicate likes from one user settle on exactly one row
	dupe := api.register("frank")
	type result struct {
		status int
		err    error
	}
	var dupes sync.WaitGroup
	results := make(chan result, 5)
	for i := 0; i < 5; i++ {
		dupes.Add(1)
		go func() {
			defer dupes.Done()
			status, err := api.send(http.MethodPost, likePath, dupe.Token, nil, nil)
			results <- result{status, err}
		}()
	}
	dupes.Wait()
	close(results)

	created := 0
	for res := range results {
		require.NoError(t, res.err)
		status := res.status
		if status == http.StatusCreated {
			created++
		} else {
			assert.Equal(t, http.StatusBadRequest, status)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, likers+1, api.article(article.ID).NLikes)
	assert.Equal(t, 1, api.me(dupe.Token).NLikes)
}
