package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogapi/internal/model"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"not found", model.ErrArticleNotFound, http.StatusNotFound, "Article with provided id doesn't exist"},
		{"wrapped not found", fmt.Errorf("load: %w", model.ErrCommentNotFound), http.StatusNotFound, "load: Comment with provided id doesn't exist"},
		{"duplicate like", model.ErrDuplicateLike, http.StatusBadRequest, "Attempt at creating duplicate like"},
		{"self follow", model.ErrSelfFollow, http.StatusBadRequest, "Users cannot follow themselves"},
		{"empty patch", model.ErrEmptyPatch, http.StatusBadRequest, "No updatable fields provided"},
		{"bad credentials", model.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/articles/1", nil)

			WriteServiceError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body MessageResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}

func TestWriteServiceError_ValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/articles", nil)

	err := model.Validate(model.CreateArticleRequest{})
	require.Error(t, err)

	WriteServiceError(rec, req, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ValidationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEmpty(t, body.Message)
	require.Len(t, body.Errors, 2)
	assert.Equal(t, "title", body.Errors[0].Field)
	assert.Equal(t, "content", body.Errors[1].Field)
}

func TestWriteNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteNoContent(rec)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
