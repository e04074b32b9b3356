package model

import "time"

// Article is the detail view of an article, author joined inline.
type Article struct {
	ID        int64        `db:"id" json:"id"`
	AuthorID  *int64       `db:"author_id" json:"-"`
	Title     string       `db:"title" json:"title"`
	Content   string       `db:"content" json:"content"`
	NLikes    int          `db:"n_likes" json:"nLikes"`
	NComments int          `db:"n_comments" json:"nComments"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
	Author    *UserSummary `db:"-" json:"Author"`
}

// ArticleSummary is the listing view. It never carries content.
type ArticleSummary struct {
	ID        int64        `db:"id" json:"id"`
	Title     string       `db:"title" json:"title"`
	NLikes    int          `db:"n_likes" json:"nLikes"`
	NComments int          `db:"n_comments" json:"nComments"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	Author    *UserSummary `db:"-" json:"Author"`
}

const (
	MaxTitleLength          = 100
	MaxArticleContentLength = 10000
)

type CreateArticleRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=100"`
	Content string `json:"content" validate:"required,min=1,max=10000"`
}

// UpdateArticleRequest is the allow-list of mutable article fields.
type UpdateArticleRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// Validate rejects an empty patch and re-runs the length rules on the
// supplied fields.
func (r UpdateArticleRequest) Validate() error {
	if r.Title == nil && r.Content == nil {
		return ErrEmptyPatch
	}
	if r.Title != nil {
		if err := validateField("title", *r.Title, lengthRule(MaxTitleLength)); err != nil {
			return err
		}
	}
	if r.Content != nil {
		if err := validateField("content", *r.Content, lengthRule(MaxArticleContentLength)); err != nil {
			return err
		}
	}
	return nil
}

type ArticleResponse struct {
	Article *Article `json:"article"`
}

type ArticleListResponse struct {
	Articles []ArticleSummary `json:"articles"`
}

type CreatedResponse struct {
	ID int64 `json:"id"`
}
