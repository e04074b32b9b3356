package model

import (
	"time"
)

// Comment is a comment on an article or a reply to another comment. Both
// parent columns null means the parent was deleted.
type Comment struct {
	ID              int64        `db:"id" json:"id"`
	AuthorID        int64        `db:"author_id" json:"-"`
	ArticleID       *int64       `db:"article_id" json:"articleId"`
	ParentCommentID *int64       `db:"parent_comment_id" json:"parentCommentId"`
	Content         string       `db:"content" json:"content"`
	NLikes          int          `db:"n_likes" json:"nLikes"`
	NComments       int          `db:"n_comments" json:"nComments"`
	CreatedAt       time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updatedAt"`
	Author          *UserSummary `db:"-" json:"Author,omitempty"`
}

// Validate enforces the at-most-one-parent rule on a persisted comment.
func (c *Comment) Validate() error {
	if c.ArticleID != nil && c.ParentCommentID != nil {
		return ErrMultipleParents
	}
	return nil
}

// NewComment builds a comment for insertion. A new comment must have a
// parent.
func NewComment(authorID int64, parent PostRef, content string) (*Comment, error) {
	if parent.IsNone() {
		return nil, ErrMissingParent
	}
	articleID, parentCommentID := parent.Columns()
	c := &Comment{
		AuthorID:        authorID,
		ArticleID:       articleID,
		ParentCommentID: parentCommentID,
		Content:         content,
	}
	return c, c.Validate()
}

const MaxCommentLength = 5000

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

// UpdateCommentRequest is the allow-list of mutable comment fields.
type UpdateCommentRequest struct {
	Content *string `json:"content"`
}

func (r UpdateCommentRequest) Validate() error {
	if r.Content == nil {
		return ErrEmptyPatch
	}
	return validateField("content", *r.Content, lengthRule(MaxCommentLength))
}

type CommentResponse struct {
	Comment *Comment `json:"comment"`
}

type CommentListResponse struct {
	Comments []Comment `json:"comments"`
}
