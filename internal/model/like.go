package model

import "time"

// Like is a user's like on exactly one post.
type Like struct {
	ID        int64     `db:"id" json:"-"`
	UserID    int64     `db:"user_id" json:"-"`
	ArticleID *int64    `db:"article_id" json:"-"`
	CommentID *int64    `db:"comment_id" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func NewLike(userID int64, target PostRef) *Like {
	articleID, commentID := target.Columns()
	return &Like{UserID: userID, ArticleID: articleID, CommentID: commentID}
}

// Validate enforces the exactly-one-target rule.
func (l *Like) Validate() error {
	switch {
	case l.ArticleID != nil && l.CommentID != nil:
		return ErrMultipleParents
	case l.ArticleID == nil && l.CommentID == nil:
		return ErrMissingParent
	}
	return nil
}

func (l *Like) Target() (PostRef, error) {
	if err := l.Validate(); err != nil {
		return PostRef{}, err
	}
	return PostRefFromColumns(l.ArticleID, l.CommentID)
}

// Liker is one entry of a post's like listing.
type Liker struct {
	CreatedAt time.Time   `json:"createdAt"`
	User      UserSummary `json:"User"`
}

type LikeListResponse struct {
	Likes []Liker `json:"likes"`
}

type UserLikesResponse struct {
	Likes []PostRefTarget `json:"likes"`
}
