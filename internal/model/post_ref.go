package model

import (
	"encoding/json"
	"fmt"
)

// PostKind tags which table a PostRef points at.
type PostKind int

const (
	PostNone PostKind = iota
	PostArticle
	PostComment
)

func (k PostKind) String() string {
	switch k {
	case PostArticle:
		return "Article"
	case PostComment:
		return "Comment"
	default:
		return "None"
	}
}

func (k PostKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// PostRef is a reference to a likeable or commentable post: an article, a
// comment, or nothing (a comment whose parent was deleted).
type PostRef struct {
	Kind PostKind
	ID   int64
}

func ArticleRef(id int64) PostRef { return PostRef{Kind: PostArticle, ID: id} }
func CommentRef(id int64) PostRef { return PostRef{Kind: PostComment, ID: id} }

func (p PostRef) IsNone() bool { return p.Kind == PostNone }

func (p PostRef) String() string {
	if p.IsNone() {
		return "None"
	}
	return fmt.Sprintf("%s(%d)", p.Kind, p.ID)
}

// Columns splits the reference into the nullable (article, comment) column
// pair used by the comments and likes tables.
func (p PostRef) Columns() (articleID, commentID *int64) {
	id := p.ID
	switch p.Kind {
	case PostArticle:
		return &id, nil
	case PostComment:
		return nil, &id
	}
	return nil, nil
}

// PostRefFromColumns is the inverse of Columns. Both columns set returns
// ErrMultipleParents.
func PostRefFromColumns(articleID, commentID *int64) (PostRef, error) {
	switch {
	case articleID != nil && commentID != nil:
		return PostRef{}, ErrMultipleParents
	case articleID != nil:
		return ArticleRef(*articleID), nil
	case commentID != nil:
		return CommentRef(*commentID), nil
	}
	return PostRef{}, nil
}

// PostRefTarget is the JSON shape of a liked post: {postId, postType}.
type PostRefTarget struct {
	PostID   int64    `json:"postId"`
	PostType PostKind `json:"postType"`
}
