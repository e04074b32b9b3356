package model

import "errors"

// Error categories. Every error returned by the service layer either wraps
// one of these or is treated as an internal failure.
var (
	ErrUnauthenticated = errors.New("authentication failed")
	ErrBadRequest      = errors.New("bad request")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("resource not found")
)

// kindError is a sentinel with a client-facing message that matches its
// category under errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// ErrDuplicateRelation is matched by every duplicate like, follow or user.
var ErrDuplicateRelation = newError(ErrValidation, "Attempt at creating duplicate relation")

var (
	ErrUserNotFound    = newError(ErrNotFound, "User with provided id doesn't exist")
	ErrArticleNotFound = newError(ErrNotFound, "Article with provided id doesn't exist")
	ErrCommentNotFound = newError(ErrNotFound, "Comment with provided id doesn't exist")
	ErrLikeNotFound    = newError(ErrNotFound, "Post isn't liked or doesn't exist")
	ErrNotFollowing    = newError(ErrNotFound, "User isn't followed")

	ErrDuplicateLike    = newError(ErrDuplicateRelation, "Attempt at creating duplicate like")
	ErrAlreadyFollowing = newError(ErrDuplicateRelation, "Attempt at creating duplicate follow")
	ErrDuplicateUser    = newError(ErrDuplicateRelation, "Attempt at creating duplicate user")

	ErrSelfFollow      = newError(ErrValidation, "Users cannot follow themselves")
	ErrMultipleParents = newError(ErrValidation, "A post can only have one parent")
	ErrMissingParent   = newError(ErrValidation, "A post parent is required")

	ErrInvalidCredentials = newError(ErrUnauthenticated, "Invalid credentials")
	ErrInvalidToken       = newError(ErrUnauthenticated, "Invalid authentication token")
	ErrMissingToken       = newError(ErrUnauthenticated, "Missing authentication token")

	ErrEmptyPatch = newError(ErrBadRequest, "No updatable fields provided")
)
