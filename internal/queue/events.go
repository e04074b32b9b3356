package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"blogapi/internal/model"
)

// Event types for the activity stream
const (
	EventArticleCreated = "article_created"
	EventArticleDeleted = "article_deleted"
	EventCommentCreated = "comment_created"
	EventCommentDeleted = "comment_deleted"
	EventPostLiked      = "post_liked"
	EventPostUnliked    = "post_unliked"
	EventUserFollowed   = "user_followed"
	EventUserUnfollowed = "user_unfollowed"
)

// StreamActivity receives one event per committed relation change.
const StreamActivity = "stream:activity"

// ActivityEvent is published after a relation mutation commits.
type ActivityEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ActorID   int64  `json:"actor_id"`

	// Post events
	PostID   int64  `json:"post_id,omitempty"`
	PostType string `json:"post_type,omitempty"`

	// Comment events: the comment and its parent post
	CommentID int64 `json:"comment_id,omitempty"`

	// Follow events
	TargetUserID int64 `json:"target_user_id,omitempty"`
}

func newPostEvent(eventType string, actorID int64, post model.PostRef) ActivityEvent {
	e := ActivityEvent{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		ActorID:   actorID,
	}
	if !post.IsNone() {
		e.PostID = post.ID
		e.PostType = post.Kind.String()
	}
	return e
}

func NewArticleCreatedEvent(articleID, authorID int64) ActivityEvent {
	return newPostEvent(EventArticleCreated, authorID, model.ArticleRef(articleID))
}

func NewArticleDeletedEvent(articleID, authorID int64) ActivityEvent {
	return newPostEvent(EventArticleDeleted, authorID, model.ArticleRef(articleID))
}

// NewCommentCreatedEvent records a comment on parent.
func NewCommentCreatedEvent(commentID, authorID int64, parent model.PostRef) ActivityEvent {
	e := newPostEvent(EventCommentCreated, authorID, parent)
	e.CommentID = commentID
	return e
}

// NewCommentDeletedEvent records a deleted comment. parent is None for an
// orphaned comment.
func NewCommentDeletedEvent(commentID, authorID int64, parent model.PostRef) ActivityEvent {
	e := newPostEvent(EventCommentDeleted, authorID, parent)
	e.CommentID = commentID
	return e
}

func NewPostLikedEvent(userID int64, target model.PostRef) ActivityEvent {
	return newPostEvent(EventPostLiked, userID, target)
}

func NewPostUnlikedEvent(userID int64, target model.PostRef) ActivityEvent {
	return newPostEvent(EventPostUnliked, userID, target)
}

func NewUserFollowedEvent(followerID, followedID int64) ActivityEvent {
	return ActivityEvent{
		Type:         EventUserFollowed,
		Timestamp:    time.Now().Unix(),
		ActorID:      followerID,
		TargetUserID: followedID,
	}
}

func NewUserUnfollowedEvent(followerID, followedID int64) ActivityEvent {
	return ActivityEvent{
		Type:         EventUserUnfollowed,
		Timestamp:    time.Now().Unix(),
		ActorID:      followerID,
		TargetUserID: followedID,
	}
}

// ToMap converts the event to XADD field-value pairs. The payload is JSON
// in the "data" field.
func (e ActivityEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseActivityEvent parses an event from Redis stream message values.
func ParseActivityEvent(values map[string]interface{}) (ActivityEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ActivityEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ActivityEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ActivityEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
