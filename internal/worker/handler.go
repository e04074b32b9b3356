package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"blogapi/internal/logging"
	"blogapi/internal/model"
	"blogapi/internal/queue"
	"blogapi/internal/repository"
)

// CounterAuditor recounts the rows behind denormalized counters.
type CounterAuditor interface {
	CheckPost(ctx context.Context, post model.PostRef) ([]repository.CounterDrift, error)
	CheckUser(ctx context.Context, userID int64) ([]repository.CounterDrift, error)
}

// Handler audits the counters touched by each activity event and logs any
// drift. It never repairs: counters only move through the service
// transactions.
type Handler struct {
	auditor CounterAuditor
}

func NewHandler(auditor CounterAuditor) *Handler {
	return &Handler{auditor: auditor}
}

// HandleEvent re-checks every entity whose counter the event's transaction
// changed and logs the drift it found.
func (h *Handler) HandleEvent(ctx context.Context, event queue.ActivityEvent) error {
	startTime := time.Now()

	drift, err := h.audit(ctx, event)
	if err != nil {
		return err
	}

	log := logging.Component("audit").WithFields(logrus.Fields{
		"type":     event.Type,
		"actor_id": event.ActorID,
		"duration": time.Since(startTime),
	})
	for _, d := range drift {
		log.WithFields(logrus.Fields{
			"table":  d.Table,
			"id":     d.ID,
			"column": d.Column,
			"stored": d.Stored,
			"actual": d.Actual,
		}).Warn("Counter drift detected")
	}
	if len(drift) == 0 {
		log.Debug("Counters consistent")
	}
	return nil
}

func (h *Handler) audit(ctx context.Context, event queue.ActivityEvent) ([]repository.CounterDrift, error) {
	users := []int64{event.ActorID}
	var post model.PostRef

	switch event.Type {
	case queue.EventArticleCreated, queue.EventCommentCreated, queue.EventCommentDeleted,
		queue.EventPostLiked, queue.EventPostUnliked:
		ref, err := postRef(event)
		if err != nil {
			return nil, err
		}
		post = ref
	case queue.EventArticleDeleted:
		// the article is gone; only the author's counters remain
	case queue.EventUserFollowed, queue.EventUserUnfollowed:
		users = append(users, event.TargetUserID)
	default:
		return nil, fmt.Errorf("unknown event type: %s", event.Type)
	}

	var drift []repository.CounterDrift
	if !post.IsNone() {
		d, err := h.auditor.CheckPost(ctx, post)
		if err != nil {
			return nil, err
		}
		drift = append(drift, d...)
	}
	for _, userID := range users {
		d, err := h.auditor.CheckUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		drift = append(drift, d...)
	}
	return drift, nil
}

// postRef rebuilds the event's post reference. Orphaned comment events
// carry no post.
func postRef(event queue.ActivityEvent) (model.PostRef, error) {
	switch event.PostType {
	case "":
		return model.PostRef{}, nil
	case model.PostArticle.String():
		return model.ArticleRef(event.PostID), nil
	case model.PostComment.String():
		return model.CommentRef(event.PostID), nil
	}
	return model.PostRef{}, fmt.Errorf("unknown post type: %s", event.PostType)
}
