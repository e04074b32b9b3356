package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogapi/internal/logging"
	"blogapi/internal/model"
)

// fakeStream implements only XAdd; any other Cmdable call panics on the
// nil embedded interface.
type fakeStream struct {
	redis.Cmdable
	args []*redis.XAddArgs
	err  error
}

func (f *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.args = append(f.args, a)
	cmd := redis.NewStringCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal("1700000000000-0")
	}
	return cmd
}

func TestRedisPublisher_Publish(t *testing.T) {
	stream := &fakeStream{}
	publisher := NewPublisher(stream)

	id, err := publisher.Publish(context.Background(), StreamActivity, NewPostLikedEvent(2, model.ArticleRef(1)))
	require.NoError(t, err)
	assert.Equal(t, "1700000000000-0", id)

	require.Len(t, stream.args, 1)
	args := stream.args[0]
	assert.Equal(t, StreamActivity, args.Stream)
	assert.Equal(t, int64(DefaultStreamMaxLen), args.MaxLen)
	assert.True(t, args.Approx)

	values, ok := args.Values.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, EventPostLiked, values["type"])

	event, err := ParseActivityEvent(values)
	require.NoError(t, err)
	assert.Equal(t, int64(2), event.ActorID)
	assert.Equal(t, int64(1), event.PostID)
	assert.Equal(t, "Article", event.PostType)
}

func TestRedisPublisher_PublishError(t *testing.T) {
	publisher := NewPublisher(&fakeStream{err: errors.New("connection refused")})

	_, err := publisher.Publish(context.Background(), StreamActivity, NewUserFollowedEvent(1, 2))
	assert.ErrorContains(t, err, "connection refused")
}

func TestActivityEvents(t *testing.T) {
	t.Run("comment on orphan has no post", func(t *testing.T) {
		e := NewCommentDeletedEvent(9, 3, model.PostRef{})
		assert.Equal(t, EventCommentDeleted, e.Type)
		assert.Zero(t, e.PostID)
		assert.Empty(t, e.PostType)
		assert.Equal(t, int64(9), e.CommentID)
	})

	t.Run("reply carries parent comment", func(t *testing.T) {
		e := NewCommentCreatedEvent(9, 3, model.CommentRef(5))
		assert.Equal(t, int64(5), e.PostID)
		assert.Equal(t, "Comment", e.PostType)
	})

	t.Run("follow carries target", func(t *testing.T) {
		e := NewUserUnfollowedEvent(1, 2)
		assert.Equal(t, EventUserUnfollowed, e.Type)
		assert.Equal(t, int64(1), e.ActorID)
		assert.Equal(t, int64(2), e.TargetUserID)
		assert.NotZero(t, e.Timestamp)
	})
}

func TestParseActivityEvent_Malformed(t *testing.T) {
	_, err := ParseActivityEvent(map[string]interface{}{"type": EventPostLiked})
	assert.Error(t, err)

	_, err = ParseActivityEvent(map[string]interface{}{"data": "{not json"})
	assert.Error(t, err)
}

// fakeGroupStream serves one XREADGROUP batch and records XACKs.
type fakeGroupStream struct {
	redis.Cmdable
	batch  []redis.XMessage
	acked  []string
	ackErr error
}

func (f *fakeGroupStream) XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	cmd := redis.NewXStreamSliceCmd(ctx)
	cmd.SetVal([]redis.XStream{{Stream: a.Streams[0], Messages: f.batch}})
	return cmd
}

func (f *fakeGroupStream) XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd {
	f.acked = append(f.acked, ids...)
	cmd := redis.NewIntCmd(ctx)
	if f.ackErr != nil {
		cmd.SetErr(f.ackErr)
	} else {
		cmd.SetVal(int64(len(ids)))
	}
	return cmd
}

func validValues(t *testing.T) map[string]interface{} {
	stream := &fakeStream{}
	_, err := NewPublisher(stream).Publish(context.Background(), StreamActivity, NewUserFollowedEvent(1, 2))
	require.NoError(t, err)
	values, ok := stream.args[0].Values.(map[string]interface{})
	require.True(t, ok)
	return values
}

func TestRedisConsumer_Read_AcksMalformed(t *testing.T) {
	stream := &fakeGroupStream{batch: []redis.XMessage{
		{ID: "1-0", Values: map[string]interface{}{"data": "{not json"}},
		{ID: "2-0", Values: validValues(t)},
	}}
	consumer := NewConsumer(stream)

	messages, err := consumer.Read(context.Background(), StreamActivity, ConsumerGroupAudit, "w1", 10, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "2-0", messages[0].ID)
	assert.Equal(t, EventUserFollowed, messages[0].Event.Type)
	assert.Equal(t, []string{"1-0"}, stream.acked)
}

func TestRedisConsumer_Read_LogsFailedAckOfMalformed(t *testing.T) {
	hook := logtest.NewLocal(logging.Log.Logger)
	defer hook.Reset()

	stream := &fakeGroupStream{
		batch:  []redis.XMessage{{ID: "1-0", Values: map[string]interface{}{"type": EventPostLiked}}},
		ackErr: errors.New("connection reset"),
	}

	messages, err := NewConsumer(stream).ReadPending(context.Background(), StreamActivity, ConsumerGroupAudit, "w1", 10)
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.Equal(t, []string{"1-0"}, stream.acked)

	var ackErrors int
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Ack error" {
			ackErrors++
			assert.Equal(t, "1-0", entry.Data["msg_id"])
		}
	}
	assert.Equal(t, 1, ackErrors)
}
