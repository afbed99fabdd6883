package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ffclash/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// ErrEmpty is returned by Pop when no job arrived before the timeout.
var ErrEmpty = errors.New("notification queue is empty")

// NotificationQueue is a Redis list of JSON encoded notification jobs.
type NotificationQueue struct {
	rdb  *redis.Client
	name string
}

func NewNotificationQueue(rdb *redis.Client, name string) *NotificationQueue {
	return &NotificationQueue{rdb: rdb, name: name}
}

func (q *NotificationQueue) Name() string {
	return q.name
}

func (q *NotificationQueue) Push(ctx context.Context, job model.NotificationJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("NotificationQueue.Push: marshal: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.name, payload).Err(); err != nil {
		return fmt.Errorf("NotificationQueue.Push: %w", err)
	}
	return nil
}

// Pop blocks up to timeout for the oldest job.
func (q *NotificationQueue) Pop(ctx context.Context, timeout time.Duration) (*model.NotificationJob, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	// res is [queueName, value]
	if len(res) < 2 || res[1] == "" {
		return nil, ErrEmpty
	}

	var job model.NotificationJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("NotificationQueue.Pop: decode %q: %w", res[1], err)
	}
	return &job, nil
}

func (q *NotificationQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.name).Result()
}
