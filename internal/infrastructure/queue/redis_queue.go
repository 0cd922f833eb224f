package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	ingestapp "github.com/ordersight/backend/internal/application/ingest"
	"github.com/ordersight/backend/internal/infrastructure/config"
)

const defaultQueueName = "ingest:tasks"

// RedisTaskQueue is a Redis-list backed task queue for ingestion jobs.
// Producers LPUSH JSON payloads; workers BRPOP them, so delivery is FIFO and
// at-least-once. The processor tolerates redelivery of the same upload.
type RedisTaskQueue struct {
	client    *redis.Client
	queueName string
}

// NewRedisTaskQueue connects to Redis and verifies the connection
func NewRedisTaskQueue(cfg config.RedisConfig, queueName string) (*RedisTaskQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisTaskQueueWithClient(client, queueName), nil
}

// NewRedisTaskQueueWithClient creates a queue with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisTaskQueueWithClient(client *redis.Client, queueName string) *RedisTaskQueue {
	if queueName == "" {
		queueName = defaultQueueName
	}
	return &RedisTaskQueue{
		client:    client,
		queueName: queueName,
	}
}

// EnqueueIngestion pushes an ingestion task onto the queue
func (q *RedisTaskQueue) EnqueueIngestion(ctx context.Context, task ingestapp.IngestionTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to encode ingestion task: %w", err)
	}

	if err := q.client.LPush(ctx, q.queueName, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue ingestion task: %w", err)
	}

	return nil
}

// Dequeue blocks for up to timeout waiting for the next task. It returns
// (nil, nil) when the timeout elapses with nothing queued.
func (q *RedisTaskQueue) Dequeue(ctx context.Context, timeout time.Duration) (*ingestapp.IngestionTask, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue ingestion task: %w", err)
	}

	// BRPOP returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of length %d", len(result))
	}

	var task ingestapp.IngestionTask
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return nil, fmt.Errorf("failed to decode ingestion task: %w", err)
	}

	return &task, nil
}

// Len reports the number of tasks currently queued
func (q *RedisTaskQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}

// Close closes the underlying Redis client
func (q *RedisTaskQueue) Close() error {
	return q.client.Close()
}

// Ensure RedisTaskQueue implements TaskEnqueuer
var _ ingestapp.TaskEnqueuer = (*RedisTaskQueue)(nil)
