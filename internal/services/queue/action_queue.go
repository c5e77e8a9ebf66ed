package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/holocron-engine/pkg/event"
)

// actionsKey is the global queue of pending action events.
const actionsKey = "actions"

// ActionQueue manages the queue of pending action events. The API
// enqueues; the worker dequeues and applies them through the engine.
type ActionQueue struct {
	client *Client
}

func NewActionQueue(client *Client) *ActionQueue {
	return &ActionQueue{
		client: client,
	}
}

// Enqueue adds an action event to the end of the queue.
func (q *ActionQueue) Enqueue(ctx context.Context, ev event.ActionEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to serialize action event: %w", err)
	}

	if err := q.client.rdb.RPush(ctx, actionsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue action event: %w", err)
	}
	return nil
}

// Dequeue removes and returns the next action event.
// Returns nil if the queue is empty.
func (q *ActionQueue) Dequeue(ctx context.Context) (*event.ActionEvent, error) {
	result, err := q.client.rdb.LPop(ctx, actionsKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Queue is empty
		}
		return nil, fmt.Errorf("failed to dequeue action event: %w", err)
	}

	var ev event.ActionEvent
	if err := json.Unmarshal([]byte(result), &ev); err != nil {
		return nil, fmt.Errorf("failed to parse action event: %w", err)
	}
	return &ev, nil
}

// BlockingDequeue blocks until an event is available or the timeout
// elapses. A nil event with nil error means timeout.
func (q *ActionQueue) BlockingDequeue(ctx context.Context, timeout time.Duration) (*event.ActionEvent, error) {
	result, err := q.client.rdb.BLPop(ctx, timeout, actionsKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Timeout, queue still empty
		}
		return nil, fmt.Errorf("failed to dequeue action event: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}

	var ev event.ActionEvent
	if err := json.Unmarshal([]byte(result[1]), &ev); err != nil {
		return nil, fmt.Errorf("failed to parse action event: %w", err)
	}
	return &ev, nil
}

// Depth returns the number of pending action events.
func (q *ActionQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, actionsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}

// Clear removes all pending action events.
func (q *ActionQueue) Clear(ctx context.Context) error {
	if err := q.client.rdb.Del(ctx, actionsKey).Err(); err != nil {
		return fmt.Errorf("failed to clear action queue: %w", err)
	}
	return nil
}
