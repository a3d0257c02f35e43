// Package events publishes job lifecycle notifications to other services.
package events

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultStream is the Redis stream terminal job events are appended to.
const DefaultStream = "transcode_events"

// Event is emitted once per job when it reaches a terminal state.
type Event struct {
	JobID       string
	Status      string
	InputURL    string
	Resolutions []string
	Error       string
	FinishedAt  time.Time
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// streamAdder is the subset of *redis.Client the publisher needs.
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisPublisher appends events to a Redis stream.
type RedisPublisher struct {
	client streamAdder
	stream string
	closer func() error
}

// NewRedisPublisher connects to the Redis server at url and verifies it is
// reachable.
func NewRedisPublisher(ctx context.Context, url, stream string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("could not parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}

	p := newRedisPublisher(client, stream)
	p.closer = client.Close
	return p, nil
}

func newRedisPublisher(client streamAdder, stream string) *RedisPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisPublisher{client: client, stream: stream}
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		ID:     "*",
		Values: values(ev),
	}).Result()
	if err != nil {
		return fmt.Errorf("publish event for job %s: %w", ev.JobID, err)
	}
	return nil
}

// Close implements Publisher.
func (p *RedisPublisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}

func values(ev Event) map[string]interface{} {
	return map[string]interface{}{
		"job_id":      ev.JobID,
		"status":      ev.Status,
		"input_url":   ev.InputURL,
		"resolutions": strings.Join(ev.Resolutions, ","),
		"error":       ev.Error,
		"finished_at": strconv.FormatInt(ev.FinishedAt.Unix(), 10),
	}
}
