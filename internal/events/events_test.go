package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockStream struct {
	args *redis.XAddArgs
	err  error
}

func (m *mockStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	m.args = a
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}
	return redis.NewStringResult("1700000000000-0", nil)
}

func TestRedisPublisher_Publish(t *testing.T) {
	mock := &mockStream{}
	p := newRedisPublisher(mock, "")

	ev := Event{
		JobID:       "job-1",
		Status:      "completed",
		InputURL:    "/videos/in.mp4",
		Resolutions: []string{"720p", "480p"},
		FinishedAt:  time.Unix(1700000000, 0),
	}
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if mock.args == nil {
		t.Fatal("expected XAdd to be called")
	}
	if mock.args.Stream != DefaultStream {
		t.Errorf("expected stream %q, got %q", DefaultStream, mock.args.Stream)
	}
	if mock.args.ID != "*" {
		t.Errorf("expected auto id, got %q", mock.args.ID)
	}

	vals, ok := mock.args.Values.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected values type %T", mock.args.Values)
	}
	want := map[string]string{
		"job_id":      "job-1",
		"status":      "completed",
		"resolutions": "720p,480p",
		"error":       "",
		"finished_at": "1700000000",
	}
	for k, v := range want {
		if vals[k] != v {
			t.Errorf("field %s: expected %q, got %v", k, v, vals[k])
		}
	}
}

func TestRedisPublisher_CustomStream(t *testing.T) {
	mock := &mockStream{}
	p := newRedisPublisher(mock, "other")

	p.Publish(context.Background(), Event{JobID: "x"})
	if mock.args.Stream != "other" {
		t.Errorf("expected stream other, got %q", mock.args.Stream)
	}
}

func TestRedisPublisher_Error(t *testing.T) {
	mock := &mockStream{err: errors.New("connection refused")}
	p := newRedisPublisher(mock, "")

	err := p.Publish(context.Background(), Event{JobID: "job-1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, mock.err) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestRedisPublisher_CloseWithoutClient(t *testing.T) {
	p := newRedisPublisher(&mockStream{}, "")
	if err := p.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestNewRedisPublisher_InvalidURL(t *testing.T) {
	_, err := NewRedisPublisher(context.Background(), "not a url://", "")
	if err == nil {
		t.Error("expected error for invalid url")
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), Event{JobID: "x"}); err != nil {
		t.Errorf("Nop.Publish failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Nop.Close failed: %v", err)
	}
}
