package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"secureweb-backend/shared/utils/keys"
)

func setupQueue(t *testing.T) (*MailQueue, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewMailQueue(rdb), rdb
}

func TestPublishConsume(t *testing.T) {
	q, _ := setupQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job := MailJob{Email: "a@b.com", Code: 123456, Type: MailRegister}
	if err := q.Publish(ctx, job); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	received := make(chan MailJob, 1)
	go q.Consume(ctx, func(ctx context.Context, job MailJob) error {
		received <- job
		return nil
	})

	select {
	case got := <-received:
		if got != job {
			t.Errorf("expected %+v, got %+v", job, got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("consumer did not deliver the published job")
	}
}

func TestMalformedPayloadIsDeadLettered(t *testing.T) {
	q, rdb := setupQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rdb.LPush(ctx, keys.MailQueue, "not-json{").Err(); err != nil {
		t.Fatalf("LPush failed: %v", err)
	}

	handled := make(chan struct{}, 1)
	go q.Consume(ctx, func(ctx context.Context, job MailJob) error {
		handled <- struct{}{}
		return nil
	})

	deadline := time.After(3 * time.Second)
	for {
		select {
		case <-handled:
			t.Fatal("malformed payload should never reach the handler")
		case <-deadline:
			t.Fatal("malformed payload was not dead-lettered")
		default:
		}

		n, err := q.DeadLetterLen(ctx)
		if err != nil {
			t.Fatalf("DeadLetterLen failed: %v", err)
		}
		if n == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHandlerErrorIsDeadLettered(t *testing.T) {
	q, _ := setupQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := q.Publish(ctx, MailJob{Email: "a@b.com", Code: 1, Type: "unknown"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	go q.Consume(ctx, func(ctx context.Context, job MailJob) error {
		return errors.New("rejected")
	})

	deadline := time.After(3 * time.Second)
	for {
		n, err := q.DeadLetterLen(ctx)
		if err != nil {
			t.Fatalf("DeadLetterLen failed: %v", err)
		}
		if n == 1 {
			return
		}

		select {
		case <-deadline:
			t.Fatal("rejected job was not dead-lettered")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestConsumeStopsOnCancel(t *testing.T) {
	q, _ := setupQueue(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- q.Consume(ctx, func(ctx context.Context, job MailJob) error {
			return nil
		})
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}
}
