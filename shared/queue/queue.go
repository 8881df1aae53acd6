// Package queue carries mail jobs from the auth service to the mail
// consumer over a Redis list, so sending email never blocks an HTTP
// response. Delivery is at least once; consumers tolerate duplicates.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"secureweb-backend/shared/utils/keys"
)

// MailKind is the closed set of mail job types
type MailKind string

const (
	MailRegister MailKind = "register"
	MailReset    MailKind = "reset"
)

// MailJob is the message published for every issued verification code
type MailJob struct {
	Email string   `json:"email"`
	Code  int      `json:"code"`
	Type  MailKind `json:"type"`
}

// Handler processes one consumed job. A returned error dead-letters the job.
type Handler func(ctx context.Context, job MailJob) error

const popTimeout = 5 * time.Second

// MailQueue is the Redis-list-backed broker for mail jobs
type MailQueue struct {
	rdb *redis.Client
}

// NewMailQueue creates a queue on the shared Redis client
func NewMailQueue(rdb *redis.Client) *MailQueue {
	return &MailQueue{rdb: rdb}
}

// Publish enqueues a mail job
func (q *MailQueue) Publish(ctx context.Context, job MailJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, keys.MailQueue, payload).Err()
}

// Consume pulls jobs until the context is cancelled. Payloads that do not
// decode, and jobs the handler rejects, go to the dead-letter list; the
// consumer itself keeps running.
func (q *MailQueue) Consume(ctx context.Context, handler Handler) error {
	for {
		result, err := q.rdb.BRPop(ctx, popTimeout, keys.MailQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("❌ Mail queue pop failed: %v", err)
			time.Sleep(time.Second)
			continue
		}

		// BRPop returns [key, value]
		payload := result[1]

		var job MailJob
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			log.Printf("❌ Malformed mail job, dead-lettering: %v", err)
			q.deadLetter(ctx, payload)
			continue
		}

		if err := handler(ctx, job); err != nil {
			log.Printf("❌ Mail job for %s rejected, dead-lettering: %v", job.Email, err)
			q.deadLetter(ctx, payload)
		}
	}
}

// DeadLetterLen reports the size of the dead-letter list
func (q *MailQueue) DeadLetterLen(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, keys.MailDeadLetter).Result()
}

func (q *MailQueue) deadLetter(ctx context.Context, payload string) {
	if err := q.rdb.LPush(ctx, keys.MailDeadLetter, payload).Err(); err != nil {
		log.Printf("❌ Dead-letter push failed, job dropped: %v", err)
	}
}
