package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"secureweb-backend/shared/queue"
	utils "secureweb-backend/shared/utils/auth"
	"secureweb-backend/shared/utils/flow"
	"secureweb-backend/shared/utils/keys"
)

// ErrTooManyRequests is returned when a requester asks for another code
// before the cooldown window has elapsed
var ErrTooManyRequests = errors.New("requests too frequent, please try again later")

const codeLength = 6

// VerificationService issues and redeems one-time email codes. Codes live
// in Redis under a short TTL; the matching email is sent asynchronously
// through the mail queue.
type VerificationService struct {
	rdb         *redis.Client
	limiter     *flow.Limiter
	mailQueue   *queue.MailQueue
	codeTTL     time.Duration
	limitWindow time.Duration
}

// NewVerificationService wires the workflow onto the shared store and queue
func NewVerificationService(rdb *redis.Client, mailQueue *queue.MailQueue,
	codeTTL, limitWindow time.Duration) *VerificationService {
	return &VerificationService{
		rdb:         rdb,
		limiter:     flow.NewLimiter(rdb),
		mailQueue:   mailQueue,
		codeTTL:     codeTTL,
		limitWindow: limitWindow,
	}
}

// RequestEmailVerifyCode generates a code for the (kind, email) pair, stores
// it under the code TTL and enqueues the mail job. The requester is gated
// by LimitOnceCheck on its discriminator (usually the client IP); inside the
// window the call returns ErrTooManyRequests and generates nothing. A new
// code overwrites the previous one for the same pair.
func (s *VerificationService) RequestEmailVerifyCode(ctx context.Context, kind queue.MailKind, email, discriminator string) error {
	acquired, err := s.limiter.LimitOnceCheck(ctx, keys.EmailLimitKey(discriminator), s.limitWindow)
	if err != nil {
		return fmt.Errorf("rate limit check failed: %w", err)
	}
	if !acquired {
		return ErrTooManyRequests
	}

	code, err := utils.GenerateNumericCode(codeLength)
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	dataKey := keys.EmailDataKey(string(kind), email)
	if err := s.rdb.Set(ctx, dataKey, strconv.Itoa(code), s.codeTTL).Err(); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	job := queue.MailJob{Email: email, Code: code, Type: kind}
	if err := s.mailQueue.Publish(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue mail job: %w", err)
	}

	return nil
}

// VerifyEmailCode redeems the supplied code for the (kind, email) pair.
// The stored code is deleted on a match, so a code redeems at most once.
// An absent or mismatched code is a normal outcome, not an error.
func (s *VerificationService) VerifyEmailCode(ctx context.Context, kind queue.MailKind, email, code string) (bool, error) {
	matched, dataKey, err := s.checkEmailCode(ctx, kind, email, code)
	if err != nil || !matched {
		return false, err
	}

	if err := s.rdb.Del(ctx, dataKey).Err(); err != nil {
		return false, fmt.Errorf("failed to consume verification code: %w", err)
	}
	return true, nil
}

// PeekEmailCode checks the supplied code without consuming it. The reset
// flow confirms the code in one request and redeems it with the new
// password in the next.
func (s *VerificationService) PeekEmailCode(ctx context.Context, kind queue.MailKind, email, code string) (bool, error) {
	matched, _, err := s.checkEmailCode(ctx, kind, email, code)
	return matched, err
}

func (s *VerificationService) checkEmailCode(ctx context.Context, kind queue.MailKind, email, code string) (bool, string, error) {
	dataKey := keys.EmailDataKey(string(kind), email)

	stored, err := s.rdb.Get(ctx, dataKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, dataKey, nil
		}
		return false, dataKey, fmt.Errorf("failed to read verification code: %w", err)
	}

	return stored == code, dataKey, nil
}
