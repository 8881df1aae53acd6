package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"secureweb-backend/shared/queue"
)

// ErrUnknownMailKind marks jobs whose type is outside the known set; the
// queue routes them to the dead-letter list instead of dropping them
var ErrUnknownMailKind = fmt.Errorf("unknown mail kind")

// MailMessage is the composed outbound email
type MailMessage struct {
	From    string
	To      string
	Subject string
	Body    string
}

// MailSender delivers a composed message. Implemented over SMTP in
// production and faked in tests.
type MailSender interface {
	Send(msg MailMessage) error
}

type mailTemplate struct {
	subject string
	body    func(code int) string
}

// One template per mail kind. Adding a kind means adding a template here;
// anything else dead-letters.
var mailTemplates = map[queue.MailKind]mailTemplate{
	queue.MailRegister: {
		subject: "Welcome to SecureWeb",
		body: func(code int) string {
			return fmt.Sprintf("Your email verification code is %d. "+
				"It is valid for 3 minutes. For your security, do not share this code with anyone.", code)
		},
	},
	queue.MailReset: {
		subject: "Your password reset request",
		body: func(code int) string {
			return fmt.Sprintf("You are resetting your password. Verification code: %d, "+
				"valid for 3 minutes. If this was not you, please ignore this email.", code)
		},
	},
}

// MailListener consumes mail jobs and hands composed messages to the
// sender, retrying transient failures a bounded number of times
type MailListener struct {
	sender      MailSender
	from        string
	maxAttempts int
	backoff     time.Duration
}

// NewMailListener creates a listener sending from the configured address
func NewMailListener(sender MailSender, from string) *MailListener {
	return &MailListener{
		sender:      sender,
		from:        from,
		maxAttempts: 3,
		backoff:     2 * time.Second,
	}
}

// HandleJob composes and sends the email for one job. Unknown kinds and
// exhausted retries return an error so the queue dead-letters the job;
// the consumer itself never stops over a single job.
func (l *MailListener) HandleJob(ctx context.Context, job queue.MailJob) error {
	tmpl, ok := mailTemplates[job.Type]
	if !ok {
		log.Printf("⚠️  Unknown mail kind %q for %s", job.Type, job.Email)
		return ErrUnknownMailKind
	}

	msg := MailMessage{
		From:    l.from,
		To:      job.Email,
		Subject: tmpl.subject,
		Body:    tmpl.body(job.Code),
	}

	var lastErr error
	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		if lastErr = l.sender.Send(msg); lastErr == nil {
			return nil
		}

		log.Printf("❌ Mail send to %s failed (attempt %d/%d): %v",
			msg.To, attempt, l.maxAttempts, lastErr)

		if attempt < l.maxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * l.backoff):
			}
		}
	}

	return fmt.Errorf("mail delivery failed after %d attempts: %w", l.maxAttempts, lastErr)
}
