package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"secureweb-backend/shared/queue"
)

type fakeSender struct {
	sent     []MailMessage
	failures int
}

func (f *fakeSender) Send(msg MailMessage) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("transient smtp failure")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newTestListener(sender MailSender) *MailListener {
	listener := NewMailListener(sender, "noreply@secureweb.dev")
	listener.backoff = time.Millisecond
	return listener
}

func TestHandleRegisterJob(t *testing.T) {
	sender := &fakeSender{}
	listener := newTestListener(sender)

	job := queue.MailJob{Email: "a@b.com", Code: 429173, Type: queue.MailRegister}
	if err := listener.HandleJob(context.Background(), job); err != nil {
		t.Fatalf("HandleJob failed: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected one sent message, got %d", len(sender.sent))
	}

	msg := sender.sent[0]
	if msg.To != "a@b.com" {
		t.Errorf("expected recipient a@b.com, got %s", msg.To)
	}
	if msg.From != "noreply@secureweb.dev" {
		t.Errorf("expected configured from address, got %s", msg.From)
	}
	if !strings.Contains(msg.Body, strconv.Itoa(job.Code)) {
		t.Errorf("rendered body should contain the code, got %q", msg.Body)
	}
}

func TestHandleResetJob(t *testing.T) {
	sender := &fakeSender{}
	listener := newTestListener(sender)

	job := queue.MailJob{Email: "a@b.com", Code: 111111, Type: queue.MailReset}
	if err := listener.HandleJob(context.Background(), job); err != nil {
		t.Fatalf("HandleJob failed: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected one sent message, got %d", len(sender.sent))
	}
	if sender.sent[0].Subject == "" {
		t.Error("reset mail should carry a subject")
	}
	if !strings.Contains(sender.sent[0].Body, "111111") {
		t.Errorf("rendered body should contain the code, got %q", sender.sent[0].Body)
	}
}

func TestUnknownKindIsRejectedWithoutSending(t *testing.T) {
	sender := &fakeSender{}
	listener := newTestListener(sender)

	job := queue.MailJob{Email: "a@b.com", Code: 123456, Type: "unknown"}
	err := listener.HandleJob(context.Background(), job)
	if !errors.Is(err, ErrUnknownMailKind) {
		t.Fatalf("expected ErrUnknownMailKind, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Error("no message should be sent for an unknown kind")
	}
}

func TestTransientFailureIsRetried(t *testing.T) {
	sender := &fakeSender{failures: 2}
	listener := newTestListener(sender)

	job := queue.MailJob{Email: "a@b.com", Code: 123456, Type: queue.MailRegister}
	if err := listener.HandleJob(context.Background(), job); err != nil {
		t.Fatalf("expected retries to recover, got %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one sent message after retries, got %d", len(sender.sent))
	}
}

func TestExhaustedRetriesSurfaceError(t *testing.T) {
	sender := &fakeSender{failures: 10}
	listener := newTestListener(sender)

	job := queue.MailJob{Email: "a@b.com", Code: 123456, Type: queue.MailRegister}
	if err := listener.HandleJob(context.Background(), job); err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if len(sender.sent) != 0 {
		t.Error("no message should be reported sent after exhausted retries")
	}
}
