package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"secureweb-backend/shared/config"
)

// SMTPSender delivers mail through the configured SMTP relay
type SMTPSender struct {
	config *config.Config
}

// NewSMTPSender creates a sender from process configuration
func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{config: cfg}
}

// Send delivers a single plain-text message
func (s *SMTPSender) Send(msg MailMessage) error {
	addr := fmt.Sprintf("%s:%s", s.config.SMTPHost, s.config.SMTPPort)

	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{ServerName: s.config.SMTPHost}
		if err := client.StartTLS(tlsConfig); err != nil {
			// Non-critical error, continue without TLS
		}
	}

	if s.config.SMTPUsername != "" {
		auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(msg.From); err != nil {
		return err
	}
	if err := client.Rcpt(msg.To); err != nil {
		return err
	}

	message := fmt.Sprintf("To: %s\r\n"+
		"From: %s <%s>\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n",
		msg.To,
		s.config.EmailFromName,
		msg.From,
		msg.Subject,
		msg.Body)

	w, err := client.Data()
	if err != nil {
		return err
	}

	if _, err := w.Write([]byte(message)); err != nil {
		return err
	}

	if err := w.Close(); err != nil {
		return err
	}

	client.Quit()

	return nil
}
