// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mail delivers outbound HTML email.

Domain services depend on the small [Sender] interface only. Two implementations
are provided:

  - [SMTPSender]: real delivery through an SMTP relay (go-mail).
  - [LogSender]: writes the message to the structured log; used when no relay is configured.
*/
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	gomail "github.com/wneessen/go-mail"
)

// ErrInvalidMessage is returned when a message lacks a recipient or subject.
var ErrInvalidMessage = errors.New("mail: message requires a recipient and a subject")

// Message is a single outbound HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Validate checks the minimum fields required for delivery.
func (message Message) Validate() error {
	if strings.TrimSpace(message.To) == "" || strings.TrimSpace(message.Subject) == "" {
		return ErrInvalidMessage
	}
	return nil
}

// Sender delivers a [Message].
type Sender interface {
	Send(ctx context.Context, message Message) error
}

// # SMTP

// SMTPConfig holds the relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	config SMTPConfig
}

// NewSMTPSender validates config and returns a sender. A connection is opened per message.
func NewSMTPSender(config SMTPConfig) (*SMTPSender, error) {
	if config.Host == "" {
		return nil, errors.New("mail: SMTP host is required")
	}
	if config.From == "" {
		config.From = config.Username
	}
	if config.From == "" {
		return nil, errors.New("mail: sender address is required")
	}
	return &SMTPSender{config: config}, nil
}

/*
Send builds the MIME message and delivers it, honouring the context deadline.

Returns:
  - error: ErrInvalidMessage, address errors or relay failures
*/
func (sender *SMTPSender) Send(ctx context.Context, message Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	// 1. Build the message
	msg := gomail.NewMsg()
	if err := msg.From(sender.config.From); err != nil {
		return fmt.Errorf("mail_from_invalid: %w", err)
	}
	if err := msg.To(message.To); err != nil {
		return fmt.Errorf("mail_recipient_invalid: %w", err)
	}
	msg.Subject(message.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, message.HTML)

	// 2. Build the client
	client, err := gomail.NewClient(sender.config.Host, sender.clientOptions()...)
	if err != nil {
		return fmt.Errorf("mail_client_init_failed: %w", err)
	}

	// 3. Deliver
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail_send_failed: %w", err)
	}

	return nil
}

func (sender *SMTPSender) clientOptions() []gomail.Option {
	options := []gomail.Option{
		gomail.WithPort(sender.config.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}

	// Implicit TLS relays listen on 465
	if sender.config.Port == 465 {
		options = append(options, gomail.WithSSL())
	}

	if sender.config.Username != "" {
		options = append(options,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(sender.config.Username),
			gomail.WithPassword(sender.config.Password),
		)
	}

	return options
}

// # Development

// LogSender records messages in the log instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a [LogSender].
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the envelope and body.
func (sender *LogSender) Send(ctx context.Context, message Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	sender.logger.InfoContext(ctx, "mail_captured",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("html", message.HTML),
	)
	return nil
}
