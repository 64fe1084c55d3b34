package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig holds mail server settings, loaded from the environment by
// the caller.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPNotifier sends task notifications over plain SMTP.
type SMTPNotifier struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPNotifier creates an SMTPNotifier.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, send: smtp.SendMail}
}

func (s *SMTPNotifier) TaskAssigned(ctx context.Context, n Notification) error {
	subject := fmt.Sprintf("New task assigned to you: %s", n.TaskTitle)
	body := fmt.Sprintf("Hi %s,\n\n%s assigned task %s (%q) to you.\n", n.ToName, n.ActorName, n.TaskID, n.TaskTitle)
	return s.sendMail(ctx, n.To, subject, body)
}

func (s *SMTPNotifier) TaskUpdated(ctx context.Context, n Notification) error {
	subject := fmt.Sprintf("Task updated: %s", n.TaskTitle)
	body := fmt.Sprintf("Hi %s,\n\n%s updated task %s (%q).\n", n.ToName, n.ActorName, n.TaskID, n.TaskTitle)
	return s.sendMail(ctx, n.To, subject, body)
}

func (s *SMTPNotifier) TaskDeleted(ctx context.Context, n Notification) error {
	subject := fmt.Sprintf("Task deleted: %s", n.TaskTitle)
	body := fmt.Sprintf("Hi %s,\n\n%s deleted task %s (%q).\n", n.ToName, n.ActorName, n.TaskID, n.TaskTitle)
	return s.sendMail(ctx, n.To, subject, body)
}

func (s *SMTPNotifier) sendMail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := s.cfg.Host + ":" + s.cfg.Port
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := s.send(addr, auth, s.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
