// Package mailer is the outbound mail boundary. Delivery details are a
// collaborator concern; services only see the Mailer interface.
package mailer

import (
	"fmt"
	"net/smtp"

	"gamify_backend/internal/config"
)

type Mailer interface {
	Send(subject, body, recipient string) error
}

// SMTPMailer 通过普通SMTP投递
type SMTPMailer struct {
	Cfg *config.MailConfig
}

func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	return &SMTPMailer{Cfg: cfg}
}

func (m *SMTPMailer) Send(subject, body, recipient string) error {
	addr := fmt.Sprintf("%s:%d", m.Cfg.Host, m.Cfg.Port)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.Cfg.From, recipient, subject, body))

	var auth smtp.Auth
	if m.Cfg.Username != "" {
		auth = smtp.PlainAuth("", m.Cfg.Username, m.Cfg.Password, m.Cfg.Host)
	}
	return smtp.SendMail(addr, auth, m.Cfg.From, []string{recipient}, msg)
}

// NoopMailer 未配置邮件服务时使用
type NoopMailer struct{}

func (NoopMailer) Send(subject, body, recipient string) error { return nil }
