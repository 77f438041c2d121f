package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Invite is the content of one share invitation e-mail.
type Invite struct {
	To          []string
	OwnerName   string
	Title       string
	Description string
	InviteURL   string
}

// Mailer delivers share invitations.
type Mailer interface {
	SendInvite(ctx context.Context, invite Invite) error
	Enabled() bool
}

// SMTPConfig configures SMTPMailer.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPMailer sends mail through an SMTP relay. A zero Host disables it.
type SMTPMailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTPMailer creates a mailer from cfg.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	m := &SMTPMailer{cfg: cfg}
	if cfg.Host != "" {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	}
	return m
}

// Enabled reports whether an SMTP host is configured.
func (m *SMTPMailer) Enabled() bool {
	return m != nil && m.dialer != nil
}

// SendInvite sends one message per recipient.
func (m *SMTPMailer) SendInvite(ctx context.Context, invite Invite) error {
	if !m.Enabled() || len(invite.To) == 0 {
		return nil
	}

	msgs := make([]*gomail.Message, 0, len(invite.To))
	for _, to := range invite.To {
		msg := gomail.NewMessage()
		msg.SetHeader("From", m.cfg.From)
		msg.SetHeader("To", to)
		msg.SetHeader("Subject", fmt.Sprintf("%s shared \"%s\" with you", invite.OwnerName, invite.Title))
		msg.SetBody("text/plain", RenderInviteText(invite))
		msgs = append(msgs, msg)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msgs...); err != nil {
		return fmt.Errorf("send invite: %w", err)
	}
	return nil
}

// RenderInviteText builds the plain-text invitation body.
func RenderInviteText(invite Invite) string {
	body := fmt.Sprintf("%s shared an onboarding plan with you: %s\n", invite.OwnerName, invite.Title)
	if invite.Description != "" {
		body += "\n" + invite.Description + "\n"
	}
	body += "\nOpen the invite to preview and copy it into your account:\n" + invite.InviteURL + "\n"
	return body
}
