// Package smtp sends transactional mail over plain authenticated SMTP.
package smtp

import (
	"context"
	"fmt"
	"log"
	"net/smtp"

	"slimmom/internal/config"
)

// Mailer sends verification mail using the configured SMTP relay.
type Mailer struct {
	cfg config.SMTPConfig
}

// New creates a Mailer from the SMTP configuration.
func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendVerificationEmail mails the account-verification link. When no SMTP
// host is configured the link is logged instead, which keeps local
// development working without a relay.
func (m *Mailer) SendVerificationEmail(ctx context.Context, to, verificationToken string) error {
	link := fmt.Sprintf("%s/api/verify/%s", m.cfg.BaseURL, verificationToken)

	if !m.cfg.Enabled() {
		log.Printf("smtp disabled; verification link for %s: %s", to, link)
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: Email Verification\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=utf-8\r\n"+
		"\r\n"+
		`<p>For account verification click on the following link: <a href="%s">Click Here!</a></p>`+"\r\n",
		m.cfg.From, to, link)

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := m.cfg.Host + ":" + m.cfg.Port
	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg))
}
