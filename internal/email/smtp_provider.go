package email

import (
	"fmt"

	"tradewizard_backend/internal/config"

	"gopkg.in/gomail.v2"
)

// SMTPProvider sends mail through gomail.
type SMTPProvider struct {
	cfg      *config.Config
	renderer *TemplateRenderer
}

func NewSMTPProvider(cfg *config.Config) *SMTPProvider {
	return &SMTPProvider{
		cfg:      cfg,
		renderer: NewTemplateRenderer(),
	}
}

func (p *SMTPProvider) Send(email *Email) error {
	if p.cfg.Email.SMTPHost == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", p.cfg.Email.FromEmail)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		m.SetBody("text/html", email.HTMLBody)
	} else {
		m.SetBody("text/plain", email.Body)
	}

	d := gomail.NewDialer(
		p.cfg.Email.SMTPHost,
		p.cfg.Email.SMTPPort,
		p.cfg.Email.SMTPUsername,
		p.cfg.Email.SMTPPassword,
	)

	return d.DialAndSend(m)
}

func (p *SMTPProvider) SendWithTemplate(templateName string, data TemplateData, email *Email) error {
	htmlBody, err := p.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	email.HTMLBody = htmlBody
	return p.Send(email)
}
