package email

// Email is a single outgoing message.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData feeds the HTML templates.
type TemplateData map[string]interface{}

// Provider sends transactional e-mails.
type Provider interface {
	Send(email *Email) error
	SendWithTemplate(templateName string, data TemplateData, email *Email) error
}
