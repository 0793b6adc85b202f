package email

import "tradewizard_backend/internal/logger"

// MockProvider logs instead of sending. Used in development and tests.
type MockProvider struct{}

func (m *MockProvider) Send(email *Email) error {
	logger.Info("mock email sent", "to", email.To, "subject", email.Subject)
	return nil
}

func (m *MockProvider) SendWithTemplate(templateName string, data TemplateData, email *Email) error {
	logger.Info("mock templated email sent", "to", email.To, "template", templateName)
	return nil
}
