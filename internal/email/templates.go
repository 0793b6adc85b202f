package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// Template names used by the services.
const (
	TemplatePaymentReceipt = "payment_receipt"
	TemplateWelcome        = "welcome"
)

var builtinTemplates = map[string]string{
	TemplateWelcome: `
<h2>Welcome to TradeWizard, {{.Name}}!</h2>
<p>Your account is ready. Browse the robot catalog and pick your first strategy.</p>`,

	TemplatePaymentReceipt: `
<h2>Payment received</h2>
<p>Hi {{.Name}},</p>
<p>We received your payment of <strong>{{.Amount}} {{.Currency}}</strong>.</p>
<p>Reference: {{.Reference}}</p>`,
}

// TemplateRenderer renders the built-in HTML templates.
type TemplateRenderer struct {
	templates map[string]*template.Template
}

func NewTemplateRenderer() *TemplateRenderer {
	r := &TemplateRenderer{templates: make(map[string]*template.Template)}
	for name, body := range builtinTemplates {
		r.templates[name] = template.Must(template.New(name).Parse(body))
	}
	return r
}

func (r *TemplateRenderer) Render(name string, data TemplateData) (string, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
