package notifications

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"text/template"
	"time"

	"go.uber.org/zap"
)

// DossierLink points the buyer at one archived summary file
type DossierLink struct {
	Label string
	URL   string
}

// CompletionNotice is the content of the onboarding-complete email
type CompletionNotice struct {
	To           string
	ContactName  string
	Organisation string
	CompletedAt  time.Time
	Links        []DossierLink
}

const completionSubject = "Your onboarding with {{.Organisation}} is complete"

const completionText = `Dear {{if .ContactName}}{{.ContactName}}{{else}}Investor{{end}},

Thank you for completing onboarding for {{.Organisation}} on {{.CompletedAt.Format "2 January 2006"}}.
Our relationship team will be in touch about next steps.
{{if .Links}}
Your onboarding summary:
{{range .Links}}  {{.Label}}: {{.URL}}
{{end}}{{end}}`

const completionHTML = `<p>Dear {{if .ContactName}}{{.ContactName}}{{else}}Investor{{end}},</p>
<p>Thank you for completing onboarding for <strong>{{.Organisation}}</strong> on {{.CompletedAt.Format "2 January 2006"}}.
Our relationship team will be in touch about next steps.</p>
{{if .Links}}<ul>{{range .Links}}<li><a href="{{.URL}}">{{.Label}}</a></li>{{end}}</ul>{{end}}`

// Service renders and sends buyer-facing notifications
type Service struct {
	sender  EmailSender
	logger  *zap.Logger
	subject *template.Template
	text    *template.Template
	html    *htmltemplate.Template
}

// NewService creates a notification service sending through sender
func NewService(sender EmailSender, logger *zap.Logger) *Service {
	return &Service{
		sender:  sender,
		logger:  logger,
		subject: template.Must(template.New("subject").Parse(completionSubject)),
		text:    template.Must(template.New("text").Parse(completionText)),
		html:    htmltemplate.Must(htmltemplate.New("html").Parse(completionHTML)),
	}
}

// SendCompletion emails the buyer that onboarding finished
func (s *Service) SendCompletion(ctx context.Context, n CompletionNotice) (*Delivery, error) {
	if n.To == "" {
		return nil, ErrNoRecipients
	}
	if n.Organisation == "" {
		n.Organisation = "your organisation"
	}

	var subject, text, html bytes.Buffer
	if err := s.subject.Execute(&subject, n); err != nil {
		return nil, fmt.Errorf("render subject: %w", err)
	}
	if err := s.text.Execute(&text, n); err != nil {
		return nil, fmt.Errorf("render text body: %w", err)
	}
	if err := s.html.Execute(&html, n); err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}

	delivery, err := s.sender.Send(ctx, EmailMessage{
		To:      []string{n.To},
		Subject: subject.String(),
		Text:    text.String(),
		HTML:    html.String(),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Completion email sent", zap.String("to", n.To), zap.String("provider_id", delivery.ProviderID))
	return delivery, nil
}
