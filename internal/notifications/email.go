package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// ErrNoRecipients is returned when a message has no addressee
var ErrNoRecipients = errors.New("email has no recipients")

// EmailSender delivers an email through some provider
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) (*Delivery, error)
}

type sesSender struct {
	client *sesv2.Client
	from   string
	now    func() time.Time
}

// NewSESSender sends through Amazon SES v2 from the verified address from
func NewSESSender(cfg aws.Config, from string) EmailSender {
	return &sesSender{
		client: sesv2.NewFromConfig(cfg),
		from:   from,
		now:    time.Now,
	}
}

func (s *sesSender) Send(ctx context.Context, msg EmailMessage) (*Delivery, error) {
	if len(msg.To) == 0 {
		return nil, ErrNoRecipients
	}

	body := &types.Body{}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")}
	}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")}
	}

	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: msg.To},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ses send email: %w", err)
	}
	return &Delivery{ProviderID: aws.ToString(out.MessageId), SentAt: s.now()}, nil
}

// LogSender writes emails to the log instead of sending them. Used when no
// SES sender address is configured.
type LogSender struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewLogSender creates a LogSender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger, now: time.Now}
}

func (s *LogSender) Send(ctx context.Context, msg EmailMessage) (*Delivery, error) {
	if len(msg.To) == 0 {
		return nil, ErrNoRecipients
	}
	s.logger.Info("Email not sent (no provider configured)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return &Delivery{ProviderID: "log", SentAt: s.now()}, nil
}
