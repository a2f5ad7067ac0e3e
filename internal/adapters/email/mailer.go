// Package email sends board invitations. SES is the only real provider;
// anything else falls back to a logging no-op so local development never
// needs AWS credentials.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"boardroom/internal/domain"
)

// Config selects and configures the mail provider.
type Config struct {
	Provider        string // "ses" or "noop"
	FromAddress     string
	FromName        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// NewMailer builds a domain.Mailer from config. Unknown providers degrade to
// noop with a warning rather than failing startup.
func NewMailer(cfg Config, logger *slog.Logger) domain.Mailer {
	switch cfg.Provider {
	case "ses":
		awsCfg := aws.Config{
			Region: cfg.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			),
		}
		return &sesMailer{
			client: ses.NewFromConfig(awsCfg),
			from:   cfg.FromAddress,
			name:   cfg.FromName,
			logger: logger,
		}
	case "noop", "":
		return &noopMailer{logger: logger}
	default:
		logger.Warn("unknown email provider, using noop", "provider", cfg.Provider)
		return &noopMailer{logger: logger}
	}
}

type sesMailer struct {
	client *ses.Client
	from   string
	name   string
	logger *slog.Logger
}

func (m *sesMailer) Send(to, subject, html, text string) error {
	source := m.from
	if m.name != "" {
		source = fmt.Sprintf("%s <%s>", m.name, m.from)
	}
	body := &types.Body{}
	if html != "" {
		body.Html = &types.Content{Data: aws.String(html), Charset: aws.String("UTF-8")}
	}
	if text != "" {
		body.Text = &types.Content{Data: aws.String(text), Charset: aws.String("UTF-8")}
	}
	out, err := m.client.SendEmail(context.Background(), &ses.SendEmailInput{
		Source:      aws.String(source),
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	})
	if err != nil {
		return fmt.Errorf("send email via SES: %w", err)
	}
	m.logger.Info("invitation email sent", "message_id", aws.ToString(out.MessageId))
	return nil
}

type noopMailer struct {
	logger *slog.Logger
}

func (m *noopMailer) Send(to, subject, _, _ string) error {
	m.logger.Info("email suppressed (noop mailer)", "to", to, "subject", subject)
	return nil
}
