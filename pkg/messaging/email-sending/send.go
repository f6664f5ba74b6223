package emailsending

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	emailtemplates "github.com/Tolpa-999/PerfumBackend/pkg/messaging/email-templates"
	smtpclient "github.com/Tolpa-999/PerfumBackend/pkg/messaging/smtp-client"
)

const (
	sendRetryBaseDelay = time.Second
	sendRetryAttempts  = 3
)

var messageSubjects = map[string]string{
	emailtemplates.MESSAGE_TYPE_EMAIL_VERIFICATION: "Verify your email address",
	emailtemplates.MESSAGE_TYPE_PASSWORD_RESET:     "Reset your password",
}

type EmailSenderConfig struct {
	TemplateOverrideDir string
	LinkValidity        map[string]time.Duration
	HeaderOverrides     *smtpclient.HeaderOverrides
}

// mailDispatcher delivers one rendered mail. *smtpclient.SmtpClients
// satisfies it.
type mailDispatcher interface {
	SendMail(to []string, subject string, htmlContent string, overrides *smtpclient.HeaderOverrides) error
}

// EmailSender renders account mail templates and delivers them through
// the SMTP connection pool. Transient delivery errors are retried with
// exponential backoff before being reported to the caller.
type EmailSender struct {
	dispatcher     mailDispatcher
	config         EmailSenderConfig
	retryBaseDelay time.Duration
}

func NewEmailSender(smtpClients *smtpclient.SmtpClients, config EmailSenderConfig) *EmailSender {
	return &EmailSender{
		dispatcher:     smtpClients,
		config:         config,
		retryBaseDelay: sendRetryBaseDelay,
	}
}

func (es *EmailSender) Send(ctx context.Context, toAddress string, username string, messageType string, link string) error {
	subject, ok := messageSubjects[messageType]
	if !ok {
		return fmt.Errorf("unknown message type %s", messageType)
	}

	tDef, err := emailtemplates.GetTemplate(es.config.TemplateOverrideDir, messageType)
	if err != nil {
		return err
	}

	payload := map[string]string{
		"username":   username,
		"link":       link,
		"validUntil": formatValidity(es.config.LinkValidity[messageType]),
	}
	content, err := emailtemplates.ResolveTemplate(messageType, tDef, payload)
	if err != nil {
		return err
	}

	backoff := retry.WithMaxRetries(sendRetryAttempts-1, retry.NewExponential(es.retryBaseDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := es.dispatcher.SendMail([]string{toAddress}, subject, content, es.config.HeaderOverrides); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.Error("email delivery failed after retries", slog.String("messageType", messageType), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func formatValidity(d time.Duration) string {
	if d <= 0 {
		d = time.Hour
	}
	if d < time.Hour {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	hours := int(d.Round(time.Hour).Hours())
	if hours == 1 {
		return "1 hour"
	}
	if hours < 24 {
		return fmt.Sprintf("%d hours", hours)
	}
	days := hours / 24
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
