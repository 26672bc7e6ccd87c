package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"strconv"
	"strings"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
	"github.com/Aleph-Alpha/docsearch/internal/logger"
)

// Completion describes a finished ingestion job for the user notification.
type Completion struct {
	JobID     string
	Recipient string

	// Processed is the number of documents indexed successfully.
	Processed int

	// FailedTitles lists documents that were skipped, by title.
	FailedTitles []string
}

// Mailer delivers the completion notice to the uploading user. It is called
// at most once per job; the caller guards against duplicate deliveries.
type Mailer interface {
	SendCompletion(ctx context.Context, c Completion) error
}

// Config carries the SMTP-shaped mailer settings.
type Config struct {
	Host     string `yaml:"host" envconfig:"MAILER_HOST"`
	Port     int    `yaml:"port" envconfig:"MAILER_PORT"`
	Sender   string `yaml:"sender" envconfig:"MAILER_SENDER"`
	Username string `yaml:"username" envconfig:"MAILER_USERNAME"`
	Password string `yaml:"password" envconfig:"MAILER_PASSWORD"`
}

// NewConfig builds a Config from the environment.
func NewConfig() Config {
	cfg := Config{
		Host:     os.Getenv("MAILER_HOST"),
		Port:     587,
		Sender:   os.Getenv("MAILER_SENDER"),
		Username: os.Getenv("MAILER_USERNAME"),
		Password: os.Getenv("MAILER_PASSWORD"),
	}
	if v := os.Getenv("MAILER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Port = n
		}
	}
	return cfg
}

// LogMailer writes the notification to the structured log instead of
// delivering mail. It stands in wherever no SMTP relay is configured.
type LogMailer struct {
	log *logger.Logger
}

// NewLogMailer returns a Mailer backed by the application log.
func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

var _ Mailer = (*LogMailer)(nil)

// SendCompletion logs the completion notice.
func (m *LogMailer) SendCompletion(_ context.Context, c Completion) error {
	m.log.Info("ingestion completed, notifying user", nil, map[string]interface{}{
		"job_id":        c.JobID,
		"recipient":     c.Recipient,
		"processed":     c.Processed,
		"failed_titles": c.FailedTitles,
	})
	return nil
}

// SMTPMailer delivers the completion notice through an SMTP relay.
type SMTPMailer struct {
	cfg Config
}

// NewSMTPMailer returns a Mailer backed by the configured relay.
func NewSMTPMailer(cfg Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

var _ Mailer = (*SMTPMailer)(nil)

// SendCompletion sends a plain-text mail summarizing the job outcome.
func (m *SMTPMailer) SendCompletion(_ context.Context, c Completion) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	body := buildCompletionMail(m.cfg.Sender, c)
	if err := smtp.SendMail(addr, auth, m.cfg.Sender, []string{c.Recipient}, body); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "failed to send completion mail", err)
	}
	return nil
}

func buildCompletionMail(sender string, c Completion) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", sender)
	fmt.Fprintf(&b, "To: %s\r\n", c.Recipient)
	fmt.Fprintf(&b, "Subject: Document ingestion finished (job %s)\r\n", c.JobID)
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Your ingestion job %s has finished.\r\n", c.JobID)
	fmt.Fprintf(&b, "Documents indexed: %d\r\n", c.Processed)
	if len(c.FailedTitles) > 0 {
		fmt.Fprintf(&b, "Skipped documents: %s\r\n", strings.Join(c.FailedTitles, ", "))
	}
	return []byte(b.String())
}
