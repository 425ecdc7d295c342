package mailer

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/pkg/config"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// Message is a single outbound email.
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers outbound email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the provider named in config. Unknown providers fall back to logging.
func New(cfg config.MailConfig, appName string, logger *zap.Logger) Mailer {
	if cfg.Provider == "sendgrid" && cfg.SendGridAPIKey != "" {
		return NewSendGridMailer(cfg.SendGridAPIKey, appName, cfg.FromName, cfg.FromEmail)
	}
	return NewLogMailer(logger)
}

// SendGridMailer sends mail through the SendGrid v3 API.
type SendGridMailer struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	deliver    func(m *sgmail.SGMailV3) (int, string, error)
}

// NewSendGridMailer constructs a SendGrid backed mailer.
func NewSendGridMailer(key, appName, fromName, fromEmail string) *SendGridMailer {
	m := &SendGridMailer{
		key:  key,
		from: sgmail.NewEmail(fromName, fromEmail),
	}
	if appName != "" {
		m.subjPrefix = "[" + appName + "] "
	}
	m.deliver = m.post
	return m
}

// Send renders and posts the message.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.ToEmail) == "" {
		return fmt.Errorf("mail recipient required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	status, body, err := m.deliver(m.prepare(msg))
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if status >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid send: status %d: %s", status, body)
	}
	return nil
}

func (m *SendGridMailer) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = m.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToEmail))

	out := sgmail.NewV3Mail()
	out.SetFrom(m.from)
	out.AddPersonalizations(p)
	out.AddContent(sgmail.NewContent("text/plain", msg.Text))
	if msg.HTML != "" {
		out.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	return out
}

func (m *SendGridMailer) post(msg *sgmail.SGMailV3) (int, string, error) {
	req := sendgrid.GetRequest(m.key, sendGridEndpoint, sendGridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(msg)
	res, err := sendgrid.API(req)
	if err != nil {
		return 0, "", err
	}
	return res.StatusCode, res.Body, nil
}

// LogMailer writes messages to the log instead of sending them. Used in development.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer constructs a LogMailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message body.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("outbound email",
		zap.String("to", msg.ToEmail),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}
