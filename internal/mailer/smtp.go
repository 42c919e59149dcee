package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/atinyakov/bizcard/internal/models"
	"github.com/wneessen/go-mail"
)

// SMTPTransport sends mail through an SMTP relay using STARTTLS.
type SMTPTransport struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// Name implements Transport.
func (t *SMTPTransport) Name() string { return "smtp" }

// Missing implements Transport.
func (t *SMTPTransport) Missing() []string {
	return missing([2]string{"SMTP_HOST", t.Host}, [2]string{"MAIL_FROM", t.From})
}

// Send delivers msg through the relay. SMTP has no response payload, so the
// returned JSON only echoes the recipients.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) (json.RawMessage, error) {
	if names := t.Missing(); len(names) > 0 {
		return nil, &models.ConfigurationError{Missing: names}
	}

	m, err := t.buildMessage(msg)
	if err != nil {
		return nil, err
	}

	port := t.Port
	if port == 0 {
		port = 587
	}
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if t.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(t.Timeout))
	}
	if t.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.Username),
			mail.WithPassword(t.Password),
		)
	}

	client, err := mail.NewClient(t.Host, opts...)
	if err != nil {
		return nil, &models.TransportError{Detail: fmt.Sprintf("smtp client: %v", err)}
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return nil, &models.TransportError{Detail: fmt.Sprintf("smtp send: %v", err)}
	}

	out, err := json.Marshal(map[string]any{"transport": t.Name(), "to": msg.To})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *SMTPTransport) buildMessage(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(t.From); err != nil {
		return nil, &models.TransportError{Detail: fmt.Sprintf("invalid MAIL_FROM: %v", err)}
	}
	if err := m.To(msg.To...); err != nil {
		return nil, &models.TransportError{Detail: fmt.Sprintf("invalid recipient: %v", err)}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)

	for _, a := range msg.Attachments {
		var opts []mail.FileOption
		if a.ContentType != "" {
			opts = append(opts, mail.WithFileContentType(mail.ContentType(a.ContentType)))
		}
		if err := m.AttachReader(a.Filename, bytes.NewReader(a.Content), opts...); err != nil {
			return nil, fmt.Errorf("attach %s: %w", a.Filename, err)
		}
	}
	return m, nil
}
