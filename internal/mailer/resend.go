package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atinyakov/bizcard/internal/models"
)

// DefaultResendURL is the Resend API base URL.
const DefaultResendURL = "https://api.resend.com"

// ResendTransport sends mail through the Resend HTTP API.
type ResendTransport struct {
	APIKey  string
	From    string
	BaseURL string
	Client  *http.Client
}

// NewResendTransport creates a ResendTransport whose requests time out after timeout.
func NewResendTransport(apiKey, from, baseURL string, timeout time.Duration) *ResendTransport {
	if baseURL == "" {
		baseURL = DefaultResendURL
	}
	return &ResendTransport{
		APIKey:  apiKey,
		From:    from,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Name implements Transport.
func (t *ResendTransport) Name() string { return "resend" }

// Missing implements Transport.
func (t *ResendTransport) Missing() []string {
	return missing([2]string{"RESEND_API_KEY", t.APIKey}, [2]string{"MAIL_FROM", t.From})
}

type resendAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type resendRequest struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	Subject     string             `json:"subject"`
	Text        string             `json:"text"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

// Send posts msg to the /emails endpoint.
func (t *ResendTransport) Send(ctx context.Context, msg Message) (json.RawMessage, error) {
	if names := t.Missing(); len(names) > 0 {
		return nil, &models.ConfigurationError{Missing: names}
	}

	payload := resendRequest{
		From:    t.From,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
	}
	for _, a := range msg.Attachments {
		payload.Attachments = append(payload.Attachments, resendAttachment{
			Filename: a.Filename,
			Content:  base64.StdEncoding.EncodeToString(a.Content),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, &models.TransportError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &models.TransportError{Detail: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &models.TransportError{Detail: resendErrorDetail(raw)}
	}

	if !json.Valid(raw) {
		return json.RawMessage(`{}`), nil
	}
	return json.RawMessage(raw), nil
}

// resendErrorDetail picks the most useful message out of an error response.
func resendErrorDetail(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if s, ok := body.Error.(string); ok && s != "" {
			return s
		}
	}
	if s := strings.TrimSpace(string(raw)); s != "" {
		return s
	}
	return "Resend API failed"
}
