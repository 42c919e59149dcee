package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/atinyakov/bizcard/internal/mailer"
	"github.com/atinyakov/bizcard/internal/models"
	"go.uber.org/zap"
)

// RelayService forwards finished cards to the fixed administrator address.
type RelayService struct {
	transport mailer.Transport
	recipient string
	log       *zap.Logger
}

// NewRelayService constructs a RelayService sending to recipient through transport.
func NewRelayService(transport mailer.Transport, recipient string, log *zap.Logger) *RelayService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RelayService{transport: transport, recipient: recipient, log: log}
}

// Relay emails artifact to the administrator. meta is appended to the body as
// "key: value" lines. The transport's response payload is returned as is.
func (s *RelayService) Relay(ctx context.Context, artifact models.Artifact, meta map[string]string) (json.RawMessage, error) {
	if len(artifact.Content) == 0 {
		return nil, models.NewValidationError("empty artifact", "")
	}

	filename := artifact.Filename
	if filename == "" {
		filename = defaultFilename(artifact)
	}

	msg := mailer.Message{
		To:      []string{s.recipient},
		Subject: subjectFor(artifact.Kind),
		Text:    bodyFor(artifact.Kind, meta),
		Attachments: []mailer.Attachment{{
			Filename:    filename,
			ContentType: artifact.ContentType,
			Content:     artifact.Content,
		}},
	}
	return s.send(ctx, msg, zap.String("kind", string(artifact.Kind)), zap.Int("bytes", len(artifact.Content)))
}

// TestEmail sends a text-only message to check that the transport works.
func (s *RelayService) TestEmail(ctx context.Context) (json.RawMessage, error) {
	msg := mailer.Message{
		To:      []string{s.recipient},
		Subject: "Business card relay test",
		Text:    "If this message arrived, the email transport is configured correctly.",
	}
	return s.send(ctx, msg, zap.String("kind", "test"))
}

func (s *RelayService) send(ctx context.Context, msg mailer.Message, fields ...zap.Field) (json.RawMessage, error) {
	missing := s.transport.Missing()
	if s.recipient == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}
	if len(missing) > 0 {
		return nil, &models.ConfigurationError{Missing: missing}
	}

	fields = append(fields, zap.String("transport", s.transport.Name()))
	data, err := s.transport.Send(ctx, msg)
	if err != nil {
		s.log.Error("relay failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	s.log.Info("relayed card", fields...)
	return data, nil
}

func subjectFor(kind models.ArtifactKind) string {
	switch kind {
	case models.ArtifactPDF:
		return "Business card save request (PDF)"
	case models.ArtifactImage:
		return "Business card save request (image)"
	default:
		return "Business card save request"
	}
}

func bodyFor(kind models.ArtifactKind, meta map[string]string) string {
	var b strings.Builder
	switch kind {
	case models.ArtifactPDF:
		b.WriteString("A business card PDF generated in the browser is attached.")
	default:
		b.WriteString("A business card image generated in the browser is attached.")
	}

	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		b.WriteString("\n")
	}
	for _, k := range keys {
		fmt.Fprintf(&b, "\n%s: %s", k, meta[k])
	}
	return b.String()
}

func defaultFilename(a models.Artifact) string {
	if a.Kind == models.ArtifactPDF {
		return "business_card.pdf"
	}
	if a.ContentType == "image/jpeg" {
		return "business_card.jpg"
	}
	return "business_card.png"
}
