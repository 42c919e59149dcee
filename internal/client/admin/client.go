// Package admin is a client for the administrator API of the card server.
// It is used by the cardadmin command.
package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atinyakov/bizcard/internal/models"
)

// maxResponseBody bounds how much of a response is read.
const maxResponseBody = 32 << 20

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server responded %d: %s", e.Status, e.Message)
}

// Client calls the card server on behalf of the administrator.
type Client struct {
	BaseURL string
	// Token is sent as a bearer token when set. Login fills it in.
	Token string
	HTTP  *http.Client
}

// NewClient creates a Client for the server at baseURL.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Login exchanges password for a session and keeps its token on the Client.
func (c *Client) Login(ctx context.Context, password string) (Session, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/admin/login", map[string]string{"password": password}, &resp); err != nil {
		return Session{}, err
	}
	c.Token = resp.Token
	return Session{
		Server:    c.BaseURL,
		Token:     resp.Token,
		ExpiresAt: time.UnixMilli(resp.ExpiresAt),
	}, nil
}

// Logout revokes the current token.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/admin/logout", nil, nil); err != nil {
		return err
	}
	c.Token = ""
	return nil
}

// Fields returns the field catalog.
func (c *Client) Fields(ctx context.Context) ([]models.FieldDefinition, error) {
	var fields []models.FieldDefinition
	err := c.do(ctx, http.MethodGet, "/api/fields", nil, &fields)
	return fields, err
}

// ReplaceFields replaces the whole field catalog.
func (c *Client) ReplaceFields(ctx context.Context, fields []models.FieldDefinition) error {
	if fields == nil {
		fields = []models.FieldDefinition{}
	}
	return c.do(ctx, http.MethodPost, "/api/admin/fields", fields, nil)
}

// Templates returns all templates.
func (c *Client) Templates(ctx context.Context) ([]models.Template, error) {
	var templates []models.Template
	err := c.do(ctx, http.MethodGet, "/api/templates", nil, &templates)
	return templates, err
}

// CreateTemplate creates a template. An empty name lets the server pick the default.
func (c *Client) CreateTemplate(ctx context.Context, name string) (models.Template, error) {
	var body any
	if name != "" {
		body = map[string]string{"name": name}
	}
	var tpl models.Template
	err := c.do(ctx, http.MethodPost, "/api/admin/templates", body, &tpl)
	return tpl, err
}

// PatchTemplate sends a partial template object.
func (c *Client) PatchTemplate(ctx context.Context, id string, patch json.RawMessage) error {
	return c.do(ctx, http.MethodPost, "/api/admin/templates/"+url.PathEscape(id), patch, nil)
}

// UploadBackground sets the background of template id and returns its URL.
func (c *Client) UploadBackground(ctx context.Context, id, dataURL string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	err := c.do(ctx, http.MethodPost, "/api/admin/templates/"+url.PathEscape(id)+"/upload",
		map[string]string{"dataUrl": dataURL}, &resp)
	return resp.URL, err
}

// TestEmail asks the server to send a test email and returns the transport response.
func (c *Client) TestEmail(ctx context.Context) (json.RawMessage, error) {
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, "/api/admin/test-email", nil, &resp)
	return resp.Data, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, ok := body.(json.RawMessage)
		if !ok {
			var err error
			if raw, err = json.Marshal(body); err != nil {
				return fmt.Errorf("encode %s body: %w", path, err)
			}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
			msg = envelope.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return nil
}
