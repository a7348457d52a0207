package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultMandrillBaseURL is the public Mandrill API root.
	DefaultMandrillBaseURL = "https://mandrillapp.com/api/1.0"

	sendTemplatePath   = "/messages/send-template.json"
	maxResponseBytes   = 1 << 20
	defaultHTTPTimeout = 10 * time.Second
)

// ErrMandrillAPIKeyRequired is returned by NewMandrill without an API key.
var ErrMandrillAPIKeyRequired = errors.New("mail: mandrill api key is required")

// MandrillConfig configures the Mandrill client.
type MandrillConfig struct {
	// APIKey authenticates calls; sent in the request body as "key".
	APIKey string
	// BaseURL defaults to DefaultMandrillBaseURL.
	BaseURL string
	// From is the default sender address.
	From string
	// FromName is the optional default sender display name.
	FromName string
	// Timeout bounds each HTTP call.
	Timeout time.Duration
	// Transport overrides the HTTP transport; it is wrapped with otelhttp.
	Transport http.RoundTripper
}

// Mandrill is a Mailer backed by the Mandrill messages API.
type Mandrill struct {
	cfg    MandrillConfig
	client *http.Client
}

// NewMandrill constructs a Mandrill client.
func NewMandrill(cfg MandrillConfig) (*Mandrill, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMandrillAPIKeyRequired
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultMandrillBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}

	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Mandrill{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: otelhttp.NewTransport(base,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "mandrill " + r.URL.Path
				}),
			),
		},
	}, nil
}

type mandrillRecipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Type  string `json:"type"`
}

type mandrillVar struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type mandrillMessage struct {
	Subject         string              `json:"subject,omitempty"`
	FromEmail       string              `json:"from_email,omitempty"`
	FromName        string              `json:"from_name,omitempty"`
	To              []mandrillRecipient `json:"to"`
	GlobalMergeVars []mandrillVar       `json:"global_merge_vars"`
	InlineCSS       bool                `json:"inline_css"`
}

type mandrillSendTemplateRequest struct {
	Key             string          `json:"key"`
	TemplateName    string          `json:"template_name"`
	TemplateContent []mandrillVar   `json:"template_content"`
	Message         mandrillMessage `json:"message"`
}

type mandrillSendResult struct {
	Email        string `json:"email"`
	Status       string `json:"status"`
	ID           string `json:"_id"`
	RejectReason string `json:"reject_reason"`
}

type mandrillErrorResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// SendTemplate posts msg to messages/send-template. Non-2xx responses become a
// *ProviderError; a recipient reported as rejected or invalid yields
// ErrRecipientRejected alongside the results.
func (m *Mandrill) SendTemplate(ctx context.Context, msg TemplateMessage) ([]Result, error) {
	payload := mandrillSendTemplateRequest{
		Key:             m.cfg.APIKey,
		TemplateName:    msg.Template,
		TemplateContent: []mandrillVar{},
		Message: mandrillMessage{
			Subject:         msg.Subject,
			FromEmail:       msg.From,
			FromName:        m.cfg.FromName,
			To:              make([]mandrillRecipient, 0, len(msg.To)),
			GlobalMergeVars: make([]mandrillVar, 0, len(msg.Vars)),
			InlineCSS:       msg.InlineCSS,
		},
	}
	if payload.Message.FromEmail == "" {
		payload.Message.FromEmail = m.cfg.From
	}
	for _, to := range msg.To {
		payload.Message.To = append(payload.Message.To, mandrillRecipient{Email: to.Email, Name: to.Name, Type: "to"})
	}
	for _, v := range msg.Vars {
		payload.Message.GlobalMergeVars = append(payload.Message.GlobalMergeVars, mandrillVar(v))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("mail: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL+sendTemplatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("mail: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mail: send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("mail: read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		perr := &ProviderError{HTTPStatus: resp.StatusCode, Name: http.StatusText(resp.StatusCode)}
		var er mandrillErrorResponse
		if json.Unmarshal(raw, &er) == nil && er.Name != "" {
			perr.Name, perr.Code, perr.Message = er.Name, er.Code, er.Message
		}
		return nil, perr
	}

	var sent []mandrillSendResult
	if err := json.Unmarshal(raw, &sent); err != nil {
		return nil, fmt.Errorf("mail: decode response: %w", err)
	}

	results := make([]Result, 0, len(sent))
	var rejected []string
	for _, s := range sent {
		results = append(results, Result(s))
		if s.Status == "rejected" || s.Status == "invalid" {
			rejected = append(rejected, fmt.Sprintf("%s (%s %s)", s.Email, s.Status, s.RejectReason))
		}
	}
	if len(rejected) > 0 {
		return results, fmt.Errorf("%w: %s", ErrRecipientRejected, strings.Join(rejected, ", "))
	}

	return results, nil
}

// Close releases idle connections.
func (m *Mandrill) Close() error {
	m.client.CloseIdleConnections()
	return nil
}
