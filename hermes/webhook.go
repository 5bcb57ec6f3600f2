package hermes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/unkn0wn-root/orchid"
)

var ErrNoURL = errors.New("hermes: webhook URL is required")

// Webhook delivers one plain-text message to a chat channel.
type Webhook interface {
	Send(ctx context.Context, text string) error
}

// StatusError is returned when the webhook endpoint answers >= 400 (after
// retries, for retryable statuses).
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("hermes: webhook returned status %d", e.Code)
	}
	return fmt.Sprintf("hermes: webhook returned status %d: %s", e.Code, e.Body)
}

// Config holds the transport settings shared by Slack and Discord.
type Config struct {
	URL       string
	Timeout   time.Duration // per attempt; 0 => 10s
	RetryMax  int           // 0 => 3; < 0 disables retries
	RetryWait time.Duration // minimum backoff; 0 => 500ms
	Headers   map[string]string
	// Limiter throttles sends (chat APIs allow about one message per
	// second per channel). nil => unthrottled.
	Limiter *rate.Limiter
	Logger  orchid.Logger
}

const (
	defaultTimeout   = 10 * time.Second
	defaultRetryMax  = 3
	defaultRetryWait = 500 * time.Millisecond
	maxErrBody       = 512
)

type poster struct {
	url     string
	headers map[string]string
	client  *retryablehttp.Client
	limiter *rate.Limiter
	log     orchid.Logger
}

func newPoster(cfg Config) (*poster, error) {
	if cfg.URL == "" {
		return nil, ErrNoURL
	}
	log := orchid.Coalesce[orchid.Logger](cfg.Logger, orchid.NopLogger{})

	c := retryablehttp.NewClient()
	c.HTTPClient.Timeout = orchid.Coalesce(cfg.Timeout, defaultTimeout)
	c.RetryWaitMin = orchid.Coalesce(cfg.RetryWait, defaultRetryWait)
	if c.RetryWaitMax < c.RetryWaitMin {
		c.RetryWaitMax = 4 * c.RetryWaitMin
	}
	switch {
	case cfg.RetryMax < 0:
		c.RetryMax = 0
	case cfg.RetryMax == 0:
		c.RetryMax = defaultRetryMax
	default:
		c.RetryMax = cfg.RetryMax
	}
	// hand the last response back so the status can be reported
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.Logger = leveled{log}

	return &poster{
		url:     cfg.URL,
		headers: cfg.Headers,
		client:  c,
		limiter: cfg.Limiter,
		log:     log,
	}, nil
}

func (p *poster) post(ctx context.Context, payload any) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("hermes: rate limiter: %w", err)
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("hermes: marshal payload: %w", err)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, p.url, body)
	if err != nil {
		return fmt.Errorf("hermes: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("hermes: webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return &StatusError{Code: resp.StatusCode, Body: string(b)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	p.log.Debug("webhook message sent", orchid.Fields{"status": resp.StatusCode})
	return nil
}

// Slack posts {"text": ...} to an incoming-webhook URL.
type Slack struct{ p *poster }

var _ Webhook = (*Slack)(nil)

func NewSlack(cfg Config) (*Slack, error) {
	p, err := newPoster(cfg)
	if err != nil {
		return nil, err
	}
	return &Slack{p: p}, nil
}

func (s *Slack) Send(ctx context.Context, text string) error {
	return s.p.post(ctx, struct {
		Text string `json:"text"`
	}{Text: text})
}

// Discord posts {"content": ...} to a channel webhook URL.
type Discord struct{ p *poster }

var _ Webhook = (*Discord)(nil)

func NewDiscord(cfg Config) (*Discord, error) {
	p, err := newPoster(cfg)
	if err != nil {
		return nil, err
	}
	return &Discord{p: p}, nil
}

func (d *Discord) Send(ctx context.Context, text string) error {
	return d.p.post(ctx, struct {
		Content string `json:"content"`
	}{Content: text})
}

// NewWebhook picks the implementation by kind: "slack" or "discord".
func NewWebhook(kind string, cfg Config) (Webhook, error) {
	switch kind {
	case "slack", "":
		return NewSlack(cfg)
	case "discord":
		return NewDiscord(cfg)
	}
	return nil, fmt.Errorf("hermes: unknown webhook kind %q", kind)
}

// leveled routes retryablehttp's logging into an orchid.Logger.
type leveled struct{ l orchid.Logger }

var _ retryablehttp.LeveledLogger = leveled{}

func (l leveled) Error(msg string, kv ...any) { l.l.Error(msg, kvFields(kv)) }
func (l leveled) Info(msg string, kv ...any)  { l.l.Info(msg, kvFields(kv)) }
func (l leveled) Debug(msg string, kv ...any) { l.l.Debug(msg, kvFields(kv)) }
func (l leveled) Warn(msg string, kv ...any)  { l.l.Warn(msg, kvFields(kv)) }

func kvFields(kv []any) orchid.Fields {
	if len(kv) == 0 {
		return nil
	}
	f := make(orchid.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
