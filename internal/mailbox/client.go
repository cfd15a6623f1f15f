package mailbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stackproof/stackproof/internal/probe"
)

const (
	// DefaultAttempts and DefaultInterval bound the polling window for
	// WaitForMessage. Real-world email delivery routinely takes tens of
	// seconds, hence the generous default budget (10 × 10s).
	DefaultAttempts = 10
	DefaultInterval = 10 * time.Second

	defaultRequestTimeout = 30 * time.Second
	maxBodySize           = 1 << 20 // 1MB
)

// Message is a single captured email as reported by the inbox listing.
type Message struct {
	ID        int64     `json:"id"`
	Subject   string    `json:"subject"`
	FromEmail string    `json:"from_email"`
	ToEmail   string    `json:"to_email"`
	SentAt    time.Time `json:"sent_at"`
}

// MessageNotFoundError is returned when no message matching the searched
// recipient and subject arrived within the polling window.
type MessageNotFoundError struct {
	Recipient string
	Subject   string
}

func (e *MessageNotFoundError) Error() string {
	return fmt.Sprintf("no message for recipient %q with subject %q", e.Recipient, e.Subject)
}

// IsMessageNotFoundError reports whether err is (or wraps) a MessageNotFoundError.
func IsMessageNotFoundError(err error) bool {
	var e *MessageNotFoundError
	return errors.As(err, &e)
}

// Config carries the capture service coordinates and the polling budget.
type Config struct {
	BaseURL  string
	APIToken string
	InboxID  string
	Attempts int
	Interval time.Duration
}

// Client talks to the mail capture service. Construct it with NewClient and
// share it freely; it holds no mutable state.
type Client struct {
	baseURL    string
	apiToken   string
	inboxID    string
	poll       probe.Config
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// NewClient builds a capture-inbox client. Zero Attempts/Interval fall back
// to the package defaults.
func NewClient(cfg Config) *Client {
	if cfg.Attempts < 1 {
		cfg.Attempts = DefaultAttempts
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiToken: cfg.APIToken,
		inboxID:  cfg.InboxID,
		poll:     probe.Config{Attempts: cfg.Attempts, Interval: cfg.Interval},
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
		log: zap.S().Named("mailbox"),
	}
}

// ListMessages returns every message currently in the inbox, newest first as
// delivered by the service.
func (c *Client) ListMessages(ctx context.Context) ([]Message, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/v1/inboxes/%s/messages", c.inboxID))
	if err != nil {
		return nil, err
	}

	var messages []Message
	if err := json.Unmarshal(body, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode message list: %w", err)
	}
	return messages, nil
}

// MessageText fetches the plain-text body of a message.
func (c *Client) MessageText(ctx context.Context, id int64) (string, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/v1/inboxes/%s/messages/%d/body.txt", c.inboxID, id))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// MessageHTML fetches the HTML body of a message.
func (c *Client) MessageHTML(ctx context.Context, id int64) (string, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/v1/inboxes/%s/messages/%d/body.html", c.inboxID, id))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// WaitForMessage polls the inbox until a message addressed to recipient with
// exactly the given subject shows up. Recipient matching is by containment
// within the message's recipient field, so plus-addressed variants match.
// When the polling budget runs out it returns *MessageNotFoundError.
func (c *Client) WaitForMessage(ctx context.Context, recipient, subject string) (Message, error) {
	c.log.Infow("waiting for message", "recipient", recipient, "subject", subject)

	msg, err := probe.Poll(ctx, c.poll, func(ctx context.Context) (Message, error) {
		messages, err := c.ListMessages(ctx)
		if err != nil {
			return Message{}, err
		}
		for _, m := range messages {
			if strings.Contains(m.ToEmail, recipient) && m.Subject == subject {
				return m, nil
			}
		}
		return Message{}, probe.ErrNotReady
	})
	if err != nil {
		if ctx.Err() != nil {
			return Message{}, err
		}
		return Message{}, fmt.Errorf("%w: %w", &MessageNotFoundError{Recipient: recipient, Subject: subject}, err)
	}

	c.log.Infow("message found", "id", msg.ID, "sentAt", msg.SentAt)
	return msg, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Api-Token", c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("capture service rejected the API token: %s", resp.Status)
	case http.StatusNotFound:
		return nil, fmt.Errorf("capture service resource not found: %s", path)
	default:
		return nil, fmt.Errorf("capture service returned %s for %s", resp.Status, path)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
