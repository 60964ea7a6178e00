package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// PushoverClient sends fire-and-forget push notifications. Failures are the
// caller's to log; there are no retries and the call is bounded by the
// configured timeout so it can never stall a conversation for long.
type PushoverClient struct {
	url    string
	user   string
	token  string
	client *http.Client
}

// Config configures the Pushover-compatible notification client.
type Config struct {
	URL      string
	UserEnv  string
	TokenEnv string
	Timeout  time.Duration
}

// NewPushoverClient creates a notification client from the configuration.
func NewPushoverClient(cfg Config) (*PushoverClient, error) {
	user := os.Getenv(cfg.UserEnv)
	token := os.Getenv(cfg.TokenEnv)
	if user == "" || token == "" {
		return nil, fmt.Errorf("missing notification credentials in env %s/%s", cfg.UserEnv, cfg.TokenEnv)
	}
	if cfg.URL == "" {
		cfg.URL = "https://api.pushover.net/1/messages.json"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 5 * time.Second
	}
	return &PushoverClient{
		url:    cfg.URL,
		user:   user,
		token:  token,
		client: &http.Client{Timeout: t},
	}, nil
}

// Push sends one notification message.
func (c *PushoverClient) Push(ctx context.Context, message string) error {
	form := url.Values{}
	form.Set("user", c.user)
	form.Set("token", c.token)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("push notification failed: %s", resp.Status)
	}
	return nil
}
