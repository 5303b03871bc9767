package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const sendgridBaseURL = "https://api.sendgrid.com"

// Client sends transactional mail through the SendGrid HTTP API.
type Client interface {
	SendVerification(ctx context.Context, toEmail, name string) error
}

type httpClient struct {
	baseURL     string
	apiKey      string
	senderEmail string
	client      *http.Client
}

func NewHTTPClient(apiKey, senderEmail string, timeout time.Duration) Client {
	return &httpClient{
		baseURL:     sendgridBaseURL,
		apiKey:      apiKey,
		senderEmail: senderEmail,
		client:      &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) SendVerification(ctx context.Context, toEmail, name string) error {
	greeting := "there"
	if name != "" {
		greeting = name
	}
	payload := map[string]interface{}{
		"personalizations": []map[string]interface{}{
			{"to": []map[string]string{{"email": toEmail}}},
		},
		"from":    map[string]string{"email": c.senderEmail},
		"subject": "Welcome to SentryAI, verify your email",
		"content": []map[string]string{
			{"type": "text/plain", "value": fmt.Sprintf("Hi %s, please verify your email to activate your account.", greeting)},
		},
	}
	return c.post(ctx, "/v3/mail/send", payload)
}

func (c *httpClient) post(ctx context.Context, path string, payload interface{}) error {
	op := func() error {
		body, err := json.Marshal(payload)
		if err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s%s", c.baseURL, path), bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		res, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.StatusCode >= 500 {
			return fmt.Errorf("mail relay error: %d", res.StatusCode)
		}
		if res.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("mail relay rejected request: %d", res.StatusCode))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 3 * time.Second
	return backoff.Retry(op, backoff.WithContext(bo, ctx))
}
