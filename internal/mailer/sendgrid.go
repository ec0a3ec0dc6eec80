package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const sendGridEndpoint = "https://api.sendgrid.com/v3/mail/send"

// Email is a single outbound message.
type Email struct {
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers email messages.
type Sender interface {
	// Configured reports whether the sender can actually deliver mail.
	Configured() bool
	Send(ctx context.Context, email Email) error
}

// SendGridClient talks to the SendGrid v3 mail send API.
type SendGridClient struct {
	apiKey     string
	from       string
	endpoint   string
	httpClient *http.Client
}

// NewSendGridClient creates a SendGrid sender. An empty API key yields an
// unconfigured client; sends are then skipped rather than attempted.
func NewSendGridClient(apiKey, from string) *SendGridClient {
	return &SendGridClient{
		apiKey:   apiKey,
		from:     from,
		endpoint: sendGridEndpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Configured reports whether an API key is present.
func (c *SendGridClient) Configured() bool {
	return c.apiKey != ""
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridMessage struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	ReplyTo          *sendGridAddress          `json:"reply_to,omitempty"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

// Send submits the message to SendGrid.
func (c *SendGridClient) Send(ctx context.Context, email Email) error {
	msg := sendGridMessage{
		Personalizations: []sendGridPersonalization{
			{To: []sendGridAddress{{Email: email.To}}},
		},
		From:    sendGridAddress{Email: c.from},
		Subject: email.Subject,
		Content: []sendGridContent{
			{Type: "text/plain", Value: email.Text},
			{Type: "text/html", Value: email.HTML},
		},
	}
	if email.ReplyTo != "" {
		msg.ReplyTo = &sendGridAddress{Email: email.ReplyTo}
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sendgrid send failed: %s - %s", resp.Status, string(body))
	}
	return nil
}
