package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const brevoAPIURL = "https://api.brevo.com/v3/smtp/email"

// BrevoChannel delivers reset tickets through the Brevo transactional email
// API.
type BrevoChannel struct {
	apiKey     string
	fromEmail  string
	fromName   string
	resetURL   string
	httpClient *http.Client
}

func NewBrevoChannel(apiKey, fromEmail, fromName, resetURL string) *BrevoChannel {
	return &BrevoChannel{
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		fromName:   fromName,
		resetURL:   resetURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// IsConfigured reports whether the client has the credentials it needs.
func (c *BrevoChannel) IsConfigured() bool {
	return c.apiKey != "" && c.fromEmail != "" && c.fromName != ""
}

type sendEmailReq struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HtmlContent string              `json:"htmlContent"`
}

func (c *BrevoChannel) SendPasswordReset(ctx context.Context, toEmail, username, ticket string) error {
	if !c.IsConfigured() {
		return errors.New("brevo channel not configured")
	}
	if toEmail == "" {
		return errors.New("recipient email cannot be empty")
	}

	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Use the link below to reset your password. It is valid for 10 minutes.</p><p><a href=%q>%s%s</a></p>",
		username, c.resetURL+ticket, c.resetURL, ticket,
	)
	body := sendEmailReq{
		Sender:      map[string]string{"email": c.fromEmail, "name": c.fromName},
		To:          []map[string]string{{"email": toEmail}},
		Subject:     "Reset your password",
		HtmlContent: html,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal email request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPIURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create brevo request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("brevo send email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody map[string]interface{}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr != nil {
			return fmt.Errorf("brevo API error: status %d", resp.StatusCode)
		}
		return fmt.Errorf("brevo API error: status %d, body: %v", resp.StatusCode, errBody)
	}
	return nil
}
