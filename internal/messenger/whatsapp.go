// Package messenger sends ticket codes to buyers over the WhatsApp
// messaging API. Delivery is best-effort: the caller logs and swallows
// failures, issuance is never rolled back because a message did not go
// out.
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client posts templated messages to the messaging provider.
type Client struct {
	BaseURL    string
	Token      string
	Sender     string // provider-side sender id / phone
	HTTPClient *http.Client
}

// New returns a Client with a bounded request timeout.
func New(baseURL, token, sender string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		Sender:     sender,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type sendRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

// SendTickets delivers the issued codes to the buyer's phone, keyed by
// the client-facing payment token so the buyer can match the message to
// their purchase.
func (c *Client) SendTickets(ctx context.Context, phone string, codes []string, paymentToken string) error {
	if strings.TrimSpace(phone) == "" {
		return fmt.Errorf("messenger: empty destination phone")
	}
	body := fmt.Sprintf("Lotoemploi : vos tickets %s (réf. %s). Bonne chance !",
		strings.Join(codes, ", "), paymentToken)

	raw, err := json.Marshal(sendRequest{From: c.Sender, To: phone, Body: body})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/messages", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("messenger: send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("messenger: send returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
