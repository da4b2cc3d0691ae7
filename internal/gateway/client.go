// Package gateway wraps the payment provider's HTTP API. The core only
// needs two operations: create a checkout invoice and confirm the final
// status of an invoice identified by its token. Everything else about
// the provider's wire format stays behind this client.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// StatusCompleted is the provider's terminal success status. Any other
// status leaves the local payment record pending.
const StatusCompleted = "completed"

// Client calls the payment gateway. Credentials are sent on every
// request as header pairs, per the provider's API.
type Client struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	HTTPClient *http.Client
}

// New returns a Client with a bounded request timeout.
func New(baseURL, apiKey, apiSecret string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		APISecret:  apiSecret,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// InvoiceRequest describes the checkout invoice to create.
type InvoiceRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	ItemName    string `json:"item_name"`
	RefCommand  string `json:"ref_command"` // our payment_token, echoed back by the gateway
	CallbackURL string `json:"ipn_url"`
	ReturnURL   string `json:"success_url"`
	CancelURL   string `json:"cancel_url"`
}

// Invoice is the gateway's answer to a creation request: its own token
// for the invoice and the URL the buyer must be redirected to.
type Invoice struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// InvoiceStatus is the gateway's view of a transaction when confirming.
type InvoiceStatus struct {
	Token  string `json:"token"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

// Completed reports whether the gateway considers the invoice paid.
func (s InvoiceStatus) Completed() bool { return s.Status == StatusCompleted }

// CreateInvoice registers a checkout invoice with the gateway and
// returns its token and redirect URL.
func (c *Client) CreateInvoice(ctx context.Context, req InvoiceRequest) (Invoice, error) {
	var inv Invoice
	if err := c.post(ctx, "/v1/payment/request", req, &inv); err != nil {
		return Invoice{}, err
	}
	if inv.Token == "" || inv.RedirectURL == "" {
		return Invoice{}, fmt.Errorf("gateway: incomplete invoice response (token=%q)", inv.Token)
	}
	return inv, nil
}

// ConfirmInvoice asks the gateway for the authoritative status of an
// invoice. Webhook payloads are never trusted on their own; this call is
// the source of truth for the pending to paid transition.
func (c *Client) ConfirmInvoice(ctx context.Context, token string) (InvoiceStatus, error) {
	var st InvoiceStatus
	body := map[string]string{"token": token}
	if err := c.post(ctx, "/v1/payment/check", body, &st); err != nil {
		return InvoiceStatus{}, err
	}
	return st, nil
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("API_KEY", c.APIKey)
	req.Header.Set("API_SECRET", c.APISecret)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway: %s returned %d: %s", path, resp.StatusCode, snippet)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
