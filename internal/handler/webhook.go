package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Confirmer drives the idempotent pending to paid transition for an
// invoice. payment.Service is the production implementation.
type Confirmer interface {
	Confirm(ctx context.Context, invoiceToken string) error
}

// WebhookHandler receives the gateway's IPN callbacks.
type WebhookHandler struct {
	Svc Confirmer
}

func NewWebhookHandler(svc Confirmer) *WebhookHandler { return &WebhookHandler{Svc: svc} }

// ipnEnvelope is the gateway's notification payload. Only the invoice
// token is used; the claimed status is never trusted, Confirm verifies
// with the gateway directly.
type ipnEnvelope struct {
	InvoiceToken string `json:"invoice_token"`
	Token        string `json:"token"` // some gateway versions use this key
	Status       string `json:"status"`
}

// Confirm processes an IPN delivery. This endpoint replies 200 in every
// case, including malformed payloads and internal failures: a non-200
// would make the gateway retry forever, and the state machine already
// tolerates replays. Failures are logged for reconciliation.
func (h *WebhookHandler) Confirm(c echo.Context) error {
	var env ipnEnvelope
	if err := c.Bind(&env); err != nil {
		c.Logger().Warnf("webhook: unreadable payload: %v", err)
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}
	token := strings.TrimSpace(env.InvoiceToken)
	if token == "" {
		token = strings.TrimSpace(env.Token)
	}
	if token == "" {
		c.Logger().Warn("webhook: payload without invoice token")
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	// No mid-flight cancellation: issuance runs to completion even if
	// the gateway hangs up, so the context is detached from the request.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.Svc.Confirm(ctx, token); err != nil {
		c.Logger().Errorf("webhook: confirmation for invoice %s failed: %v", token, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
