package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConfirmer struct {
	err    error
	tokens []string
}

func (f *fakeConfirmer) Confirm(ctx context.Context, invoiceToken string) error {
	f.tokens = append(f.tokens, invoiceToken)
	return f.err
}

func postWebhook(t *testing.T, h *WebhookHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/confirm-payment", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Confirm(e.NewContext(req, rec)))
	return rec
}

func TestWebhookConfirmsInvoice(t *testing.T) {
	f := &fakeConfirmer{}
	rec := postWebhook(t, NewWebhookHandler(f), `{"invoice_token":"inv_1","status":"completed"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"inv_1"}, f.tokens)
}

func TestWebhookAcceptsAlternateTokenKey(t *testing.T) {
	f := &fakeConfirmer{}
	rec := postWebhook(t, NewWebhookHandler(f), `{"token":"inv_2"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"inv_2"}, f.tokens)
}

// The webhook contract: 200 in every case, or the gateway retries forever.
func TestWebhookAlwaysAcknowledges(t *testing.T) {
	t.Run("service failure", func(t *testing.T) {
		f := &fakeConfirmer{err: errors.New("datastore down")}
		rec := postWebhook(t, NewWebhookHandler(f), `{"invoice_token":"inv_3"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	t.Run("missing token", func(t *testing.T) {
		f := &fakeConfirmer{}
		rec := postWebhook(t, NewWebhookHandler(f), `{"status":"completed"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, f.tokens, "no confirmation without a token")
	})
	t.Run("malformed body", func(t *testing.T) {
		f := &fakeConfirmer{}
		rec := postWebhook(t, NewWebhookHandler(f), `{not json`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, f.tokens)
	})
}
