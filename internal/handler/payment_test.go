package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotoemploi/loto-backend/internal/model"
	"github.com/lotoemploi/loto-backend/internal/payment"
	"github.com/lotoemploi/loto-backend/internal/repository"
)

type fakePaymentService struct {
	payments map[string]model.Payment
	initErr  error
}

func (f *fakePaymentService) Initiate(ctx context.Context, in payment.InitiateInput) (payment.InitiateResult, error) {
	if f.initErr != nil {
		return payment.InitiateResult{}, f.initErr
	}
	return payment.InitiateResult{PaymentToken: "PAY-1", CheckoutURL: "https://pay.example/PAY-1"}, nil
}

func (f *fakePaymentService) Status(ctx context.Context, token string) (model.Payment, error) {
	p, ok := f.payments[token]
	if !ok {
		return model.Payment{}, repository.ErrNotFound
	}
	return p, nil
}

func newPaymentContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestInitiateReturnsCheckoutURL(t *testing.T) {
	h := NewPaymentHandler(&fakePaymentService{}, "https://loto.example/status", "https://loto.example/error")
	c, rec := newPaymentContext(http.MethodPost, "/api/payments",
		`{"userId":7,"amount":5000,"provider":"web","numTickets":3}`)

	require.NoError(t, h.Initiate(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp initiateResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "PAY-1", resp.PaymentToken)
	assert.Equal(t, "https://pay.example/PAY-1", resp.CheckoutURL)
}

func TestInitiateValidatesBody(t *testing.T) {
	h := NewPaymentHandler(&fakePaymentService{}, "s", "e")
	for _, body := range []string{
		`{"amount":5000,"numTickets":3}`,
		`{"userId":7,"numTickets":3}`,
		`{"userId":7,"amount":5000}`,
		`{"userId":7,"amount":-1,"numTickets":3}`,
		`{"userId":7,"amount":5000,"numTickets":0}`,
	} {
		c, rec := newPaymentContext(http.MethodPost, "/api/payments", body)
		require.NoError(t, h.Initiate(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestInitiateUnknownUser(t *testing.T) {
	h := NewPaymentHandler(&fakePaymentService{initErr: repository.ErrNotFound}, "s", "e")
	c, rec := newPaymentContext(http.MethodPost, "/api/payments",
		`{"userId":99,"amount":5000,"numTickets":1}`)

	require.NoError(t, h.Initiate(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusReflectsPaidPayment(t *testing.T) {
	svc := &fakePaymentService{payments: map[string]model.Payment{
		"PAY-1": {Status: model.StatusPaid, Tickets: []string{"A001", "A002", "A003"}, NumTickets: 3, Amount: 5000},
	}}
	h := NewPaymentHandler(svc, "s", "e")

	c, rec := newPaymentContext(http.MethodGet, "/", "")
	c.SetPath("/api/payments/status/:token")
	c.SetParamNames("token")
	c.SetParamValues("PAY-1")

	require.NoError(t, h.Status(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statusResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "paid", resp.Status)
	assert.Equal(t, []string{"A001", "A002", "A003"}, resp.Tickets)
	assert.Equal(t, 3, resp.NumTickets)
	assert.Equal(t, int64(5000), resp.Amount)
}

func TestStatusUnknownTokenIs404(t *testing.T) {
	h := NewPaymentHandler(&fakePaymentService{}, "s", "e")
	c, rec := newPaymentContext(http.MethodGet, "/", "")
	c.SetPath("/api/payments/status/:token")
	c.SetParamNames("token")
	c.SetParamValues("PAY-nope")

	require.NoError(t, h.Status(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReturnRedirectsToStatusPage(t *testing.T) {
	svc := &fakePaymentService{payments: map[string]model.Payment{
		"PAY-1": {Status: model.StatusPending},
	}}
	h := NewPaymentHandler(svc, "https://loto.example/status", "https://loto.example/error")

	c, rec := newPaymentContext(http.MethodGet, "/", "")
	c.SetPath("/api/payment-return/:token")
	c.SetParamNames("token")
	c.SetParamValues("PAY-1")

	require.NoError(t, h.Return(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://loto.example/status?token=PAY-1", rec.Header().Get(echo.HeaderLocation))
}

func TestReturnUnknownTokenRedirectsToErrorPage(t *testing.T) {
	h := NewPaymentHandler(&fakePaymentService{}, "https://loto.example/status", "https://loto.example/error")

	c, rec := newPaymentContext(http.MethodGet, "/", "")
	c.SetPath("/api/payment-return/:token")
	c.SetParamNames("token")
	c.SetParamValues("PAY-nope")

	require.NoError(t, h.Return(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://loto.example/error", rec.Header().Get(echo.HeaderLocation))
}
