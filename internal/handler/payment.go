package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lotoemploi/loto-backend/internal/model"
	"github.com/lotoemploi/loto-backend/internal/payment"
	"github.com/lotoemploi/loto-backend/internal/repository"
)

// PaymentService is the slice of the payment service the HTTP layer
// uses. Confirm is on the webhook handler instead.
type PaymentService interface {
	Initiate(ctx context.Context, in payment.InitiateInput) (payment.InitiateResult, error)
	Status(ctx context.Context, paymentToken string) (model.Payment, error)
}

// PaymentHandler bundles dependencies for payment endpoints.
type PaymentHandler struct {
	Svc           PaymentService
	StatusPageURL string // browser destination after checkout
	ErrorPageURL  string // browser destination for unknown tokens
}

func NewPaymentHandler(svc PaymentService, statusPageURL, errorPageURL string) *PaymentHandler {
	return &PaymentHandler{Svc: svc, StatusPageURL: statusPageURL, ErrorPageURL: errorPageURL}
}

// ----- DTOs -----

type initiateReq struct {
	UserID     uint64 `json:"userId"`
	Amount     int64  `json:"amount"`
	Provider   string `json:"provider"`
	NumTickets int    `json:"numTickets"`
}

type initiateResp struct {
	PaymentToken string `json:"paymentToken"`
	CheckoutURL  string `json:"checkoutUrl"`
}

type statusResp struct {
	Status     string   `json:"status"`
	Tickets    []string `json:"tickets"`
	NumTickets int      `json:"numTickets"`
	Amount     int64    `json:"amount"`
}

// Initiate starts a payment: validates the request, creates the gateway
// invoice and the local pending record, and returns the checkout URL.
func (h *PaymentHandler) Initiate(c echo.Context) error {
	var req initiateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 || req.Amount <= 0 || req.NumTickets <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId, amount and numTickets are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	res, err := h.Svc.Initiate(ctx, payment.InitiateInput{
		UserID:     req.UserID,
		Amount:     req.Amount,
		Provider:   strings.TrimSpace(req.Provider),
		NumTickets: req.NumTickets,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown user"})
		}
		c.Logger().Errorf("initiate payment failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment initiation failed"})
	}
	return c.JSON(http.StatusOK, initiateResp{PaymentToken: res.PaymentToken, CheckoutURL: res.CheckoutURL})
}

// Status returns the state of a payment identified by its client-facing
// token: lifecycle status, issued codes and amounts.
func (h *PaymentHandler) Status(c echo.Context) error {
	token := c.Param("token")
	if strings.TrimSpace(token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Svc.Status(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown payment token"})
		}
		c.Logger().Errorf("payment status lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "status lookup failed"})
	}
	return c.JSON(http.StatusOK, statusResp{
		Status:     string(p.Status),
		Tickets:    p.Tickets,
		NumTickets: p.NumTickets,
		Amount:     p.Amount,
	})
}

// Return handles the browser redirect after checkout. Known tokens go to
// the status page with the token appended; unknown tokens (and lookup
// failures) degrade to the error page rather than showing the buyer a
// raw 404.
func (h *PaymentHandler) Return(c echo.Context) error {
	token := c.Param("token")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Svc.Status(ctx, token); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			c.Logger().Errorf("payment return lookup failed: %v", err)
		}
		return c.Redirect(http.StatusFound, h.ErrorPageURL)
	}
	return c.Redirect(http.StatusFound, h.StatusPageURL+"?token="+url.QueryEscape(token))
}
