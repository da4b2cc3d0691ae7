package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lotoemploi/loto-backend/internal/config"
	"github.com/lotoemploi/loto-backend/internal/model"
	"github.com/lotoemploi/loto-backend/internal/utils"
)

// PaymentLister lists payments for the reconciliation view.
type PaymentLister interface {
	ListByStatus(ctx context.Context, status model.Status) ([]model.Payment, error)
}

// AdminHandler exposes the operator endpoints: login and the payment
// reconciliation list (integrity-flagged and stuck-pending records).
type AdminHandler struct {
	Cfg      config.Config
	Payments PaymentLister
}

func NewAdminHandler(cfg config.Config, p PaymentLister) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Payments: p}
}

type adminLoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminTokenResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Login verifies the operator credentials from the environment and
// returns a short-lived access token for the admin endpoints.
func (h *AdminHandler) Login(c echo.Context) error {
	var req adminLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != strings.ToLower(h.Cfg.AdminEmail) || !utils.VerifyPassword(h.Cfg.AdminPasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, email, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, adminTokenResp{Token: access.Token, Expires: access.Exp})
}

type adminPaymentResp struct {
	ID           uint64   `json:"id"`
	UserID       uint64   `json:"user_id"`
	Status       string   `json:"status"`
	NumTickets   int      `json:"num_tickets"`
	Amount       int64    `json:"amount"`
	Provider     string   `json:"provider"`
	PaymentToken string   `json:"payment_token"`
	InvoiceToken string   `json:"invoice_token"`
	Tickets      []string `json:"tickets"`
	Note         string   `json:"note,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

// ListPayments returns payments for reconciliation, optionally filtered
// with ?status=pending|paid|integrity_flagged.
func (h *AdminHandler) ListPayments(c echo.Context) error {
	status := model.Status(strings.TrimSpace(c.QueryParam("status")))
	if status != "" && !status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	payments, err := h.Payments.ListByStatus(ctx, status)
	if err != nil {
		c.Logger().Errorf("admin: list payments failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list payments failed"})
	}

	out := make([]adminPaymentResp, 0, len(payments))
	for _, p := range payments {
		out = append(out, adminPaymentResp{
			ID:           p.ID,
			UserID:       p.UserID,
			Status:       string(p.Status),
			NumTickets:   p.NumTickets,
			Amount:       p.Amount,
			Provider:     p.Provider,
			PaymentToken: p.PaymentToken,
			InvoiceToken: p.InvoiceToken,
			Tickets:      p.Tickets,
			Note:         p.Note,
			CreatedAt:    p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": out})
}
