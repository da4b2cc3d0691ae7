// Package payment implements the purchase lifecycle: initiate a checkout
// invoice with the gateway, and on webhook confirmation drive the
// pending to paid transition exactly once, minting ticket codes along
// the way. The service owns the state machine; handlers stay thin.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lotoemploi/loto-backend/internal/gateway"
	"github.com/lotoemploi/loto-backend/internal/model"
	"github.com/lotoemploi/loto-backend/internal/queue"
	"github.com/lotoemploi/loto-backend/internal/utils"
)

// ErrShortIssuance marks a confirmation where fewer codes were minted
// than the order requested. The payment is flagged for manual
// reconciliation and must never be reported as paid.
var ErrShortIssuance = errors.New("ticket issuance came up short")

// Store is the payment persistence the service needs. The conditional
// MarkPaid is the idempotency guard: it reports false when the record
// was no longer pending.
type Store interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByPaymentToken(ctx context.Context, token string) (model.Payment, error)
	GetByInvoiceToken(ctx context.Context, token string) (model.Payment, error)
	MarkPaid(ctx context.Context, id uint64, codes []string) (bool, error)
	Flag(ctx context.Context, id uint64, codes []string, note string) error
}

// UserStore resolves buyers for invoice creation and notification.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Verifier confirms an invoice's authoritative status with the gateway.
type Verifier interface {
	CreateInvoice(ctx context.Context, req gateway.InvoiceRequest) (gateway.Invoice, error)
	ConfirmInvoice(ctx context.Context, token string) (gateway.InvoiceStatus, error)
}

// TicketIssuer mints sequential codes; a short result comes back with an
// error attached.
type TicketIssuer interface {
	Issue(ctx context.Context, n int) ([]string, error)
}

// PublishFunc hands a committed paid event to the broker.
type PublishFunc func(ctx context.Context, ev queue.TicketsIssuedEvent) error

// Service wires the collaborators together. Async is left true in
// production so notification publishing happens outside the webhook
// request; tests set it false to observe the publish synchronously.
type Service struct {
	Payments Store
	Users    UserStore
	Gateway  Verifier
	Issuer   TicketIssuer
	Publish  PublishFunc

	Currency    string // e.g. "XOF"
	CallbackURL string // gateway IPN target
	ReturnURL   string // base of the browser return route; token appended per invoice
	CancelURL   string

	Sync bool // publish synchronously (tests only)
}

// InitiateInput carries a validated payment initiation request.
type InitiateInput struct {
	UserID     uint64
	Amount     int64
	Provider   string
	NumTickets int
}

// InitiateResult is handed back to the client: where to send the buyer
// and the token for status polling.
type InitiateResult struct {
	PaymentToken string
	CheckoutURL  string
}

// Initiate creates the local pending record and the gateway invoice.
// The gateway call happens first so a gateway failure leaves no orphan
// pending payment behind.
func (s *Service) Initiate(ctx context.Context, in InitiateInput) (InitiateResult, error) {
	if in.NumTickets <= 0 {
		return InitiateResult{}, fmt.Errorf("numTickets must be positive, got %d", in.NumTickets)
	}
	if in.Amount <= 0 {
		return InitiateResult{}, fmt.Errorf("amount must be positive, got %d", in.Amount)
	}
	user, err := s.Users.GetByID(ctx, in.UserID)
	if err != nil {
		return InitiateResult{}, fmt.Errorf("load user %d: %w", in.UserID, err)
	}

	token := utils.NewPaymentToken(user.ID)
	// The return route is parameterized by the payment token, so the
	// success URL must carry it or the gateway redirects the buyer to a
	// route that does not exist.
	inv, err := s.Gateway.CreateInvoice(ctx, gateway.InvoiceRequest{
		Amount:      in.Amount,
		Currency:    s.Currency,
		ItemName:    fmt.Sprintf("Lotoemploi x%d tickets", in.NumTickets),
		RefCommand:  token,
		CallbackURL: s.CallbackURL,
		ReturnURL:   s.ReturnURL + "/" + token,
		CancelURL:   s.CancelURL,
	})
	if err != nil {
		return InitiateResult{}, fmt.Errorf("create invoice: %w", err)
	}

	p := &model.Payment{
		UserID:       user.ID,
		NumTickets:   in.NumTickets,
		Amount:       in.Amount,
		Provider:     in.Provider,
		PaymentToken: token,
		InvoiceToken: inv.Token,
	}
	if err := s.Payments.Create(ctx, p); err != nil {
		return InitiateResult{}, fmt.Errorf("persist payment: %w", err)
	}
	return InitiateResult{PaymentToken: token, CheckoutURL: inv.RedirectURL}, nil
}

// Confirm processes a gateway webhook for the given invoice token. It is
// safe under replays and concurrent deliveries: the conditional paid
// write fires at most once, and every other path is a no-op. The caller
// (webhook handler) acknowledges 200 regardless of the returned error.
func (s *Service) Confirm(ctx context.Context, invoiceToken string) error {
	p, err := s.Payments.GetByInvoiceToken(ctx, invoiceToken)
	if err != nil {
		return fmt.Errorf("lookup invoice %q: %w", invoiceToken, err)
	}
	if !model.CanTransition(p.Status, model.StatusPaid) {
		// Replayed webhook for a settled record: nothing to do.
		log.Printf("payment: invoice %s already %s, ignoring confirmation", invoiceToken, p.Status)
		return nil
	}

	st, err := s.Gateway.ConfirmInvoice(ctx, invoiceToken)
	if err != nil {
		// Verification failed (network, gateway outage): leave the
		// record pending, let a later delivery retry.
		return fmt.Errorf("verify invoice %q: %w", invoiceToken, err)
	}
	if !st.Completed() {
		log.Printf("payment: invoice %s reported status %q, leaving pending", invoiceToken, st.Status)
		return nil
	}

	codes, err := s.Issuer.Issue(ctx, p.NumTickets)
	if err != nil {
		// Short issuance is a data-integrity condition: persist what was
		// minted, flag the record, and never mark it paid.
		note := fmt.Sprintf("issued %d of %d tickets: %v", len(codes), p.NumTickets, err)
		if ferr := s.Payments.Flag(ctx, p.ID, codes, note); ferr != nil {
			log.Printf("payment: CRITICAL failed to flag payment %d after short issuance: %v", p.ID, ferr)
		}
		log.Printf("payment: CRITICAL short issuance on payment %d: %s", p.ID, note)
		return fmt.Errorf("%w: payment %d: %v", ErrShortIssuance, p.ID, err)
	}

	applied, err := s.Payments.MarkPaid(ctx, p.ID, codes)
	if err != nil {
		return fmt.Errorf("mark payment %d paid: %w", p.ID, err)
	}
	if !applied {
		// A concurrent confirmation won between our read and write. The
		// winner's codes are stored; ours were minted from a later
		// counter position and simply go unused.
		log.Printf("payment: payment %d confirmed concurrently, dropping duplicate confirmation", p.ID)
		return nil
	}

	s.dispatchNotification(p, codes)
	return nil
}

// dispatchNotification publishes the paid event for the notification
// consumer. It runs after the paid write committed and never feeds an
// error back into the confirmation path.
func (s *Service) dispatchNotification(p model.Payment, codes []string) {
	user, err := s.Users.GetByID(context.Background(), p.UserID)
	if err != nil {
		log.Printf("payment: cannot load user %d for notification: %v", p.UserID, err)
		return
	}
	ev := queue.TicketsIssuedEvent{
		PaymentID:    p.ID,
		PaymentToken: p.PaymentToken,
		UserID:       p.UserID,
		Phone:        user.Phone,
		Tickets:      codes,
		Amount:       p.Amount,
		PaidAt:       time.Now().UTC().Format(time.RFC3339),
	}
	publish := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Publish(ctx, ev); err != nil {
			log.Printf("payment: publish paid event for payment %d failed: %v", p.ID, err)
		}
	}
	if s.Sync {
		publish()
		return
	}
	go publish()
}

// Status returns the payment identified by the client-facing token.
func (s *Service) Status(ctx context.Context, paymentToken string) (model.Payment, error) {
	return s.Payments.GetByPaymentToken(ctx, paymentToken)
}
