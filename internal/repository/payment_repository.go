package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lotoemploi/loto-backend/internal/model"
)

// PaymentRepo provides data access to the payments table. The pending to
// paid transition is written with a conditional UPDATE so that a webhook
// replay or a concurrent confirmation can never apply it twice; the
// second writer simply affects zero rows.
type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

const paymentColumns = "id, user_id, status, num_tickets, amount, provider, payment_token, invoice_token, tickets, note, created_at, updated_at"

// Create inserts a new pending payment and populates the generated ID.
// PaymentToken and InvoiceToken must already be set by the caller.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO payments (user_id, status, num_tickets, amount, provider, payment_token, invoice_token, tickets, note) VALUES (?,?,?,?,?,?,?,?,?)",
		p.UserID, string(model.StatusPending), p.NumTickets, p.Amount, p.Provider,
		p.PaymentToken, p.InvoiceToken, "[]", "")
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.Status = model.StatusPending
	p.Tickets = []string{}
	return nil
}

// GetByPaymentToken fetches a payment by the client-facing token.
func (r *PaymentRepo) GetByPaymentToken(ctx context.Context, token string) (model.Payment, error) {
	return r.getBy(ctx, "payment_token", token)
}

// GetByInvoiceToken fetches a payment by the gateway-assigned token.
func (r *PaymentRepo) GetByInvoiceToken(ctx context.Context, token string) (model.Payment, error) {
	return r.getBy(ctx, "invoice_token", token)
}

func (r *PaymentRepo) getBy(ctx context.Context, column, value string) (model.Payment, error) {
	var (
		p          model.Payment
		status     string
		ticketsRaw []byte
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE "+column+"=? LIMIT 1", value).
		Scan(&p.ID, &p.UserID, &status, &p.NumTickets, &p.Amount, &p.Provider,
			&p.PaymentToken, &p.InvoiceToken, &ticketsRaw, &p.Note, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Payment{}, ErrNotFound
	}
	if err != nil {
		return model.Payment{}, err
	}
	p.Status = model.Status(status)
	if len(ticketsRaw) > 0 {
		if err := json.Unmarshal(ticketsRaw, &p.Tickets); err != nil {
			return model.Payment{}, fmt.Errorf("decode tickets for payment %d: %w", p.ID, err)
		}
	}
	if p.Tickets == nil {
		p.Tickets = []string{}
	}
	return p, nil
}

// MarkPaid performs the pending to paid transition and attaches the
// minted codes in the same statement. It returns (false, nil) when the
// payment was no longer pending, which callers treat as an idempotent
// no-op: the codes already stored remain untouched.
func (r *PaymentRepo) MarkPaid(ctx context.Context, id uint64, codes []string) (bool, error) {
	raw, err := json.Marshal(codes)
	if err != nil {
		return false, err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE payments SET status=?, tickets=?, updated_at=UTC_TIMESTAMP() WHERE id=? AND status=?",
		string(model.StatusPaid), raw, id, string(model.StatusPending))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Flag marks a pending payment as integrity_flagged, persisting the
// partial codes minted so far and a reconciliation note. Like MarkPaid
// it is conditional on the record still being pending.
func (r *PaymentRepo) Flag(ctx context.Context, id uint64, codes []string, note string) error {
	raw, err := json.Marshal(codes)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE payments SET status=?, tickets=?, note=?, updated_at=UTC_TIMESTAMP() WHERE id=? AND status=?",
		string(model.StatusFlagged), raw, note, id, string(model.StatusPending))
	return err
}

// ListByStatus returns payments in the given state, newest first. An
// empty status returns every payment. Used by the admin reconciliation
// view.
func (r *PaymentRepo) ListByStatus(ctx context.Context, status model.Status) ([]model.Payment, error) {
	q := "SELECT " + paymentColumns + " FROM payments"
	args := []interface{}{}
	if status != "" {
		q += " WHERE status=?"
		args = append(args, string(status))
	}
	q += " ORDER BY created_at DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Payment, 0)
	for rows.Next() {
		var (
			p          model.Payment
			st         string
			ticketsRaw []byte
		)
		if err := rows.Scan(&p.ID, &p.UserID, &st, &p.NumTickets, &p.Amount, &p.Provider,
			&p.PaymentToken, &p.InvoiceToken, &ticketsRaw, &p.Note, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Status = model.Status(st)
		if len(ticketsRaw) > 0 {
			if err := json.Unmarshal(ticketsRaw, &p.Tickets); err != nil {
				return nil, fmt.Errorf("decode tickets for payment %d: %w", p.ID, err)
			}
		}
		if p.Tickets == nil {
			p.Tickets = []string{}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
