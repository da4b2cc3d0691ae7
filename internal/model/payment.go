package model

import "time"

// Status enumerates the lifecycle states of a payment. Free-text status
// strings are not used anywhere. CanTransition is the in-memory guard
// against illegal moves (e.g. paid back to pending); the store enforces
// the same rule with conditional UPDATEs keyed on the pending state, so
// a race that slips past the guard still affects zero rows.
type Status string

const (
	// StatusPending is the initial state: the invoice was created with
	// the gateway but no completed confirmation has been verified yet.
	StatusPending Status = "pending"
	// StatusPaid is the terminal success state: the gateway confirmed
	// the transaction and the ticket codes were minted and attached.
	StatusPaid Status = "paid"
	// StatusFlagged marks a payment whose ticket issuance came up short
	// of the requested count. The record holds whatever codes were
	// minted and must be reconciled manually; it is never reported as
	// paid.
	StatusFlagged Status = "integrity_flagged"
)

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFlagged:
		return true
	}
	return false
}

// CanTransition reports whether a payment may move from one state to
// another. Pending is the only non-terminal state; paid and
// integrity_flagged never transition again.
func CanTransition(from, to Status) bool {
	if from != StatusPending {
		return false
	}
	return to == StatusPaid || to == StatusFlagged
}

// Payment represents one purchase attempt as stored in the `payments`
// table. Amount is kept in the smallest currency unit to avoid
// floating-point arithmetic on money.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – buyer reference.
//  Status       – lifecycle state, see Status.
//  NumTickets   – number of ticket codes requested.
//  Amount       – amount in the smallest currency unit.
//  Provider     – client platform tag (e.g. "web", "mobile").
//  PaymentToken – locally generated token handed to the client for
//                 status polling; unique, derived from wall clock and
//                 user id at creation time.
//  InvoiceToken – gateway-assigned token correlating the checkout
//                 invoice with its webhook confirmation; unique once set.
//  Tickets      – issued ticket codes; empty while pending, exactly
//                 NumTickets entries once paid.
//  Note         – free-form reconciliation note set when the record is
//                 flagged.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Payment struct {
	ID           uint64    // payments.id
	UserID       uint64    // payments.user_id
	Status       Status    // payments.status
	NumTickets   int       // payments.num_tickets
	Amount       int64     // payments.amount
	Provider     string    // payments.provider
	PaymentToken string    // payments.payment_token (unique)
	InvoiceToken string    // payments.invoice_token (unique once assigned)
	Tickets      []string  // payments.tickets (JSON array)
	Note         string    // payments.note
	CreatedAt    time.Time // payments.created_at
	UpdatedAt    time.Time // payments.updated_at
}
