// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketsIssuedEvent is published after a payment transitions to paid
// and its ticket codes are committed. It carries enough information for
// the notification consumer to message the buyer without querying the
// primary database.
type TicketsIssuedEvent struct {
	PaymentID    uint64   `json:"payment_id"`
	PaymentToken string   `json:"payment_token"`
	UserID       uint64   `json:"user_id"`
	Phone        string   `json:"phone"`
	Tickets      []string `json:"tickets"`
	Amount       int64    `json:"amount"`
	PaidAt       string   `json:"paid_at"`
}
