// Package events broadcasts change notifications to connected clients.
// Delivery is best-effort: a failed publish is logged and never fails the
// request that triggered it, and ordering relative to the HTTP response
// is not guaranteed.
package events

import "time"

// Transaction event names.
const (
	TransactionAdded   = "transaction_added"
	TransactionUpdated = "transaction_updated"
	TransactionDeleted = "transaction_deleted"
)

// TransactionEvent is the payload broadcast to a user's sessions after a
// transaction write commits. Clients refetch the full record themselves.
type TransactionEvent struct {
	Event         string    `json:"event"`
	TransactionID string    `json:"transaction_id"`
	Version       int       `json:"version"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher fans out change notifications keyed by user.
type Publisher interface {
	PublishTransactionEvent(userID, event, transactionID string, version int)
	Close() error
}

// NopPublisher discards all events. Used when no broker is configured and
// in tests.
type NopPublisher struct{}

func (NopPublisher) PublishTransactionEvent(userID, event, transactionID string, version int) {}

func (NopPublisher) Close() error { return nil }
