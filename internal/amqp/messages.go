package amqp

import (
	"encoding/json"
	"time"
)

// Mutation kinds carried on ledger event messages.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
	OpReset   = "reset"
)

// Entity kinds carried on ledger event messages.
const (
	EntityTransaction = "transaction"
	EntityCategory    = "category"
)

// LedgerEventMessage is a lightweight notification that an owner's ledger
// changed. It carries only identifiers; the worker re-reads current state
// from the database when it processes the event.
type LedgerEventMessage struct {
	OwnerID   string    `json:"owner_id"`
	Entity    string    `json:"entity"`
	Op        string    `json:"op"`
	ID        int64     `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates a new ledger event for the given mutation
func NewLedgerEventMessage(ownerID, entity, op string, id int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		OwnerID:   ownerID,
		Entity:    entity,
		Op:        op,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
