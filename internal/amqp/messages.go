package amqp

import (
	"encoding/json"
	"time"
)

// ChangeMessage announces that the transaction collection changed.
// It carries no transaction data; consumers reload from their own store.
type ChangeMessage struct {
	Op            string    `json:"op"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Count         int       `json:"count"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewChangeMessage creates a change message stamped with at, or now when at is zero.
func NewChangeMessage(op, transactionID string, count int, at time.Time) *ChangeMessage {
	if at.IsZero() {
		at = time.Now()
	}
	return &ChangeMessage{
		Op:            op,
		TransactionID: transactionID,
		Count:         count,
		Timestamp:     at,
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
