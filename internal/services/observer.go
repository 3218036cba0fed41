package services

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ChangeOp names the mutation that produced a ChangeEvent.
type ChangeOp string

const (
	OpAdded   ChangeOp = "added"
	OpUpdated ChangeOp = "updated"
	OpDeleted ChangeOp = "deleted"
	OpCleared ChangeOp = "cleared"
)

// ChangeEvent is delivered to observers after every applied mutation.
type ChangeEvent struct {
	Op            ChangeOp
	TransactionID uuid.UUID // uuid.Nil for OpCleared
	Count         int       // collection size after the mutation
	At            time.Time
}

// Observer is notified synchronously after the manager's collection changes.
// Implementations must not call back into mutating manager methods.
type Observer interface {
	TransactionsChanged(ctx context.Context, ev ChangeEvent)
}
