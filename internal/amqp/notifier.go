package amqp

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"accounting/internal/log"
	"accounting/internal/services"
)

// ChangePublisher publishes change messages. *Client implements it.
type ChangePublisher interface {
	PublishChange(ctx context.Context, msg *ChangeMessage) error
}

// Notifier forwards manager change events to a message broker. Publish failures
// are logged and never reach the mutation that triggered them.
type Notifier struct {
	publisher ChangePublisher
	logger    *log.Logger
}

var _ services.Observer = (*Notifier)(nil)

func NewNotifier(publisher ChangePublisher, logger *log.Logger) *Notifier {
	if logger == nil {
		logger = log.Discard()
	}
	return &Notifier{
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentAMQP),
	}
}

// TransactionsChanged implements services.Observer.
func (n *Notifier) TransactionsChanged(ctx context.Context, ev services.ChangeEvent) {
	msg := MessageFromEvent(ev)
	if err := n.publisher.PublishChange(ctx, msg); err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			n.logger.DebugContext(ctx, "Change notification skipped, circuit open", log.FieldOperation, log.OpNotify, "op", msg.Op)
			return
		}
		n.logger.WarnContext(ctx, "Failed to publish change notification",
			log.NewFields().WithOperation(log.OpNotify).WithError(err, log.ErrorTypeNetwork).ToSlice()...)
		return
	}
	n.logger.DebugContext(ctx, "Change notification published",
		log.FieldOperation, log.OpNotify,
		"op", msg.Op,
		log.FieldCount, msg.Count)
}

// MessageFromEvent converts a manager change event to its wire form.
func MessageFromEvent(ev services.ChangeEvent) *ChangeMessage {
	id := ""
	if ev.TransactionID != uuid.Nil {
		id = ev.TransactionID.String()
	}
	return NewChangeMessage(string(ev.Op), id, ev.Count, ev.At)
}
