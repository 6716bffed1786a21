package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrUnknownKind rejects an unsupported template name.
var ErrUnknownKind = errors.New("notify: unknown message kind")

// ErrMissingPhone is returned when the customer has no usable number.
var ErrMissingPhone = errors.New("notify: customer phone is empty")

// Message is a composed WhatsApp message ready for delivery.
type Message struct {
	Kind  Kind   `json:"kind"`
	Phone string `json:"phone"`
	Text  string `json:"text"`
	Link  string `json:"link"`
}

// Queue accepts messages for asynchronous delivery.
type Queue interface {
	EnqueueWhatsApp(ctx context.Context, msg Message) error
}

// Dispatcher composes messages and forwards them to the delivery queue.
type Dispatcher struct {
	countryCode string
	queue       Queue
	logger      *slog.Logger
}

// NewDispatcher builds a Dispatcher. A nil queue makes Dispatch a logged no-op,
// which still lets callers hand out the click-to-chat link.
func NewDispatcher(countryCode string, queue Queue, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	return &Dispatcher{countryCode: countryCode, queue: queue, logger: logger}
}

// Compose renders the template for kind and attaches the normalised target.
func (d *Dispatcher) Compose(kind Kind, o Order) (Message, error) {
	var text string
	switch kind {
	case KindInvoice:
		text = InvoiceText(o)
	case KindPickupReminder:
		text = PickupReminderText(o)
	case KindStatusUpdate:
		text = StatusUpdateText(o)
	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	phone := NormalizePhone(o.CustomerPhone, d.countryCode)
	if phone == d.countryCode {
		return Message{}, ErrMissingPhone
	}
	return Message{Kind: kind, Phone: phone, Text: text, Link: ChatLink(phone, text)}, nil
}

// Dispatch enqueues msg and reports whether it was queued.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) (bool, error) {
	if d.queue == nil {
		d.logger.Info("whatsapp queue disabled, link only", slog.String("kind", string(msg.Kind)), slog.String("phone", msg.Phone))
		return false, nil
	}
	if err := d.queue.EnqueueWhatsApp(ctx, msg); err != nil {
		return false, fmt.Errorf("enqueue whatsapp: %w", err)
	}
	return true, nil
}
