// Package events fans domain events out to live dashboards and the broker.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	TypeBillCreated     = "bill.created"
	TypePaymentRecorded = "bill.payment_recorded"
	TypeBillCancelled   = "bill.cancelled"
	TypeFormSaved       = "form.saved"
)

// Event is a change worth telling other systems about
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	DoctorID   int64       `json:"doctor_id,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// New builds an event with a fresh id. key identifies the aggregate, such
// as a bill or form id.
func New(eventType, key string, doctorID int64, at time.Time, payload interface{}) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		Key:        key,
		DoctorID:   doctorID,
		OccurredAt: at,
		Payload:    payload,
	}
}

// Publisher delivers events. Callers treat delivery as best effort.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards events
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi publishes to every publisher and joins their errors
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
