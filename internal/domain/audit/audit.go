package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action names recorded in the audit log.
const (
	ActionCreateCar            = "car.create"
	ActionCreateCustomer       = "customer.create"
	ActionUpdateCustomer       = "customer.update"
	ActionCreateBooking        = "booking.create"
	ActionConfirmBooking       = "booking.confirm"
	ActionCancelBooking        = "booking.cancel"
	ActionExpireBooking        = "booking.expire"
	ActionDeleteBooking        = "booking.delete"
	ActionCreateContract       = "contract.create"
	ActionSignContract         = "contract.sign"
	ActionCompleteContract     = "contract.complete"
	ActionCancelContract       = "contract.cancel"
	ActionExpireContract       = "contract.expire"
	ActionDeleteContract       = "contract.delete"
	ActionRecordDepositPayment = "invoice.deposit_paid"
	ActionReadNotification     = "notification.read"
)

// Entry is one audit log line.
type Entry struct {
	ID          uuid.UUID
	Action      string
	Description string
	ActorID     *uuid.UUID
	ActorRole   string
	IPAddress   string
	Timestamp   time.Time
}

// NewEntry creates an entry stamped with now.
func NewEntry(action, description string, actorID *uuid.UUID, actorRole, ip string, now time.Time) *Entry {
	return &Entry{
		ID:          uuid.New(),
		Action:      action,
		Description: description,
		ActorID:     actorID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		Timestamp:   now,
	}
}

// Repository appends and pages through audit entries.
type Repository interface {
	Save(ctx context.Context, e *Entry) error
	List(ctx context.Context, page, limit int) ([]*Entry, int64, error)
}
