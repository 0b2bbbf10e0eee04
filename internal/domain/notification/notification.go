package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type classifies a customer notification.
type Type string

const (
	TypeCarAvailable     Type = "car_available"
	TypeBookingConfirmed Type = "booking_confirmed"
	TypeBookingCancelled Type = "booking_cancelled"
	TypeContractExpiring Type = "contract_expiring"
	TypePaymentReminder  Type = "payment_reminder"
	TypeGeneral          Type = "general"
)

// IsValid returns true if the notification type is recognized.
func (t Type) IsValid() bool {
	switch t {
	case TypeCarAvailable, TypeBookingConfirmed, TypeBookingCancelled,
		TypeContractExpiring, TypePaymentReminder, TypeGeneral:
		return true
	}
	return false
}

// Status is the read state of a notification.
type Status string

const (
	StatusUnread  Status = "unread"
	StatusRead    Status = "read"
	StatusDeleted Status = "deleted"
)

// Notification is a message shown to a customer about one of their rentals.
type Notification struct {
	id         uuid.UUID
	customerID uuid.UUID
	carID      *uuid.UUID
	title      string
	content    string
	notifType  Type
	status     Status
	createdAt  time.Time
	readAt     *time.Time
}

// NewNotification creates a new unread notification.
func NewNotification(customerID uuid.UUID, carID *uuid.UUID, notifType Type, title, content string, now time.Time) (*Notification, error) {
	if !notifType.IsValid() {
		return nil, fmt.Errorf("invalid notification type: %s", notifType)
	}
	if title == "" || len(title) > 200 {
		return nil, fmt.Errorf("notification title is required and must be at most 200 characters")
	}
	if len(content) > 1000 {
		return nil, fmt.Errorf("notification content must be at most 1000 characters")
	}

	return &Notification{
		id:         uuid.New(),
		customerID: customerID,
		carID:      carID,
		title:      title,
		content:    content,
		notifType:  notifType,
		status:     StatusUnread,
		createdAt:  now,
	}, nil
}

// Reconstruct rebuilds a Notification from persistence.
func Reconstruct(
	id, customerID uuid.UUID,
	carID *uuid.UUID,
	notifType Type,
	title, content string,
	status Status,
	createdAt time.Time,
	readAt *time.Time,
) *Notification {
	return &Notification{
		id:         id,
		customerID: customerID,
		carID:      carID,
		title:      title,
		content:    content,
		notifType:  notifType,
		status:     status,
		createdAt:  createdAt,
		readAt:     readAt,
	}
}

// Getters.
func (n *Notification) ID() uuid.UUID         { return n.id }
func (n *Notification) CustomerID() uuid.UUID { return n.customerID }
func (n *Notification) CarID() *uuid.UUID     { return n.carID }
func (n *Notification) Title() string         { return n.title }
func (n *Notification) Content() string       { return n.content }
func (n *Notification) Type() Type            { return n.notifType }
func (n *Notification) Status() Status        { return n.status }
func (n *Notification) CreatedAt() time.Time  { return n.createdAt }
func (n *Notification) ReadAt() *time.Time    { return n.readAt }

// MarkRead marks an unread notification as read. It reports whether anything changed.
func (n *Notification) MarkRead(now time.Time) bool {
	if n.status != StatusUnread {
		return false
	}
	n.status = StatusRead
	n.readAt = &now
	return true
}
