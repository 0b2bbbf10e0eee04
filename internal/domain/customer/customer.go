package customer

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thuexe/service-rental/internal/platform/domain"
)

// Status represents the standing of a customer with the rental desk.
type Status string

const (
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusBlacklisted Status = "blacklisted"
)

// IsValid returns true if the status is recognized.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusBlacklisted:
		return true
	}
	return false
}

// ParseStatus converts a string to a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid customer status: %s", s)
	}
	return status, nil
}

// Profile carries the editable customer fields. Empty fields mean "unchanged" on update.
type Profile struct {
	FullName       string
	Phone          string
	Email          string
	IdentityNumber string
	Address        string
	Occupation     string
	DateOfBirth    *time.Time
}

// Customer is the aggregate root for a renter profile.
type Customer struct {
	id             uuid.UUID
	userID         *uuid.UUID
	fullName       string
	phone          string
	email          string
	identityNumber string
	address        string
	occupation     string
	dateOfBirth    *time.Time
	status         Status
	version        int64
	createdAt      time.Time
	updatedAt      time.Time
}

// NewCustomer creates a new active customer. userID links the profile to a login and may be nil
// for walk-in customers registered at the counter.
func NewCustomer(userID *uuid.UUID, p Profile, now time.Time) (*Customer, error) {
	if strings.TrimSpace(p.FullName) == "" {
		return nil, domain.NewValidationError("full name is required")
	}
	if err := validateProfile(p, now); err != nil {
		return nil, err
	}

	return &Customer{
		id:             uuid.New(),
		userID:         userID,
		fullName:       strings.TrimSpace(p.FullName),
		phone:          strings.TrimSpace(p.Phone),
		email:          strings.TrimSpace(p.Email),
		identityNumber: strings.TrimSpace(p.IdentityNumber),
		address:        strings.TrimSpace(p.Address),
		occupation:     strings.TrimSpace(p.Occupation),
		dateOfBirth:    dateOnly(p.DateOfBirth),
		status:         StatusActive,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds a Customer from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	userID *uuid.UUID,
	fullName, phone, email, identityNumber, address, occupation string,
	dateOfBirth *time.Time,
	status Status,
	version int64,
	createdAt, updatedAt time.Time,
) *Customer {
	return &Customer{
		id:             id,
		userID:         userID,
		fullName:       fullName,
		phone:          phone,
		email:          email,
		identityNumber: identityNumber,
		address:        address,
		occupation:     occupation,
		dateOfBirth:    dateOfBirth,
		status:         status,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// --- Getters ---

func (c *Customer) ID() uuid.UUID           { return c.id }
func (c *Customer) UserID() *uuid.UUID      { return c.userID }
func (c *Customer) FullName() string        { return c.fullName }
func (c *Customer) Phone() string           { return c.phone }
func (c *Customer) Email() string           { return c.email }
func (c *Customer) IdentityNumber() string  { return c.identityNumber }
func (c *Customer) Address() string         { return c.address }
func (c *Customer) Occupation() string      { return c.occupation }
func (c *Customer) DateOfBirth() *time.Time { return c.dateOfBirth }
func (c *Customer) Status() Status          { return c.status }
func (c *Customer) Version() int64          { return c.version }
func (c *Customer) CreatedAt() time.Time    { return c.createdAt }
func (c *Customer) UpdatedAt() time.Time    { return c.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the profile belongs to the given login.
func (c *Customer) IsOwnedBy(userID uuid.UUID) bool {
	return c.userID != nil && *c.userID == userID
}

// MissingProfileFields lists the fields that still block booking.
func (c *Customer) MissingProfileFields(today time.Time) []string {
	var missing []string
	if c.fullName == "" {
		missing = append(missing, "full_name")
	}
	if c.phone == "" {
		missing = append(missing, "phone")
	}
	if c.email == "" {
		missing = append(missing, "email")
	}
	if c.identityNumber == "" {
		missing = append(missing, "identity_number")
	}
	if c.address == "" {
		missing = append(missing, "address")
	}
	if c.dateOfBirth == nil || c.dateOfBirth.IsZero() || !c.dateOfBirth.Before(today) {
		missing = append(missing, "date_of_birth")
	}
	return missing
}

// CanBook returns a validation error unless the customer is active with a complete profile.
func (c *Customer) CanBook(today time.Time) error {
	if c.status != StatusActive {
		return domain.NewValidationError(fmt.Sprintf("customer is %s and cannot book", c.status))
	}
	if missing := c.MissingProfileFields(today); len(missing) > 0 {
		return domain.NewValidationError("customer profile is incomplete: missing " + strings.Join(missing, ", "))
	}
	return nil
}

// UpdateProfile applies partial updates to the profile.
func (c *Customer) UpdateProfile(p Profile, now time.Time) error {
	if err := validateProfile(p, now); err != nil {
		return err
	}
	if v := strings.TrimSpace(p.FullName); v != "" {
		c.fullName = v
	}
	if v := strings.TrimSpace(p.Phone); v != "" {
		c.phone = v
	}
	if v := strings.TrimSpace(p.Email); v != "" {
		c.email = v
	}
	if v := strings.TrimSpace(p.IdentityNumber); v != "" {
		c.identityNumber = v
	}
	if v := strings.TrimSpace(p.Address); v != "" {
		c.address = v
	}
	if v := strings.TrimSpace(p.Occupation); v != "" {
		c.occupation = v
	}
	if p.DateOfBirth != nil {
		c.dateOfBirth = dateOnly(p.DateOfBirth)
	}
	c.version++
	c.updatedAt = now
	return nil
}

// LinkUser attaches a login to a profile created at the counter.
func (c *Customer) LinkUser(userID uuid.UUID, now time.Time) {
	c.userID = &userID
	c.version++
	c.updatedAt = now
}

func validateProfile(p Profile, now time.Time) error {
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return domain.NewValidationError("email is not valid")
		}
	}
	if p.DateOfBirth != nil && !p.DateOfBirth.Before(now) {
		return domain.NewValidationError("date of birth must be in the past")
	}
	return nil
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	y, m, d := t.Date()
	v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &v
}
