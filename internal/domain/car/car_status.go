package car

import "fmt"

// Status is the fleet state of a car. Lifecycle operations are its only writers.
type Status string

const (
	StatusAvailable    Status = "available"
	StatusRented       Status = "rented"
	StatusReserved     Status = "reserved"
	StatusMaintenance  Status = "maintenance"
	StatusOutOfService Status = "out_of_service"
)

// IsValid returns true if the status is a recognized car status.
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusRented, StatusReserved, StatusMaintenance, StatusOutOfService:
		return true
	}
	return false
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid car status: %s", s)
	}
	return status, nil
}
