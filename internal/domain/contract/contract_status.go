package contract

import "fmt"

// Status represents the current state of a rental contract.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// validTransitions defines the contract state machine. Signing an active contract
// re-affirms it, hence active → active.
var validTransitions = map[Status][]Status{
	StatusDraft:     {StatusActive, StatusCancelled, StatusExpired},
	StatusActive:    {StatusActive, StatusCompleted, StatusCancelled, StatusExpired},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusExpired:   {},
}

// IsValid returns true if the status is a recognized contract status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid contract status: %s", s)
	}
	return status, nil
}
