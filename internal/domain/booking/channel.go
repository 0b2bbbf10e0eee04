package booking

import (
	"fmt"

	"github.com/thuexe/service-rental/internal/domain/rental"
)

// Channel records how a booking was made.
type Channel string

const (
	// ChannelCounter bookings are made by staff and hold the car while pending.
	ChannelCounter Channel = "counter"
	// ChannelSelfService bookings are made by the customer and do not hold the car.
	ChannelSelfService Channel = "self_service"
)

// IsValid returns true if the channel is recognized.
func (c Channel) IsValid() bool {
	return c == ChannelCounter || c == ChannelSelfService
}

// DayCountPolicy returns the pricing policy used by the channel.
func (c Channel) DayCountPolicy() rental.DayCountPolicy {
	if c == ChannelSelfService {
		return rental.PolicyExclusive
	}
	return rental.PolicyInclusive
}

// ReservesCar reports whether a pending booking from this channel holds the car.
func (c Channel) ReservesCar() bool {
	return c == ChannelCounter
}

// ParseChannel converts a string to a Channel.
func ParseChannel(s string) (Channel, error) {
	ch := Channel(s)
	if !ch.IsValid() {
		return "", fmt.Errorf("invalid booking channel: %s", s)
	}
	return ch, nil
}
