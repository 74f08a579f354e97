// Package lifecycle holds the booking state machine and the session countdown
// shared by the server and the client SDK.
package lifecycle

import (
	"errors"
	"fmt"

	"lawdesk/models"
)

var (
	// ErrInvalidTransition is returned for any move the state machine does not allow.
	ErrInvalidTransition = errors.New("invalid booking transition")
	// ErrAlreadyActive is returned when an active session is started again.
	ErrAlreadyActive = errors.New("session already active")
)

var transitions = map[string][]string{
	models.StatusRequested: {models.StatusAccepted, models.StatusRejected, models.StatusEnded},
	models.StatusAccepted:  {models.StatusActive, models.StatusEnded},
	models.StatusActive:    {models.StatusEnded},
}

// IsTerminal reports whether no transition may leave status.
func IsTerminal(status string) bool {
	return status == models.StatusRejected || status == models.StatusEnded
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates from -> to.
func Transition(from, to string) error {
	if from == models.StatusActive && to == models.StatusActive {
		return ErrAlreadyActive
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Machine tracks the status of one booking.
type Machine struct {
	BookingID string
	status    string
}

// NewMachine starts a booking in the requested state.
func NewMachine(bookingID string) *Machine {
	return &Machine{BookingID: bookingID, status: models.StatusRequested}
}

// Status returns the current status.
func (m *Machine) Status() string { return m.status }

// Apply moves the machine to next when allowed.
func (m *Machine) Apply(next string) error {
	if err := Transition(m.status, next); err != nil {
		return err
	}
	m.status = next
	return nil
}

// Start moves an accepted booking to active. Accepting and starting in one call
// is allowed from requested, which is what a single session-started event means.
func (m *Machine) Start() error {
	if m.status == models.StatusRequested {
		if err := m.Apply(models.StatusAccepted); err != nil {
			return err
		}
	}
	return m.Apply(models.StatusActive)
}
