package mcp

import (
	"fmt"
	"time"
)

// HealthState is the position of a server slot in the probe state machine:
// Unchecked -> Checking -> {Healthy | Timeout | Error}. A new probe moves a
// terminal slot back to Checking.
type HealthState int

const (
	StateUnchecked HealthState = iota
	StateChecking
	StateHealthy
	StateTimeout
	StateError
)

// String returns a lower-case name for the state.
func (s HealthState) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateHealthy:
		return "healthy"
	case StateTimeout:
		return "timeout"
	case StateError:
		return "error"
	default:
		return "unchecked"
	}
}

// HealthStatus is a slot's probe state plus the data of its variant.
type HealthStatus struct {
	State HealthState

	// Healthy
	ServerName    string
	ServerVersion string

	// Error
	Message string
}

// Unchecked is the initial status of every discovered server.
func Unchecked() HealthStatus { return HealthStatus{State: StateUnchecked} }

// Checking marks a probe in flight.
func Checking() HealthStatus { return HealthStatus{State: StateChecking} }

// Healthy records a successful handshake.
func Healthy(name, version string) HealthStatus {
	return HealthStatus{State: StateHealthy, ServerName: name, ServerVersion: version}
}

// TimedOut records a probe that hit its deadline.
func TimedOut() HealthStatus { return HealthStatus{State: StateTimeout} }

// Failed records a probe that resolved to an error.
func Failed(msg string) HealthStatus { return HealthStatus{State: StateError, Message: msg} }

// Terminal reports whether the status is a probe outcome.
func (h HealthStatus) Terminal() bool {
	return h.State == StateHealthy || h.State == StateTimeout || h.State == StateError
}

// String renders the status for humans.
func (h HealthStatus) String() string {
	switch h.State {
	case StateHealthy:
		return fmt.Sprintf("healthy (%s %s)", h.ServerName, h.ServerVersion)
	case StateError:
		return "error: " + h.Message
	default:
		return h.State.String()
	}
}

// HealthResult is a probe's answer addressed to a slot in a DiscoveryResult.
type HealthResult struct {
	Index     int
	Key       Key
	Status    HealthStatus
	CheckedAt time.Time
}
