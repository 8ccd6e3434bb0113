// Package rudp implements a reliable, ordered, byte-accurate file transfer
// protocol on top of an unreliable UDP datagram channel: a fixed-layout
// segment format with a checksum, a three-phase connection lifecycle, a
// sliding-window sender with adaptive window sizing, and a receiver
// reassembly buffer with flush-on-full-window semantics.
package rudp

import "fmt"

// Phase represents the soft connection state tracked by a Connection.
type Phase int

const (
	// PhaseIdle is the state before any handshake segment has been seen
	// or sent.
	PhaseIdle Phase = iota

	// PhaseOpen is the state after a successful SYN/SYN-ACK exchange;
	// data segments may flow from sender to receiver.
	PhaseOpen

	// PhaseClosing is the state after a FIN has been sent (sender side)
	// while waiting for the matching FIN-ACK.
	PhaseClosing

	// PhaseClosed is the terminal state after teardown completes.
	PhaseClosed
)

// String returns the human-readable name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseOpen:
		return "OPEN"
	case PhaseClosing:
		return "CLOSING"
	case PhaseClosed:
		return "CLOSED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(p))
	}
}
