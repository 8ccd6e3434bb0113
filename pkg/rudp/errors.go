package rudp

import "errors"

// Sentinel errors surfaced by the Datagram Endpoint, matching the five-kind
// taxonomy of the original protocol. Callers compare with errors.Is, since
// higher layers wrap these with %w as they propagate.
var (
	// ErrSendFailed means the transmit primitive returned failure. Fatal;
	// the transfer aborts.
	ErrSendFailed = errors.New("rudp: send failed")

	// ErrRecvFailed means the receive primitive returned a hard failure.
	// Fatal; the transfer aborts.
	ErrRecvFailed = errors.New("rudp: recv failed")

	// ErrUnknownFailure means the wait primitive returned an unclassified
	// error. Fatal; the transfer aborts.
	ErrUnknownFailure = errors.New("rudp: unknown failure waiting for datagram")

	// ErrChecksumFailed means a segment decoded but its checksum did not
	// match. The segment is dropped and the caller loops again.
	ErrChecksumFailed = errors.New("rudp: checksum mismatch")

	// ErrTimeout means a bounded receive expired with nothing arriving.
	// Not an error condition by itself: it ends the current ACK
	// collection on the sender, or triggers a handshake retry.
	ErrTimeout = errors.New("rudp: receive timed out")
)
