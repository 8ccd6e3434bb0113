package rudp

import (
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/net/ipv4"
)

// DefaultTimeout is the bounded-receive deadline used throughout the
// protocol: handshake retries, teardown retries, and per-burst ACK
// collection. Callers pass the timeout to each RecvBounded call (a
// Connection keeps it in its Timeout field, e.g. from YAML configuration);
// it is never carried on the wire.
const DefaultTimeout = 250 * time.Millisecond

// Endpoint is the Datagram Endpoint: it owns exactly one bound UDP socket
// and exposes the three primitives the rest of the protocol is built on
// (Send, Recv, RecvBounded). It is a thin wrapper over *net.UDPConn, adapted
// from the teacher's pkg/udp.Socket but backed by a real kernel socket
// instead of a software demultiplexer, since this protocol talks to the
// network, not to an in-process link layer.
type Endpoint struct {
	conn    *net.UDPConn
	pconn   *ipv4.PacketConn
	lastTTL int
}

// NewEndpoint wraps an already-bound *net.UDPConn. It also wraps the
// connection in an ipv4.PacketConn so callers can inspect inbound TTL and
// tune the outbound one; failure to enable control-message flags is
// ignored and is not fatal to the transfer.
func NewEndpoint(conn *net.UDPConn) *Endpoint {
	pconn := ipv4.NewPacketConn(conn)
	_ = pconn.SetControlMessage(ipv4.FlagTTL|ipv4.FlagInterface, true)
	return &Endpoint{conn: conn, pconn: pconn}
}

// LocalAddr returns the endpoint's bound local address.
func (e *Endpoint) LocalAddr() *net.UDPAddr {
	return e.conn.LocalAddr().(*net.UDPAddr)
}

// Close releases the underlying socket.
func (e *Endpoint) Close() error {
	return e.conn.Close()
}

// Send transmits exactly one segment to peer.
func (e *Endpoint) Send(seg Segment, peer *net.UDPAddr) error {
	buf := Encode(&seg)
	n, err := e.conn.WriteToUDP(buf, peer)
	if err != nil || n != len(buf) {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

// Recv blocks until a datagram arrives, decodes it, and verifies its
// checksum. The returned address is overwritten on every call and must be
// treated as the most recent source of traffic, not a stable remote
// identity.
func (e *Endpoint) Recv() (*net.UDPAddr, Segment, error) {
	if err := e.conn.SetReadDeadline(time.Time{}); err != nil {
		return nil, Segment{}, fmt.Errorf("%w: %v", ErrUnknownFailure, err)
	}
	return e.recv()
}

// RecvBounded behaves like Recv but returns ErrTimeout if nothing arrives
// within timeout. This is the Go equivalent of the original's select() on
// the socket descriptor with a timeval; SetReadDeadline is the idiomatic
// way to express a bounded wait on a net.Conn.
func (e *Endpoint) RecvBounded(timeout time.Duration) (*net.UDPAddr, Segment, error) {
	if err := e.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, Segment{}, fmt.Errorf("%w: %v", ErrUnknownFailure, err)
	}
	peer, seg, err := e.recv()
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, Segment{}, ErrTimeout
		}
	}
	return peer, seg, err
}

func (e *Endpoint) recv() (*net.UDPAddr, Segment, error) {
	buf := make([]byte, WireSize)
	n, cm, addr, err := e.pconn.ReadFrom(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, Segment{}, ErrTimeout
		}
		return nil, Segment{}, fmt.Errorf("%w: %v", ErrRecvFailed, err)
	}
	peer, ok := addr.(*net.UDPAddr)
	if !ok {
		return nil, Segment{}, fmt.Errorf("%w: unexpected source address type %T", ErrRecvFailed, addr)
	}
	e.lastTTL = 0
	if cm != nil {
		e.lastTTL = cm.TTL
	}
	if n != WireSize {
		return nil, Segment{}, fmt.Errorf("%w: got %d bytes, want %d", ErrRecvFailed, n, WireSize)
	}

	seg, err := Decode(buf)
	if err != nil {
		return nil, Segment{}, fmt.Errorf("%w: %v", ErrRecvFailed, err)
	}
	if !seg.Verify() {
		return peer, Segment{}, ErrChecksumFailed
	}
	return peer, seg, nil
}

// InboundTTL returns the TTL reported on the most recently received
// datagram, when the platform's control-message support made it available.
// ok is false if nothing has been received yet or the kernel did not report
// a TTL for the last read.
func (e *Endpoint) InboundTTL() (ttl int, ok bool) {
	return e.lastTTL, e.lastTTL != 0
}

// SetOutboundTTL sets the TTL used for subsequent sends. A zero or negative
// value leaves the kernel default in place.
func (e *Endpoint) SetOutboundTTL(ttl int) error {
	if ttl <= 0 {
		return nil
	}
	return e.pconn.SetTTL(ttl)
}
