package rudp

import (
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
)

// DefaultTeardownRetries is the number of FIN transmissions the sender
// attempts before giving up on a FIN-ACK and declaring the transfer
// complete anyway: teardown failure is never reported as a transfer
// failure, since by the time FIN is sent the file itself has already been
// fully acknowledged.
const DefaultTeardownRetries = 10

// Connection is the Connection Manager: it carries the soft state shared by
// the setup and teardown phases (the peer address, the negotiated ports,
// and the current Phase) and drives the SYN/SYN-ACK and FIN/FIN-ACK
// exchanges. It does not participate in data transfer; that is the Sender
// and Receiver Engines' job, operating on its Endpoint and Peer once Phase
// is PhaseOpen.
type Connection struct {
	Endpoint *Endpoint
	Peer     *net.UDPAddr

	LocalPort  uint16
	RemotePort uint16

	Phase Phase

	Timeout         time.Duration
	TeardownRetries int
	MaxWindowSize   int

	log *zap.Logger
}

// DialSetup performs the active side of the handshake: send SYN, wait for
// a segment whose flags are exactly SYN-ACK (its ack number is not
// checked), retry indefinitely. There is
// no retry cap here, matching the original sender: a receiver that never
// appears simply means the sender waits forever, since no other failure
// mode is defined for this phase.
func DialSetup(ep *Endpoint, peer *net.UDPAddr, localPort, remotePort uint16, timeout time.Duration, log *zap.Logger) (*Connection, error) {
	c := &Connection{
		Endpoint:        ep,
		Peer:            peer,
		LocalPort:       localPort,
		RemotePort:      remotePort,
		Phase:           PhaseIdle,
		Timeout:         timeout,
		TeardownRetries: DefaultTeardownRetries,
		MaxWindowSize:   MaxWindowSize,
		log:             log,
	}

	const initialSeq = 0
	syn := Build(localPort, remotePort, initialSeq, 0, FlagSYN, nil)

	for attempt := 1; ; attempt++ {
		c.log.Debug("setup: sending SYN", zap.Int("attempt", attempt))
		if err := c.Endpoint.Send(syn, peer); err != nil {
			return nil, fmt.Errorf("connection setup: %w", err)
		}

		_, seg, err := c.Endpoint.RecvBounded(timeout)
		switch {
		case err == nil:
			if seg.Flags == FlagSYNACK {
				c.Phase = PhaseOpen
				c.log.Info("setup: connection established", zap.Int("attempts", attempt))
				return c, nil
			}
			c.log.Debug("setup: unexpected segment, retrying", zap.Stringer("flags", seg.Flags))
		case err == ErrTimeout || err == ErrChecksumFailed:
			c.log.Debug("setup: no usable reply, retrying", zap.Error(err))
		default:
			return nil, fmt.Errorf("connection setup: %w", err)
		}
	}
}

// AcceptSetup performs the passive side of the handshake: block for a SYN,
// reply with SYN-ACK, and open the connection. The wait is unbounded since
// a receiver has nothing better to do than wait for its first sender.
func AcceptSetup(ep *Endpoint, localPort uint16, log *zap.Logger, timeout time.Duration) (*Connection, error) {
	for {
		peer, seg, err := ep.Recv()
		if err == ErrChecksumFailed {
			log.Debug("setup: dropping corrupt segment while waiting for SYN")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("connection setup: %w", err)
		}
		if seg.Flags != FlagSYN {
			log.Debug("setup: dropping non-SYN segment while waiting for SYN", zap.Stringer("flags", seg.Flags))
			continue
		}

		c := &Connection{
			Endpoint:        ep,
			Peer:            peer,
			LocalPort:       localPort,
			RemotePort:      seg.SourcePort,
			Phase:           PhaseOpen,
			Timeout:         timeout,
			TeardownRetries: DefaultTeardownRetries,
			MaxWindowSize:   MaxWindowSize,
			log:             log,
		}

		if err := c.resendSynAck(seg); err != nil {
			return nil, fmt.Errorf("connection setup: %w", err)
		}
		log.Info("setup: connection accepted", zap.Stringer("peer", peer))
		return c, nil
	}
}

// resendSynAck replies to a SYN with a SYN-ACK. Also used to answer a
// duplicate SYN arriving after the connection is already open: the
// original protocol treats a repeated SYN as idempotent rather than an
// error.
func (c *Connection) resendSynAck(syn Segment) error {
	synAck := Build(c.LocalPort, syn.SourcePort, 0, syn.SeqNumber+1, FlagSYNACK, nil)
	return c.Endpoint.Send(synAck, c.Peer)
}

// TeardownSender sends FIN carrying lastSeq and waits for a segment whose
// flags are exactly FIN-ACK (its ack number is not checked), sending FIN
// at most TeardownRetries times. Exhausting the retry
// budget is not reported as an error: the file has already been
// transferred and acknowledged by the time teardown begins, so a missing
// FIN-ACK only means the peer's own close already happened or its final
// ACK was lost.
func (c *Connection) TeardownSender(lastSeq uint32) error {
	fin := Build(c.LocalPort, c.RemotePort, lastSeq, 0, FlagFIN, nil)
	c.Phase = PhaseClosing

	for attempt := 1; attempt <= c.TeardownRetries; attempt++ {
		c.log.Debug("teardown: sending FIN", zap.Int("attempt", attempt))
		if err := c.Endpoint.Send(fin, c.Peer); err != nil {
			return fmt.Errorf("connection teardown: %w", err)
		}

		_, seg, err := c.Endpoint.RecvBounded(c.Timeout)
		switch {
		case err == nil && seg.Flags == FlagFINACK:
			c.Phase = PhaseClosed
			c.log.Info("teardown: peer acknowledged close", zap.Int("attempts", attempt))
			return nil
		case err == nil:
			c.log.Debug("teardown: unexpected segment, retrying", zap.Stringer("flags", seg.Flags))
		case err == ErrTimeout || err == ErrChecksumFailed:
			c.log.Debug("teardown: no usable reply, retrying", zap.Error(err))
		default:
			return fmt.Errorf("connection teardown: %w", err)
		}
	}

	c.log.Info("teardown: giving up on FIN-ACK after exhausting retries, closing anyway")
	c.Phase = PhaseClosed
	return nil
}

// AckData sends an ACK for a data segment. Like AckFin, both the source
// and destination port fields are set to the sender's own port rather than
// to localPort/RemotePort: this reproduces the original receiver's
// addressing of every ACK segment by ntohs(client_addr->sin_port) on both
// fields.
func (c *Connection) AckData(senderPort uint16, ackNum uint32) error {
	ack := Build(senderPort, senderPort, 0, ackNum, FlagACK, nil)
	return c.Endpoint.Send(ack, c.Peer)
}

// AckFin replies to a received FIN with a FIN-ACK. The source and
// destination ports are both set to the peer's own port rather than to
// localPort/peer's port as every other segment in this protocol does: this
// reproduces a quirk of the original receiver, which addresses every ACK
// it sends using ntohs(client_addr->sin_port) for both fields.
func (c *Connection) AckFin(seg Segment) error {
	finAck := Build(seg.SourcePort, seg.SourcePort, 0, seg.SeqNumber, FlagFINACK, nil)
	c.Phase = PhaseClosed
	return c.Endpoint.Send(finAck, c.Peer)
}
