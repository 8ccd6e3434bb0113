package rudp

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/therealutkarshpriyadarshi/rudp/pkg/common"
)

// Receiver is the Receiver Engine: it drives the ingress loop of an open
// Connection, reassembles data segments into a fixed reassembly window,
// flushes completed windows to the destination writer, and answers the
// FIN that ends the transfer. It reproduces two quirks of the original
// receiver exactly, left as-is rather than fixed, since fixing them would
// change the wire behavior a peer built against the original depends on:
// a flush happens only once all MaxWindowSize slots are filled (never on
// a partial window, except at FIN), and a data segment still earns an ACK
// even when its sequence number falls behind the window's lower edge.
type Receiver struct {
	conn *Connection
	dst  io.Writer
	log  *zap.Logger

	lastFlushedSeq uint32
	slots          [MaxWindowSize][]byte
	filled         [MaxWindowSize]bool
}

// NewReceiver constructs a Receiver Engine over an already-open Connection,
// writing reassembled bytes to dst in order as windows are flushed.
func NewReceiver(conn *Connection, dst io.Writer, log *zap.Logger) *Receiver {
	return &Receiver{conn: conn, dst: dst, log: log}
}

// Run drives the ingress loop until a FIN is received and acknowledged, or
// a fatal error occurs. It returns nil once the transfer is complete.
func (r *Receiver) Run() error {
	for {
		peer, seg, err := r.conn.Endpoint.Recv()
		if err == ErrChecksumFailed {
			r.log.Debug("receiver: dropping corrupt segment")
			continue
		}
		if err != nil {
			return fmt.Errorf("receiver: %w", err)
		}
		r.conn.Peer = peer

		switch {
		case seg.Flags == FlagFIN:
			return r.handleFin(seg)
		case seg.Flags == FlagSYN:
			r.log.Debug("receiver: re-acknowledging duplicate SYN after handshake")
			if err := r.conn.resendSynAck(seg); err != nil {
				return fmt.Errorf("receiver: %w", err)
			}
		default:
			if err := r.handleData(seg); err != nil {
				return fmt.Errorf("receiver: %w", err)
			}
		}
	}
}

func (r *Receiver) handleData(seg Segment) error {
	idx := int64(seg.SeqNumber) - int64(r.lastFlushedSeq)

	if idx >= 0 && idx < MaxWindowSize {
		buf := common.SegmentBufferPool.Get()
		copy(buf, seg.Data[:])
		r.slots[idx] = buf
		r.filled[idx] = true
	}

	// The original only tests the upper bound here, so a segment whose
	// sequence number has already been flushed still gets acknowledged.
	if seg.SeqNumber < r.lastFlushedSeq+MaxWindowSize {
		if err := r.conn.AckData(seg.SourcePort, seg.SeqNumber); err != nil {
			return err
		}
	}

	full := true
	for _, f := range r.filled {
		if !f {
			full = false
			break
		}
	}
	if full {
		return r.flush(false)
	}
	return nil
}

func (r *Receiver) handleFin(seg Segment) error {
	if err := r.flush(true); err != nil {
		return err
	}
	if err := r.conn.AckFin(seg); err != nil {
		return fmt.Errorf("acknowledging FIN: %w", err)
	}
	r.log.Info("receiver: transfer complete")
	return nil
}

// flush writes the contiguous filled prefix of the reassembly window to
// dst and clears the window. finFlush is true only when triggered by FIN,
// in which case the last segment written has its trailing zero bytes
// trimmed before being written; a full-window flush writes every segment
// at its full 512 bytes, since the original has no way to know which
// segment (if any) was the file's last one until FIN arrives.
func (r *Receiver) flush(finFlush bool) error {
	count := 0
	for _, f := range r.filled {
		if !f {
			break
		}
		count++
	}

	for i := 0; i < count; i++ {
		data := r.slots[i]
		if finFlush && i == count-1 {
			data = trimTrailingZeros(data)
		}
		if _, err := r.dst.Write(data); err != nil {
			return fmt.Errorf("writing reassembled data: %w", err)
		}
	}

	r.log.Debug("receiver: flushed window", zap.Int("segments", count), zap.Bool("finFlush", finFlush))

	for i := range r.slots {
		if r.slots[i] != nil {
			common.SegmentBufferPool.Put(r.slots[i])
			r.slots[i] = nil
		}
		r.filled[i] = false
	}
	r.lastFlushedSeq += uint32(count)
	return nil
}
