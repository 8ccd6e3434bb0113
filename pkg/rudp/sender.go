package rudp

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// maxStagingSegments bounds how much of the source file is staged in
// memory at once: 1024 segments of 512 bytes is 512KiB, large enough to
// keep the sliding window fed across many bursts without re-reading the
// file constantly, small enough to transfer gigabyte-scale files without
// loading them whole.
const maxStagingSegments = 1024

// Sender is the Sender Engine: it reads the source file in staging-sized
// chunks, slides a go-back-N window across each chunk's segments, and
// advances the window size additively on a fully-acked burst or halves it
// on any gap, exactly as the original's AIMD heuristic does.
type Sender struct {
	conn *Connection
	win  *window
	log  *zap.Logger
	bar  *progressbar.ProgressBar
}

// NewSender constructs a Sender Engine over an already-open Connection.
// bar may be nil, in which case progress is not reported.
func NewSender(conn *Connection, log *zap.Logger, bar *progressbar.ProgressBar) *Sender {
	return &Sender{conn: conn, win: newWindow(conn.MaxWindowSize), log: log, bar: bar}
}

// Send reads exactly totalBytes from r, transfers them, and tears down the
// connection. The FIN carries the sequence number that follows the final
// data segment's, which equals the number of data segments sent.
func (s *Sender) Send(r io.Reader, totalBytes int64) error {
	staging := make([]byte, maxStagingSegments*SegmentDataSize)
	var seqBase uint32

	for totalBytes > 0 {
		chunkSize := int64(len(staging))
		if totalBytes < chunkSize {
			chunkSize = totalBytes
		}

		n, err := io.ReadFull(r, staging[:chunkSize])
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return fmt.Errorf("sender: reading source: %w", err)
		}

		numSegs := uint32((n + SegmentDataSize - 1) / SegmentDataSize)
		if err := s.sendChunk(staging[:n], seqBase, numSegs); err != nil {
			return fmt.Errorf("sender: %w", err)
		}

		seqBase += numSegs
		totalBytes -= int64(n)
	}

	if s.bar != nil {
		_ = s.bar.Finish()
	}
	return s.conn.TeardownSender(seqBase)
}

// sendChunk slides the window across one staging buffer's worth of
// segments, numbered seqBase..seqBase+numSegs-1, until every segment in it
// has been acknowledged.
func (s *Sender) sendChunk(chunk []byte, seqBase, numSegs uint32) error {
	var base uint32
	for base < numSegs {
		windowAtStart := s.win.Size()
		next, sent, err := s.burst(chunk, seqBase, base, numSegs)
		if err != nil {
			return err
		}

		acked := int(next - base)
		s.win.OnBurst(windowAtStart, acked)
		s.log.Debug("sender: burst complete",
			zap.Int("sent", sent), zap.Int("acked", acked), zap.Int("window", s.win.Size()))

		if s.bar != nil {
			for i := base; i < next; i++ {
				_ = s.bar.Add(len(segmentPayload(chunk, i)))
			}
		}

		base = next
	}
	return nil
}

// burst sends up to the current window size worth of segments starting at
// local offset base within chunk, then collects in-range ACKs until either
// n of them have arrived or the bounded receive times out. Returning as
// soon as n ACKs are in means a lossless burst never pays the timeout; the
// timeout only fires the loss path. It returns the new local base: base
// plus the length of the longest contiguous run of acked segments starting
// at base,
// capped at what was actually sent this round, matching the original's
// go-back-N retransmission of anything beyond the acked prefix on the next
// burst.
func (s *Sender) burst(chunk []byte, seqBase, base, numSegs uint32) (next uint32, sent int, err error) {
	n := uint32(s.win.Size())
	if remaining := numSegs - base; n > remaining {
		n = remaining
	}

	for i := uint32(0); i < n; i++ {
		localSeq := base + i
		payload := segmentPayload(chunk, localSeq)
		seg := Build(s.conn.LocalPort, s.conn.RemotePort, seqBase+localSeq, 0, 0, payload)
		if err := s.conn.Endpoint.Send(seg, s.conn.Peer); err != nil {
			return base, int(n), err
		}
	}

	acked := make(map[uint32]bool, n)
	inRange := uint32(0)
	finish := func() (uint32, int, error) {
		next = base
		for acked[seqBase+next] {
			next++
		}
		if max := base + n; next > max {
			next = max
		}
		return next, int(n), nil
	}

	for {
		_, seg, err := s.conn.Endpoint.RecvBounded(s.conn.Timeout)
		switch {
		case err == ErrTimeout:
			return finish()
		case err == ErrChecksumFailed:
			continue
		case err != nil:
			return base, int(n), err
		}
		if seg.Flags.Has(FlagACK) && seg.AckNumber >= seqBase+base && seg.AckNumber < seqBase+base+n {
			if !acked[seg.AckNumber] {
				acked[seg.AckNumber] = true
				inRange++
				if inRange >= n {
					return finish()
				}
			}
		}
	}
}

// segmentPayload returns the local bytes for segment number localSeq
// within chunk, which may be shorter than SegmentDataSize for the final
// segment; Build zero-pads it to the full data region.
func segmentPayload(chunk []byte, localSeq uint32) []byte {
	start := int(localSeq) * SegmentDataSize
	end := start + SegmentDataSize
	if end > len(chunk) {
		end = len(chunk)
	}
	return chunk[start:end]
}
