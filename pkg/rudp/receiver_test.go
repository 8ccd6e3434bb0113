package rudp

import (
	"bytes"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestReceiver(t *testing.T, recvEp, peerEp *Endpoint, dst *bytes.Buffer) *Receiver {
	t.Helper()
	conn := &Connection{
		Endpoint:   recvEp,
		Peer:       peerEp.LocalAddr(),
		LocalPort:  uint16(recvEp.LocalAddr().Port),
		RemotePort: uint16(peerEp.LocalAddr().Port),
		Phase:      PhaseOpen,
	}
	return NewReceiver(conn, dst, zap.NewNop())
}

// TestFlushOnlyOnFullWindow confirms the receiver does not write anything
// to dst until every slot in the reassembly window has been filled.
func TestFlushOnlyOnFullWindow(t *testing.T) {
	recvEp := newLoopbackEndpoint(t)
	peerEp := newLoopbackEndpoint(t)
	var dst bytes.Buffer
	r := newTestReceiver(t, recvEp, peerEp, &dst)

	for i := 0; i < MaxWindowSize-1; i++ {
		seg := Build(uint16(peerEp.LocalAddr().Port), r.conn.LocalPort, uint32(i), 0, 0, []byte{byte(i)})
		if err := r.handleData(seg); err != nil {
			t.Fatalf("handleData(%d): %v", i, err)
		}
	}
	if dst.Len() != 0 {
		t.Fatalf("expected no flush before the window is full, wrote %d bytes", dst.Len())
	}

	last := Build(uint16(peerEp.LocalAddr().Port), r.conn.LocalPort, uint32(MaxWindowSize-1), 0, 0, []byte{0xFF})
	if err := r.handleData(last); err != nil {
		t.Fatalf("handleData(last): %v", err)
	}
	if dst.Len() != MaxWindowSize*SegmentDataSize {
		t.Fatalf("after filling the window, wrote %d bytes, want %d", dst.Len(), MaxWindowSize*SegmentDataSize)
	}
	if r.lastFlushedSeq != MaxWindowSize {
		t.Fatalf("lastFlushedSeq = %d, want %d", r.lastFlushedSeq, MaxWindowSize)
	}
}

// TestFinFlushTrimsOnlyFinalSegment confirms a FIN-triggered flush of a
// partial window trims trailing zero bytes from the last segment only.
func TestFinFlushTrimsOnlyFinalSegment(t *testing.T) {
	recvEp := newLoopbackEndpoint(t)
	peerEp := newLoopbackEndpoint(t)
	var dst bytes.Buffer
	r := newTestReceiver(t, recvEp, peerEp, &dst)

	middle := make([]byte, SegmentDataSize)
	middle[0] = 1 // its trailing zeros would be wrongly trimmed if it were treated as the final segment
	seg0 := Build(uint16(peerEp.LocalAddr().Port), r.conn.LocalPort, 0, 0, 0, middle)
	if err := r.handleData(seg0); err != nil {
		t.Fatalf("handleData(0): %v", err)
	}

	finPayload := []byte("tail")
	seg1 := Build(uint16(peerEp.LocalAddr().Port), r.conn.LocalPort, 1, 0, 0, finPayload)
	if err := r.handleData(seg1); err != nil {
		t.Fatalf("handleData(1): %v", err)
	}

	fin := Build(uint16(peerEp.LocalAddr().Port), r.conn.LocalPort, 2, 0, FlagFIN, nil)
	if err := r.handleFin(fin); err != nil {
		t.Fatalf("handleFin: %v", err)
	}

	want := append(append([]byte{}, middle...), finPayload...)
	if !bytes.Equal(dst.Bytes(), want) {
		t.Fatalf("flushed %v, want %v", dst.Bytes(), want)
	}

	// Drain the two data ACKs before the FIN-ACK.
	for i := 0; i < 2; i++ {
		if _, _, err := peerEp.RecvBounded(time.Second); err != nil {
			t.Fatalf("expected data ACK %d: %v", i, err)
		}
	}
	if _, seg, err := peerEp.RecvBounded(time.Second); err != nil {
		t.Fatalf("expected a FIN-ACK, got error: %v", err)
	} else if !seg.Flags.Has(FlagFINACK) {
		t.Fatalf("expected FIN+ACK flags, got %s", seg.Flags)
	}
}

// TestAckSentEvenForAlreadyFlushedSequence reproduces the original
// receiver's quirk: it only tests the window's upper edge before sending
// an ACK, so a duplicate segment behind last_flushed_seq still earns one.
func TestAckSentEvenForAlreadyFlushedSequence(t *testing.T) {
	recvEp := newLoopbackEndpoint(t)
	peerEp := newLoopbackEndpoint(t)
	var dst bytes.Buffer
	r := newTestReceiver(t, recvEp, peerEp, &dst)
	r.lastFlushedSeq = 50

	dup := Build(uint16(peerEp.LocalAddr().Port), r.conn.LocalPort, 10, 0, 0, []byte("old"))
	if err := r.handleData(dup); err != nil {
		t.Fatalf("handleData: %v", err)
	}

	_, seg, err := peerEp.RecvBounded(time.Second)
	if err != nil {
		t.Fatalf("expected an ACK for the stale duplicate, got error: %v", err)
	}
	if !seg.Flags.Has(FlagACK) {
		t.Fatalf("expected ACK flag, got %s", seg.Flags)
	}
}
