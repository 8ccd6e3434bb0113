package rudp

import "fmt"

const (
	// SegmentDataSize is the fixed width of a segment's data region.
	SegmentDataSize = 512

	// headerSize is the on-wire offset of the data region: the width of
	// all seven header fields, including head_len itself: 2+2+4+4+1+1+2 =
	// 16 bytes.
	headerSize = 16

	// protocolHeadLen is the value stored in the head_len field itself:
	// the sum of the six header fields *other than* head_len
	// (source_port, dest_port, seq_number, ack_number, flags, checksum)
	// = 2+2+4+4+1+2 = 15. It excludes its own field, matching
	// create_tcp_segment in the original C implementation; it is one
	// less than headerSize, which additionally counts the head_len byte
	// for the purpose of locating the data region on the wire.
	protocolHeadLen = 15

	// WireSize is the total number of bytes transmitted per segment:
	// the fixed header plus the always-present data region.
	WireSize = headerSize + SegmentDataSize

	// MaxWindowSize is the largest number of unacknowledged segments the
	// sender may have in flight, and the fixed size of the receiver's
	// reassembly window.
	MaxWindowSize = 24
)

// Segment is the fixed-layout on-wire message. Every field is transmitted
// in host-native byte order; this protocol only interoperates with peers
// that share this implementation and endian class.
type Segment struct {
	SourcePort uint16
	DestPort   uint16
	SeqNumber  uint32
	AckNumber  uint32
	HeadLen    uint8
	Flags      Flags
	Checksum   uint16
	Data       [SegmentDataSize]byte
}

// Build constructs a segment with the given header fields and payload.
// The data region is zero-padded; payload longer than SegmentDataSize is a
// caller bug and panics, since every caller constructs payload slices from
// fixed 512-byte staging-buffer slots.
func Build(srcPort, dstPort uint16, seq, ack uint32, flags Flags, payload []byte) Segment {
	if len(payload) > SegmentDataSize {
		panic(fmt.Sprintf("rudp: payload of %d bytes exceeds segment data size %d", len(payload), SegmentDataSize))
	}

	var seg Segment
	seg.SourcePort = srcPort
	seg.DestPort = dstPort
	seg.SeqNumber = seq
	seg.AckNumber = ack
	seg.Flags = flags
	copy(seg.Data[:], payload)
	seg.HeadLen = protocolHeadLen
	seg.Checksum = checksum(&seg)
	return seg
}

// Verify recomputes the checksum and compares it to the stored field. It
// performs no other validation: ports, flags, and length are the caller's
// concern.
func (s *Segment) Verify() bool {
	return checksum(s) == s.Checksum
}

// String renders a segment for diagnostic logging.
func (s Segment) String() string {
	return fmt.Sprintf("seq=%d ack=%d flags=%s len=%d", s.SeqNumber, s.AckNumber, s.Flags, len(trimTrailingZeros(s.Data[:])))
}

// trimTrailingZeros returns data with any trailing zero bytes removed. Used
// only for diagnostics and for the receiver's final (FIN-triggered) flush.
func trimTrailingZeros(data []byte) []byte {
	end := len(data)
	for end > 0 && data[end-1] == 0 {
		end--
	}
	return data[:end]
}
