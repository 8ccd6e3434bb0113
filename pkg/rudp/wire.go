package rudp

import (
	"encoding/binary"
	"fmt"
)

// Encode serializes a segment to its fixed WireSize on-wire form, adapted
// from the teacher's common.PacketBuffer cursor but writing scalar fields in
// host-native order (encoding/binary.NativeEndian) rather than network byte
// order: this protocol's checksum and layout are defined over whatever byte
// order the host uses, mirroring a C struct copied directly onto the wire.
func Encode(s *Segment) []byte {
	buf := make([]byte, WireSize)
	binary.NativeEndian.PutUint16(buf[0:2], s.SourcePort)
	binary.NativeEndian.PutUint16(buf[2:4], s.DestPort)
	binary.NativeEndian.PutUint32(buf[4:8], s.SeqNumber)
	binary.NativeEndian.PutUint32(buf[8:12], s.AckNumber)
	buf[12] = s.HeadLen
	buf[13] = uint8(s.Flags)
	binary.NativeEndian.PutUint16(buf[14:16], s.Checksum)
	copy(buf[headerSize:], s.Data[:])
	return buf
}

// Decode parses a segment from its on-wire form. It performs no checksum
// validation; call (*Segment).Verify separately.
func Decode(buf []byte) (Segment, error) {
	if len(buf) != WireSize {
		return Segment{}, fmt.Errorf("rudp: segment has %d bytes, want %d", len(buf), WireSize)
	}

	var s Segment
	s.SourcePort = binary.NativeEndian.Uint16(buf[0:2])
	s.DestPort = binary.NativeEndian.Uint16(buf[2:4])
	s.SeqNumber = binary.NativeEndian.Uint32(buf[4:8])
	s.AckNumber = binary.NativeEndian.Uint32(buf[8:12])
	s.HeadLen = buf[12]
	s.Flags = Flags(buf[13])
	s.Checksum = binary.NativeEndian.Uint16(buf[14:16])
	copy(s.Data[:], buf[headerSize:])
	return s, nil
}
