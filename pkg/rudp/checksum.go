package rudp

// checksum computes the segment checksum: the sum (modulo 2^32) of
// source_port, dest_port, seq_number, ack_number, head_len, flags, and each
// of the 512 data bytes interpreted as a signed byte sign-extended to the
// accumulator width, folded to 16 bits and complemented.
//
// The checksum field itself is never added to the sum, so this can be
// called both before the field is populated (in Build) and after (in
// Verify) without needing to zero it first.
func checksum(s *Segment) uint16 {
	var sum uint32
	sum += uint32(s.SourcePort)
	sum += uint32(s.DestPort)
	sum += s.SeqNumber
	sum += s.AckNumber
	sum += uint32(s.HeadLen)
	sum += uint32(s.Flags)

	for _, b := range s.Data {
		// Sign-extend each data byte before adding: the original C
		// implementation sums a signed char array, so a byte like 0xFF
		// contributes -1, not 255.
		sum += uint32(int32(int8(b)))
	}

	sum = (sum & 0xFFFF) + (sum >> 16)
	return ^uint16(sum)
}
