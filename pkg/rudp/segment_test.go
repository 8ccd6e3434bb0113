package rudp

import (
	"bytes"
	"testing"
)

func TestBuildAndVerify(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		flags   Flags
	}{
		{name: "empty data segment", payload: nil, flags: 0},
		{name: "SYN segment", payload: nil, flags: FlagSYN},
		{name: "full payload", payload: bytes.Repeat([]byte{0xAB}, SegmentDataSize), flags: 0},
		{name: "payload with negative bytes", payload: []byte{0xFF, 0x80, 0x01, 0x7F}, flags: FlagACK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := Build(1234, 5678, 10, 20, tt.flags, tt.payload)
			if !seg.Verify() {
				t.Fatalf("newly built segment failed Verify()")
			}
			if seg.HeadLen != protocolHeadLen {
				t.Errorf("HeadLen = %d, want %d", seg.HeadLen, protocolHeadLen)
			}
			if !bytes.Equal(seg.Data[:len(tt.payload)], tt.payload) {
				t.Errorf("payload mismatch")
			}
		})
	}
}

func TestVerifyDetectsCorruption(t *testing.T) {
	seg := Build(1, 2, 3, 4, FlagACK, []byte("hello"))
	seg.Data[0] ^= 0xFF
	if seg.Verify() {
		t.Fatalf("Verify() returned true for a corrupted segment")
	}
}

func TestBuildPanicsOnOversizedPayload(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Build to panic on an oversized payload")
		}
	}()
	Build(1, 2, 0, 0, 0, make([]byte, SegmentDataSize+1))
}

func TestTrimTrailingZeros(t *testing.T) {
	tests := []struct {
		in   []byte
		want []byte
	}{
		{in: []byte{1, 2, 3, 0, 0}, want: []byte{1, 2, 3}},
		{in: []byte{0, 0, 0}, want: []byte{}},
		{in: []byte{1, 2, 3}, want: []byte{1, 2, 3}},
		{in: []byte{}, want: []byte{}},
	}
	for _, tt := range tests {
		got := trimTrailingZeros(tt.in)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("trimTrailingZeros(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
