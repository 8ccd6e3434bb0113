package rudp

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := Build(111, 222, 333, 444, FlagSYNACK, []byte("round trip"))

	buf := Encode(&original)
	if len(buf) != WireSize {
		t.Fatalf("Encode produced %d bytes, want %d", len(buf), WireSize)
	}

	decoded, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != original {
		t.Fatalf("decoded segment does not match original:\n got  %+v\n want %+v", decoded, original)
	}
	if !decoded.Verify() {
		t.Fatalf("decoded segment failed Verify()")
	}
}

func TestDecodeRejectsWrongSize(t *testing.T) {
	if _, err := Decode(make([]byte, WireSize-1)); err == nil {
		t.Fatalf("expected an error decoding an undersized buffer")
	}
	if _, err := Decode(make([]byte, WireSize+1)); err == nil {
		t.Fatalf("expected an error decoding an oversized buffer")
	}
}

func TestEncodePreservesDataBytes(t *testing.T) {
	payload := bytes.Repeat([]byte{0x42}, SegmentDataSize)
	seg := Build(1, 2, 0, 0, 0, payload)
	buf := Encode(&seg)
	if !bytes.Equal(buf[headerSize:], payload) {
		t.Fatalf("encoded data region does not match payload")
	}
}
