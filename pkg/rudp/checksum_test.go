package rudp

import "testing"

func TestChecksumIgnoresItsOwnField(t *testing.T) {
	seg := Build(1, 2, 3, 4, FlagACK, []byte("payload"))
	before := checksum(&seg)
	seg.Checksum = 0xDEAD
	after := checksum(&seg)
	if before != after {
		t.Fatalf("checksum changed when the checksum field changed: %d != %d", before, after)
	}
}

func TestChecksumSignExtendsDataBytes(t *testing.T) {
	var a, b Segment
	a.Data[0] = 0xFF // signed: -1
	b.Data[0] = 0x01 // signed: +1
	if checksum(&a) == checksum(&b) {
		t.Fatalf("checksum did not distinguish a sign-extended negative byte from a positive one")
	}
}

func TestChecksumDeterministic(t *testing.T) {
	seg := Build(10, 20, 30, 40, FlagSYN, []byte("abc"))
	c1 := checksum(&seg)
	c2 := checksum(&seg)
	if c1 != c2 {
		t.Fatalf("checksum is not deterministic: %d != %d", c1, c2)
	}
}
