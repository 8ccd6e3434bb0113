package common

import "testing"

func TestBufferPool(t *testing.T) {
	pool := NewBufferPool(1024)

	buf := pool.Get()
	if len(buf) != 1024 {
		t.Errorf("expected buffer size 1024, got %d", len(buf))
	}

	for i := range buf {
		buf[i] = byte(i % 256)
	}
	pool.Put(buf)

	buf2 := pool.Get()
	if len(buf2) != 1024 {
		t.Errorf("expected buffer size 1024, got %d", len(buf2))
	}
	for i := range buf2 {
		if buf2[i] != 0 {
			t.Errorf("buffer not cleared at position %d: got %d", i, buf2[i])
			break
		}
	}
	pool.Put(buf2)
}

func TestSegmentBufferPool(t *testing.T) {
	buf := SegmentBufferPool.Get()
	if len(buf) != SegmentBufferSize {
		t.Fatalf("expected segment buffer size %d, got %d", SegmentBufferSize, len(buf))
	}
	SegmentBufferPool.Put(buf)
}
