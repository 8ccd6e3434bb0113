//go:build linux

package rudp

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// socketBufferSize is large enough to hold a full sliding window's worth of
// segments without the kernel dropping datagrams under a burst, plus
// headroom: four times MaxWindowSize segments at WireSize bytes each.
const socketBufferSize = MaxWindowSize * WireSize * 4

// TuneBuffers raises the kernel receive and send buffer sizes on the
// endpoint's underlying socket so that a full burst can be queued without
// drops between one Recv call and the next. It is a Linux-only best effort:
// callers log and continue on error rather than treat it as fatal.
func (e *Endpoint) TuneBuffers() error {
	rawConn, err := e.conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("rudp: obtaining raw conn: %w", err)
	}

	var sockErr error
	err = rawConn.Control(func(fd uintptr) {
		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, socketBufferSize); err != nil {
			sockErr = fmt.Errorf("setting SO_RCVBUF: %w", err)
			return
		}
		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, socketBufferSize); err != nil {
			sockErr = fmt.Errorf("setting SO_SNDBUF: %w", err)
			return
		}
	})
	if err != nil {
		return fmt.Errorf("rudp: controlling raw conn: %w", err)
	}
	return sockErr
}
