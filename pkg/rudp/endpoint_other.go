//go:build !linux

package rudp

// TuneBuffers is a no-op outside Linux: the socket buffer tuning in
// endpoint_linux.go relies on golang.org/x/sys/unix syscalls that only
// apply there. Kernel defaults are used instead.
func (e *Endpoint) TuneBuffers() error {
	return nil
}
