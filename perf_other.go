//go:build !linux
// +build !linux

package cachebench

// NewLLCMissCounter is only available on Linux.
func NewLLCMissCounter() (MissCounter, error) {
	return nil, NewInvalidArgError("NewLLCMissCounter",
		"hardware cache miss counting requires Linux perf events", nil)
}
