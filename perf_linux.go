//go:build linux
// +build linux

// Package cachebench Linux perf_event based cache miss counting
package cachebench

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// llcMissCounter reads the PERF_COUNT_HW_CACHE_LL read-miss counter for
// the calling thread.
type llcMissCounter struct {
	fd int
}

// NewLLCMissCounter opens the hardware LLC read-miss event. Opening fails
// with EPERM or ENOENT on locked-down or unsupported systems; callers
// degrade to running without the counter.
func NewLLCMissCounter() (MissCounter, error) {
	attr := unix.PerfEventAttr{
		Type: unix.PERF_TYPE_HW_CACHE,
		Size: unix.PERF_ATTR_SIZE_VER5,
		Config: unix.PERF_COUNT_HW_CACHE_LL |
			unix.PERF_COUNT_HW_CACHE_OP_READ<<8 |
			unix.PERF_COUNT_HW_CACHE_RESULT_MISS<<16,
		Bits: unix.PerfBitDisabled | unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv,
	}
	fd, err := unix.PerfEventOpen(&attr, 0, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
	if err != nil {
		return nil, NewInvalidArgError("NewLLCMissCounter",
			"perf_event_open failed", err)
	}
	return &llcMissCounter{fd: fd}, nil
}

// Start resets and enables the counter.
func (c *llcMissCounter) Start() error {
	if err := unix.IoctlSetInt(c.fd, unix.PERF_EVENT_IOC_RESET, 0); err != nil {
		return err
	}
	return unix.IoctlSetInt(c.fd, unix.PERF_EVENT_IOC_ENABLE, 0)
}

// Stop disables the counter and returns the miss count.
func (c *llcMissCounter) Stop() (uint64, error) {
	if err := unix.IoctlSetInt(c.fd, unix.PERF_EVENT_IOC_DISABLE, 0); err != nil {
		return 0, err
	}
	var buf [8]byte
	if _, err := unix.Read(c.fd, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// Close releases the event descriptor.
func (c *llcMissCounter) Close() error {
	return unix.Close(c.fd)
}
