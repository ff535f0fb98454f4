package cachebench

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Arena is the backing store for pointer chains: a page-aligned,
// zero-initialized byte buffer allocated once and re-linked in place across
// all probes. It is mapped outside the Go heap so the chain slots, which
// hold raw addresses, are never scanned by the garbage collector.
//
// The arena is exclusively owned by the single measurement goroutine; no
// locking is needed or present.
type Arena struct {
	buf      []byte
	pageSize int
}

// NewArena maps an anonymous, zero-filled region of the given length.
// Anonymous mappings are page-aligned by construction, which also satisfies
// the slot alignment the chain generator relies on.
func NewArena(length uint64) (*Arena, error) {
	if length == 0 || length%slotSize != 0 {
		return nil, NewInvalidArgError("NewArena",
			"arena length must be a positive multiple of the slot size", nil)
	}
	buf, err := unix.Mmap(-1, 0, int(length),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, NewAllocationError("NewArena",
			"failed to map backing arena", err)
	}
	return &Arena{
		buf:      buf,
		pageSize: unix.Getpagesize(),
	}, nil
}

// Len returns the arena length in bytes.
func (a *Arena) Len() uint64 {
	return uint64(len(a.buf))
}

// PageSize returns the page size the mapping is aligned to.
func (a *Arena) PageSize() int {
	return a.pageSize
}

// Slots views the arena as an array of 8-byte chain slots.
func (a *Arena) Slots() []uint64 {
	return unsafe.Slice((*uint64)(unsafe.Pointer(&a.buf[0])), len(a.buf)/slotSize)
}

// SlotAddr returns the virtual address of the i-th slot. Chain links store
// these addresses directly, so traversal is a bare dependent-load chain.
func (a *Arena) SlotAddr(i uint64) uint64 {
	return uint64(uintptr(unsafe.Pointer(&a.Slots()[i])))
}

// Base returns the address of slot 0, where every traversal starts.
func (a *Arena) Base() uintptr {
	return uintptr(unsafe.Pointer(&a.buf[0]))
}

// Zero clears the first n bytes. The randomized chain layout interprets a
// zero slot as "unvisited", so its footprint must be cleared before every
// regeneration.
func (a *Arena) Zero(n uint64) {
	if n > a.Len() {
		n = a.Len()
	}
	clear(a.buf[:n])
}

// Close unmaps the arena. The arena must not be used afterwards.
func (a *Arena) Close() error {
	if a.buf == nil {
		return nil
	}
	err := unix.Munmap(a.buf)
	a.buf = nil
	return err
}
