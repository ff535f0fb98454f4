package cachebench

import (
	"math/rand"
)

// Chain generation materializes a pointer chain in place inside the arena.
// Each 8-byte slot holds the virtual address of the next slot to visit, so
// a traversal is a chain of dependent loads the CPU cannot reorder or
// prefetch across.

// GenerateChain overwrites the first footprint bytes of the arena with a
// strided cycle: starting at slot 0, every stride-aligned slot within the
// footprint is visited exactly once in ascending order before the chain
// closes back to slot 0.
//
// A footprint that is not a multiple of the stride truncates the last
// partial segment. A stride at or beyond the footprint degenerates to a
// single self-referencing slot. The construction loop is bounded by
// footprint/stride iterations in every case.
//
// Returns the cycle length in links.
func GenerateChain(a *Arena, stride, footprint uint64) (int, error) {
	if err := checkChainParams(a, stride, footprint); err != nil {
		return 0, err
	}
	slots := a.Slots()
	nSlots := footprint / slotSize
	step := stride / slotSize

	prev := uint64(0)
	length := 1
	for i := step; i < nSlots; i += step {
		slots[prev] = a.SlotAddr(i)
		prev = i
		length++
	}
	slots[prev] = a.SlotAddr(0)
	return length, nil
}

// GenerateRandomChain overwrites the first footprint bytes of the arena
// with a null-terminated chain over randomly chosen slot pairs. Each
// accepted step picks a random double-stride-aligned base slot and appends
// base and base+stride to the chain, so the traversal mixes random jumps
// with one-stride neighbor accesses. A zero slot marks "unvisited"; pairs
// that were already linked, or that would cross the footprint, are skipped.
// Construction stops after budget attempts and the tail slot is set to the
// null terminator.
//
// Random acceptance means the realized chain is usually shorter than the
// budget; the sampler normalizes elapsed time by the length it actually
// walks. Returns the number of linked slots.
func GenerateRandomChain(a *Arena, stride, footprint uint64, budget int, rng *rand.Rand) (int, error) {
	if err := checkChainParams(a, stride, footprint); err != nil {
		return 0, err
	}
	a.Zero(footprint)

	slots := a.Slots()
	nSlots := footprint / slotSize
	step := stride / slotSize
	pairStep := 2 * step

	// The tail slot must read as visited until the next pair replaces it.
	const tailMark = ^uint64(0)

	slots[0] = tailMark
	prev := uint64(0)
	length := 0
	if nBases := nSlots / pairStep; nBases > 0 {
		for i := 0; i < budget; i++ {
			base := pairStep * uint64(rng.Int63n(int64(nBases)))
			if base == 0 || base+step >= nSlots {
				continue
			}
			if slots[base] != 0 || slots[base+step] != 0 {
				continue
			}
			slots[prev] = a.SlotAddr(base)
			slots[base] = a.SlotAddr(base + step)
			slots[base+step] = tailMark
			prev = base + step
			length += 2
		}
	}
	slots[prev] = 0
	return length, nil
}

func checkChainParams(a *Arena, stride, footprint uint64) error {
	if stride == 0 || stride%slotSize != 0 {
		return NewInvalidArgError("GenerateChain",
			"stride must be a positive multiple of the slot size", nil)
	}
	if footprint == 0 || footprint > a.Len() {
		return NewInvalidArgError("GenerateChain",
			"footprint must be positive and fit the arena", nil)
	}
	return nil
}
