package cachebench

import (
	"math/rand"
	"testing"
	"unsafe"
)

const testArenaLen = 1 * Megabyte

// followChain walks the materialized chain from slot 0 and returns the
// slot indices visited until the walk returns to slot 0 or hits the null
// terminator.
func followChain(t *testing.T, a *Arena, maxSteps int) []uint64 {
	t.Helper()
	base := uint64(a.Base())
	var visited []uint64
	addr := a.Slots()[0]
	for steps := 0; steps < maxSteps; steps++ {
		if addr == 0 {
			return visited
		}
		index := (addr - base) / slotSize
		if index >= a.Len()/slotSize {
			t.Fatalf("chain left the arena: address %#x", addr)
		}
		visited = append(visited, index)
		if index == 0 {
			return visited
		}
		addr = *(*uint64)(unsafe.Pointer(uintptr(addr)))
	}
	t.Fatalf("chain did not close within %d steps", maxSteps)
	return nil
}

func TestChainCycleCoversAllSlots(t *testing.T) {
	arena, err := NewArena(testArenaLen)
	if err != nil {
		t.Fatalf("failed to allocate arena: %v", err)
	}
	defer arena.Close()

	tests := []struct {
		stride    uint64
		footprint uint64
	}{
		{8, 64},
		{16, 1024},
		{64, 4096},
		{128, 128 * Kilobyte},
		{4096, testArenaLen},
	}

	for _, tt := range tests {
		length, err := GenerateChain(arena, tt.stride, tt.footprint)
		if err != nil {
			t.Fatalf("GenerateChain(%d, %d): %v", tt.stride, tt.footprint, err)
		}

		wantLength := int(tt.footprint / tt.stride)
		if length != wantLength {
			t.Errorf("stride %d footprint %d: length = %d, want %d",
				tt.stride, tt.footprint, length, wantLength)
		}

		// The cycle must visit every stride-aligned slot exactly once
		// before returning to slot 0.
		visited := followChain(t, arena, wantLength+1)
		if len(visited) != wantLength {
			t.Fatalf("stride %d footprint %d: traversal visited %d slots, want %d",
				tt.stride, tt.footprint, len(visited), wantLength)
		}
		seen := make(map[uint64]bool)
		step := tt.stride / slotSize
		for _, index := range visited {
			if index%step != 0 {
				t.Errorf("visited slot %d is not stride-aligned", index)
			}
			if index*slotSize >= tt.footprint {
				t.Errorf("visited slot %d is outside the footprint", index)
			}
			if seen[index] {
				t.Errorf("slot %d visited twice", index)
			}
			seen[index] = true
		}
	}
}

func TestChainDegenerateStride(t *testing.T) {
	arena, err := NewArena(testArenaLen)
	if err != nil {
		t.Fatalf("failed to allocate arena: %v", err)
	}
	defer arena.Close()

	// stride at or beyond the footprint must produce a single
	// self-referencing slot, not an unbounded construction loop.
	for _, stride := range []uint64{1024, 2048, 64 * Kilobyte} {
		length, err := GenerateChain(arena, stride, 1024)
		if err != nil {
			t.Fatalf("GenerateChain(%d, 1024): %v", stride, err)
		}
		if length != 1 {
			t.Errorf("stride %d: length = %d, want 1", stride, length)
		}
		if got := arena.Slots()[0]; got != arena.SlotAddr(0) {
			t.Errorf("stride %d: slot 0 holds %#x, want self reference %#x",
				stride, got, arena.SlotAddr(0))
		}
	}
}

func TestChainTruncatesPartialSegment(t *testing.T) {
	arena, err := NewArena(testArenaLen)
	if err != nil {
		t.Fatalf("failed to allocate arena: %v", err)
	}
	defer arena.Close()

	// 80 bytes at stride 32 leaves a partial segment past slot 8; the
	// chain must stop there and close: 0 -> 4 -> 8 -> 0.
	length, err := GenerateChain(arena, 32, 80)
	if err != nil {
		t.Fatalf("GenerateChain: %v", err)
	}
	if length != 3 {
		t.Errorf("length = %d, want 3", length)
	}
	visited := followChain(t, arena, 4)
	want := []uint64{4, 8, 0}
	if len(visited) != len(want) {
		t.Fatalf("traversal visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("traversal visited %v, want %v", visited, want)
		}
	}
}

func TestChainRejectsInvalidParams(t *testing.T) {
	arena, err := NewArena(testArenaLen)
	if err != nil {
		t.Fatalf("failed to allocate arena: %v", err)
	}
	defer arena.Close()

	tests := []struct {
		name      string
		stride    uint64
		footprint uint64
	}{
		{"zero stride", 0, 1024},
		{"unaligned stride", 12, 1024},
		{"zero footprint", 64, 0},
		{"footprint beyond arena", 64, testArenaLen + 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := GenerateChain(arena, tt.stride, tt.footprint); !IsInvalidArgError(err) {
				t.Errorf("GenerateChain(%d, %d) = %v, want invalid argument error",
					tt.stride, tt.footprint, err)
			}
		})
	}
}

func TestRandomChainIsNullTerminated(t *testing.T) {
	arena, err := NewArena(testArenaLen)
	if err != nil {
		t.Fatalf("failed to allocate arena: %v", err)
	}
	defer arena.Close()

	rng := rand.New(rand.NewSource(42))
	length, err := GenerateRandomChain(arena, 64, 256*Kilobyte, 10000, rng)
	if err != nil {
		t.Fatalf("GenerateRandomChain: %v", err)
	}
	if length == 0 {
		t.Fatal("random chain is empty")
	}

	// Walking from slot 0 must reach the null terminator after exactly
	// the reported number of linked slots, all of them stride-aligned.
	visited := followChain(t, arena, length+2)
	if len(visited) != length {
		t.Errorf("traversal visited %d slots, want %d", len(visited), length)
	}
	seen := make(map[uint64]bool)
	for _, index := range visited {
		if index%(64/slotSize) != 0 {
			t.Errorf("visited slot %d is not stride-aligned", index)
		}
		if seen[index] {
			t.Errorf("slot %d visited twice", index)
		}
		seen[index] = true
	}
}

func TestRandomChainDegenerateFootprint(t *testing.T) {
	arena, err := NewArena(testArenaLen)
	if err != nil {
		t.Fatalf("failed to allocate arena: %v", err)
	}
	defer arena.Close()

	// A footprint too small for even one pair must terminate immediately
	// with an empty chain.
	rng := rand.New(rand.NewSource(1))
	length, err := GenerateRandomChain(arena, 1024, 1024, 1000, rng)
	if err != nil {
		t.Fatalf("GenerateRandomChain: %v", err)
	}
	if length != 0 {
		t.Errorf("length = %d, want 0", length)
	}
	if got := arena.Slots()[0]; got != 0 {
		t.Errorf("slot 0 holds %#x, want null terminator", got)
	}
}
