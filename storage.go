package stuffer

import (
	"math"
)

// minGrowth is the smallest amount by which growable storage is extended.
const minGrowth = 1024

// maxStorage bounds storage by both 32-bit cursors and the platform int.
const maxStorage = min(math.MaxUint32, math.MaxInt)

// storage is either owned heap memory or a read-only file mapping.
// release must be safe to call more than once; only the first successful call frees memory.
type storage interface {
	bytes() []byte
	writable() bool
	// grow extends storage to hold at least size bytes.
	grow(size uint32) error
	release() error
}

type heap struct {
	data     []byte
	growable bool
}

func (h *heap) bytes() []byte {
	return h.data
}

func (h *heap) writable() bool {
	return true
}

func (h *heap) grow(size uint32) error {
	if uint64(size) <= uint64(len(h.data)) {
		return nil
	}
	if !h.growable {
		return ErrFull
	}
	if uint64(size) > maxStorage {
		return ErrOverflow
	}
	data := make([]byte, growTarget(uint64(len(h.data)), uint64(size)))
	copy(data, h.data)
	h.data = data
	return nil
}

// growTarget doubles current, but never below size or above maxStorage.
func growTarget(current, size uint64) uint64 {
	return min(max(2*current, size, current+minGrowth), maxStorage)
}

func (h *heap) release() error {
	h.data = nil
	return nil
}

// mapping owns memory returned by mmap. It is unmapped exactly once.
type mapping struct {
	data []byte
}

func (m *mapping) bytes() []byte {
	return m.data
}

func (m *mapping) writable() bool {
	return false
}

func (m *mapping) grow(uint32) error {
	return ErrReadOnly
}

func (m *mapping) release() error {
	if m.data == nil {
		return nil
	}
	if err := sys.Munmap(m.data); err != nil {
		return sysError(ErrMmap, "munmap", err)
	}
	m.data = nil
	return nil
}
