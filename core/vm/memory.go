package vm

import "github.com/holiman/uint256"

const memoryPageSize = 32

// Memory is the interpreter's linear byte memory. It starts empty and grows
// in 32-byte pages on demand, as needed by the largest offset any
// MLOAD/MSTORE/CALLDATACOPY/etc. touches; reads past the current length
// grow memory the same way and return zero bytes.
type Memory struct {
	store []byte
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Len returns the current size of memory in bytes (always a multiple of 32).
func (m *Memory) Len() int { return len(m.store) }

// Data returns the backing slice directly; callers must not retain it past
// the next mutating call.
func (m *Memory) Data() []byte { return m.store }

// ensure grows the backing store, in whole 32-byte pages, until it is at
// least end bytes long.
func (m *Memory) ensure(end uint64) {
	if end <= uint64(len(m.store)) {
		return
	}
	newLen := ((end + memoryPageSize - 1) / memoryPageSize) * memoryPageSize
	grown := make([]byte, newLen)
	copy(grown, m.store)
	m.store = grown
}

// Store writes value into memory at offset, growing memory as needed.
func (m *Memory) Store(offset uint64, value []byte) {
	if len(value) == 0 {
		return
	}
	m.ensure(offset + uint64(len(value)))
	copy(m.store[offset:], value)
}

// StoreByte writes a single byte at offset, growing memory as needed.
func (m *Memory) StoreByte(offset uint64, b byte) {
	m.ensure(offset + 1)
	m.store[offset] = b
}

// StoreWord writes a 256-bit word at offset, big-endian, growing memory as
// needed.
func (m *Memory) StoreWord(offset uint64, val *uint256.Int) {
	m.ensure(offset + 32)
	b := val.Bytes32()
	copy(m.store[offset:offset+32], b[:])
}

// Load reads size bytes starting at offset, growing memory to cover the
// read (matching the reference "load past the end reads zero, and extends
// memory to there" behavior).
func (m *Memory) Load(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	m.ensure(offset + size)
	out := make([]byte, size)
	copy(out, m.store[offset:offset+size])
	return out
}

// LoadWord reads a 256-bit word at offset, growing memory as needed.
func (m *Memory) LoadWord(offset uint64) *uint256.Int {
	b := m.Load(offset, 32)
	var arr [32]byte
	copy(arr[:], b)
	var w uint256.Int
	w.SetBytes32(arr[:])
	return &w
}
