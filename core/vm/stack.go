package vm

import (
	"errors"

	"github.com/holiman/uint256"
)

// Maximum stack depth and DUP/SWAP operand range.
const (
	stackLimit = 1024
	maxDup     = 16
	maxSwap    = 16
)

var (
	ErrStackOverflow  = errors.New("vm: stack overflow")
	ErrStackUnderflow = errors.New("vm: stack underflow")
	ErrDupOutOfRange  = errors.New("vm: dup position out of range")
	ErrSwapOutOfRange = errors.New("vm: swap position out of range")
)

// Stack is the EVM operand stack: up to 1024 256-bit words, LIFO.
type Stack struct {
	data [stackLimit]uint256.Int
	top  int // number of elements currently on the stack
}

// NewStack returns a new empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// Push pushes val onto the stack, copying it. Returns ErrStackOverflow if
// the stack already holds 1024 elements.
func (s *Stack) Push(val *uint256.Int) error {
	if s.top >= stackLimit {
		return ErrStackOverflow
	}
	s.data[s.top].Set(val)
	s.top++
	return nil
}

// Pop removes and returns the top element. Returns ErrStackUnderflow if the
// stack is empty.
func (s *Stack) Pop() (*uint256.Int, error) {
	if s.top == 0 {
		return nil, ErrStackUnderflow
	}
	s.top--
	val := new(uint256.Int).Set(&s.data[s.top])
	return val, nil
}

// Peek returns the top element without removing it. Returns
// ErrStackUnderflow if the stack is empty.
func (s *Stack) Peek() (*uint256.Int, error) {
	if s.top == 0 {
		return nil, ErrStackUnderflow
	}
	return &s.data[s.top-1], nil
}

// Back returns the nth element from the top (0-indexed: 0 is the top),
// without bounds checking; callers must validate depth via Len first (the
// jump table's minStack check does this before execute runs).
func (s *Stack) Back(n int) *uint256.Int {
	return &s.data[s.top-1-n]
}

// Swap exchanges the top element with the nth element below it (n in
// [1,16], SWAP1..SWAP16).
func (s *Stack) Swap(n int) error {
	if n < 1 || n > maxSwap {
		return ErrSwapOutOfRange
	}
	if s.top < n+1 {
		return ErrStackUnderflow
	}
	top := s.top - 1
	nth := s.top - 1 - n
	s.data[top], s.data[nth] = s.data[nth], s.data[top]
	return nil
}

// Dup duplicates the nth element from the top and pushes the copy (n in
// [1,16], DUP1..DUP16).
func (s *Stack) Dup(n int) error {
	if n < 1 || n > maxDup {
		return ErrDupOutOfRange
	}
	if s.top < n {
		return ErrStackUnderflow
	}
	if s.top >= stackLimit {
		return ErrStackOverflow
	}
	s.data[s.top].Set(&s.data[s.top-n])
	s.top++
	return nil
}

// Len returns the number of elements currently on the stack.
func (s *Stack) Len() int { return s.top }

// Data returns the live stack contents, bottom to top. Callers must not
// retain the slice past the next mutating call.
func (s *Stack) Data() []uint256.Int {
	return s.data[:s.top]
}

// TopFirst returns an independent copy of the stack contents with the top
// element first, the order a terminated frame's stack is observed in.
func (s *Stack) TopFirst() []uint256.Int {
	out := make([]uint256.Int, s.top)
	for i := 0; i < s.top; i++ {
		out[i] = s.data[s.top-1-i]
	}
	return out
}
