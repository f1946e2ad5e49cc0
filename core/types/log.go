package types

import "github.com/holiman/uint256"

// Log is a single LOG0..LOG4 event: the emitting contract's address, 0-4
// indexed topics, and opaque data. Logs are compared field-wise by tests;
// equality of Data is byte-for-byte.
type Log struct {
	Address Address
	Topics  []uint256.Int
	Data    []byte
}

// NewLog constructs a Log, defensively copying topics and data so the
// caller's memory buffer can be reused or mutated afterward.
func NewLog(addr Address, topics []uint256.Int, data []byte) Log {
	t := make([]uint256.Int, len(topics))
	copy(t, topics)
	d := make([]byte, len(data))
	copy(d, data)
	return Log{Address: addr, Topics: t, Data: d}
}
