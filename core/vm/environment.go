package vm

import (
	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/core/state"
	"github.com/eth2030/evmcore/core/types"
)

// Environment is the read-only block and transaction context every frame
// sees: the block header fields exposed to opcodes, plus the world state
// that backs BALANCE/EXTCODE*/SLOAD and friends.
type Environment struct {
	Caller        types.Address
	State         *state.State
	BlockHashes   map[uint64]types.Hash // known recent block number -> hash
	Coinbase      types.Address
	Number        uint64
	BaseFeePerGas *uint256.Int
	GasLimit      uint64
	GasPrice      *uint256.Int
	Time          uint64
	Difficulty    *uint256.Int
	ChainID       *uint256.Int
}

// BlockHash returns the hash of block n, or the zero hash if n is not a
// known recent block (at or after the current block, or simply never
// supplied by the caller).
func (e *Environment) BlockHash(n uint64) types.Hash {
	if n >= e.Number {
		return types.Hash{}
	}
	return e.BlockHashes[n]
}
