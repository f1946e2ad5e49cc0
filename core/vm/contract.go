package vm

import (
	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/core/types"
)

// Contract is the running instance of a single call frame: the code being
// executed, the address relationships CALLER/ADDRESS/SLOAD resolve against,
// and the calldata it was invoked with.
type Contract struct {
	CallerAddress types.Address
	Address       types.Address // ADDRESS opcode / storage address
	CodeAddress   types.Address // address the code was loaded from

	Code  []byte
	Input []byte
	Value *uint256.Int

	IsStaticCall bool
	IsDelegate   bool

	bytecode *Bytecode
}

// NewContract builds the frame for a plain CALL: self and code address are
// the same, storage resolves against the callee.
func NewContract(caller, addr types.Address, value *uint256.Int, code []byte, input []byte) *Contract {
	if value == nil {
		value = new(uint256.Int)
	}
	return &Contract{
		CallerAddress: caller,
		Address:       addr,
		CodeAddress:   addr,
		Code:          code,
		Input:         input,
		Value:         value,
	}
}

// NewDelegateContract builds the frame for a DELEGATECALL: code loaded from
// codeAddr runs with the parent's address, caller, and value so ADDRESS,
// CALLER, CALLVALUE, and storage all resolve against the parent.
func NewDelegateContract(parent *Contract, codeAddr types.Address, code []byte, input []byte) *Contract {
	return &Contract{
		CallerAddress: parent.CallerAddress,
		Address:       parent.Address,
		CodeAddress:   codeAddr,
		Code:          code,
		Input:         input,
		Value:         parent.Value,
		IsDelegate:    true,
		IsStaticCall:  parent.IsStaticCall,
	}
}

// NewStaticContract builds the frame for a STATICCALL: a plain call with no
// value transfer and the read-only flag set on the frame by the caller.
func NewStaticContract(caller, addr types.Address, code []byte, input []byte) *Contract {
	return &Contract{
		CallerAddress: caller,
		Address:       addr,
		CodeAddress:   addr,
		Code:          code,
		Input:         input,
		Value:         new(uint256.Int),
		IsStaticCall:  true,
	}
}

// code returns the decoded view of this contract's bytecode, building it on
// first use.
func (c *Contract) code() *Bytecode {
	if c.bytecode == nil {
		c.bytecode = NewBytecode(c.Code)
	}
	return c.bytecode
}

// GetOp returns the opcode at position n, or STOP past the end of the code
// (the implicit-STOP-at-end rule).
func (c *Contract) GetOp(n uint64) OpCode {
	return c.code().At(n)
}

// validJumpdest reports whether dest is a JUMPDEST byte that is not inside
// PUSH immediate data.
func (c *Contract) validJumpdest(dest *uint256.Int) bool {
	if dest.BitLen() > 63 {
		return false
	}
	udest := dest.Uint64()
	bc := c.code()
	if udest >= uint64(bc.Len()) {
		return false
	}
	return bc.At(udest) == JUMPDEST && bc.IsCode(udest)
}
