package vm

import (
	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/core/types"
)

// MessageKind tags the shape of a Message: which of CALL/DELEGATECALL/
// STATICCALL produced it. CREATE is out of scope; it is not a variant here.
type MessageKind uint8

const (
	MessageCall MessageKind = iota
	MessageDelegatecall
	MessageStaticcall
)

// Message describes a single top-level invocation of the interpreter: who
// is calling whom, with what calldata, value, and gas, and under what
// calling convention. Nested CALL/DELEGATECALL/STATICCALL frames are built
// directly by the interpreter from the running Contract rather than routed
// back through Message, mirroring the reference design where Message
// exists for the entry point and delegatecall/staticcall construction, not
// as a per-instruction value.
type Message struct {
	Kind MessageKind

	caller   types.Address
	target   types.Address
	delegate types.Address // for Delegatecall: the address code is loaded from
	gas      uint64
	value    *uint256.Int
	data     []byte
}

// NewCallMessage builds a plain CALL message.
func NewCallMessage(caller, target types.Address, gas uint64, value *uint256.Int, data []byte) Message {
	return Message{Kind: MessageCall, caller: caller, target: target, gas: gas, value: value, data: data}
}

// NewDelegatecallMessage builds a DELEGATECALL message: parent supplies the
// caller, target, and value (all preserved from the enclosing frame); delegate
// is the address code is loaded from.
func NewDelegatecallMessage(parent Message, delegate types.Address, gas uint64, data []byte) Message {
	return Message{
		Kind:     MessageDelegatecall,
		caller:   parent.caller,
		target:   parent.target,
		delegate: delegate,
		gas:      gas,
		value:    parent.value,
		data:     data,
	}
}

// NewStaticcallMessage builds a STATICCALL message. Value is always zero.
func NewStaticcallMessage(caller, target types.Address, gas uint64, data []byte) Message {
	return Message{Kind: MessageStaticcall, caller: caller, target: target, gas: gas, data: data}
}

// Caller returns the effective msg.sender.
func (m Message) Caller() types.Address { return m.caller }

// Target returns the address whose storage is used (and, outside
// Delegatecall, whose code runs).
func (m Message) Target() types.Address { return m.target }

// CodeAddress returns the address code should be loaded from: Delegatecall
// loads from its delegate, everything else loads from its target.
func (m Message) CodeAddress() types.Address {
	if m.Kind == MessageDelegatecall {
		return m.delegate
	}
	return m.target
}

// Value returns the value attached to the message; always zero for
// Staticcall.
func (m Message) Value() *uint256.Int {
	if m.Kind == MessageStaticcall || m.value == nil {
		return new(uint256.Int)
	}
	return m.value
}

// Gas returns the gas the caller attached to the message. The interpreter
// never charges or deducts it (GAS metering is out of scope); it is
// retained only as a value visible to opcodes that inspect it.
func (m Message) Gas() uint64 { return m.gas }

// Data returns the message's input (calldata).
func (m Message) Data() []byte { return m.data }

// IsStaticcall reports whether m must run read-only.
func (m Message) IsStaticcall() bool { return m.Kind == MessageStaticcall }
