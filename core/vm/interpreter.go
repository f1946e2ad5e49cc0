package vm

import (
	"errors"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/core/state"
	"github.com/eth2030/evmcore/core/types"
)

// maxCallDepth bounds CALL/DELEGATECALL/STATICCALL nesting, mirroring the
// EVM's conventional 1024-frame call-depth limit.
const maxCallDepth = 1024

var (
	ErrInvalidJumpdest       = errors.New("vm: invalid jump destination")
	ErrWriteProtection       = errors.New("vm: write protection")
	ErrExecutionReverted     = errors.New("vm: execution reverted")
	ErrMaxCallDepthExceeded  = errors.New("vm: max call depth exceeded")
	ErrInvalidOpCode         = errors.New("vm: invalid opcode")
	ErrReturnDataOutOfBounds = errors.New("vm: return data out of bounds")
)

// RevertError wraps the data a REVERT carries out of a frame. It unwraps to
// ErrExecutionReverted so callers can test for it with errors.Is without
// caring whether they also want the payload.
type RevertError struct {
	Data []byte
}

func (e *RevertError) Error() string { return "vm: execution reverted" }
func (e *RevertError) Unwrap() error { return ErrExecutionReverted }

// Interpreter runs contract code to completion. One Interpreter is shared
// across an entire transaction's call tree; depth, the pending return-data
// buffer, and the current frame's log sink are all save/restored around
// nested Run calls so each frame only ever observes its own view of them.
type Interpreter struct {
	Env       *Environment
	jumpTable JumpTable

	// Trace, when set, emits a trace-level log line per executed opcode.
	// Off by default: per-step logging is expensive and most callers don't
	// want it.
	Trace bool

	depth      int
	returnData []byte
	curLogs    *[]types.Log
}

// NewInterpreter returns an Interpreter bound to env, with the single fixed
// opcode dispatch table this core supports.
func NewInterpreter(env *Environment) *Interpreter {
	return &Interpreter{Env: env, jumpTable: NewJumpTable()}
}

// Run executes contract's code from pc 0 to completion: a halting opcode
// (STOP/RETURN/REVERT/INVALID), running off the end of the code (implicit
// STOP), or an error. It returns the frame's output bytes, the logs it
// emitted, the final stack top-first, and any error. Callers must not
// propagate the returned logs when err != nil: a frame that fails discards
// its own logs and is never merged into its parent.
func (in *Interpreter) Run(contract *Contract) (output []byte, logs []types.Log, stackOut []uint256.Int, err error) {
	prevLogs := in.curLogs
	var frameLogs []types.Log
	in.curLogs = &frameLogs
	in.returnData = nil
	defer func() { in.curLogs = prevLogs }()

	stack := NewStack()
	mem := NewMemory()
	pc := uint64(0)

	for {
		op := contract.GetOp(pc)
		operation := in.jumpTable[op]
		if operation == nil {
			return nil, frameLogs, stack.TopFirst(), ErrInvalidOpCode
		}
		if stack.Len() < operation.minStack {
			return nil, frameLogs, stack.TopFirst(), ErrStackUnderflow
		}
		if stack.Len() > operation.maxStack {
			return nil, frameLogs, stack.TopFirst(), ErrStackOverflow
		}
		if operation.writes && contract.IsStaticCall {
			return nil, frameLogs, stack.TopFirst(), ErrWriteProtection
		}

		if in.Trace {
			ethlog.Trace("evm step", "pc", pc, "op", op.String(), "depth", in.depth, "stackLen", stack.Len())
		}

		ret, execErr := operation.execute(&pc, in, contract, mem, stack)
		if execErr != nil {
			return ret, frameLogs, stack.TopFirst(), execErr
		}
		if operation.halts {
			return ret, frameLogs, stack.TopFirst(), nil
		}
		if !operation.jumps {
			pc++
		}
	}
}

// call runs a child frame of kind against addr, transferring value for a
// plain Call. It handles depth limiting, the balance check and transfer,
// state snapshot/restore, and log propagation on success, returning whether
// the call succeeded and its output (cached by the caller as return data
// regardless of success).
func (in *Interpreter) call(caller *Contract, kind MessageKind, addr types.Address, value *uint256.Int, args []byte) (bool, []byte) {
	if in.depth >= maxCallDepth {
		return false, nil
	}
	if value != nil && !value.IsZero() {
		if in.Env.State.GetBalance(caller.Address).Lt(value) {
			return false, nil
		}
	}

	snapshot := in.Env.State.Clone()
	code := in.Env.State.GetCode(addr)

	var child *Contract
	switch kind {
	case MessageDelegatecall:
		child = NewDelegateContract(caller, addr, code, args)
	case MessageStaticcall:
		child = NewStaticContract(caller.Address, addr, code, args)
	default:
		child = NewContract(caller.Address, addr, value, code, args)
		child.IsStaticCall = caller.IsStaticCall
	}

	if kind == MessageCall && value != nil && !value.IsZero() {
		// Balance already checked above; the transfer happens before the
		// child's first opcode runs, per the value-transfer-before-execution
		// rule.
		_ = in.Env.State.SubBalance(caller.Address, value)
		in.Env.State.AddBalance(addr, value)
	}

	in.depth++
	output, childLogs, _, err := in.Run(child)
	in.depth--

	if err != nil {
		in.Env.State.RestoreFrom(snapshot)
		return false, output
	}
	*in.curLogs = append(*in.curLogs, childLogs...)
	return true, output
}

// Transaction is the glue collaborator's view of a top-level call: already
// decoded Go values, not a wire/JSON format (that decoding is an external
// concern, out of scope here).
type Transaction struct {
	GasPrice *uint256.Int
	Gas      uint64
	From     types.Address
	To       *types.Address // nil means contract creation, unsupported
	Value    *uint256.Int
	Data     []byte
}

// ExecutionResult is what a completed transaction surfaces to the glue
// collaborator: nothing about *why* it failed, only whether it did.
type ExecutionResult struct {
	Success    bool
	Stack      []uint256.Int
	ReturnData []byte
	Logs       []types.Log
}

// ErrCreateUnsupported is returned by RunTransaction for a nil To: contract
// creation (CREATE/CREATE2) is out of scope for this core.
var ErrCreateUnsupported = errors.New("vm: contract creation is unsupported")

// RunTransaction builds the top-level Call message for tx, runs it against
// st under env, and returns the observable result. The sender is debited and
// the recipient credited before execution, mirroring the top-level value
// transfer rule; st is snapshotted before that transfer and restored if the
// run fails. A failed run still surfaces return data, never a Go error,
// since the failure taxonomy is local to the frame and is not exposed past
// the top level.
func RunTransaction(tx Transaction, env *Environment, st *state.State) (*ExecutionResult, error) {
	if tx.To == nil {
		return nil, ErrCreateUnsupported
	}
	env.State = st

	msg := NewCallMessage(tx.From, *tx.To, tx.Gas, tx.Value, tx.Data)
	value := msg.Value()
	snapshot := st.Clone()
	if !value.IsZero() {
		if err := st.SubBalance(msg.Caller(), value); err != nil {
			return &ExecutionResult{Success: false}, nil
		}
		st.AddBalance(msg.Target(), value)
	}

	code := st.GetCode(msg.CodeAddress())
	contract := NewContract(msg.Caller(), msg.Target(), value, code, msg.Data())

	in := NewInterpreter(env)
	output, logs, finalStack, err := in.Run(contract)
	if err != nil {
		st.RestoreFrom(snapshot)
		return &ExecutionResult{Success: false, ReturnData: output}, nil
	}
	return &ExecutionResult{Success: true, Stack: finalStack, ReturnData: output, Logs: logs}, nil
}
