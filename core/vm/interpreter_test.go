package vm

import (
	"bytes"
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/core/state"
	"github.com/eth2030/evmcore/core/types"
)

func testEnv(st *state.State) *Environment {
	return &Environment{
		State:         st,
		BlockHashes:   map[uint64]types.Hash{},
		Number:        1,
		BaseFeePerGas: new(uint256.Int),
		GasLimit:      30_000_000,
		GasPrice:      new(uint256.Int),
		ChainID:       uint256.NewInt(1),
		Difficulty:    new(uint256.Int),
	}
}

// TestInterpreterPushArithmetic covers PUSH1 3, PUSH1 4, ADD, STOP: the
// stack observed at termination should hold a single word, 7.
func TestInterpreterPushArithmetic(t *testing.T) {
	code := []byte{
		byte(PUSH1), 3,
		byte(PUSH1), 4,
		byte(ADD),
		byte(STOP),
	}
	st := state.New(nil)
	env := testEnv(st)
	in := NewInterpreter(env)
	contract := NewContract(types.Address{}, types.Address{1}, nil, code, nil)

	_, _, stack, err := in.Run(contract)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(stack) != 1 || !stack[0].Eq(uint256.NewInt(7)) {
		t.Fatalf("final stack = %v, want [7]", stack)
	}
}

// TestInterpreterDivisionByZero covers PUSH1 0, PUSH1 5, DIV, STOP: division
// by zero yields 0 rather than faulting.
func TestInterpreterDivisionByZero(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0,
		byte(PUSH1), 5,
		byte(DIV),
		byte(STOP),
	}
	st := state.New(nil)
	in := NewInterpreter(testEnv(st))
	contract := NewContract(types.Address{}, types.Address{1}, nil, code, nil)

	_, _, stack, err := in.Run(contract)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(stack) != 1 || !stack[0].IsZero() {
		t.Fatalf("final stack = %v, want [0]", stack)
	}
}

// TestInterpreterInvalidJump covers JUMP to a destination that is not a
// JUMPDEST.
func TestInterpreterInvalidJump(t *testing.T) {
	code := []byte{
		byte(PUSH1), 1, // destination 1 is inside this PUSH1's own immediate data
		byte(JUMP),
		byte(STOP),
		byte(STOP),
	}
	st := state.New(nil)
	in := NewInterpreter(testEnv(st))
	contract := NewContract(types.Address{}, types.Address{1}, nil, code, nil)

	_, _, _, err := in.Run(contract)
	if !errors.Is(err, ErrInvalidJumpdest) {
		t.Fatalf("Run returned %v, want ErrInvalidJumpdest", err)
	}
}

// TestInterpreterSignedComparison covers SLT between -1 and 1, which differs
// from the unsigned LT result.
func TestInterpreterSignedComparison(t *testing.T) {
	negOne := make([]byte, 32)
	for i := range negOne {
		negOne[i] = 0xff
	}
	code := []byte{byte(PUSH32)}
	code = append(code, negOne...)
	code = append(code, byte(PUSH1), 1, byte(SLT), byte(STOP))

	st := state.New(nil)
	in := NewInterpreter(testEnv(st))
	contract := NewContract(types.Address{}, types.Address{1}, nil, code, nil)

	_, _, stack, err := in.Run(contract)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Stack order: PUSH32(-1) then PUSH1(1); SLT pops x=1 (top), y=-1, and
	// reports x < y, i.e. 1 < -1 under signed interpretation: false.
	if len(stack) != 1 || !stack[0].IsZero() {
		t.Fatalf("SLT(1, -1) stack = %v, want [0] (false)", stack)
	}
}

// TestInterpreterStaticViolation covers SSTORE attempted inside a static
// (read-only) frame.
func TestInterpreterStaticViolation(t *testing.T) {
	code := []byte{
		byte(PUSH1), 1,
		byte(PUSH1), 0,
		byte(SSTORE),
		byte(STOP),
	}
	st := state.New(nil)
	in := NewInterpreter(testEnv(st))
	contract := NewStaticContract(types.Address{}, types.Address{1}, code, nil)

	_, _, _, err := in.Run(contract)
	if !errors.Is(err, ErrWriteProtection) {
		t.Fatalf("Run returned %v, want ErrWriteProtection", err)
	}
}

// TestInterpreterCallRevertRollback covers a nested CALL whose callee writes
// storage and then reverts: the write must not survive in the caller's view
// of state, and the CALL's own success flag must be 0.
func TestInterpreterCallRevertRollback(t *testing.T) {
	childAddr := types.Address{2}
	childCode := []byte{
		byte(PUSH1), 1, // value
		byte(PUSH1), 0, // key
		byte(SSTORE),
		byte(PUSH1), 0, // size
		byte(PUSH1), 0, // offset
		byte(REVERT),
	}

	var parentCode bytes.Buffer
	parentCode.WriteByte(byte(PUSH1))
	parentCode.WriteByte(0) // retSize
	parentCode.WriteByte(byte(PUSH1))
	parentCode.WriteByte(0) // retOffset
	parentCode.WriteByte(byte(PUSH1))
	parentCode.WriteByte(0) // argsSize
	parentCode.WriteByte(byte(PUSH1))
	parentCode.WriteByte(0) // argsOffset
	parentCode.WriteByte(byte(PUSH1))
	parentCode.WriteByte(0) // value
	parentCode.WriteByte(byte(PUSH20))
	parentCode.Write(childAddr[:]) // addr
	parentCode.WriteByte(byte(PUSH1))
	parentCode.WriteByte(0) // gas, ignored
	parentCode.WriteByte(byte(CALL))
	parentCode.WriteByte(byte(STOP))

	accounts := map[types.Address]types.Account{
		childAddr: types.NewContractAccount(new(uint256.Int), childCode),
	}
	st := state.New(accounts)
	in := NewInterpreter(testEnv(st))
	parent := NewContract(types.Address{}, types.Address{1}, nil, parentCode.Bytes(), nil)

	_, _, stack, err := in.Run(parent)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(stack) != 1 || !stack[0].IsZero() {
		t.Fatalf("CALL success flag = %v, want [0] (failed)", stack)
	}

	key := uint256.Int{}
	got := st.GetState(childAddr, key)
	if !got.IsZero() {
		t.Errorf("storage write survived a reverted call: got %s, want 0", &got)
	}
}

func TestRunTransactionRejectsCreate(t *testing.T) {
	st := state.New(nil)
	_, err := RunTransaction(Transaction{To: nil}, testEnv(st), st)
	if !errors.Is(err, ErrCreateUnsupported) {
		t.Fatalf("RunTransaction with nil To = %v, want ErrCreateUnsupported", err)
	}
}

func TestRunTransactionTransfersValue(t *testing.T) {
	from := types.Address{1}
	to := types.Address{2}
	accounts := map[types.Address]types.Account{
		from: types.NewExternallyOwnedAccount(uint256.NewInt(100)),
		to:   types.NewContractAccount(new(uint256.Int), []byte{byte(STOP)}),
	}
	st := state.New(accounts)
	env := testEnv(st)

	tx := Transaction{From: from, To: &to, Value: uint256.NewInt(30)}
	result, err := RunTransaction(tx, env, st)
	if err != nil {
		t.Fatalf("RunTransaction: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got failure")
	}
	if !st.GetBalance(from).Eq(uint256.NewInt(70)) {
		t.Errorf("sender balance = %s, want 70", st.GetBalance(from))
	}
	if !st.GetBalance(to).Eq(uint256.NewInt(30)) {
		t.Errorf("recipient balance = %s, want 30", st.GetBalance(to))
	}
}
