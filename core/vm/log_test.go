package vm

import (
	"bytes"
	"testing"

	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/core/state"
	"github.com/eth2030/evmcore/core/types"
)

// TestLogEmission covers LOG2: two topics (nearest the top popped first,
// matching the stack order CALLDATA-style opcodes use) and a data range read
// from memory.
func TestLogEmission(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0xab,
		byte(PUSH1), 0,
		byte(MSTORE8),
		byte(PUSH1), 0xcd,
		byte(PUSH1), 1,
		byte(MSTORE8),
		byte(PUSH1), 2, // topic1
		byte(PUSH1), 1, // topic0
		byte(PUSH1), 2, // size
		byte(PUSH1), 0, // offset
		byte(LOG2),
		byte(STOP),
	}
	st := state.New(nil)
	in := NewInterpreter(testEnv(st))
	addr := types.Address{9}
	contract := NewContract(types.Address{}, addr, nil, code, nil)

	_, logs, _, err := in.Run(contract)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("got %d logs, want 1", len(logs))
	}
	l := logs[0]
	if l.Address != addr {
		t.Errorf("log address = %x, want %x", l.Address, addr)
	}
	if len(l.Topics) != 2 || !l.Topics[0].Eq(uint256.NewInt(1)) || !l.Topics[1].Eq(uint256.NewInt(2)) {
		t.Errorf("log topics = %v, want [1 2]", l.Topics)
	}
	if !bytes.Equal(l.Data, []byte{0xab, 0xcd}) {
		t.Errorf("log data = %x, want abcd", l.Data)
	}
}

func TestLogZeroTopics(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0, // size
		byte(PUSH1), 0, // offset
		byte(LOG0),
		byte(STOP),
	}
	st := state.New(nil)
	in := NewInterpreter(testEnv(st))
	contract := NewContract(types.Address{}, types.Address{1}, nil, code, nil)

	_, logs, _, err := in.Run(contract)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(logs) != 1 || len(logs[0].Topics) != 0 {
		t.Fatalf("LOG0 logs = %v, want one log with zero topics", logs)
	}
}

// callParentCode builds a CALL to childAddr with all of value/args/ret
// zeroed, leaving only the success flag observable on the parent's stack.
func callParentCode(childAddr types.Address) []byte {
	var b bytes.Buffer
	b.WriteByte(byte(PUSH1))
	b.WriteByte(0) // retSize
	b.WriteByte(byte(PUSH1))
	b.WriteByte(0) // retOffset
	b.WriteByte(byte(PUSH1))
	b.WriteByte(0) // argsSize
	b.WriteByte(byte(PUSH1))
	b.WriteByte(0) // argsOffset
	b.WriteByte(byte(PUSH1))
	b.WriteByte(0) // value
	b.WriteByte(byte(PUSH20))
	b.Write(childAddr[:])
	b.WriteByte(byte(PUSH1))
	b.WriteByte(0) // gas, ignored
	b.WriteByte(byte(CALL))
	b.WriteByte(byte(STOP))
	return b.Bytes()
}

func TestLogDiscardedOnRevert(t *testing.T) {
	childAddr := types.Address{2}
	childCode := []byte{
		byte(PUSH1), 0, // size
		byte(PUSH1), 0, // offset
		byte(LOG0),
		byte(PUSH1), 0, // revert size
		byte(PUSH1), 0, // revert offset
		byte(REVERT),
	}
	accounts := map[types.Address]types.Account{
		childAddr: types.NewContractAccount(new(uint256.Int), childCode),
	}
	st := state.New(accounts)
	in := NewInterpreter(testEnv(st))
	parent := NewContract(types.Address{}, types.Address{1}, nil, callParentCode(childAddr), nil)

	_, logs, stack, err := in.Run(parent)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(stack) != 1 || !stack[0].IsZero() {
		t.Fatalf("CALL success flag = %v, want [0] (failed)", stack)
	}
	if len(logs) != 0 {
		t.Errorf("a reverted child's logs leaked into the parent: %v", logs)
	}
}

func TestLogMergedOnSuccess(t *testing.T) {
	childAddr := types.Address{2}
	childCode := []byte{
		byte(PUSH1), 0, // size
		byte(PUSH1), 0, // offset
		byte(LOG0),
		byte(STOP),
	}
	accounts := map[types.Address]types.Account{
		childAddr: types.NewContractAccount(new(uint256.Int), childCode),
	}
	st := state.New(accounts)
	in := NewInterpreter(testEnv(st))
	parent := NewContract(types.Address{}, types.Address{1}, nil, callParentCode(childAddr), nil)

	_, logs, stack, err := in.Run(parent)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(stack) != 1 || stack[0].IsZero() {
		t.Fatalf("CALL success flag = %v, want nonzero (succeeded)", stack)
	}
	if len(logs) != 1 || logs[0].Address != childAddr {
		t.Errorf("parent logs after a successful child call = %v, want one log from %x", logs, childAddr)
	}
}
