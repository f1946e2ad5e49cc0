package vm

import "testing"

func TestBytecodeSkipsPushData(t *testing.T) {
	// PUSH2 0x5b 0x5b STOP -- the two JUMPDEST-looking bytes are immediate
	// data, not instructions.
	code := []byte{byte(PUSH2), byte(JUMPDEST), byte(JUMPDEST), byte(STOP)}
	bc := NewBytecode(code)

	if bc.At(0) != PUSH2 {
		t.Errorf("At(0) = %v, want PUSH2", bc.At(0))
	}
	if bc.IsCode(1) || bc.IsCode(2) {
		t.Errorf("push immediate data bytes reported as code")
	}
	if !bc.IsCode(3) || bc.At(3) != STOP {
		t.Errorf("At(3) = %v, IsCode=%v, want STOP/true", bc.At(3), bc.IsCode(3))
	}
}

func TestBytecodeImplicitStopPastEnd(t *testing.T) {
	bc := NewBytecode([]byte{byte(PUSH1), 0x01})
	if got := bc.At(100); got != STOP {
		t.Errorf("At(100) past end = %v, want STOP", got)
	}
	if bc.IsCode(100) {
		t.Errorf("IsCode(100) past end = true, want false")
	}
}

func TestBytecodeTruncatedPush(t *testing.T) {
	// PUSH32 with only one byte of immediate data available.
	code := []byte{byte(PUSH32), 0xaa}
	bc := NewBytecode(code)
	if bc.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", bc.Len())
	}
	if bc.IsCode(1) {
		t.Errorf("truncated push data byte reported as code")
	}
}
