package vm

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/core/types"
)

func TestMessageCallAccessors(t *testing.T) {
	caller := types.Address{1}
	target := types.Address{2}
	msg := NewCallMessage(caller, target, 21000, uint256.NewInt(5), []byte{0xde, 0xad})

	if msg.Caller() != caller {
		t.Errorf("Caller() = %x, want %x", msg.Caller(), caller)
	}
	if msg.Target() != target {
		t.Errorf("Target() = %x, want %x", msg.Target(), target)
	}
	if msg.CodeAddress() != target {
		t.Errorf("CodeAddress() for a plain call = %x, want target %x", msg.CodeAddress(), target)
	}
	if !msg.Value().Eq(uint256.NewInt(5)) {
		t.Errorf("Value() = %s, want 5", msg.Value())
	}
	if msg.IsStaticcall() {
		t.Errorf("a plain call reported IsStaticcall() = true")
	}
}

func TestMessageStaticcallValueIsAlwaysZero(t *testing.T) {
	msg := NewStaticcallMessage(types.Address{1}, types.Address{2}, 0, nil)
	if !msg.Value().IsZero() {
		t.Errorf("Staticcall Value() = %s, want 0", msg.Value())
	}
	if !msg.IsStaticcall() {
		t.Errorf("NewStaticcallMessage reported IsStaticcall() = false")
	}
}

func TestMessageDelegatecallInheritsParent(t *testing.T) {
	parent := NewCallMessage(types.Address{1}, types.Address{2}, 0, uint256.NewInt(7), nil)
	delegate := types.Address{3}
	child := NewDelegatecallMessage(parent, delegate, 0, []byte("args"))

	if child.Caller() != parent.Caller() {
		t.Errorf("Delegatecall Caller() = %x, want parent's %x", child.Caller(), parent.Caller())
	}
	if child.Target() != parent.Target() {
		t.Errorf("Delegatecall Target() = %x, want parent's %x", child.Target(), parent.Target())
	}
	if !child.Value().Eq(parent.Value()) {
		t.Errorf("Delegatecall Value() = %s, want parent's %s", child.Value(), parent.Value())
	}
	if child.CodeAddress() != delegate {
		t.Errorf("Delegatecall CodeAddress() = %x, want delegate %x", child.CodeAddress(), delegate)
	}
}
