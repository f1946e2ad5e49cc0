package vm

// Bytecode is a decoded view of a contract's raw code: a parallel index of
// opcodes with PUSH immediate-data positions marked absent, so the
// interpreter never mistakes a data byte for an instruction when resuming
// after a jump.
type Bytecode struct {
	raw    []byte
	opAt   []OpCode
	isData []bool
}

// NewBytecode decodes code eagerly, the way the reference decoder walks the
// byte string once up front rather than re-deriving PUSH boundaries from pc
// on every step.
func NewBytecode(code []byte) *Bytecode {
	b := &Bytecode{
		raw:    code,
		opAt:   make([]OpCode, len(code)),
		isData: make([]bool, len(code)),
	}
	for i := 0; i < len(code); i++ {
		op := OpCode(code[i])
		b.opAt[i] = op
		if n := op.PushSize(); n > 0 {
			for j := 1; j <= n && i+j < len(code); j++ {
				b.isData[i+j] = true
			}
			i += n
		}
	}
	return b
}

// Len returns the number of raw bytes in the code.
func (b *Bytecode) Len() int { return len(b.raw) }

// Raw returns the underlying byte string.
func (b *Bytecode) Raw() []byte { return b.raw }

// At returns the opcode at pc, or STOP past the end of the code (the
// implicit-STOP-at-end rule). PUSH immediate-data positions are not decoded,
// so a pc that lands inside them also reads as STOP; callers that care about
// the data/instruction distinction use IsCode.
func (b *Bytecode) At(pc uint64) OpCode {
	if pc >= uint64(len(b.raw)) {
		return STOP
	}
	return b.opAt[pc]
}

// IsCode reports whether pc is an instruction position, as opposed to a byte
// of PUSH immediate data.
func (b *Bytecode) IsCode(pc uint64) bool {
	if pc >= uint64(len(b.raw)) {
		return false
	}
	return !b.isData[pc]
}
