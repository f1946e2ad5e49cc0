package vm

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/core/types"
)

// Word is the EVM's native 256-bit unsigned machine word. All arithmetic on
// it is wrapping modulo 2^256; a signed (two's complement) interpretation is
// a view over the same bit pattern, not a distinct type, matching the
// original "I256 is a newtype over the same 256 bits" design.
type Word = uint256.Int

// newWord allocates a fresh zero Word.
func newWord() *Word { return new(uint256.Int) }

// cloneWord returns an independent copy of w.
func cloneWord(w *Word) *Word { return new(uint256.Int).Set(w) }

var maxMemoryArg = new(big.Int).SetUint64(1 << 32)

// toUint64Clamped converts w to a uint64, saturating at 2^32 for values that
// don't fit. Used for memory/calldata offsets and sizes: real
// implementations reject absurd offsets via gas accounting, which this core
// does not model, so a generous but finite cap keeps adversarial input from
// forcing unbounded allocation without changing any of the covered test
// scenarios (which never approach this bound).
func toUint64Clamped(w *Word) uint64 {
	b := w.ToBig()
	if b.Cmp(maxMemoryArg) > 0 {
		return maxMemoryArg.Uint64()
	}
	return b.Uint64()
}

// Bytesize is a clamped index in [0,31], the domain of BYTE/SIGNEXTEND's
// byte-count argument.
type Bytesize uint8

const (
	BytesizeMin Bytesize = 0
	BytesizeMax Bytesize = 31
)

// ClampBytesize clamps w into [0,31].
func ClampBytesize(w *Word) Bytesize {
	b := w.ToBig()
	if b.Cmp(big.NewInt(int64(BytesizeMax))) >= 0 {
		return BytesizeMax
	}
	return Bytesize(b.Uint64())
}

// Bitsize is a clamped index in [0,255], the domain of shift amounts.
type Bitsize uint16

const (
	BitsizeMin Bitsize = 0
	BitsizeMax Bitsize = 255
)

// ClampBitsize clamps w into [0,255].
func ClampBitsize(w *Word) Bitsize {
	b := w.ToBig()
	if b.Cmp(big.NewInt(int64(BitsizeMax))) >= 0 {
		return BitsizeMax
	}
	return Bitsize(b.Uint64())
}

// signExtend treats x as a signed integer occupying b+1 bytes and
// sign-extends it to the full 256 bits. For b >= 31 the value is returned
// unchanged (all 32 bytes are already significant).
func signExtend(b Bytesize, x *Word) *Word {
	out := newWord()
	out.ExtendSign(x, newWord().SetUint64(uint64(b)))
	return out
}

// byteAt returns the i-th byte of x counted from the most significant end;
// 0 if i >= 32.
func byteAt(i *Word, x *Word) *Word {
	out := cloneWord(x)
	out.Byte(i)
	return out
}

// sdiv computes signed division; SDIV(MIN_INT, -1) = MIN_INT (wraps), and
// division by zero is 0 (never a fault).
func sdiv(x, y *Word) *Word {
	return newWord().SDiv(x, y)
}

// smod computes signed remainder with the dividend's sign; 0 if the divisor
// is 0.
func smod(x, y *Word) *Word {
	return newWord().SMod(x, y)
}

// slt reports whether x < y under signed interpretation.
func slt(x, y *Word) bool {
	return x.Slt(y)
}

// sgt reports whether x > y under signed interpretation.
func sgt(x, y *Word) bool {
	return x.Sgt(y)
}

// sar computes the arithmetic (sign-preserving) right shift of value by
// shift bits; shift >= 256 yields 0 for non-negative values and all-ones for
// negative values.
func sar(shift *Word, value *Word) *Word {
	if shift.GtUint64(256) {
		if value.Sign() >= 0 {
			return newWord()
		}
		out := newWord()
		out.SetAllOne()
		return out
	}
	return newWord().SRsh(value, uint(shift.Uint64()))
}

// shl computes the logical left shift of value by shift bits; shift >= 256
// yields 0.
func shl(shift *Word, value *Word) *Word {
	b := shift.ToBig()
	if b.Cmp(big.NewInt(256)) >= 0 {
		return newWord()
	}
	return newWord().Lsh(value, uint(b.Uint64()))
}

// shr computes the logical right shift of value by shift bits; shift >= 256
// yields 0.
func shr(shift *Word, value *Word) *Word {
	b := shift.ToBig()
	if b.Cmp(big.NewInt(256)) >= 0 {
		return newWord()
	}
	return newWord().Rsh(value, uint(b.Uint64()))
}

// exp computes wrapping base**exponent mod 2^256.
func exp(base, exponent *Word) *Word {
	return newWord().Exp(base, exponent)
}

// addressToWord zero-extends a 20-byte address into the low 160 bits of a
// Word, matching the U256<->Address narrowing/widening rule.
func addressToWord(a types.Address) *Word {
	var buf [32]byte
	copy(buf[12:], a[:])
	w := newWord()
	w.SetBytes32(buf[:])
	return w
}

// wordToAddress narrows w to an Address by keeping only its low 160 bits.
func wordToAddress(w *Word) types.Address {
	b := w.Bytes32()
	return types.BytesToAddress(b[12:])
}

// addmod computes (x+y) mod m at full precision; 0 if m == 0.
func addmod(x, y, m *Word) *Word {
	return newWord().AddMod(x, y, m)
}

// mulmod computes (x*y) mod m at full precision; 0 if m == 0.
func mulmod(x, y, m *Word) *Word {
	return newWord().MulMod(x, y, m)
}
