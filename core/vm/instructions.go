package vm

import (
	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/core/types"
	"github.com/eth2030/evmcore/crypto"
)

// pushBool pushes 1 for true, 0 for false — the CALL-family status word and
// the result of every comparison opcode.
func pushBool(stack *Stack, ok bool) {
	if ok {
		stack.Push(newWord().SetUint64(1))
	} else {
		stack.Push(newWord())
	}
}

// writeBack copies output into memory at retOffset, truncating if output is
// longer than retSize and zero-padding if it is shorter.
func writeBack(mem *Memory, retOffset, retSize *uint256.Int, output []byte) {
	size := toUint64Clamped(retSize)
	if size == 0 {
		return
	}
	buf := make([]byte, size)
	copy(buf, output)
	mem.Store(toUint64Clamped(retOffset), buf)
}

// getData returns size bytes from data starting at offset, zero-padded on
// the right past data's end — the shared CALLDATALOAD/CALLDATACOPY/CODECOPY
// read rule.
func getData(data []byte, offset, size uint64) []byte {
	out := make([]byte, size)
	if offset >= uint64(len(data)) {
		return out
	}
	end := offset + size
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	copy(out, data[offset:end])
	return out
}

func opStop(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	return nil, nil
}

func opAdd(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	y, _ := stack.Pop()
	stack.Push(newWord().Add(x, y))
	return nil, nil
}

func opMul(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	y, _ := stack.Pop()
	stack.Push(newWord().Mul(x, y))
	return nil, nil
}

func opSub(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	y, _ := stack.Pop()
	stack.Push(newWord().Sub(x, y))
	return nil, nil
}

func opDiv(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	y, _ := stack.Pop()
	stack.Push(newWord().Div(x, y))
	return nil, nil
}

func opSdiv(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	y, _ := stack.Pop()
	stack.Push(sdiv(x, y))
	return nil, nil
}

func opMod(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	y, _ := stack.Pop()
	stack.Push(newWord().Mod(x, y))
	return nil, nil
}

func opSmod(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	y, _ := stack.Pop()
	stack.Push(smod(x, y))
	return nil, nil
}

func opAddmod(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	y, _ := stack.Pop()
	m, _ := stack.Pop()
	stack.Push(addmod(x, y, m))
	return nil, nil
}

func opMulmod(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	y, _ := stack.Pop()
	m, _ := stack.Pop()
	stack.Push(mulmod(x, y, m))
	return nil, nil
}

func opExp(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	base, _ := stack.Pop()
	exponent, _ := stack.Pop()
	stack.Push(exp(base, exponent))
	return nil, nil
}

func opSignExtend(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	b, _ := stack.Pop()
	x, _ := stack.Pop()
	stack.Push(signExtend(ClampBytesize(b), x))
	return nil, nil
}

func opLt(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	y, _ := stack.Pop()
	pushBool(stack, x.Lt(y))
	return nil, nil
}

func opGt(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	y, _ := stack.Pop()
	pushBool(stack, x.Gt(y))
	return nil, nil
}

func opSlt(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	y, _ := stack.Pop()
	pushBool(stack, slt(x, y))
	return nil, nil
}

func opSgt(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	y, _ := stack.Pop()
	pushBool(stack, sgt(x, y))
	return nil, nil
}

func opEq(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	y, _ := stack.Pop()
	pushBool(stack, x.Eq(y))
	return nil, nil
}

func opIsZero(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	pushBool(stack, x.IsZero())
	return nil, nil
}

func opAnd(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	y, _ := stack.Pop()
	stack.Push(newWord().And(x, y))
	return nil, nil
}

func opOr(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	y, _ := stack.Pop()
	stack.Push(newWord().Or(x, y))
	return nil, nil
}

func opXor(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	y, _ := stack.Pop()
	stack.Push(newWord().Xor(x, y))
	return nil, nil
}

func opNot(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x, _ := stack.Pop()
	stack.Push(newWord().Not(x))
	return nil, nil
}

func opByte(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	i, _ := stack.Pop()
	x, _ := stack.Pop()
	stack.Push(byteAt(i, x))
	return nil, nil
}

func opShl(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	shift, _ := stack.Pop()
	value, _ := stack.Pop()
	stack.Push(shl(shift, value))
	return nil, nil
}

func opShr(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	shift, _ := stack.Pop()
	value, _ := stack.Pop()
	stack.Push(shr(shift, value))
	return nil, nil
}

func opSar(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	shift, _ := stack.Pop()
	value, _ := stack.Pop()
	stack.Push(sar(shift, value))
	return nil, nil
}

func opSha3(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	offset, _ := stack.Pop()
	size, _ := stack.Pop()
	data := mem.Load(toUint64Clamped(offset), toUint64Clamped(size))
	hash := crypto.Keccak256(data)
	w := newWord()
	w.SetBytes32(hash)
	stack.Push(w)
	return nil, nil
}

func opAddress(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(addressToWord(contract.Address))
	return nil, nil
}

func opBalance(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	addrW, _ := stack.Pop()
	stack.Push(in.Env.State.GetBalance(wordToAddress(addrW)))
	return nil, nil
}

func opOrigin(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(addressToWord(in.Env.Caller))
	return nil, nil
}

func opCaller(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(addressToWord(contract.CallerAddress))
	return nil, nil
}

func opCallValue(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(cloneWord(contract.Value))
	return nil, nil
}

func opCalldataLoad(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	i, _ := stack.Pop()
	b := getData(contract.Input, toUint64Clamped(i), 32)
	w := newWord()
	w.SetBytes32(b)
	stack.Push(w)
	return nil, nil
}

func opCalldataSize(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(newWord().SetUint64(uint64(len(contract.Input))))
	return nil, nil
}

func opCalldataCopy(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	destOffset, _ := stack.Pop()
	offset, _ := stack.Pop()
	size, _ := stack.Pop()
	data := getData(contract.Input, toUint64Clamped(offset), toUint64Clamped(size))
	mem.Store(toUint64Clamped(destOffset), data)
	return nil, nil
}

func opCodeSize(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(newWord().SetUint64(uint64(len(contract.Code))))
	return nil, nil
}

func opCodeCopy(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	destOffset, _ := stack.Pop()
	offset, _ := stack.Pop()
	size, _ := stack.Pop()
	data := getData(contract.Code, toUint64Clamped(offset), toUint64Clamped(size))
	mem.Store(toUint64Clamped(destOffset), data)
	return nil, nil
}

func opGasPrice(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(cloneWord(in.Env.GasPrice))
	return nil, nil
}

func opExtCodeSize(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	addrW, _ := stack.Pop()
	code := in.Env.State.GetCode(wordToAddress(addrW))
	stack.Push(newWord().SetUint64(uint64(len(code))))
	return nil, nil
}

func opExtCodeCopy(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	addrW, _ := stack.Pop()
	destOffset, _ := stack.Pop()
	offset, _ := stack.Pop()
	size, _ := stack.Pop()
	code := in.Env.State.GetCode(wordToAddress(addrW))
	data := getData(code, toUint64Clamped(offset), toUint64Clamped(size))
	mem.Store(toUint64Clamped(destOffset), data)
	return nil, nil
}

func opReturndataSize(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(newWord().SetUint64(uint64(len(in.returnData))))
	return nil, nil
}

func opReturndataCopy(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	destOffset, _ := stack.Pop()
	offset, _ := stack.Pop()
	size, _ := stack.Pop()
	off := toUint64Clamped(offset)
	sz := toUint64Clamped(size)
	if off+sz > uint64(len(in.returnData)) {
		return nil, ErrReturnDataOutOfBounds
	}
	mem.Store(toUint64Clamped(destOffset), in.returnData[off:off+sz])
	return nil, nil
}

func opExtCodeHash(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	addrW, _ := stack.Pop()
	account := in.Env.State.GetAccount(wordToAddress(addrW))
	var hash types.Hash
	switch account.Kind {
	case types.AccountEmpty:
		hash = types.Hash{}
	case types.AccountExternallyOwned:
		hash = types.EmptyCodeHash
	default:
		hash = crypto.Keccak256Hash(account.Code)
	}
	w := newWord()
	w.SetBytes32(hash[:])
	stack.Push(w)
	return nil, nil
}

func opBlockhash(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	n, _ := stack.Pop()
	h := in.Env.BlockHash(toUint64Clamped(n))
	w := newWord()
	w.SetBytes32(h[:])
	stack.Push(w)
	return nil, nil
}

func opCoinbase(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(addressToWord(in.Env.Coinbase))
	return nil, nil
}

func opTimestamp(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(newWord().SetUint64(in.Env.Time))
	return nil, nil
}

func opNumber(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(newWord().SetUint64(in.Env.Number))
	return nil, nil
}

func opDifficulty(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(cloneWord(in.Env.Difficulty))
	return nil, nil
}

func opGasLimit(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(newWord().SetUint64(in.Env.GasLimit))
	return nil, nil
}

func opChainID(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(cloneWord(in.Env.ChainID))
	return nil, nil
}

func opSelfBalance(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(in.Env.State.GetBalance(contract.Address))
	return nil, nil
}

func opBaseFee(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(cloneWord(in.Env.BaseFeePerGas))
	return nil, nil
}

func opPop(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	_, _ = stack.Pop()
	return nil, nil
}

func opMload(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	offset, _ := stack.Pop()
	stack.Push(mem.LoadWord(toUint64Clamped(offset)))
	return nil, nil
}

func opMstore(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	offset, _ := stack.Pop()
	value, _ := stack.Pop()
	mem.StoreWord(toUint64Clamped(offset), value)
	return nil, nil
}

func opMstore8(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	offset, _ := stack.Pop()
	value, _ := stack.Pop()
	mem.StoreByte(toUint64Clamped(offset), byte(value.Uint64()&0xFF))
	return nil, nil
}

func opSload(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	key, _ := stack.Pop()
	val := in.Env.State.GetState(contract.Address, *key)
	stack.Push(&val)
	return nil, nil
}

func opSstore(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	key, _ := stack.Pop()
	value, _ := stack.Pop()
	in.Env.State.SetState(contract.Address, *key, *value)
	return nil, nil
}

func opJump(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	dest, _ := stack.Pop()
	if !contract.validJumpdest(dest) {
		return nil, ErrInvalidJumpdest
	}
	*pc = dest.Uint64()
	return nil, nil
}

func opJumpi(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	dest, _ := stack.Pop()
	cond, _ := stack.Pop()
	if cond.IsZero() {
		*pc++
		return nil, nil
	}
	if !contract.validJumpdest(dest) {
		return nil, ErrInvalidJumpdest
	}
	*pc = dest.Uint64()
	return nil, nil
}

// opPc pushes the offset of the currently executing opcode. Unlike a design
// where pc has already advanced by the time an opcode inspects it, this
// interpreter only increments pc after execute returns (see Run), so the
// value here needs no adjustment.
func opPc(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(newWord().SetUint64(*pc))
	return nil, nil
}

func opMsize(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(newWord().SetUint64(uint64(mem.Len())))
	return nil, nil
}

func opGas(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).Not(newWord()))
	return nil, nil
}

func opJumpdest(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	return nil, nil
}

// makePush returns the execute function for PUSH1..PUSH32: it reads n
// immediate bytes following the opcode; if the code ends early, the bytes
// that are present are read as a shorter big-endian integer (left-padded
// with zero). It advances pc by n (the opcode byte itself is accounted for
// by Run's generic pc++).
func makePush(n int) executionFunc {
	return func(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
		start := *pc + 1
		end := start + uint64(n)
		codeLen := uint64(len(contract.Code))
		if end > codeLen {
			end = codeLen
		}
		var buf [32]byte
		if start < end {
			avail := contract.Code[start:end]
			copy(buf[32-len(avail):], avail)
		}
		w := newWord()
		w.SetBytes32(buf[:])
		stack.Push(w)
		*pc += uint64(n)
		return nil, nil
	}
}

func makeDup(n int) executionFunc {
	return func(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
		if err := stack.Dup(n); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func makeSwap(n int) executionFunc {
	return func(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
		if err := stack.Swap(n); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

// makeLog returns the execute function for LOG0..LOGn: it pops the memory
// range, then n topics (nearest the top first), and appends the resulting
// log to the current frame's log sink.
func makeLog(n int) executionFunc {
	return func(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
		offset, _ := stack.Pop()
		size, _ := stack.Pop()
		topics := make([]uint256.Int, n)
		for i := 0; i < n; i++ {
			t, _ := stack.Pop()
			topics[i] = *t
		}
		data := mem.Load(toUint64Clamped(offset), toUint64Clamped(size))
		logEntry := types.NewLog(contract.Address, topics, data)
		*in.curLogs = append(*in.curLogs, logEntry)
		return nil, nil
	}
}

func opCall(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	_, _ = stack.Pop() // gas: GAS metering is out of scope, the value is unused
	addrW, _ := stack.Pop()
	value, _ := stack.Pop()
	argsOffset, _ := stack.Pop()
	argsSize, _ := stack.Pop()
	retOffset, _ := stack.Pop()
	retSize, _ := stack.Pop()

	if contract.IsStaticCall && !value.IsZero() {
		return nil, ErrWriteProtection
	}

	addr := wordToAddress(addrW)
	args := mem.Load(toUint64Clamped(argsOffset), toUint64Clamped(argsSize))

	success, output := in.call(contract, MessageCall, addr, value, args)
	in.returnData = output
	writeBack(mem, retOffset, retSize, output)
	pushBool(stack, success)
	return nil, nil
}

func opDelegateCall(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	_, _ = stack.Pop() // gas, unused
	addrW, _ := stack.Pop()
	argsOffset, _ := stack.Pop()
	argsSize, _ := stack.Pop()
	retOffset, _ := stack.Pop()
	retSize, _ := stack.Pop()

	addr := wordToAddress(addrW)
	args := mem.Load(toUint64Clamped(argsOffset), toUint64Clamped(argsSize))

	success, output := in.call(contract, MessageDelegatecall, addr, nil, args)
	in.returnData = output
	writeBack(mem, retOffset, retSize, output)
	pushBool(stack, success)
	return nil, nil
}

func opStaticCall(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	_, _ = stack.Pop() // gas, unused
	addrW, _ := stack.Pop()
	argsOffset, _ := stack.Pop()
	argsSize, _ := stack.Pop()
	retOffset, _ := stack.Pop()
	retSize, _ := stack.Pop()

	addr := wordToAddress(addrW)
	args := mem.Load(toUint64Clamped(argsOffset), toUint64Clamped(argsSize))

	success, output := in.call(contract, MessageStaticcall, addr, nil, args)
	in.returnData = output
	writeBack(mem, retOffset, retSize, output)
	pushBool(stack, success)
	return nil, nil
}

func opReturn(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	offset, _ := stack.Pop()
	size, _ := stack.Pop()
	return mem.Load(toUint64Clamped(offset), toUint64Clamped(size)), nil
}

func opRevert(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	offset, _ := stack.Pop()
	size, _ := stack.Pop()
	data := mem.Load(toUint64Clamped(offset), toUint64Clamped(size))
	return data, &RevertError{Data: data}
}

func opInvalid(pc *uint64, in *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	return nil, ErrInvalidOpCode
}
