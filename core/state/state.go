// Package state implements the world state: a map from address to account,
// clonable in O(n) so the interpreter can snapshot it on frame entry and
// restore it verbatim on revert.
package state

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/core/types"
)

// ErrInsufficientBalance is returned by SubBalance when the account does not
// hold enough value to cover the transfer.
var ErrInsufficientBalance = errors.New("state: insufficient balance")

// State is the single source of truth for balances, code, and storage.
// Addresses absent from the map behave as types.Account{} (Empty).
type State struct {
	accounts map[types.Address]types.Account
}

// New returns a State seeded with the given accounts. A nil map is treated
// as empty.
func New(accounts map[types.Address]types.Account) *State {
	if accounts == nil {
		accounts = make(map[types.Address]types.Account)
	}
	return &State{accounts: accounts}
}

// GetAccount returns the account at addr, or Empty if absent. The returned
// value is independent of the State's internal storage for scalar fields,
// but shares the Storage map with the live state for Contract accounts; do
// not mutate it directly, go through SetState/SetCode/etc.
func (s *State) GetAccount(addr types.Address) types.Account {
	if a, ok := s.accounts[addr]; ok {
		return a
	}
	return types.EmptyAccount()
}

// GetBalance returns the balance of addr, zero if Empty.
func (s *State) GetBalance(addr types.Address) *uint256.Int {
	return s.GetAccount(addr).GetBalance()
}

// GetCode returns the code at addr, nil if the account has none.
func (s *State) GetCode(addr types.Address) []byte {
	return s.GetAccount(addr).GetCode()
}

// GetState reads a storage slot of addr, zero if absent or non-Contract.
func (s *State) GetState(addr types.Address, key uint256.Int) uint256.Int {
	return s.GetAccount(addr).GetState(key)
}

// SetState writes a storage slot of addr, upgrading an Empty/EOA account to
// a Contract account on first write (mirrors the donor source's `set_code`
// account-kind promotion rule, applied here to storage since CREATE, which
// would normally promote an account by deploying code, is out of scope).
func (s *State) SetState(addr types.Address, key, value uint256.Int) {
	a := s.GetAccount(addr)
	if a.Kind != types.AccountContract {
		a = types.NewContractAccount(a.GetBalance(), a.GetCode())
	}
	a.SetState(key, value)
	s.accounts[addr] = a
}

// SetCode sets the code of addr, promoting it to a Contract account.
func (s *State) SetCode(addr types.Address, code []byte) {
	a := s.GetAccount(addr)
	balance := a.GetBalance()
	storage := map[uint256.Int]uint256.Int{}
	if a.Kind == types.AccountContract {
		storage = a.Storage
	}
	s.accounts[addr] = types.Account{
		Kind:    types.AccountContract,
		Nonce:   a.Nonce,
		Balance: balance,
		Code:    code,
		Storage: storage,
	}
}

// AddBalance credits amount to addr, promoting an Empty account to
// ExternallyOwned. A Contract account keeps its kind.
func (s *State) AddBalance(addr types.Address, amount *uint256.Int) {
	if amount == nil || amount.IsZero() {
		return
	}
	a := s.GetAccount(addr)
	newBalance := new(uint256.Int).Add(a.GetBalance(), amount)
	switch a.Kind {
	case types.AccountContract:
		a.Balance = newBalance
		s.accounts[addr] = a
	default:
		s.accounts[addr] = types.NewExternallyOwnedAccount(newBalance)
	}
}

// SubBalance debits amount from addr. Returns ErrInsufficientBalance without
// mutating state if the account's balance is lower than amount.
func (s *State) SubBalance(addr types.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	a := s.GetAccount(addr)
	balance := a.GetBalance()
	if balance.Lt(amount) {
		return ErrInsufficientBalance
	}
	a.Balance = new(uint256.Int).Sub(balance, amount)
	s.accounts[addr] = a
	return nil
}

// Clone returns a deep, independent copy of the state, suitable as a
// pre-execution snapshot to be restored verbatim on frame revert.
func (s *State) Clone() *State {
	out := make(map[types.Address]types.Account, len(s.accounts))
	for addr, a := range s.accounts {
		out[addr] = a.Clone()
	}
	return &State{accounts: out}
}

// RestoreFrom replaces the receiver's contents with snapshot's, in place, so
// outstanding references to the State continue to observe the rollback. The
// receiver takes a deep copy, so later mutations never reach snapshot.
func (s *State) RestoreFrom(snapshot *State) {
	s.accounts = snapshot.Clone().accounts
}
