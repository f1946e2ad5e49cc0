package types

import "github.com/holiman/uint256"

// AccountKind tags the three possible shapes an address can resolve to.
type AccountKind uint8

const (
	// AccountEmpty has no balance, no code, and no storage. It is the
	// default for any address absent from State.
	AccountEmpty AccountKind = iota
	// AccountExternallyOwned has a balance and nonce but no code.
	AccountExternallyOwned
	// AccountContract has a balance, nonce, code, and persistent storage.
	AccountContract
)

// Account is the tagged per-address state the interpreter reads and writes.
// The zero value is an Empty account.
type Account struct {
	Kind    AccountKind
	Nonce   uint64
	Balance *uint256.Int
	Code    []byte
	Storage map[uint256.Int]uint256.Int
}

// EmptyAccount returns a fresh Empty account.
func EmptyAccount() Account {
	return Account{Kind: AccountEmpty, Balance: uint256.NewInt(0)}
}

// NewExternallyOwnedAccount returns an account with a balance and no code.
func NewExternallyOwnedAccount(balance *uint256.Int) Account {
	if balance == nil {
		balance = uint256.NewInt(0)
	}
	return Account{Kind: AccountExternallyOwned, Balance: balance}
}

// NewContractAccount returns an account with a balance, code, and empty storage.
func NewContractAccount(balance *uint256.Int, code []byte) Account {
	if balance == nil {
		balance = uint256.NewInt(0)
	}
	return Account{
		Kind:    AccountContract,
		Balance: balance,
		Code:    code,
		Storage: make(map[uint256.Int]uint256.Int),
	}
}

// IsEmpty reports whether the account is the Empty variant.
func (a Account) IsEmpty() bool { return a.Kind == AccountEmpty }

// HasCode reports whether the account carries contract code.
func (a Account) HasCode() bool { return a.Kind == AccountContract && len(a.Code) > 0 }

// GetBalance returns the account's balance, or zero for Empty.
func (a Account) GetBalance() *uint256.Int {
	if a.Balance == nil {
		return uint256.NewInt(0)
	}
	return a.Balance
}

// GetCode returns the account's code, or nil for Empty/ExternallyOwned.
func (a Account) GetCode() []byte {
	if a.Kind != AccountContract {
		return nil
	}
	return a.Code
}

// GetState reads a storage slot, defaulting to zero for any key not present
// (including on non-Contract accounts, which have no storage at all).
func (a Account) GetState(key uint256.Int) uint256.Int {
	if a.Kind != AccountContract || a.Storage == nil {
		return uint256.Int{}
	}
	return a.Storage[key]
}

// SetState writes a storage slot. Writing the zero value removes the key,
// matching the "default 0, writing 0 removes the key" invariant.
func (a *Account) SetState(key, value uint256.Int) {
	if a.Kind != AccountContract {
		return
	}
	if a.Storage == nil {
		a.Storage = make(map[uint256.Int]uint256.Int)
	}
	if value == (uint256.Int{}) {
		delete(a.Storage, key)
		return
	}
	a.Storage[key] = value
}

// clone returns a deep copy, independent of the receiver's backing storage
// map and balance pointer.
func (a Account) clone() Account {
	out := Account{Kind: a.Kind, Nonce: a.Nonce}
	if a.Balance != nil {
		out.Balance = new(uint256.Int).Set(a.Balance)
	} else {
		out.Balance = uint256.NewInt(0)
	}
	if a.Code != nil {
		out.Code = append([]byte(nil), a.Code...)
	}
	if a.Storage != nil {
		out.Storage = make(map[uint256.Int]uint256.Int, len(a.Storage))
		for k, v := range a.Storage {
			out.Storage[k] = v
		}
	}
	return out
}

// Clone returns a deep, independent copy of the account.
func (a Account) Clone() Account { return a.clone() }
