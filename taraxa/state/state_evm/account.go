package state_evm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/state_db"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util/keccak256"
)

// Account is the view of one account inside an attempt. origin is the account as
// first loaded, current is nil while the account does not exist.
type Account struct {
	addr           common.Address
	host           *State
	origin         *state_db.Account
	current        *state_db.Account
	code           []byte
	code_loaded    bool
	code_dirty     bool
	header_dirty   bool
	storage_origin state_db.Storage
	storage_dirty  state_db.Storage
	// set when storage of the account was wiped in this attempt; loads then read zero
	storage_cleared bool
	destroyed       bool
	touched         bool
}

func (self *Account) Address() common.Address {
	return self.addr
}

func (self *Account) exists() bool {
	return self.current != nil
}

func (self *Account) is_eip161_empty() bool {
	return self.current == nil || self.current.IsEIP161Empty()
}

func (self *Account) balance() *uint256.Int {
	if self.current == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(self.current.Balance)
}

func (self *Account) original_balance() *uint256.Int {
	if self.origin == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(self.origin.Balance)
}

func (self *Account) nonce() uint64 {
	if self.current == nil {
		return 0
	}
	return self.current.Nonce
}

func (self *Account) code_hash() common.Hash {
	if self.current == nil {
		return common.Hash{}
	}
	return self.current.CodeHash
}

func (self *Account) get_code() []byte {
	if self.current == nil || !self.current.HasCode() {
		return nil
	}
	if !self.code_loaded {
		self.code = self.host.load_code(&self.current.CodeHash)
		self.code_loaded = true
	}
	return self.code
}

func (self *Account) committed_storage(key common.Hash) common.Hash {
	if self.storage_cleared || self.current == nil && self.origin == nil {
		return common.Hash{}
	}
	if value, present := self.storage_origin[key]; present {
		return value
	}
	value := self.host.load_storage(self.addr, key)
	if self.storage_origin == nil {
		self.storage_origin = make(state_db.Storage)
	}
	self.storage_origin[key] = value
	return value
}

func (self *Account) get_storage(key common.Hash) common.Hash {
	if value, present := self.storage_dirty[key]; present {
		return value
	}
	return self.committed_storage(key)
}

func (self *Account) ensure_exists() {
	if self.current != nil {
		return
	}
	self.set_header(state_db.NewAccount())
}

func (self *Account) set_header(acc *state_db.Account) {
	prev, prev_dirty := self.current, self.header_dirty
	self.host.register_change(func() {
		self.current, self.header_dirty = prev, prev_dirty
	})
	self.current, self.header_dirty = acc, true
	self.host.record_write(HeaderKey(self.addr))
}

// mutable_header returns a private copy of the header to mutate in place.
func (self *Account) mutable_header() *state_db.Account {
	self.ensure_exists()
	self.set_header(self.current.Copy())
	return self.current
}

func (self *Account) touch() {
	if self.touched {
		return
	}
	self.touched = true
	self.host.register_change(func() {
		self.touched = false
	})
}

func (self *Account) add_balance(amount *uint256.Int) {
	self.ensure_exists()
	self.touch()
	if amount.IsZero() {
		return
	}
	sum, overflow := new(uint256.Int).AddOverflow(self.current.Balance, amount)
	if overflow {
		util.PanicInvariant("balance overflow for %s", self.addr.Hex())
	}
	self.mutable_header().Balance = sum
}

func (self *Account) sub_balance(amount *uint256.Int) error {
	if amount.IsZero() {
		self.ensure_exists()
		self.touch()
		return nil
	}
	if self.current == nil || self.current.Balance.Lt(amount) {
		return ErrInsufficientBalance
	}
	self.touch()
	header := self.mutable_header()
	header.Balance = new(uint256.Int).Sub(header.Balance, amount)
	return nil
}

func (self *Account) set_nonce(nonce uint64) {
	self.touch()
	self.mutable_header().Nonce = nonce
}

func (self *Account) set_code(code []byte) {
	prev_code, prev_loaded, prev_dirty := self.code, self.code_loaded, self.code_dirty
	self.host.register_change(func() {
		self.code, self.code_loaded, self.code_dirty = prev_code, prev_loaded, prev_dirty
	})
	self.touch()
	hash := keccak256.EmptyHash
	if len(code) != 0 {
		hash = keccak256.Hash(code)
	}
	self.mutable_header().CodeHash = hash
	self.code, self.code_loaded, self.code_dirty = common.CopyBytes(code), true, len(code) != 0
}

func (self *Account) set_storage(key, value common.Hash) {
	self.ensure_exists()
	prev, present := self.storage_dirty[key]
	self.host.register_change(func() {
		if present {
			self.storage_dirty[key] = prev
		} else {
			delete(self.storage_dirty, key)
		}
	})
	if self.storage_dirty == nil {
		self.storage_dirty = make(state_db.Storage)
	}
	self.storage_dirty[key] = value
	self.host.record_write(SlotKey(self.addr, key))
}

// clear_storage drops every slot, both loaded and written.
func (self *Account) clear_storage() {
	prev_cleared, prev_origin, prev_dirty := self.storage_cleared, self.storage_origin, self.storage_dirty
	self.host.register_change(func() {
		self.storage_cleared, self.storage_origin, self.storage_dirty = prev_cleared, prev_origin, prev_dirty
	})
	self.storage_cleared, self.storage_origin, self.storage_dirty = true, nil, nil
	self.host.record_write(StorageRootKey(self.addr))
}

func (self *Account) remove() {
	if self.current == nil && !self.header_dirty && self.origin == nil {
		return
	}
	self.clear_storage()
	prev, prev_dirty := self.current, self.header_dirty
	self.host.register_change(func() {
		self.current, self.header_dirty = prev, prev_dirty
	})
	self.current, self.header_dirty = nil, true
	self.code, self.code_loaded, self.code_dirty = nil, true, false
	self.host.record_write(HeaderKey(self.addr))
}
