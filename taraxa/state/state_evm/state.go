package state_evm

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/revision"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/state_db"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util"
)

// State is one speculative execution attempt of a transaction. It is owned by a single
// goroutine. Reads fall through to the block state and are recorded in the read set,
// writes stay local until BlockState.Merge.
type State struct {
	host         *BlockState
	inc          Incarnation
	baseline     uint64
	accounts     map[common.Address]*Account
	reads        mapset.Set[Handle]
	writes       mapset.Set[Handle]
	journal      util.RevertLog
	access_list  access_list
	transient    state_db.TransientStorage
	refund       uint64
	static_depth int
	finalized    bool
	merged       bool
	db_err       error
}

func (self *State) init(host *BlockState, inc Incarnation, baseline uint64) *State {
	self.host, self.inc, self.baseline = host, inc, baseline
	self.accounts = make(map[common.Address]*Account)
	self.reads = mapset.NewThreadUnsafeSet[Handle]()
	self.writes = mapset.NewThreadUnsafeSet[Handle]()
	self.journal.Init(256)
	self.access_list.init()
	self.transient = make(state_db.TransientStorage)
	return self
}

func (self *State) Incarnation() Incarnation {
	return self.inc
}

func (self *State) Revision() revision.ID {
	return self.host.rev
}

// Baseline is the block state version this attempt started from.
func (self *State) Baseline() uint64 {
	return self.baseline
}

func (self *State) ReadSet() mapset.Set[Handle] {
	return self.reads
}

func (self *State) WriteSet() mapset.Set[Handle] {
	return self.writes
}

// Error returns the first store error met while loading state. Values read after a
// store error are zero, so an attempt with an error must not be merged.
func (self *State) Error() error {
	return self.db_err
}

func (self *State) set_db_err(err error) {
	if err != nil && self.db_err == nil {
		self.db_err = err
	}
}

func (self *State) record_read(key StateKey) {
	self.reads.Add(self.host.keys.Handle(key))
}

// record_write is journaled: keys whose writes are reverted leave the write set.
func (self *State) record_write(key StateKey) {
	h := self.host.keys.Handle(key)
	if !self.writes.Add(h) {
		return
	}
	self.register_change(func() {
		self.writes.Remove(h)
	})
}

func (self *State) register_change(revert func()) {
	self.journal.Append(revert)
}

func (self *State) get_account(addr common.Address) *Account {
	if acc, present := self.accounts[addr]; present {
		return acc
	}
	self.record_read(HeaderKey(addr))
	acc := &Account{addr: addr, host: self}
	loaded, err := self.host.read_account(&addr)
	self.set_db_err(err)
	if loaded != nil {
		acc.origin, acc.current = loaded, loaded.Copy()
	}
	self.accounts[addr] = acc
	return acc
}

func (self *State) load_storage(addr common.Address, key common.Hash) common.Hash {
	self.record_read(StorageRootKey(addr))
	self.record_read(SlotKey(addr, key))
	value, err := self.host.read_storage(&addr, &key)
	self.set_db_err(err)
	return value
}

func (self *State) load_code(hash *common.Hash) []byte {
	code, err := self.host.read_code(hash)
	self.set_db_err(err)
	return code
}

func (self *State) check_writable() error {
	if self.static_depth > 0 {
		return ErrWriteProtection
	}
	util.Assert(!self.finalized, "write to finalized attempt", self.inc.String())
	return nil
}

// EnterStatic marks the start of a read-only call frame; the returned function ends it.
func (self *State) EnterStatic() (exit func()) {
	self.static_depth++
	return func() {
		self.static_depth--
	}
}

func (self *State) IsStatic() bool {
	return self.static_depth > 0
}

func (self *State) Exists(addr common.Address) bool {
	return self.get_account(addr).exists()
}

// IsEmpty reports EIP-161 emptiness; non-existent accounts are empty.
func (self *State) IsEmpty(addr common.Address) bool {
	return self.get_account(addr).is_eip161_empty()
}

func (self *State) IsDestroyed(addr common.Address) bool {
	return self.get_account(addr).destroyed
}

func (self *State) GetBalance(addr common.Address) *uint256.Int {
	return self.get_account(addr).balance()
}

// GetOriginalBalance is the balance the attempt observed before any of its own writes.
func (self *State) GetOriginalBalance(addr common.Address) *uint256.Int {
	return self.get_account(addr).original_balance()
}

func (self *State) AddBalance(addr common.Address, amount *uint256.Int) error {
	if err := self.check_writable(); err != nil {
		return err
	}
	self.get_account(addr).add_balance(amount)
	return nil
}

func (self *State) SubBalance(addr common.Address, amount *uint256.Int) error {
	if err := self.check_writable(); err != nil {
		return err
	}
	return self.get_account(addr).sub_balance(amount)
}

func (self *State) GetNonce(addr common.Address) uint64 {
	return self.get_account(addr).nonce()
}

func (self *State) SetNonce(addr common.Address, nonce uint64) error {
	if err := self.check_writable(); err != nil {
		return err
	}
	self.get_account(addr).set_nonce(nonce)
	return nil
}

func (self *State) IncrementNonce(addr common.Address) error {
	if err := self.check_writable(); err != nil {
		return err
	}
	acc := self.get_account(addr)
	acc.set_nonce(acc.nonce() + 1)
	return nil
}

func (self *State) GetCode(addr common.Address) []byte {
	return self.get_account(addr).get_code()
}

// GetCodeHash is zero for non-existent accounts and the empty code hash for
// existing accounts without code.
func (self *State) GetCodeHash(addr common.Address) common.Hash {
	return self.get_account(addr).code_hash()
}

func (self *State) GetCodeSize(addr common.Address) int {
	return len(self.get_account(addr).get_code())
}

func (self *State) SetCode(addr common.Address, code []byte) error {
	if err := self.check_writable(); err != nil {
		return err
	}
	self.get_account(addr).set_code(code)
	return nil
}

// CreateContract turns addr into a fresh account with no code and no storage. The
// balance is preserved.
func (self *State) CreateContract(addr common.Address) error {
	if err := self.check_writable(); err != nil {
		return err
	}
	acc := self.get_account(addr)
	fresh := state_db.NewAccount()
	if acc.exists() {
		fresh.Balance.Set(acc.current.Balance)
	}
	acc.clear_storage()
	acc.set_header(fresh)
	acc.touch()
	return nil
}

func (self *State) GetStorage(addr common.Address, key common.Hash) common.Hash {
	return self.get_account(addr).get_storage(key)
}

// GetCommittedStorage is the value of the slot before the transaction wrote to it.
func (self *State) GetCommittedStorage(addr common.Address, key common.Hash) common.Hash {
	return self.get_account(addr).committed_storage(key)
}

func (self *State) SetStorage(addr common.Address, key, value common.Hash) error {
	if err := self.check_writable(); err != nil {
		return err
	}
	self.get_account(addr).set_storage(key, value)
	return nil
}

func (self *State) GetTransientStorage(addr common.Address, key common.Hash) common.Hash {
	return self.transient.Get(addr, key)
}

func (self *State) SetTransientStorage(addr common.Address, key, value common.Hash) error {
	if err := self.check_writable(); err != nil {
		return err
	}
	prev := self.transient.Get(addr, key)
	if prev == value {
		return nil
	}
	self.register_change(func() {
		self.transient.Set(addr, key, prev)
	})
	self.transient.Set(addr, key, value)
	return nil
}

// Destruct moves the whole balance of addr to beneficiary and schedules addr for
// removal at the end of the transaction.
func (self *State) Destruct(addr, beneficiary common.Address) error {
	if err := self.check_writable(); err != nil {
		return err
	}
	acc := self.get_account(addr)
	if !acc.exists() {
		return nil
	}
	balance := acc.balance()
	if addr != beneficiary {
		self.get_account(beneficiary).add_balance(balance)
	}
	acc.mutable_header().Balance = new(uint256.Int)
	if !acc.destroyed {
		acc.destroyed = true
		self.register_change(func() {
			acc.destroyed = false
		})
	}
	return nil
}

func (self *State) Snapshot() int {
	return self.journal.Snapshot()
}

func (self *State) RevertToSnapshot(snapshot int) {
	self.journal.RevertToSnapshot(snapshot)
}

func (self *State) AddRefund(gas uint64) {
	prev := self.refund
	self.register_change(func() {
		self.refund = prev
	})
	self.refund += gas
}

func (self *State) SubRefund(gas uint64) {
	util.Assert(gas <= self.refund, "refund counter below zero")
	prev := self.refund
	self.register_change(func() {
		self.refund = prev
	})
	self.refund -= gas
}

func (self *State) GetRefund() uint64 {
	return self.refund
}

// FinalizeTransaction removes destroyed accounts and, from SPURIOUS_DRAGON on,
// touched empty ones. Transient storage, access list, refund counter and journal
// do not outlive the transaction.
func (self *State) FinalizeTransaction() {
	if self.finalized {
		return
	}
	eip161 := self.host.rev.Has(revision.EIP161)
	for _, acc := range self.accounts {
		if acc.destroyed || eip161 && acc.touched && acc.exists() && acc.is_eip161_empty() {
			acc.remove()
		}
		acc.destroyed, acc.touched = false, false
	}
	self.transient.Clear()
	self.access_list.init()
	self.refund = 0
	self.journal.Reset()
	self.finalized = true
}
