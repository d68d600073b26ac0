package state_db

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Memory is a map backed DB, used by tests and as the genesis staging area.
type Memory struct {
	mu        sync.RWMutex
	accounts  map[common.Address]*Account
	storage   map[common.Address]Storage
	code      map[common.Hash][]byte
	latest    BlockNum
	has_block bool
}

func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[common.Address]*Account),
		storage:  make(map[common.Address]Storage),
		code:     make(map[common.Hash][]byte),
	}
}

func (self *Memory) GetAccount(addr *common.Address) (*Account, error) {
	self.mu.RLock()
	defer self.mu.RUnlock()
	if acc := self.accounts[*addr]; acc != nil {
		return acc.Copy(), nil
	}
	return nil, nil
}

func (self *Memory) GetStorage(addr *common.Address, key *common.Hash) (common.Hash, error) {
	self.mu.RLock()
	defer self.mu.RUnlock()
	return self.storage[*addr][*key], nil
}

func (self *Memory) GetCode(hash *common.Hash) ([]byte, error) {
	self.mu.RLock()
	defer self.mu.RUnlock()
	return common.CopyBytes(self.code[*hash]), nil
}

func (self *Memory) LatestBlock() (BlockNum, bool) {
	self.mu.RLock()
	defer self.mu.RUnlock()
	return self.latest, self.has_block
}

func (self *Memory) Commit(blk_n BlockNum, delta *BlockDelta) error {
	self.mu.Lock()
	defer self.mu.Unlock()
	if self.has_block && blk_n <= self.latest {
		return ErrFutureBlock
	}
	for i := range delta.Accounts {
		acc_delta := &delta.Accounts[i]
		addr := acc_delta.Address
		if acc_delta.Removed {
			delete(self.accounts, addr)
			delete(self.storage, addr)
		}
		if acc_delta.Account != nil {
			self.accounts[addr] = acc_delta.Account.Copy()
		}
		if acc_delta.Code != nil {
			self.code[acc_delta.Account.CodeHash] = common.CopyBytes(acc_delta.Code)
		}
		for _, entry := range acc_delta.Storage {
			self.put_storage(addr, entry)
		}
	}
	self.latest, self.has_block = blk_n, true
	return nil
}

func (self *Memory) put_storage(addr common.Address, entry StorageEntry) {
	slots := self.storage[addr]
	if entry.Value == (common.Hash{}) {
		if slots != nil {
			delete(slots, entry.Key)
		}
		return
	}
	if slots == nil {
		slots = make(Storage)
		self.storage[addr] = slots
	}
	slots[entry.Key] = entry.Value
}
