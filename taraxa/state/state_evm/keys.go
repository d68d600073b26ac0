package state_evm

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

type KeyKind uint8

const (
	// KEY_HEADER covers balance, nonce, code and existence of an account
	KEY_HEADER KeyKind = iota
	// KEY_STORAGE_ROOT is written when all storage of an account is wiped
	KEY_STORAGE_ROOT
	KEY_SLOT
)

// StateKey is the unit of conflict detection.
type StateKey struct {
	Addr common.Address
	Slot common.Hash
	Kind KeyKind
}

func HeaderKey(addr common.Address) StateKey {
	return StateKey{Addr: addr, Kind: KEY_HEADER}
}

func StorageRootKey(addr common.Address) StateKey {
	return StateKey{Addr: addr, Kind: KEY_STORAGE_ROOT}
}

func SlotKey(addr common.Address, slot common.Hash) StateKey {
	return StateKey{addr, slot, KEY_SLOT}
}

type Handle uint32

// KeyArena interns state keys into dense handles, shared by all attempts of a block.
type KeyArena struct {
	mu   sync.RWMutex
	ids  map[StateKey]Handle
	keys []StateKey
}

func (self *KeyArena) Init(capacity int) *KeyArena {
	self.ids = make(map[StateKey]Handle, capacity)
	self.keys = make([]StateKey, 0, capacity)
	return self
}

func (self *KeyArena) Handle(key StateKey) Handle {
	self.mu.RLock()
	h, present := self.ids[key]
	self.mu.RUnlock()
	if present {
		return h
	}
	self.mu.Lock()
	defer self.mu.Unlock()
	if h, present = self.ids[key]; !present {
		h = Handle(len(self.keys))
		self.ids[key] = h
		self.keys = append(self.keys, key)
	}
	return h
}

func (self *KeyArena) Key(h Handle) StateKey {
	self.mu.RLock()
	defer self.mu.RUnlock()
	return self.keys[h]
}

func (self *KeyArena) Len() int {
	self.mu.RLock()
	defer self.mu.RUnlock()
	return len(self.keys)
}
