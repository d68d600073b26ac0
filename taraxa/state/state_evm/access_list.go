package state_evm

import (
	"github.com/ethereum/go-ethereum/common"
)

// access_list holds the EIP-2929 warm addresses and slots of the current transaction.
type access_list struct {
	addresses map[common.Address]struct{}
	slots     map[StateKey]struct{}
}

func (self *access_list) init() {
	self.addresses = make(map[common.Address]struct{})
	self.slots = make(map[StateKey]struct{})
}

func (self *State) AddressInAccessList(addr common.Address) bool {
	_, ok := self.access_list.addresses[addr]
	return ok
}

func (self *State) SlotInAccessList(addr common.Address, slot common.Hash) (address_ok, slot_ok bool) {
	address_ok = self.AddressInAccessList(addr)
	_, slot_ok = self.access_list.slots[SlotKey(addr, slot)]
	return
}

// AddAddressToAccessList reports whether addr was cold.
func (self *State) AddAddressToAccessList(addr common.Address) bool {
	if self.AddressInAccessList(addr) {
		return false
	}
	self.access_list.addresses[addr] = struct{}{}
	self.register_change(func() {
		delete(self.access_list.addresses, addr)
	})
	return true
}

// AddSlotToAccessList warms the slot and its address, and reports whether the slot was cold.
func (self *State) AddSlotToAccessList(addr common.Address, slot common.Hash) bool {
	self.AddAddressToAccessList(addr)
	key := SlotKey(addr, slot)
	if _, ok := self.access_list.slots[key]; ok {
		return false
	}
	self.access_list.slots[key] = struct{}{}
	self.register_change(func() {
		delete(self.access_list.slots, key)
	})
	return true
}

// PrepareAccessList warms sender, destination and precompiles at transaction start.
func (self *State) PrepareAccessList(sender common.Address, dst *common.Address, precompiles []common.Address) {
	self.AddAddressToAccessList(sender)
	if dst != nil {
		self.AddAddressToAccessList(*dst)
	}
	for _, addr := range precompiles {
		self.AddAddressToAccessList(addr)
	}
}
