package state_evm

import (
	"bytes"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/state_db"
)

func address_comparator(a, b interface{}) int {
	l, r := a.(common.Address), b.(common.Address)
	return bytes.Compare(l[:], r[:])
}

func hash_comparator(a, b interface{}) int {
	l, r := a.(common.Hash), b.(common.Hash)
	return bytes.Compare(l[:], r[:])
}

// Delta collects everything merged so far, ordered by address and slot.
func (self *BlockState) Delta() *state_db.BlockDelta {
	self.mu.RLock()
	defer self.mu.RUnlock()
	ordered := treemap.NewWith(address_comparator)
	for addr, merged := range self.accounts {
		ordered.Put(addr, merged)
	}
	ret := &state_db.BlockDelta{Accounts: make([]state_db.AccountDelta, 0, ordered.Size())}
	for it := ordered.Iterator(); it.Next(); {
		merged := it.Value().(*merged_account)
		acc_delta := state_db.AccountDelta{
			Address: it.Key().(common.Address),
			Removed: merged.storage_wiped || merged.acc == nil,
		}
		if merged.acc != nil {
			acc_delta.Account = merged.acc.Copy()
			if merged.code_dirty {
				acc_delta.Code = self.code[merged.acc.CodeHash]
			}
		}
		slots := treemap.NewWith(hash_comparator)
		for k, v := range merged.storage {
			slots.Put(k, v)
		}
		acc_delta.Storage = make([]state_db.StorageEntry, 0, slots.Size())
		for slot_it := slots.Iterator(); slot_it.Next(); {
			acc_delta.Storage = append(acc_delta.Storage, state_db.StorageEntry{
				Key:   slot_it.Key().(common.Hash),
				Value: slot_it.Value().(common.Hash),
			})
		}
		ret.Accounts = append(ret.Accounts, acc_delta)
	}
	return ret
}

// Commit writes the merged state of the block in one batch.
func (self *BlockState) Commit(out state_db.Committer, blk_n state_db.BlockNum) error {
	delta := self.Delta()
	if err := out.Commit(blk_n, delta); err != nil {
		return err
	}
	self.log.Info("Committed block", "block", blk_n, "accounts", len(delta.Accounts), "version", self.Version(),
		"keys", self.keys.Len())
	return nil
}
