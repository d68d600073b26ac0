package state_evm

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/state_db"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util"
)

// CanMerge reports whether nothing the attempt read was written by a merge that
// happened after the attempt started.
func (self *BlockState) CanMerge(st *State) bool {
	self.mu.RLock()
	defer self.mu.RUnlock()
	return self.conflicting(st).Cardinality() == 0
}

// Conflicts lists the keys that prevent the attempt from merging.
func (self *BlockState) Conflicts(st *State) (ret []StateKey) {
	self.mu.RLock()
	handles := self.conflicting(st)
	self.mu.RUnlock()
	handles.Each(func(h Handle) bool {
		ret = append(ret, self.keys.Key(h))
		return false
	})
	return
}

func (self *BlockState) conflicting(st *State) mapset.Set[Handle] {
	util.Assert(st.host == self, "attempt belongs to another block state")
	written_since := mapset.NewThreadUnsafeSet[Handle]()
	for _, writes := range self.history[st.baseline:self.version] {
		written_since = written_since.Union(writes)
	}
	return st.reads.Intersect(written_since)
}

// Merge integrates the attempt if it can merge, otherwise it returns ErrMergeConflict
// and leaves the block state untouched. The attempt is finalized first.
func (self *BlockState) Merge(st *State) error {
	util.Assert(!st.merged, "attempt", st.inc.String(), "merged twice")
	if st.db_err != nil {
		return st.db_err
	}
	st.FinalizeTransaction()
	self.mu.Lock()
	defer self.mu.Unlock()
	if conflicts := self.conflicting(st); conflicts.Cardinality() != 0 {
		merge_conflicts.Inc(1)
		self.log.Debug("Merge conflict", "inc", st.inc, "baseline", st.baseline, "version", self.version,
			"keys", conflicts.Cardinality())
		return ErrMergeConflict
	}
	for addr, acc := range st.accounts {
		if !acc.header_dirty && !acc.storage_cleared && len(acc.storage_dirty) == 0 {
			continue
		}
		merged, present := self.accounts[addr]
		if !present {
			merged = new(merged_account)
			self.accounts[addr] = merged
			// the header read at load time is current, no merge touched it since
			if !acc.header_dirty && acc.origin != nil {
				merged.acc = acc.origin.Copy()
			}
		}
		if acc.header_dirty {
			merged.acc = nil
			if acc.current != nil {
				merged.acc = acc.current.Copy()
			}
		}
		if acc.code_dirty {
			self.code[acc.current.CodeHash] = acc.code
			merged.code_dirty = true
		}
		if acc.storage_cleared {
			merged.storage_wiped, merged.storage = true, nil
		}
		if len(acc.storage_dirty) != 0 && merged.storage == nil {
			merged.storage = make(state_db.Storage, len(acc.storage_dirty))
		}
		for k, v := range acc.storage_dirty {
			merged.storage[k] = v
		}
	}
	self.advance(st.writes.Clone())
	st.merged = true
	merge_applied.Inc(1)
	return nil
}
