package revision

import (
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util/asserts"
)

// Table maps every revision to one materialized entry point, for code paths that only
// know the revision at runtime.
type Table[F any] struct {
	entries [Count]F
	present [Count]bool
}

func (self *Table[F]) Set(rev ID, f F) *Table[F] {
	self.entries[rev], self.present[rev] = f, true
	return self
}

func (self *Table[F]) Get(rev ID) F {
	asserts.Holds(rev.Valid() && self.present[rev], "no entry for revision", rev.String())
	return self.entries[rev]
}

func (self *Table[F]) Missing() (ret []ID) {
	for i, ok := range self.present {
		if !ok {
			ret = append(ret, ID(i))
		}
	}
	return
}
