package state_evm

import (
	"fmt"
)

// Incarnation tags one execution attempt of a transaction. Seq is the position of the
// transaction in the block, Attempt grows with every re-execution of that transaction.
type Incarnation struct {
	Seq     uint64
	Attempt uint64
}

func (self Incarnation) Next() Incarnation {
	return Incarnation{self.Seq, self.Attempt + 1}
}

func (self Incarnation) String() string {
	return fmt.Sprintf("%d/%d", self.Seq, self.Attempt)
}
