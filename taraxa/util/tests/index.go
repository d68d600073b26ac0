package tests

import (
	"encoding/binary"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util/asserts"
)

type TestCtx struct {
	*testing.T
	Assert   assert.Assertions
	data_dir string
}

func NewTestCtx(t *testing.T) (ret TestCtx) {
	ret.T = t
	ret.Assert = *assert.New(t)
	return
}

func (self *TestCtx) DataDir() string {
	if len(self.data_dir) == 0 {
		self.data_dir = self.TempDir()
	}
	return self.data_dir
}

func Addr(i uint64) (ret common.Address) {
	asserts.Holds(i > 0)
	binary.BigEndian.PutUint64(ret[12:], i)
	return
}

func AddrP(i uint64) *common.Address {
	ret := Addr(i)
	return &ret
}

func Slot(i uint64) common.Hash {
	return common.BigToHash(new(uint256.Int).SetUint64(i).ToBig())
}
