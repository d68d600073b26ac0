package state_db

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util/keccak256"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util/tests"
)

func TestAccountEncoding(t *testing.T) {
	tc := tests.NewTestCtx(t)
	acc := &Account{Nonce: 7, Balance: uint256.NewInt(1000), CodeHash: keccak256.Hash([]byte{1, 2})}
	dec, err := DecodeAccount(acc.EncodeForStorage())
	tc.Assert.NoError(err)
	tc.Assert.Equal(acc.Nonce, dec.Nonce)
	tc.Assert.True(acc.Balance.Eq(dec.Balance))
	tc.Assert.Equal(acc.CodeHash, dec.CodeHash)
	tc.Assert.True(dec.HasCode())
	tc.Assert.False(dec.IsEIP161Empty())
	tc.Assert.True(NewAccount().IsEIP161Empty())

	_, err = DecodeAccount([]byte{0xff, 0x01})
	tc.Assert.Error(err)
}

func TestMemoryCommit(t *testing.T) {
	tc := tests.NewTestCtx(t)
	db := NewMemory()
	addr, key := tests.Addr(1), tests.Slot(3)
	_, present := db.LatestBlock()
	tc.Assert.False(present)

	code := []byte{0x60, 0x00}
	acc := NewAccount()
	acc.Balance.SetUint64(5)
	acc.CodeHash = keccak256.Hash(code)
	tc.Assert.NoError(db.Commit(1, &BlockDelta{[]AccountDelta{{
		Address: addr,
		Account: acc,
		Storage: []StorageEntry{{key, common.HexToHash("0x2a")}},
		Code:    code,
	}}}))
	got, err := db.GetAccount(&addr)
	tc.Assert.NoError(err)
	tc.Assert.Equal(uint64(5), got.Balance.Uint64())
	v, _ := db.GetStorage(&addr, &key)
	tc.Assert.Equal(common.HexToHash("0x2a"), v)
	c, _ := db.GetCode(&acc.CodeHash)
	tc.Assert.Equal(code, c)

	tc.Assert.Equal(ErrFutureBlock, db.Commit(1, &BlockDelta{}))

	tc.Assert.NoError(db.Commit(2, &BlockDelta{[]AccountDelta{{Address: addr, Removed: true}}}))
	got, _ = db.GetAccount(&addr)
	tc.Assert.Nil(got)
	v, _ = db.GetStorage(&addr, &key)
	tc.Assert.Equal(common.Hash{}, v)
	blk_n, present := db.LatestBlock()
	tc.Assert.True(present)
	tc.Assert.Equal(BlockNum(2), blk_n)
}

func TestTransientStorage(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ts := make(TransientStorage)
	addr, key := tests.Addr(1), tests.Slot(1)
	ts.Set(addr, key, common.HexToHash("0x01"))
	tc.Assert.Equal(common.HexToHash("0x01"), ts.Get(addr, key))
	ts.Set(addr, key, common.Hash{})
	tc.Assert.Len(ts, 0)
	ts.Set(addr, key, common.HexToHash("0x01"))
	ts.Clear()
	tc.Assert.Equal(common.Hash{}, ts.Get(addr, key))
}
