package state_db_leveldb

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/state_db"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util/keccak256"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util/tests"
)

func open(tc *tests.TestCtx) *DB {
	db, err := OpenStorage(storage.NewMemStorage(), Opts{CodeCacheSize: 8})
	tc.Assert.NoError(err)
	tc.Cleanup(func() { db.Close() })
	return db
}

func TestCommitAndRead(t *testing.T) {
	tc := tests.NewTestCtx(t)
	db := open(&tc)
	addr1, addr2 := tests.Addr(1), tests.Addr(2)
	k1, k2 := tests.Slot(1), tests.Slot(2)
	code := []byte{0x60, 0x01, 0x60, 0x00, 0x55}

	acc1 := state_db.NewAccount()
	acc1.Nonce, acc1.CodeHash = 1, keccak256.Hash(code)
	acc2 := state_db.NewAccount()
	acc2.Balance = uint256.NewInt(77)
	tc.Assert.NoError(db.Commit(5, &state_db.BlockDelta{Accounts: []state_db.AccountDelta{
		{Address: addr1, Account: acc1, Code: code, Storage: []state_db.StorageEntry{
			{Key: k1, Value: common.HexToHash("0x11")}, {Key: k2, Value: common.HexToHash("0x22")},
		}},
		{Address: addr2, Account: acc2},
	}}))

	blk_n, present := db.LatestBlock()
	tc.Assert.True(present)
	tc.Assert.Equal(uint64(5), blk_n)

	got, err := db.GetAccount(&addr1)
	tc.Assert.NoError(err)
	tc.Assert.Equal(uint64(1), got.Nonce)
	tc.Assert.Equal(acc1.CodeHash, got.CodeHash)
	got, err = db.GetAccount(&addr2)
	tc.Assert.NoError(err)
	tc.Assert.Equal(uint64(77), got.Balance.Uint64())
	missing := tests.Addr(3)
	got, err = db.GetAccount(&missing)
	tc.Assert.NoError(err)
	tc.Assert.Nil(got)

	v, err := db.GetStorage(&addr1, &k2)
	tc.Assert.NoError(err)
	tc.Assert.Equal(common.HexToHash("0x22"), v)

	for i := 0; i < 2; i++ {
		c, err := db.GetCode(&acc1.CodeHash)
		tc.Assert.NoError(err)
		tc.Assert.Equal(code, c)
	}
	tc.Assert.True(db.code.Contains(acc1.CodeHash))
}

func TestRemovalWipesStorage(t *testing.T) {
	tc := tests.NewTestCtx(t)
	db := open(&tc)
	addr, k := tests.Addr(1), tests.Slot(9)
	tc.Assert.NoError(db.Commit(1, &state_db.BlockDelta{Accounts: []state_db.AccountDelta{
		{Address: addr, Account: state_db.NewAccount(), Storage: []state_db.StorageEntry{{Key: k, Value: common.HexToHash("0x01")}}},
	}}))
	recreated := state_db.NewAccount()
	recreated.Nonce = 1
	tc.Assert.NoError(db.Commit(2, &state_db.BlockDelta{Accounts: []state_db.AccountDelta{
		{Address: addr, Removed: true, Account: recreated},
	}}))
	v, err := db.GetStorage(&addr, &k)
	tc.Assert.NoError(err)
	tc.Assert.Equal(common.Hash{}, v)
	got, _ := db.GetAccount(&addr)
	tc.Assert.Equal(uint64(1), got.Nonce)
}

func TestStaleCommitRejected(t *testing.T) {
	tc := tests.NewTestCtx(t)
	db := open(&tc)
	tc.Assert.NoError(db.Commit(3, &state_db.BlockDelta{}))
	err := db.Commit(3, &state_db.BlockDelta{})
	tc.Assert.Equal(state_db.ErrFutureBlock, errors.Cause(err))
}
