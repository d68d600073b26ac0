package state_db

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util/keccak256"
)

type BlockNum = uint64

type Column = byte

const (
	COL_code Column = iota
	COL_account
	COL_storage
	COL_meta
	COL_COUNT
)

const ErrFutureBlock = util.ErrorString("block is not newer than the latest committed one")

// Reader is the read side of the account trie store. A missing account is reported
// as nil, a missing slot as the zero hash.
type Reader interface {
	GetAccount(addr *common.Address) (*Account, error)
	GetStorage(addr *common.Address, key *common.Hash) (common.Hash, error)
	GetCode(hash *common.Hash) ([]byte, error)
}

type Committer interface {
	Commit(blk_n BlockNum, delta *BlockDelta) error
}

type DB interface {
	Reader
	Committer
	LatestBlock() (blk_n BlockNum, present bool)
}

type Account struct {
	Nonce    uint64
	Balance  *uint256.Int
	CodeHash common.Hash
}

func NewAccount() *Account {
	return &Account{Balance: new(uint256.Int), CodeHash: keccak256.EmptyHash}
}

func (self *Account) Copy() *Account {
	return &Account{self.Nonce, new(uint256.Int).Set(self.Balance), self.CodeHash}
}

func (self *Account) HasCode() bool {
	return self.CodeHash != keccak256.EmptyHash && self.CodeHash != (common.Hash{})
}

func (self *Account) IsEIP161Empty() bool {
	return self.Nonce == 0 && self.Balance.IsZero() && !self.HasCode()
}

func (self *Account) EncodeForStorage() []byte {
	ret, err := rlp.EncodeToBytes(self)
	util.Assert(err == nil)
	return ret
}

func DecodeAccount(enc []byte) (*Account, error) {
	ret := new(Account)
	if err := rlp.DecodeBytes(enc, ret); err != nil {
		return nil, err
	}
	if ret.Balance == nil {
		ret.Balance = new(uint256.Int)
	}
	return ret, nil
}

type StorageEntry struct {
	Key, Value common.Hash
}

// AccountDelta is the change of one account over a block. When Removed is set the
// previous account and all of its storage are wiped before Account and Storage apply.
type AccountDelta struct {
	Address common.Address
	Removed bool
	Account *Account
	Storage []StorageEntry
	Code    []byte
}

// BlockDelta lists account changes ordered by address, storage entries ordered by key.
type BlockDelta struct {
	Accounts []AccountDelta
}
