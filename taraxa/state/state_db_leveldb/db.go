package state_db_leveldb

import (
	"encoding/binary"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_errors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/state_db"
)

const (
	min_cache_mb   = 16
	min_handles    = 16
	default_code_n = 4096
)

var (
	key_latest_block = []byte{state_db.COL_meta, 'l'}

	code_cache_hit  = metrics.NewRegisteredCounter("state_db/code/cache/hit", nil)
	code_cache_miss = metrics.NewRegisteredCounter("state_db/code/cache/miss", nil)
	commit_timer    = metrics.NewRegisteredTimer("state_db/commit", nil)
)

type Opts struct {
	Path          string
	CacheMB       int
	Handles       int
	CodeCacheSize int
	ReadOnly      bool
}

// DB keeps the latest account state in a goleveldb instance. Keys are prefixed
// with the state_db column: account and code by address/hash, storage by address+slot.
type DB struct {
	db   *leveldb.DB
	code *lru.Cache[common.Hash, []byte]
	log  log.Logger
}

func Open(opts Opts) (*DB, error) {
	logger := log.New("database", opts.Path)
	options := configure_options(opts)
	logger.Info("Opening state database", "cache", opts.CacheMB, "handles", options.OpenFilesCacheCapacity)
	db, err := leveldb.OpenFile(opts.Path, options)
	if _, corrupted := err.(*ldb_errors.ErrCorrupted); corrupted {
		logger.Warn("State database corrupted, recovering", "err", err)
		db, err = leveldb.RecoverFile(opts.Path, nil)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open state database at %s", opts.Path)
	}
	return wrap(db, opts, logger)
}

// OpenStorage opens the state database over an arbitrary goleveldb storage,
// e.g. storage.NewMemStorage() in tests.
func OpenStorage(stor storage.Storage, opts Opts) (*DB, error) {
	db, err := leveldb.Open(stor, configure_options(opts))
	if err != nil {
		return nil, errors.Wrap(err, "open state database")
	}
	return wrap(db, opts, log.New("database", "storage"))
}

func configure_options(opts Opts) *opt.Options {
	if opts.CacheMB < min_cache_mb {
		opts.CacheMB = min_cache_mb
	}
	if opts.Handles < min_handles {
		opts.Handles = min_handles
	}
	return &opt.Options{
		OpenFilesCacheCapacity: opts.Handles,
		BlockCacheCapacity:     opts.CacheMB / 2 * opt.MiB,
		WriteBuffer:            opts.CacheMB / 4 * opt.MiB,
		ReadOnly:               opts.ReadOnly,
	}
}

func wrap(db *leveldb.DB, opts Opts, logger log.Logger) (*DB, error) {
	if opts.CodeCacheSize <= 0 {
		opts.CodeCacheSize = default_code_n
	}
	code, err := lru.New[common.Hash, []byte](opts.CodeCacheSize)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "code cache")
	}
	return &DB{db: db, code: code, log: logger}, nil
}

func (self *DB) Close() error {
	return self.db.Close()
}

func account_key(addr *common.Address) []byte {
	return append([]byte{state_db.COL_account}, addr[:]...)
}

func storage_prefix(addr *common.Address) []byte {
	return append([]byte{state_db.COL_storage}, addr[:]...)
}

func storage_key(addr *common.Address, key *common.Hash) []byte {
	return append(storage_prefix(addr), key[:]...)
}

func code_key(hash *common.Hash) []byte {
	return append([]byte{state_db.COL_code}, hash[:]...)
}

func (self *DB) get(key []byte) ([]byte, error) {
	ret, err := self.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	return ret, err
}

func (self *DB) GetAccount(addr *common.Address) (*state_db.Account, error) {
	enc, err := self.get(account_key(addr))
	if err != nil {
		return nil, errors.Wrapf(err, "read account %s", addr.Hex())
	}
	if enc == nil {
		return nil, nil
	}
	ret, err := state_db.DecodeAccount(enc)
	return ret, errors.Wrapf(err, "decode account %s", addr.Hex())
}

func (self *DB) GetStorage(addr *common.Address, key *common.Hash) (ret common.Hash, err error) {
	enc, err := self.get(storage_key(addr, key))
	if err != nil {
		return ret, errors.Wrapf(err, "read storage %s/%s", addr.Hex(), key.Hex())
	}
	return common.BytesToHash(enc), nil
}

func (self *DB) GetCode(hash *common.Hash) ([]byte, error) {
	if code, ok := self.code.Get(*hash); ok {
		code_cache_hit.Inc(1)
		return code, nil
	}
	code_cache_miss.Inc(1)
	code, err := self.get(code_key(hash))
	if err != nil {
		return nil, errors.Wrapf(err, "read code %s", hash.Hex())
	}
	if code != nil {
		self.code.Add(*hash, code)
	}
	return code, nil
}

func (self *DB) LatestBlock() (state_db.BlockNum, bool) {
	enc, err := self.get(key_latest_block)
	if err != nil {
		self.log.Error("Failed to read latest block number", "err", err)
		return 0, false
	}
	if len(enc) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(enc), true
}

func (self *DB) Commit(blk_n state_db.BlockNum, delta *state_db.BlockDelta) error {
	defer commit_timer.UpdateSince(time.Now())
	if latest, present := self.LatestBlock(); present && blk_n <= latest {
		return errors.Wrapf(state_db.ErrFutureBlock, "commit %d, latest %d", blk_n, latest)
	}
	batch := new(leveldb.Batch)
	for i := range delta.Accounts {
		acc_delta := &delta.Accounts[i]
		addr := &acc_delta.Address
		if acc_delta.Removed {
			batch.Delete(account_key(addr))
			if err := self.wipe_storage(batch, addr); err != nil {
				return err
			}
		}
		if acc_delta.Account != nil {
			batch.Put(account_key(addr), acc_delta.Account.EncodeForStorage())
		}
		if acc_delta.Code != nil {
			batch.Put(code_key(&acc_delta.Account.CodeHash), acc_delta.Code)
		}
		for j := range acc_delta.Storage {
			entry := &acc_delta.Storage[j]
			if entry.Value == (common.Hash{}) {
				batch.Delete(storage_key(addr, &entry.Key))
			} else {
				batch.Put(storage_key(addr, &entry.Key), entry.Value[:])
			}
		}
	}
	var blk_n_enc [8]byte
	binary.BigEndian.PutUint64(blk_n_enc[:], blk_n)
	batch.Put(key_latest_block, blk_n_enc[:])
	if err := self.db.Write(batch, nil); err != nil {
		return errors.Wrapf(err, "write block %d", blk_n)
	}
	self.log.Debug("Committed block state", "block", blk_n, "accounts", len(delta.Accounts), "ops", batch.Len())
	return nil
}

func (self *DB) wipe_storage(batch *leveldb.Batch, addr *common.Address) error {
	it := self.db.NewIterator(ldb_util.BytesPrefix(storage_prefix(addr)), nil)
	defer it.Release()
	for it.Next() {
		batch.Delete(common.CopyBytes(it.Key()))
	}
	return errors.Wrapf(it.Error(), "wipe storage of %s", addr.Hex())
}
