package state_evm

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/revision"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/state_db"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util"
)

var (
	merge_applied   = metrics.NewRegisteredCounter("state/merge/applied", nil)
	merge_conflicts = metrics.NewRegisteredCounter("state/merge/conflicts", nil)
)

type Opts struct {
	ExpectedKeys int
}

type merged_account struct {
	acc *state_db.Account
	// storage of the underlying store is wiped; slots not in storage read as zero
	storage_wiped bool
	storage       state_db.Storage
	code_dirty    bool
}

// BlockState is the authoritative state of the block being executed. Attempts read
// through it and are integrated by Merge, one at a time.
type BlockState struct {
	in       state_db.Reader
	rev      revision.ID
	mu       sync.RWMutex
	accounts map[common.Address]*merged_account
	code     map[common.Hash][]byte
	keys     KeyArena
	version  uint64
	// history[v] is the write set that moved the block state from version v to v+1
	history     []mapset.Set[Handle]
	attempts_mu sync.Mutex
	attempts    map[uint64]uint64
	log         log.Logger
}

func NewBlockState(in state_db.Reader, rev revision.ID, opts Opts) *BlockState {
	if opts.ExpectedKeys == 0 {
		opts.ExpectedKeys = 1024
	}
	self := &BlockState{
		in:       in,
		rev:      rev,
		accounts: make(map[common.Address]*merged_account),
		code:     make(map[common.Hash][]byte),
		attempts: make(map[uint64]uint64),
		log:      log.New("module", "block_state", "rev", rev.String()),
	}
	self.keys.Init(opts.ExpectedKeys)
	return self
}

func (self *BlockState) Revision() revision.ID {
	return self.rev
}

func (self *BlockState) Version() uint64 {
	self.mu.RLock()
	defer self.mu.RUnlock()
	return self.version
}

// NewState opens an attempt against the current version. Attempt numbers of the
// same Seq must strictly increase.
func (self *BlockState) NewState(inc Incarnation) *State {
	self.attempts_mu.Lock()
	if last, present := self.attempts[inc.Seq]; present && inc.Attempt <= last {
		self.attempts_mu.Unlock()
		util.PanicInvariant("incarnation %s does not follow attempt %d", inc, last)
	}
	self.attempts[inc.Seq] = inc.Attempt
	self.attempts_mu.Unlock()
	return new(State).init(self, inc, self.Version())
}

func (self *BlockState) read_account(addr *common.Address) (*state_db.Account, error) {
	self.mu.RLock()
	if merged, present := self.accounts[*addr]; present {
		defer self.mu.RUnlock()
		if merged.acc == nil {
			return nil, nil
		}
		return merged.acc.Copy(), nil
	}
	self.mu.RUnlock()
	return self.in.GetAccount(addr)
}

func (self *BlockState) read_storage(addr *common.Address, key *common.Hash) (common.Hash, error) {
	self.mu.RLock()
	if merged, present := self.accounts[*addr]; present {
		if value, present := merged.storage[*key]; present || merged.storage_wiped {
			self.mu.RUnlock()
			return value, nil
		}
	}
	self.mu.RUnlock()
	return self.in.GetStorage(addr, key)
}

func (self *BlockState) read_code(hash *common.Hash) ([]byte, error) {
	self.mu.RLock()
	code, present := self.code[*hash]
	self.mu.RUnlock()
	if present {
		return code, nil
	}
	return self.in.GetCode(hash)
}

// Touch makes sure the accounts exist, creating empty ones where needed. Accounts
// that exist already are left as they are, so repeated calls have no effect.
func (self *BlockState) Touch(addrs ...common.Address) error {
	self.mu.Lock()
	defer self.mu.Unlock()
	writes := mapset.NewThreadUnsafeSet[Handle]()
	for _, addr := range addrs {
		merged, present := self.accounts[addr]
		if present && merged.acc != nil {
			continue
		}
		if !present {
			acc, err := self.in.GetAccount(&addr)
			if err != nil {
				return err
			}
			if acc != nil {
				continue
			}
			merged = new(merged_account)
			self.accounts[addr] = merged
		}
		merged.acc = state_db.NewAccount()
		writes.Add(self.keys.Handle(HeaderKey(addr)))
	}
	if writes.Cardinality() != 0 {
		self.advance(writes)
	}
	return nil
}

func (self *BlockState) advance(writes mapset.Set[Handle]) {
	self.history = append(self.history, writes)
	self.version++
}
