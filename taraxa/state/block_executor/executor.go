package block_executor

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Taraxa-project/taraxa-evm-state/core/vm"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/chain_config"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/contracts/precompiled"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/contracts/reserve_balance"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/revision"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/state_db"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/state_evm"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util"
)

var (
	attempts_executed = metrics.NewRegisteredCounter("executor/attempts", nil)
	attempts_retried  = metrics.NewRegisteredCounter("executor/retries", nil)
	block_time        = metrics.NewRegisteredTimer("executor/block/time", nil)
)

const ErrTooManyAttempts = util.ErrorString("transaction exceeded max attempts")

// Env is what a transaction body runs against.
type Env struct {
	precompiled.Env
	Precompiles *precompiled.Registry
}

// CallPrecompile returns found == false when addr holds no precompile at the block
// revision; the address is then an ordinary account.
func (self *Env) CallPrecompile(addr common.Address, msg precompiled.Message) (precompiled.Result, bool) {
	return self.Precompiles.Execute(&self.Env, addr, msg)
}

// NewFrame opens a call frame for running primitive operations against the attempt.
func (self *Env) NewFrame(frame vm.Environment, gas uint64) *vm.Context {
	return vm.NewContext(self.State, frame, gas)
}

type Transaction struct {
	Sender      common.Address
	To          *common.Address
	GasFee      *uint256.Int
	Authorities []common.Address
	// Body performs the transaction on the attempt. Its state changes are reverted
	// when it fails; fee and nonce stay charged.
	Body func(env *Env) error
}

type Receipt struct {
	// incarnation of the attempt that was merged
	Incarnation state_evm.Incarnation
	Err         error
}

type Executor struct {
	cfg         *chain_config.ChainConfig
	precompiles *precompiled.Registry
	log         log.Logger
}

func New(cfg *chain_config.ChainConfig) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "chain config")
	}
	reserve, err := cfg.ReserveBalance()
	if err != nil {
		return nil, err
	}
	precompiles := new(precompiled.Registry).Init()
	new(reserve_balance.Contract).Init(reserve).Register(precompiles)
	return &Executor{
		cfg:         cfg,
		precompiles: precompiles,
		log:         log.New("module", "block_executor"),
	}, nil
}

func (self *Executor) Precompiles() *precompiled.Registry {
	return self.precompiles
}

// ExecuteBlock runs txs over the latest state of db and commits the result as blk_n.
func (self *Executor) ExecuteBlock(ctx context.Context, db state_db.DB, blk_n state_db.BlockNum, txs []Transaction) ([]Receipt, error) {
	bs := state_evm.NewBlockState(db, self.cfg.RevisionAt(blk_n), state_evm.Opts{})
	receipts, err := self.Execute(ctx, bs, txs)
	if err != nil {
		return nil, err
	}
	if err := bs.Commit(db, blk_n); err != nil {
		return nil, errors.Wrapf(err, "commit block %d", blk_n)
	}
	return receipts, nil
}

type attempt_result struct {
	st      *state_evm.State
	receipt Receipt
	// fatal for the block
	err error
}

// Execute runs first attempts of all transactions in parallel and merges them in
// submission order. A transaction whose attempt cannot merge is executed again
// against the updated block state. The final state equals sequential execution.
func (self *Executor) Execute(ctx context.Context, bs *state_evm.BlockState, txs []Transaction) ([]Receipt, error) {
	defer block_time.UpdateSince(time.Now())
	if err := self.precompiles.Bootstrap(bs); err != nil {
		return nil, errors.Wrap(err, "bootstrap precompiles")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, g_ctx := errgroup.WithContext(ctx)
	g.SetLimit(self.cfg.Execution.Workers)

	results := make([]chan attempt_result, len(txs))
	for i := range results {
		results[i] = make(chan attempt_result, 1)
	}
	receipts := make([]Receipt, len(txs))
	merged := make(chan error, 1)
	// g_ctx ends once the workers are done, the merger may still be retrying then
	go func() {
		err := self.merge_in_order(ctx, bs, txs, results, receipts)
		if err != nil {
			cancel()
		}
		merged <- err
	}()
	for i := range txs {
		i := i
		g.Go(func() error {
			if err := g_ctx.Err(); err != nil {
				results[i] <- attempt_result{err: err}
				return err
			}
			res := self.run_attempt(bs, &txs[i], state_evm.Incarnation{Seq: uint64(i)})
			results[i] <- res
			return res.err
		})
	}
	exec_err := g.Wait()
	if err := first_cause(<-merged, exec_err); err != nil {
		return nil, err
	}
	self.log.Debug("Executed block", "txs", len(txs), "version", bs.Version())
	return receipts, nil
}

func (self *Executor) merge_in_order(
	ctx context.Context, bs *state_evm.BlockState, txs []Transaction, results []chan attempt_result, receipts []Receipt,
) (err error) {
	defer util.Recover(util.CatchInvariantViolation(util.SetTo(&err)))
	for i := range txs {
		var res attempt_result
		select {
		case res = <-results[i]:
		case <-ctx.Done():
			return ctx.Err()
		}
		for {
			if res.err != nil {
				return res.err
			}
			merge_err := bs.Merge(res.st)
			if merge_err == nil {
				break
			}
			if merge_err != state_evm.ErrMergeConflict {
				return errors.Wrapf(merge_err, "merge tx %d", i)
			}
			next := res.st.Incarnation().Next()
			if next.Attempt >= self.cfg.Execution.MaxAttempts {
				return errors.Wrapf(ErrTooManyAttempts, "tx %d", i)
			}
			attempts_retried.Inc(1)
			self.log.Debug("Re-executing transaction", "inc", next, "conflicts", len(bs.Conflicts(res.st)))
			res = self.run_attempt(bs, &txs[i], next)
		}
		receipts[i] = res.receipt
	}
	return nil
}

func (self *Executor) run_attempt(bs *state_evm.BlockState, tx *Transaction, inc state_evm.Incarnation) (ret attempt_result) {
	defer util.Recover(util.CatchInvariantViolation(util.SetTo(&ret.err)))
	attempts_executed.Inc(1)
	st := bs.NewState(inc)
	ret.st, ret.receipt.Incarnation = st, inc
	rev := bs.Revision()
	if rev.Has(revision.ACCESS_LISTS) {
		st.PrepareAccessList(tx.Sender, tx.To, self.precompiles.Addresses(rev))
	}
	if tx.GasFee != nil {
		if err := st.SubBalance(tx.Sender, tx.GasFee); err != nil {
			ret.receipt.Err = err
			return
		}
	}
	if err := st.IncrementNonce(tx.Sender); err != nil {
		ret.receipt.Err = err
		return
	}
	if tx.Body == nil {
		return
	}
	env := &Env{
		Env: precompiled.Env{
			State: st,
			Tx:    precompiled.TxContext{Sender: tx.Sender, GasFee: tx.GasFee, Authorities: tx.Authorities},
		},
		Precompiles: self.precompiles,
	}
	snapshot := st.Snapshot()
	if err := tx.Body(env); err != nil {
		st.RevertToSnapshot(snapshot)
		ret.receipt.Err = err
	}
	return
}

// first_cause prefers a real failure over the cancellation it caused elsewhere.
func first_cause(errs ...error) error {
	for _, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
