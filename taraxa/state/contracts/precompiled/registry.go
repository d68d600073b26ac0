package precompiled

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/holiman/uint256"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/revision"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/state_evm"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util"
)

var precompile_reverts = metrics.NewRegisteredCounter("precompiled/reverts", nil)

// Contract is a native contract living at a fixed address.
type Contract interface {
	Address() common.Address
	// first revision the contract exists in
	Since() revision.ID
	Dispatch(rev revision.ID, input []byte) (Handler, uint64, []byte)
}

type Status uint8

const (
	StatusSuccess Status = iota
	StatusRevert
	StatusFailure
)

func (self Status) String() string {
	switch self {
	case StatusSuccess:
		return "success"
	case StatusRevert:
		return "revert"
	}
	return "failure"
}

type Message struct {
	Caller common.Address
	Value  *uint256.Int
	Input  []byte
	Gas    uint64
}

type Result struct {
	Status  Status
	Output  []byte
	GasLeft uint64
}

type Registry struct {
	contracts map[common.Address]Contract
	order     []common.Address
	log       log.Logger
}

func (self *Registry) Init() *Registry {
	self.contracts = make(map[common.Address]Contract)
	self.log = log.New("module", "precompiled")
	return self
}

func (self *Registry) Register(contract Contract) {
	addr := contract.Address()
	_, present := self.contracts[addr]
	util.Assert(!present, "precompile registered twice:", addr.Hex())
	self.contracts[addr] = contract
	self.order = append(self.order, addr)
}

// Lookup finds the contract at addr. A contract is not found before its revision,
// so callers see a plain account without code there.
func (self *Registry) Lookup(rev revision.ID, addr common.Address) (Contract, bool) {
	contract, present := self.contracts[addr]
	if !present || rev < contract.Since() {
		return nil, false
	}
	return contract, true
}

// Addresses lists the contracts available at rev, in registration order.
func (self *Registry) Addresses(rev revision.ID) (ret []common.Address) {
	for _, addr := range self.order {
		if _, ok := self.Lookup(rev, addr); ok {
			ret = append(ret, addr)
		}
	}
	return
}

// Bootstrap makes the accounts of the available contracts exist in the block state.
// It can be run any number of times.
func (self *Registry) Bootstrap(bs *state_evm.BlockState) error {
	return bs.Touch(self.Addresses(bs.Revision())...)
}

// Execute runs a call to addr. found is false when no contract is available there.
// Handler errors revert the handler's state changes and come back as revert data.
func (self *Registry) Execute(env *Env, addr common.Address, msg Message) (ret Result, found bool) {
	rev := env.Revision()
	contract, found := self.Lookup(rev, addr)
	if !found {
		return
	}
	handler, cost, args := contract.Dispatch(rev, msg.Input)
	if msg.Gas < cost {
		ret.Status = StatusFailure
		return
	}
	ret.GasLeft = msg.Gas - cost
	value := msg.Value
	if value == nil {
		value = new(uint256.Int)
	}
	snapshot := env.State.Snapshot()
	output, err := handler(env, args, msg.Caller, value)
	if err != nil {
		env.State.RevertToSnapshot(snapshot)
		precompile_reverts.Inc(1)
		self.log.Debug("Precompile reverted", "addr", addr, "err", err)
		ret.Status, ret.Output = StatusRevert, []byte(err.Error())
		return
	}
	ret.Status, ret.Output = StatusSuccess, output
	return
}
