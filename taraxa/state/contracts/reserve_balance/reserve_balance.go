package reserve_balance

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/contracts/precompiled"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/revision"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/state_evm"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util/asserts"
)

// Fixed contract address
var contract_address = common.HexToAddress("0x0000000000000000000000000000000000001001")

func ContractAddress() common.Address {
	return contract_address
}

const (
	DippedIntoReserveGas uint64 = 100
	FallbackGas          uint64 = 40000
)

// DefaultReserve is 10 coins in wei.
var DefaultReserve = new(uint256.Int).Mul(uint256.NewInt(10), uint256.NewInt(1e18))

const contract_abi = `[
	{"type":"function","name":"dippedIntoReserve","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"bool"}]}
]`

type Contract struct {
	reserve     *uint256.Int
	Abi         abi.ABI
	dispatchers revision.Table[*precompiled.Dispatcher]
}

func (self *Contract) Init(reserve *uint256.Int) *Contract {
	if reserve == nil {
		reserve = DefaultReserve
	}
	self.reserve = new(uint256.Int).Set(reserve)
	self.Abi = precompiled.MustParseABI(contract_abi)
	self.dispatchers.
		Set(revision.FRONTIER, new_dispatcher[revision.Frontier](self)).
		Set(revision.HOMESTEAD, new_dispatcher[revision.Homestead](self)).
		Set(revision.TANGERINE_WHISTLE, new_dispatcher[revision.TangerineWhistle](self)).
		Set(revision.SPURIOUS_DRAGON, new_dispatcher[revision.SpuriousDragon](self)).
		Set(revision.BYZANTIUM, new_dispatcher[revision.Byzantium](self)).
		Set(revision.PETERSBURG, new_dispatcher[revision.Petersburg](self)).
		Set(revision.ISTANBUL, new_dispatcher[revision.Istanbul](self)).
		Set(revision.BERLIN, new_dispatcher[revision.Berlin](self)).
		Set(revision.LONDON, new_dispatcher[revision.London](self)).
		Set(revision.SHANGHAI, new_dispatcher[revision.Shanghai](self)).
		Set(revision.CANCUN, new_dispatcher[revision.Cancun](self)).
		Set(revision.PRAGUE, new_dispatcher[revision.Prague](self)).
		Set(revision.NEXT, new_dispatcher[revision.Next](self))
	return self
}

func (self *Contract) Register(registry *precompiled.Registry) {
	registry.Register(self)
}

func (self *Contract) Address() common.Address {
	return contract_address
}

func (self *Contract) Since() revision.ID {
	return revision.NEXT
}

func (self *Contract) Reserve() *uint256.Int {
	return self.reserve
}

func (self *Contract) Dispatch(rev revision.ID, input []byte) (precompiled.Handler, uint64, []byte) {
	return self.dispatchers.Get(rev).Dispatch(input)
}

func new_dispatcher[R revision.Traits](self *Contract) *precompiled.Dispatcher {
	method := self.Abi.Methods["dippedIntoReserve"]
	return precompiled.NewDispatcher(precompiled.MethodNotSupported, FallbackGas).
		Add(precompiled.MethodSelector(&method), dipped_into_reserve[R](self, method.Outputs), DippedIntoReserveGas)
}

func dipped_into_reserve[R revision.Traits](self *Contract, outputs abi.Arguments) precompiled.Handler {
	return func(env *precompiled.Env, _ []byte, _ common.Address, value *uint256.Int) ([]byte, error) {
		if err := precompiled.FunctionNotPayable(value); err != nil {
			return nil, err
		}
		asserts.Holds(revision.Has[R](revision.RESERVE_BALANCE), "reserve balance called at", revision.Of[R]().String())
		return outputs.Pack(DippedIntoReserve(env.State, &env.Tx, self.reserve))
	}
}

// DippedIntoReserve reports whether the sender or an authority of the transaction
// holds less than min(balance at transaction start, reserve). The sender's starting
// balance is taken net of the gas fee.
func DippedIntoReserve(st *state_evm.State, tx *precompiled.TxContext, reserve *uint256.Int) bool {
	if below_threshold(st, tx.Sender, tx.GasFee, reserve) {
		return true
	}
	for _, addr := range tx.Authorities {
		if addr != tx.Sender && below_threshold(st, addr, nil, reserve) {
			return true
		}
	}
	return false
}

func below_threshold(st *state_evm.State, addr common.Address, fee, reserve *uint256.Int) bool {
	threshold := new(uint256.Int).Set(st.GetOriginalBalance(addr))
	if fee != nil {
		if threshold.Lt(fee) {
			threshold.Clear()
		} else {
			threshold.Sub(threshold, fee)
		}
	}
	if reserve.Lt(threshold) {
		threshold.Set(reserve)
	}
	return st.GetBalance(addr).Lt(threshold)
}
