package precompiled

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/revision"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/state_evm"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util"
)

var (
	ErrValueNonZero       = util.ErrorString("value is nonzero")
	ErrMethodNotSupported = util.ErrorString("method not supported")
)

// TxContext describes the transaction a precompile is called from.
type TxContext struct {
	Sender common.Address
	// fee charged to the sender up front
	GasFee      *uint256.Int
	Authorities []common.Address
}

// Env is what handlers run against. Handlers mutate State directly.
type Env struct {
	State *state_evm.State
	Tx    TxContext
}

func (self *Env) Revision() revision.ID {
	return self.State.Revision()
}

type Handler func(env *Env, input []byte, caller common.Address, value *uint256.Int) ([]byte, error)

type Method struct {
	Handler Handler
	Gas     uint64
}

// Dispatcher is a static selector table with a fallback for short inputs and
// unknown selectors.
type Dispatcher struct {
	methods  map[Selector]Method
	fallback Method
}

func NewDispatcher(fallback Handler, fallback_gas uint64) *Dispatcher {
	return &Dispatcher{
		methods:  make(map[Selector]Method),
		fallback: Method{fallback, fallback_gas},
	}
}

func (self *Dispatcher) Add(sel Selector, handler Handler, gas uint64) *Dispatcher {
	_, present := self.methods[sel]
	util.Assert(!present, "duplicate selector", sel.String())
	self.methods[sel] = Method{handler, gas}
	return self
}

// Dispatch returns the handler for input, its fixed cost and the input past the selector.
func (self *Dispatcher) Dispatch(input []byte) (Handler, uint64, []byte) {
	sel, args, ok := SplitInput(input)
	if !ok {
		return self.fallback.Handler, self.fallback.Gas, args
	}
	if method, present := self.methods[sel]; present {
		return method.Handler, method.Gas, args
	}
	return self.fallback.Handler, self.fallback.Gas, args
}

func FunctionNotPayable(value *uint256.Int) error {
	if value != nil && !value.IsZero() {
		return ErrValueNonZero
	}
	return nil
}

func MethodNotSupported(*Env, []byte, common.Address, *uint256.Int) ([]byte, error) {
	return nil, ErrMethodNotSupported
}
