package vm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/state_evm"
)

// Environment is the read-only part of a call frame.
type Environment struct {
	Recipient  common.Address
	Caller     common.Address
	Value      *uint256.Int
	Input      []byte
	Code       []byte
	ReturnData []byte
	Depth      int
}

// Context is what every primitive operation runs against: the attempt state, the
// frame environment, the gas meter and the frame memory.
type Context struct {
	State  *state_evm.State
	Env    Environment
	Gas    uint64
	Memory Memory
}

func NewContext(st *state_evm.State, env Environment, gas uint64) *Context {
	if env.Value == nil {
		env.Value = new(uint256.Int)
	}
	return &Context{State: st, Env: env, Gas: gas}
}

func (self *Context) UseGas(gas uint64) error {
	if self.Gas < gas {
		return ErrOutOfGas
	}
	self.Gas -= gas
	return nil
}

// RunFrame runs body as one call frame. A fault reverts the state changes of the
// frame and consumes its gas; the fault is returned to the caller.
func RunFrame(ctx *Context, static bool, body func(*Context) error) error {
	snapshot := ctx.State.Snapshot()
	if static {
		defer ctx.State.EnterStatic()()
	}
	err := body(ctx)
	if err != nil {
		ctx.State.RevertToSnapshot(snapshot)
		if IsFrameFault(err) {
			ctx.Gas = 0
		}
	}
	return err
}
