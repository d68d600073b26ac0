package vm

import (
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/revision"
)

const (
	GasVeryLow = 3
	// memory offsets and sizes above this bound cannot be paid for
	max_mem_arg = math.MaxUint32
)

func toWordSize(size uint64) uint64 {
	if size > math.MaxUint64-31 {
		return math.MaxUint64/32 + 1
	}
	return (size + 31) / 32
}

// memoryGasCost calculates the quadratic gas for memory expansion. It does so
// only for the memory region that is expanded, not the total memory.
func memoryGasCost(mem *Memory, newMemSize uint64) (uint64, error) {
	if newMemSize == 0 {
		return 0, nil
	}
	// The maximum that will fit in a uint64 is max_word_count - 1. Anything above
	// that will result in an overflow. Additionally, a newMemSize which results in
	// a newMemSizeWords larger than 0xFFFFFFFF will cause the square operation to
	// overflow. The constant 0x1FFFFFFFE0 is the highest number that can be used
	// without overflowing the gas calculation.
	if newMemSize > 0x1FFFFFFFE0 {
		return 0, ErrGasUintOverflow
	}
	newMemSizeWords := toWordSize(newMemSize)
	newMemSize = newMemSizeWords * 32
	if newMemSize > mem.Len() {
		square := newMemSizeWords * newMemSizeWords
		linCoef := newMemSizeWords * params.MemoryGas
		quadCoef := square / params.QuadCoeffDiv
		newTotalFee := linCoef + quadCoef
		fee := newTotalFee - mem.lastGasCost
		mem.lastGasCost = newTotalFee
		return fee, nil
	}
	return 0, nil
}

// memory_region validates a memory argument pair. A zero size never touches memory,
// whatever the offset.
func memory_region(offset, size *uint256.Int) (off, sz uint64, err error) {
	if size.IsZero() {
		return 0, 0, nil
	}
	if !offset.IsUint64() || offset.Uint64() > max_mem_arg || !size.IsUint64() || size.Uint64() > max_mem_arg {
		return 0, 0, ErrOutOfGas
	}
	return offset.Uint64(), size.Uint64(), nil
}

// expand_memory charges extra_gas plus the expansion cost of [off, off+sz) and grows memory.
func (self *Context) expand_memory(off, sz, extra_gas uint64) error {
	var mem_gas uint64
	if sz != 0 {
		var err error
		if mem_gas, err = memoryGasCost(&self.Memory, off+sz); err != nil {
			return err
		}
	}
	if err := self.UseGas(mem_gas + extra_gas); err != nil {
		return err
	}
	if sz != 0 {
		self.Memory.Resize(toWordSize(off+sz) * 32)
	}
	return nil
}

// access_account_gas prices an account access: flat before BERLIN, warm/cold after.
func access_account_gas[R revision.Traits](ctx *Context, addr_gas uint64, addr common.Address) uint64 {
	if !revision.Has[R](revision.ACCESS_LISTS) {
		return addr_gas
	}
	schedule := revision.ScheduleOf[R]()
	if ctx.State.AddAddressToAccessList(addr) {
		return schedule.ColdAccountAccess
	}
	return schedule.WarmRead
}
