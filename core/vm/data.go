package vm

import (
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/revision"
)

// getData returns a slice from the data based on the start and size and pads
// up to size with zero's. This function is overflow safe.
func getData(data []byte, start uint64, size uint64) []byte {
	length := uint64(len(data))
	if start > length {
		start = length
	}
	end := start + size
	if end > length {
		end = length
	}
	return common.RightPadBytes(data[start:end], int(size))
}

// CallDataLoad loads the 32 byte word of the input at index i, zero padded.
// Indices outside the 32 bit range read as zero.
func CallDataLoad(ctx *Context, result, i *uint256.Int) error {
	if err := ctx.UseGas(GasVeryLow); err != nil {
		return err
	}
	if !i.IsUint64() || i.Uint64() > math.MaxUint32 {
		result.Clear()
		return nil
	}
	start := i.Uint64()
	if n := int64(len(ctx.Env.Input)) - int64(start); n <= 0 {
		result.Clear()
		return nil
	}
	result.SetBytes32(getData(ctx.Env.Input, start, 32))
	return nil
}

// copy_to_memory is the shared body of the *COPY operations. Source bytes past the
// end of src read as zero.
func copy_to_memory(ctx *Context, base_gas uint64, mem_offset, src_offset, size *uint256.Int, src []byte) error {
	off, sz, err := charge_copy(ctx, base_gas, mem_offset, size)
	if err != nil {
		return err
	}
	write_copy(ctx, off, sz, src_offset, src)
	return nil
}

// charge_copy pays for a copy of size bytes to mem_offset and grows memory.
func charge_copy(ctx *Context, base_gas uint64, mem_offset, size *uint256.Int) (off, sz uint64, err error) {
	if off, sz, err = memory_region(mem_offset, size); err != nil {
		return
	}
	err = ctx.expand_memory(off, sz, base_gas+toWordSize(sz)*params.CopyGas)
	return
}

func write_copy(ctx *Context, off, sz uint64, src_offset *uint256.Int, src []byte) {
	if sz == 0 {
		return
	}
	src_off, overflow := src_offset.Uint64WithOverflow()
	if overflow {
		src_off = math.MaxUint64
	}
	ctx.Memory.Set(off, sz, getData(src, src_off, sz))
}

func CallDataCopy[R revision.Traits](ctx *Context, mem_offset, data_offset, size *uint256.Int) error {
	return copy_to_memory(ctx, GasVeryLow, mem_offset, data_offset, size, ctx.Env.Input)
}

func CodeCopy[R revision.Traits](ctx *Context, mem_offset, code_offset, size *uint256.Int) error {
	return copy_to_memory(ctx, GasVeryLow, mem_offset, code_offset, size, ctx.Env.Code)
}

func ExtCodeCopy[R revision.Traits](ctx *Context, addr common.Address, mem_offset, code_offset, size *uint256.Int) error {
	base := access_account_gas[R](ctx, revision.ScheduleOf[R]().ExtcodeCopyBase, addr)
	off, sz, err := charge_copy(ctx, base, mem_offset, size)
	if err != nil || sz == 0 {
		return err
	}
	// the code is loaded only after the copy is paid for
	write_copy(ctx, off, sz, code_offset, ctx.State.GetCode(addr))
	return nil
}

// ReturnDataCopy faults when the requested range is not fully inside the return
// data buffer (EIP-211) instead of zero padding.
func ReturnDataCopy[R revision.Traits](ctx *Context, mem_offset, data_offset, size *uint256.Int) error {
	if !revision.AtLeast[R](revision.BYZANTIUM) {
		return ErrInvalidOpcode
	}
	end, overflow := new(uint256.Int).AddOverflow(data_offset, size)
	if overflow || !end.IsUint64() || end.Uint64() > uint64(len(ctx.Env.ReturnData)) {
		return ErrReturnDataOutOfBounds
	}
	return copy_to_memory(ctx, GasVeryLow, mem_offset, data_offset, size, ctx.Env.ReturnData)
}

func Balance[R revision.Traits](ctx *Context, result *uint256.Int, addr common.Address) error {
	if err := ctx.UseGas(access_account_gas[R](ctx, revision.ScheduleOf[R]().BalanceGas, addr)); err != nil {
		return err
	}
	result.Set(ctx.State.GetBalance(addr))
	return nil
}

func ExtCodeSize[R revision.Traits](ctx *Context, result *uint256.Int, addr common.Address) error {
	if err := ctx.UseGas(access_account_gas[R](ctx, revision.ScheduleOf[R]().ExtcodeSizeGas, addr)); err != nil {
		return err
	}
	result.SetUint64(uint64(ctx.State.GetCodeSize(addr)))
	return nil
}

// ExtCodeHash yields zero for accounts that do not exist (from SPURIOUS_DRAGON on this
// includes empty accounts) and the hash of empty code for existing accounts without code.
func ExtCodeHash[R revision.Traits](ctx *Context, result *uint256.Int, addr common.Address) error {
	if !revision.Has[R](revision.EXTCODEHASH) {
		return ErrInvalidOpcode
	}
	if err := ctx.UseGas(access_account_gas[R](ctx, revision.ScheduleOf[R]().ExtcodeHashGas, addr)); err != nil {
		return err
	}
	st := ctx.State
	if !st.Exists(addr) || revision.Has[R](revision.EIP161) && st.IsEmpty(addr) {
		result.Clear()
		return nil
	}
	hash := st.GetCodeHash(addr)
	result.SetBytes32(hash[:])
	return nil
}
