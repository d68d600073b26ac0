package vm

import (
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/revision"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/state_db"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/state_evm"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util/keccak256"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util/tests"
)

var (
	funded    = tests.Addr(1)
	nobody    = tests.Addr(2)
	self_addr = tests.Addr(10)
	code      = []byte{0x60, 0x01, 0x60, 0x00, 0x55}
	val42     = common.HexToHash("0x2a")
)

func new_ctx(tc *tests.TestCtx, rev revision.ID, gas uint64) *Context {
	db := state_db.NewMemory()
	rich := state_db.NewAccount()
	rich.Balance = uint256.NewInt(1000)
	with_code := state_db.NewAccount()
	with_code.Nonce, with_code.CodeHash = 1, keccak256.Hash(code)
	tc.Assert.NoError(db.Commit(0, &state_db.BlockDelta{Accounts: []state_db.AccountDelta{
		{Address: funded, Account: rich},
		{Address: self_addr, Account: with_code, Code: code, Storage: []state_db.StorageEntry{{Key: tests.Slot(1), Value: val42}}},
	}}))
	bs := state_evm.NewBlockState(db, rev, state_evm.Opts{})
	return NewContext(bs.NewState(state_evm.Incarnation{}), Environment{
		Recipient:  self_addr,
		Caller:     funded,
		Input:      []byte{1, 2, 3, 4, 5},
		Code:       code,
		ReturnData: []byte{0xaa, 0xbb, 0xcc},
	}, gas)
}

func TestCallDataLoad(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new_ctx(&tc, revision.CANCUN, 1000)
	result := new(uint256.Int)

	tc.Assert.NoError(CallDataLoad(ctx, result, uint256.NewInt(0)))
	expected := common.RightPadBytes([]byte{1, 2, 3, 4, 5}, 32)
	tc.Assert.Equal(new(uint256.Int).SetBytes(expected), result)

	tc.Assert.NoError(CallDataLoad(ctx, result, uint256.NewInt(3)))
	tc.Assert.Equal(new(uint256.Int).SetBytes(common.RightPadBytes([]byte{4, 5}, 32)), result)

	for _, i := range []*uint256.Int{
		uint256.NewInt(5), uint256.NewInt(6), uint256.NewInt(math.MaxUint32 + 1), new(uint256.Int).SetAllOne(),
	} {
		result.SetUint64(7)
		tc.Assert.NoError(CallDataLoad(ctx, result, i))
		tc.Assert.True(result.IsZero(), i.Hex())
	}
	tc.Assert.Equal(uint64(1000-6*GasVeryLow), ctx.Gas)
}

func TestCallDataCopy(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new_ctx(&tc, revision.CANCUN, 1000)
	tc.Assert.NoError(CallDataCopy[revision.Cancun](ctx, uint256.NewInt(0), uint256.NewInt(3), uint256.NewInt(4)))
	tc.Assert.Equal([]byte{4, 5, 0, 0}, ctx.Memory.GetCopy(0, 4))
	tc.Assert.Equal(uint64(32), ctx.Memory.Len())
	// base + one word of memory + one copied word
	tc.Assert.Equal(uint64(1000-GasVeryLow-params.MemoryGas-params.CopyGas), ctx.Gas)

	gas := ctx.Gas
	tc.Assert.NoError(CallDataCopy[revision.Cancun](ctx, new(uint256.Int).SetAllOne(), uint256.NewInt(0), new(uint256.Int)))
	tc.Assert.Equal(gas-GasVeryLow, ctx.Gas)

	tc.Assert.Equal(ErrOutOfGas,
		CallDataCopy[revision.Cancun](ctx, uint256.NewInt(math.MaxUint32+1), uint256.NewInt(0), uint256.NewInt(1)))
	tc.Assert.Equal(ErrOutOfGas,
		CallDataCopy[revision.Cancun](ctx, uint256.NewInt(0), uint256.NewInt(0), uint256.NewInt(math.MaxUint32+1)))

	// source offset beyond 64 bits reads zeros
	tc.Assert.NoError(CallDataCopy[revision.Cancun](ctx, uint256.NewInt(0), new(uint256.Int).SetAllOne(), uint256.NewInt(2)))
	tc.Assert.Equal([]byte{0, 0, 0, 0}, ctx.Memory.GetCopy(0, 4))
}

func TestMemoryExpansionCost(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new_ctx(&tc, revision.CANCUN, 1_000_000)
	tc.Assert.NoError(CodeCopy[revision.Cancun](ctx, uint256.NewInt(1024*32-1), uint256.NewInt(0), uint256.NewInt(1)))
	words := uint64(1024)
	tc.Assert.Equal(uint64(1_000_000)-GasVeryLow-params.CopyGas-(words*params.MemoryGas+words*words/params.QuadCoeffDiv), ctx.Gas)
	tc.Assert.Equal(words*32, ctx.Memory.Len())
}

func TestReturnDataCopy(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new_ctx(&tc, revision.CANCUN, 1000)
	tc.Assert.NoError(ReturnDataCopy[revision.Cancun](ctx, uint256.NewInt(0), uint256.NewInt(1), uint256.NewInt(2)))
	tc.Assert.Equal([]byte{0xbb, 0xcc}, ctx.Memory.GetCopy(0, 2))
	tc.Assert.Equal(ErrReturnDataOutOfBounds,
		ReturnDataCopy[revision.Cancun](ctx, uint256.NewInt(0), uint256.NewInt(2), uint256.NewInt(2)))
	tc.Assert.Equal(ErrReturnDataOutOfBounds,
		ReturnDataCopy[revision.Cancun](ctx, uint256.NewInt(0), new(uint256.Int).SetAllOne(), uint256.NewInt(1)))
	tc.Assert.Equal(ErrInvalidOpcode,
		ReturnDataCopy[revision.SpuriousDragon](ctx, uint256.NewInt(0), uint256.NewInt(0), uint256.NewInt(1)))
}

func TestExtCodeHash(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new_ctx(&tc, revision.CANCUN, 100_000)
	result := new(uint256.Int)
	tc.Assert.Equal(ErrInvalidOpcode, ExtCodeHash[revision.Byzantium](ctx, result, self_addr))

	tc.Assert.NoError(ExtCodeHash[revision.Cancun](ctx, result, nobody))
	tc.Assert.True(result.IsZero())

	tc.Assert.NoError(ExtCodeHash[revision.Cancun](ctx, result, funded))
	tc.Assert.Equal(new(uint256.Int).SetBytes(keccak256.EmptyHash[:]), result)

	hash := keccak256.Hash(code)
	tc.Assert.NoError(ExtCodeHash[revision.Cancun](ctx, result, self_addr))
	tc.Assert.Equal(new(uint256.Int).SetBytes(hash[:]), result)

	// existing but EIP-161 empty
	tc.Assert.NoError(ctx.State.AddBalance(nobody, new(uint256.Int)))
	tc.Assert.True(ctx.State.Exists(nobody))
	tc.Assert.NoError(ExtCodeHash[revision.Cancun](ctx, result, nobody))
	tc.Assert.True(result.IsZero())
}

func TestAccountAccessGas(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new_ctx(&tc, revision.CANCUN, 100_000)
	result := new(uint256.Int)

	tc.Assert.NoError(Balance[revision.Cancun](ctx, result, funded))
	tc.Assert.Equal(uint64(1000), result.Uint64())
	tc.Assert.Equal(uint64(100_000)-params.ColdAccountAccessCostEIP2929, ctx.Gas)
	gas := ctx.Gas
	tc.Assert.NoError(ExtCodeSize[revision.Cancun](ctx, result, funded))
	tc.Assert.True(result.IsZero())
	tc.Assert.Equal(gas-params.WarmStorageReadCostEIP2929, ctx.Gas)

	gas = ctx.Gas
	tc.Assert.NoError(ExtCodeSize[revision.Istanbul](ctx, result, self_addr))
	tc.Assert.Equal(uint64(len(code)), result.Uint64())
	tc.Assert.Equal(gas-params.ExtcodeSizeGasEIP150, ctx.Gas)

	gas = ctx.Gas
	tc.Assert.NoError(ExtCodeCopy[revision.Frontier](ctx, self_addr, uint256.NewInt(0), uint256.NewInt(2), uint256.NewInt(4)))
	tc.Assert.Equal([]byte{0x60, 0x00, 0x55, 0x00}, ctx.Memory.GetCopy(0, 4))
	tc.Assert.Equal(gas-params.ExtcodeCopyBaseFrontier-params.MemoryGas-params.CopyGas, ctx.Gas)
}

func TestExtCodeCopyLoadsCodeAfterCharging(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new_ctx(&tc, revision.CANCUN, 100)
	reads := ctx.State.ReadSet().Cardinality()
	tc.Assert.Equal(ErrOutOfGas, ExtCodeCopy[revision.Cancun](ctx, self_addr, uint256.NewInt(0), uint256.NewInt(0), uint256.NewInt(4)))
	tc.Assert.Equal(reads, ctx.State.ReadSet().Cardinality())

	ctx.Gas = 100_000
	tc.Assert.NoError(ExtCodeCopy[revision.Cancun](ctx, self_addr, uint256.NewInt(0), uint256.NewInt(0), uint256.NewInt(4)))
	tc.Assert.Equal(code[:4], ctx.Memory.GetCopy(0, 4))
	tc.Assert.Greater(ctx.State.ReadSet().Cardinality(), reads)
}

func sstore(tc *tests.TestCtx, ctx *Context, f func(*Context, *uint256.Int, *uint256.Int) error, slot, value uint64) uint64 {
	gas := ctx.Gas
	tc.Assert.NoError(f(ctx, uint256.NewInt(slot), uint256.NewInt(value)))
	return gas - ctx.Gas
}

func TestSStoreLegacy(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new_ctx(&tc, revision.PETERSBURG, 1_000_000)
	tc.Assert.Equal(params.SstoreSetGas, sstore(&tc, ctx, SStore[revision.Petersburg], 2, 1))
	tc.Assert.Equal(params.SstoreClearGas, sstore(&tc, ctx, SStore[revision.Petersburg], 1, 0))
	tc.Assert.Equal(params.SstoreRefundGas, ctx.State.GetRefund())
	tc.Assert.Equal(params.SstoreResetGas, sstore(&tc, ctx, SStore[revision.Petersburg], 2, 3))
}

func TestSStoreEIP2200(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new_ctx(&tc, revision.ISTANBUL, 1_000_000)
	tc.Assert.Equal(params.SstoreSetGasEIP2200, sstore(&tc, ctx, SStore[revision.Istanbul], 2, 1))
	tc.Assert.Equal(params.SloadGasEIP2200, sstore(&tc, ctx, SStore[revision.Istanbul], 2, 0))
	tc.Assert.Equal(params.SstoreSetGasEIP2200-params.SloadGasEIP2200, ctx.State.GetRefund())
	tc.Assert.Equal(params.SloadGasEIP2200, sstore(&tc, ctx, SStore[revision.Istanbul], 2, 0))

	tc.Assert.Equal(params.SstoreResetGasEIP2200, sstore(&tc, ctx, SStore[revision.Istanbul], 1, 0))
	tc.Assert.Equal(params.SstoreSetGasEIP2200-params.SloadGasEIP2200+params.SstoreClearsScheduleRefundEIP2200,
		ctx.State.GetRefund())

	ctx.Gas = params.SstoreSentryGasEIP2200
	tc.Assert.Equal(ErrOutOfGas, SStore[revision.Istanbul](ctx, uint256.NewInt(3), uint256.NewInt(1)))
}

func TestSStoreEIP2929(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new_ctx(&tc, revision.LONDON, 1_000_000)
	cold := revision.ScheduleOf[revision.London]().ColdSload
	tc.Assert.Equal(params.ColdSloadCostEIP2929, cold)
	tc.Assert.Equal(cold+params.SstoreSetGasEIP2200, sstore(&tc, ctx, SStore[revision.London], 2, 1))
	tc.Assert.Equal(params.WarmStorageReadCostEIP2929, sstore(&tc, ctx, SStore[revision.London], 2, 2))

	tc.Assert.Equal(params.ColdSloadCostEIP2929+params.SstoreResetGasEIP2200-params.ColdSloadCostEIP2929,
		sstore(&tc, ctx, SStore[revision.London], 1, 0))
	tc.Assert.Equal(params.SstoreClearsScheduleRefundEIP3529, ctx.State.GetRefund())

	result := uint256.NewInt(1)
	gas := ctx.Gas
	tc.Assert.NoError(SLoad[revision.London](ctx, result))
	tc.Assert.True(result.IsZero())
	tc.Assert.Equal(gas-params.WarmStorageReadCostEIP2929, ctx.Gas)
	result.SetUint64(9)
	gas = ctx.Gas
	tc.Assert.NoError(SLoad[revision.London](ctx, result))
	tc.Assert.Equal(gas-cold, ctx.Gas)
}

func TestSLoadPreBerlin(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new_ctx(&tc, revision.FRONTIER, 1000)
	result := uint256.NewInt(1)
	tc.Assert.NoError(SLoad[revision.Frontier](ctx, result))
	tc.Assert.Equal(uint64(0x2a), result.Uint64())
	tc.Assert.Equal(uint64(1000)-params.SloadGasFrontier, ctx.Gas)
}

func TestWriteProtection(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new_ctx(&tc, revision.CANCUN, 100_000)
	exit := ctx.State.EnterStatic()
	tc.Assert.Equal(ErrWriteProtection, SStore[revision.Cancun](ctx, uint256.NewInt(1), uint256.NewInt(0)))
	tc.Assert.Equal(ErrWriteProtection, TStore[revision.Cancun](ctx, uint256.NewInt(1), uint256.NewInt(5)))
	exit()
	result := uint256.NewInt(1)
	tc.Assert.NoError(TLoad[revision.Cancun](ctx, result))
	tc.Assert.True(result.IsZero())
	result.SetUint64(1)
	tc.Assert.NoError(SLoad[revision.Cancun](ctx, result))
	tc.Assert.Equal(uint64(0x2a), result.Uint64())
}

func TestTransientStorageOps(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new_ctx(&tc, revision.CANCUN, 1000)
	tc.Assert.Equal(ErrInvalidOpcode, TStore[revision.Shanghai](ctx, uint256.NewInt(1), uint256.NewInt(5)))
	tc.Assert.Equal(ErrInvalidOpcode, TLoad[revision.Shanghai](ctx, uint256.NewInt(1)))
	tc.Assert.NoError(TStore[revision.Cancun](ctx, uint256.NewInt(1), uint256.NewInt(5)))
	result := uint256.NewInt(1)
	tc.Assert.NoError(TLoad[revision.Cancun](ctx, result))
	tc.Assert.Equal(uint64(5), result.Uint64())
	tc.Assert.Equal(uint64(1000-2*params.WarmStorageReadCostEIP2929), ctx.Gas)
}

func TestRunFrame(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ctx := new_ctx(&tc, revision.CANCUN, 100_000)
	err := RunFrame(ctx, false, func(ctx *Context) error {
		if err := SStore[revision.Cancun](ctx, uint256.NewInt(1), uint256.NewInt(7)); err != nil {
			return err
		}
		return ErrInvalidOpcode
	})
	tc.Assert.Equal(ErrInvalidOpcode, err)
	tc.Assert.Equal(uint64(0), ctx.Gas)
	tc.Assert.Equal(val42, ctx.State.GetStorage(self_addr, tests.Slot(1)))

	ctx.Gas = 100_000
	err = RunFrame(ctx, true, func(ctx *Context) error {
		return TStore[revision.Cancun](ctx, uint256.NewInt(1), uint256.NewInt(7))
	})
	tc.Assert.Equal(ErrWriteProtection, err)
	tc.Assert.False(ctx.State.IsStatic())
	tc.Assert.Equal(common.Hash{}, ctx.State.GetTransientStorage(self_addr, tests.Slot(1)))
}
