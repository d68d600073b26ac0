package vm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/revision"
)

func SLoad[R revision.Traits](ctx *Context, result *uint256.Int) error {
	key := common.Hash(result.Bytes32())
	addr := ctx.Env.Recipient
	schedule := revision.ScheduleOf[R]()
	gas := schedule.SloadGas
	if revision.Has[R](revision.ACCESS_LISTS) {
		if _, slot_warm := ctx.State.SlotInAccessList(addr, key); !slot_warm {
			ctx.State.AddSlotToAccessList(addr, key)
			gas = schedule.ColdSload
		}
	}
	if err := ctx.UseGas(gas); err != nil {
		return err
	}
	value := ctx.State.GetStorage(addr, key)
	result.SetBytes32(value[:])
	return nil
}

// SStore meters the write from the (original, current, new) values before applying it.
func SStore[R revision.Traits](ctx *Context, loc, val *uint256.Int) error {
	if ctx.State.IsStatic() {
		return ErrWriteProtection
	}
	schedule := revision.ScheduleOf[R]()
	// EIP-2200 sentry: never let SSTORE run on the call stipend alone
	if schedule.Sstore != revision.SSTORE_LEGACY && ctx.Gas <= params.SstoreSentryGasEIP2200 {
		return ErrOutOfGas
	}
	key, value := common.Hash(loc.Bytes32()), common.Hash(val.Bytes32())
	addr := ctx.Env.Recipient
	var cost uint64
	var refund int64
	switch schedule.Sstore {
	case revision.SSTORE_LEGACY:
		cost, refund = sstore_legacy(ctx.State.GetStorage(addr, key), value)
	case revision.SSTORE_EIP2200:
		cost, refund = sstore_eip2200(
			ctx.State.GetCommittedStorage(addr, key), ctx.State.GetStorage(addr, key), value, schedule)
	case revision.SSTORE_EIP2929:
		if _, slot_warm := ctx.State.SlotInAccessList(addr, key); !slot_warm {
			ctx.State.AddSlotToAccessList(addr, key)
			cost = schedule.ColdSload
		}
		c, r := sstore_eip2929(
			ctx.State.GetCommittedStorage(addr, key), ctx.State.GetStorage(addr, key), value, schedule)
		cost, refund = cost+c, r
	}
	if err := ctx.UseGas(cost); err != nil {
		return err
	}
	if refund > 0 {
		ctx.State.AddRefund(uint64(refund))
	} else if refund < 0 {
		ctx.State.SubRefund(uint64(-refund))
	}
	return ctx.State.SetStorage(addr, key, value)
}

var zero_hash common.Hash

func sstore_legacy(current, value common.Hash) (cost uint64, refund int64) {
	switch {
	case current == zero_hash && value != zero_hash:
		return params.SstoreSetGas, 0
	case current != zero_hash && value == zero_hash:
		return params.SstoreClearGas, int64(params.SstoreRefundGas)
	default:
		return params.SstoreResetGas, 0
	}
}

func sstore_eip2200(original, current, value common.Hash, schedule *revision.Schedule) (cost uint64, refund int64) {
	clear_refund := int64(schedule.SstoreClearRefund)
	if current == value {
		return params.SloadGasEIP2200, 0
	}
	if original == current {
		if original == zero_hash {
			return params.SstoreSetGasEIP2200, 0
		}
		if value == zero_hash {
			refund = clear_refund
		}
		return params.SstoreResetGasEIP2200, refund
	}
	if original != zero_hash {
		if current == zero_hash {
			refund -= clear_refund
		} else if value == zero_hash {
			refund += clear_refund
		}
	}
	if original == value {
		if original == zero_hash {
			refund += int64(params.SstoreSetGasEIP2200 - params.SloadGasEIP2200)
		} else {
			refund += int64(params.SstoreResetGasEIP2200 - params.SloadGasEIP2200)
		}
	}
	return params.SloadGasEIP2200, refund
}

// sstore_eip2929 excludes the cold slot surcharge, which the caller adds.
func sstore_eip2929(original, current, value common.Hash, schedule *revision.Schedule) (cost uint64, refund int64) {
	clear_refund := int64(schedule.SstoreClearRefund)
	if current == value {
		return schedule.WarmRead, 0
	}
	if original == current {
		if original == zero_hash {
			return params.SstoreSetGasEIP2200, 0
		}
		if value == zero_hash {
			refund = clear_refund
		}
		return params.SstoreResetGasEIP2200 - schedule.ColdSload, refund
	}
	if original != zero_hash {
		if current == zero_hash {
			refund -= clear_refund
		} else if value == zero_hash {
			refund += clear_refund
		}
	}
	if original == value {
		if original == zero_hash {
			refund += int64(params.SstoreSetGasEIP2200 - schedule.WarmRead)
		} else {
			refund += int64(params.SstoreResetGasEIP2200 - schedule.ColdSload - schedule.WarmRead)
		}
	}
	return schedule.WarmRead, refund
}

func TLoad[R revision.Traits](ctx *Context, result *uint256.Int) error {
	if !revision.Has[R](revision.TRANSIENT_STORAGE) {
		return ErrInvalidOpcode
	}
	if err := ctx.UseGas(params.WarmStorageReadCostEIP2929); err != nil {
		return err
	}
	value := ctx.State.GetTransientStorage(ctx.Env.Recipient, result.Bytes32())
	result.SetBytes32(value[:])
	return nil
}

// TStore never applies under a static frame.
func TStore[R revision.Traits](ctx *Context, loc, val *uint256.Int) error {
	if !revision.Has[R](revision.TRANSIENT_STORAGE) {
		return ErrInvalidOpcode
	}
	if ctx.State.IsStatic() {
		return ErrWriteProtection
	}
	if err := ctx.UseGas(params.WarmStorageReadCostEIP2929); err != nil {
		return err
	}
	return ctx.State.SetTransientStorage(ctx.Env.Recipient, loc.Bytes32(), val.Bytes32())
}
