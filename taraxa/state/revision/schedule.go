package revision

import (
	"github.com/ethereum/go-ethereum/params"
)

type SstoreMetering uint8

const (
	SSTORE_LEGACY SstoreMetering = iota
	SSTORE_EIP2200
	SSTORE_EIP2929
)

// Schedule holds the gas constants that differ between revisions.
// From BERLIN on account and slot access is priced by the warm/cold fields.
type Schedule struct {
	SloadGas          uint64
	BalanceGas        uint64
	ExtcodeSizeGas    uint64
	ExtcodeCopyBase   uint64
	ExtcodeHashGas    uint64
	ColdAccountAccess uint64
	ColdSload         uint64
	WarmRead          uint64
	Sstore            SstoreMetering
	SstoreClearRefund uint64
}

var schedules = func() (ret [Count]Schedule) {
	for i := range ret {
		rev, s := ID(i), &ret[i]
		s.SloadGas = params.SloadGasFrontier
		s.BalanceGas = params.BalanceGasFrontier
		s.ExtcodeSizeGas = params.ExtcodeSizeGasFrontier
		s.ExtcodeCopyBase = params.ExtcodeCopyBaseFrontier
		s.SstoreClearRefund = params.SstoreRefundGas
		if rev.Has(EIP150) {
			s.SloadGas = params.SloadGasEIP150
			s.BalanceGas = params.BalanceGasEIP150
			s.ExtcodeSizeGas = params.ExtcodeSizeGasEIP150
			s.ExtcodeCopyBase = params.ExtcodeCopyBaseEIP150
		}
		if rev.Has(EXTCODEHASH) {
			s.ExtcodeHashGas = params.ExtcodeHashGasConstantinople
		}
		if rev.Has(NET_GAS_METERING) {
			s.Sstore = SSTORE_EIP2200
			s.SloadGas = params.SloadGasEIP2200
			s.BalanceGas = params.BalanceGasEIP1884
			s.ExtcodeHashGas = params.ExtcodeHashGasEIP1884
			s.SstoreClearRefund = params.SstoreClearsScheduleRefundEIP2200
		}
		if rev.Has(ACCESS_LISTS) {
			s.Sstore = SSTORE_EIP2929
			s.WarmRead = params.WarmStorageReadCostEIP2929
			s.ColdAccountAccess = params.ColdAccountAccessCostEIP2929
			s.ColdSload = params.ColdSloadCostEIP2929
			s.SloadGas = params.WarmStorageReadCostEIP2929
			s.BalanceGas = params.WarmStorageReadCostEIP2929
			s.ExtcodeSizeGas = params.WarmStorageReadCostEIP2929
			s.ExtcodeCopyBase = params.WarmStorageReadCostEIP2929
			s.ExtcodeHashGas = params.WarmStorageReadCostEIP2929
		}
		if rev.Has(REFUND_REDUCTION) {
			s.SstoreClearRefund = params.SstoreClearsScheduleRefundEIP3529
		}
	}
	return
}()

func (self ID) Schedule() *Schedule {
	return &schedules[self]
}
