package revision

import (
	"testing"

	"github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/assert"
)

func TestOrderingAndNames(t *testing.T) {
	assert.True(t, FRONTIER < HOMESTEAD)
	assert.True(t, CANCUN < PRAGUE && PRAGUE < NEXT)
	assert.Equal(t, NEXT, LATEST)
	for i := 0; i < Count; i++ {
		rev := ID(i)
		parsed, err := Parse(rev.String())
		assert.NoError(t, err)
		assert.Equal(t, rev, parsed)
	}
	_, err := Parse("osaka-ish")
	assert.Equal(t, ErrUnknownRevision, err)
	assert.False(t, ID(Count).Valid())
}

func TestTagsMatchIDs(t *testing.T) {
	assert.Equal(t, FRONTIER, Of[Frontier]())
	assert.Equal(t, PETERSBURG, Of[Petersburg]())
	assert.Equal(t, CANCUN, Of[Cancun]())
	assert.Equal(t, NEXT, Of[Next]())
	assert.True(t, AtLeast[Berlin](ISTANBUL))
	assert.False(t, AtLeast[Istanbul](BERLIN))
}

func TestCapabilities(t *testing.T) {
	assert.False(t, Has[Byzantium](EXTCODEHASH))
	assert.True(t, Has[Petersburg](EXTCODEHASH))
	assert.False(t, Has[Shanghai](TRANSIENT_STORAGE))
	assert.True(t, Has[Cancun](TRANSIENT_STORAGE))
	assert.False(t, PRAGUE.Has(RESERVE_BALANCE))
	assert.True(t, NEXT.Has(RESERVE_BALANCE))
	assert.False(t, HOMESTEAD.Has(EIP161))
	assert.True(t, SPURIOUS_DRAGON.Has(EIP161))
}

func TestSchedules(t *testing.T) {
	assert.Equal(t, params.SloadGasFrontier, ScheduleOf[Frontier]().SloadGas)
	assert.Equal(t, params.SloadGasEIP150, ScheduleOf[TangerineWhistle]().SloadGas)
	assert.Equal(t, params.SloadGasEIP2200, ScheduleOf[Istanbul]().SloadGas)
	assert.Equal(t, SSTORE_LEGACY, ScheduleOf[Petersburg]().Sstore)
	assert.Equal(t, SSTORE_EIP2200, ScheduleOf[Istanbul]().Sstore)
	assert.Equal(t, SSTORE_EIP2929, ScheduleOf[London]().Sstore)
	assert.Equal(t, params.SstoreClearsScheduleRefundEIP2200, ScheduleOf[Berlin]().SstoreClearRefund)
	assert.Equal(t, params.SstoreClearsScheduleRefundEIP3529, ScheduleOf[London]().SstoreClearRefund)
	assert.Equal(t, uint64(0), ScheduleOf[Byzantium]().ExtcodeHashGas)
	assert.Equal(t, params.ExtcodeHashGasConstantinople, PETERSBURG.Schedule().ExtcodeHashGas)
	assert.Equal(t, params.ColdAccountAccessCostEIP2929, CANCUN.Schedule().ColdAccountAccess)
}

func TestTable(t *testing.T) {
	var table Table[func() ID]
	table.Set(FRONTIER, Of[Frontier]).Set(NEXT, Of[Next])
	assert.Equal(t, NEXT, table.Get(NEXT)())
	assert.Len(t, table.Missing(), Count-2)
	assert.Panics(t, func() { table.Get(BERLIN) })
}
