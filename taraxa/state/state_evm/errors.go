package state_evm

import (
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util"
)

const (
	ErrWriteProtection     = util.ErrorString("write protection")
	ErrInsufficientBalance = util.ErrorString("insufficient balance")
	ErrMergeConflict       = util.ErrorString("attempt read state modified by a later merge")
)
