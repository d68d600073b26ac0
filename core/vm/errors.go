// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/state_evm"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util"
)

// List execution errors
var (
	ErrOutOfGas              = util.ErrorString("out of gas")
	ErrGasUintOverflow       = util.ErrorString("gas uint64 overflow")
	ErrInvalidOpcode         = util.ErrorString("invalid opcode")
	ErrReturnDataOutOfBounds = util.ErrorString("return data out of bounds")
	ErrWriteProtection       = state_evm.ErrWriteProtection
)

// IsFrameFault reports errors that abort the current call frame only.
func IsFrameFault(err error) bool {
	switch err {
	case ErrOutOfGas, ErrGasUintOverflow, ErrInvalidOpcode, ErrReturnDataOutOfBounds, ErrWriteProtection,
		state_evm.ErrInsufficientBalance:
		return true
	}
	return false
}
