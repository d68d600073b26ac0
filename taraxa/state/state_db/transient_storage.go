// Copyright 2022 The go-ethereum Authors
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

package state_db

import (
	"github.com/ethereum/go-ethereum/common"
)

type Storage map[common.Hash]common.Hash

// TransientStorage is a representation of EIP-1153 "Transient Storage".
// Zero values are not kept.
type TransientStorage map[common.Address]Storage

// Set sets the transient-storage `value` for `key` at the given `addr`.
func (t TransientStorage) Set(addr common.Address, key, value common.Hash) {
	if value == (common.Hash{}) {
		if slots, ok := t[addr]; ok {
			delete(slots, key)
			if len(slots) == 0 {
				delete(t, addr)
			}
		}
		return
	}
	if _, ok := t[addr]; !ok {
		t[addr] = make(Storage)
	}
	t[addr][key] = value
}

// Get gets the transient storage for `key` at the given `addr`.
func (t TransientStorage) Get(addr common.Address, key common.Hash) common.Hash {
	val, ok := t[addr]
	if !ok {
		return common.Hash{}
	}
	return val[key]
}

func (t TransientStorage) Clear() {
	for addr := range t {
		delete(t, addr)
	}
}
