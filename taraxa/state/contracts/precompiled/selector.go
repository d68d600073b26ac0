package precompiled

import (
	"encoding/binary"
	"fmt"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util/keccak256"
)

// Selector is the big-endian value of the first 4 bytes of call input.
type Selector uint32

const SelectorSize = 4

func SelectorOf(signature string) Selector {
	return SelectorFromBytes(keccak256.Hash([]byte(signature)).Bytes())
}

func SelectorFromBytes(b []byte) Selector {
	return Selector(binary.BigEndian.Uint32(b[:SelectorSize]))
}

// SplitInput separates the selector from the arguments. ok is false for inputs
// shorter than a selector.
func SplitInput(input []byte) (sel Selector, args []byte, ok bool) {
	if len(input) < SelectorSize {
		return 0, input, false
	}
	return SelectorFromBytes(input), input[SelectorSize:], true
}

func (self Selector) Bytes() (ret []byte) {
	ret = make([]byte, SelectorSize)
	binary.BigEndian.PutUint32(ret, uint32(self))
	return
}

func (self Selector) String() string {
	return fmt.Sprintf("0x%08x", uint32(self))
}
