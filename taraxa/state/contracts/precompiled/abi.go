package precompiled

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func must_type(t string) abi.Type {
	ret, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return ret
}

var (
	bool_args      = abi.Arguments{{Type: must_type("bool")}}
	uint256_args   = abi.Arguments{{Type: must_type("uint256")}}
	addresses_args = abi.Arguments{{Type: must_type("address[]")}}
)

func must_pack(args abi.Arguments, values ...interface{}) []byte {
	ret, err := args.Pack(values...)
	if err != nil {
		panic(err)
	}
	return ret
}

func EncodeBool(b bool) []byte {
	return must_pack(bool_args, b)
}

func EncodeUint256(v *uint256.Int) []byte {
	return must_pack(uint256_args, v.ToBig())
}

func EncodeAddresses(addrs []common.Address) []byte {
	if addrs == nil {
		addrs = []common.Address{}
	}
	return must_pack(addresses_args, addrs)
}

// MustParseABI parses a contract ABI known at compile time.
func MustParseABI(json string) abi.ABI {
	ret, err := abi.JSON(strings.NewReader(json))
	if err != nil {
		panic(err)
	}
	return ret
}

func MethodSelector(method *abi.Method) Selector {
	return SelectorFromBytes(method.ID)
}
