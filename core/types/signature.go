package types

import (
	"github.com/holiman/uint256"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util"
)

const (
	ErrInvalidV           = util.ErrorString("invalid signature v value")
	ErrChainIDOutOfBounds = util.ErrorString("chain id out of bounds")
)

var (
	v27 = uint256.NewInt(27)
	v35 = uint256.NewInt(35)
	// MaxChainID is the largest chain id whose EIP-155 v value fits in 256 bits.
	MaxChainID = func() *uint256.Int {
		ret := new(uint256.Int).SetAllOne()
		ret.Sub(ret, uint256.NewInt(36))
		return ret.Rsh(ret, 1)
	}()
)

// SignatureAndChain is the (y parity, chain id) pair carried in the v value of a
// transaction signature. A nil ChainID means a pre-EIP-155 signature.
type SignatureAndChain struct {
	YParity uint8
	ChainID *uint256.Int
}

func DecodeV(v *uint256.Int) (ret SignatureAndChain, err error) {
	if v.IsUint64() {
		switch v.Uint64() {
		case 27:
			return
		case 28:
			ret.YParity = 1
			return
		}
	}
	if v.Lt(v35) {
		return ret, ErrInvalidV
	}
	tmp := new(uint256.Int).Sub(v, v35)
	ret.YParity = uint8(tmp.Uint64() & 1)
	ret.ChainID = tmp.Rsh(tmp, 1)
	if ret.ChainID.Gt(MaxChainID) {
		return SignatureAndChain{}, ErrInvalidV
	}
	return
}

func (self SignatureAndChain) V() (*uint256.Int, error) {
	parity := uint256.NewInt(uint64(self.YParity & 1))
	if self.ChainID == nil {
		return parity.Add(parity, v27), nil
	}
	if self.ChainID.Gt(MaxChainID) {
		return nil, ErrChainIDOutOfBounds
	}
	ret := new(uint256.Int).Lsh(self.ChainID, 1)
	return ret.Add(ret, v35).Add(ret, parity), nil
}

// MustV is V for callers that validated the chain id already; a bound violation is
// treated as a broken invariant.
func (self SignatureAndChain) MustV() *uint256.Int {
	ret, err := self.V()
	if err != nil {
		util.PanicInvariant("%s: %s", err, self.ChainID.Hex())
	}
	return ret
}
