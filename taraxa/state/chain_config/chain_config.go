package chain_config

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"os"
	"reflect"
	"runtime"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
	"github.com/naoina/toml"
	"github.com/pkg/errors"

	"github.com/Taraxa-project/taraxa-evm-state/core/types"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/revision"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/state/state_db"
	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util"
)

var (
	ErrEmptySchedule   = util.ErrorString("revision schedule is empty")
	ErrGenesisRevision = util.ErrorString("first revision must activate at block 0")
	ErrRevisionOrder   = util.ErrorString("revision schedule out of order")
	ErrWorkers         = util.ErrorString("execution workers must be positive")
	ErrMaxAttempts     = util.ErrorString("max attempts must be positive")
	ErrReserve         = util.ErrorString("reserve must be a non-negative 256-bit value")
	ErrWrongChainID    = util.ErrorString("signature chain id does not match")
)

type RevisionActivation struct {
	Revision revision.ID
	Block    state_db.BlockNum
}

type ExecutionConfig struct {
	// parallel attempts per block
	Workers int
	// executions of one transaction before the block is abandoned
	MaxAttempts uint64
}

type ChainConfig struct {
	ChainID   uint64
	Revisions []RevisionActivation
	// balance the reserve-balance contract protects, in wei
	Reserve   *math.HexOrDecimal256 `toml:",omitempty"`
	Execution ExecutionConfig
}

func Default() *ChainConfig {
	ret := new(ChainConfig)
	ret.fill_defaults()
	return ret
}

func (self *ChainConfig) fill_defaults() {
	if self.ChainID == 0 {
		self.ChainID = 841
	}
	if len(self.Revisions) == 0 {
		self.Revisions = []RevisionActivation{{revision.CANCUN, 0}}
	}
	if self.Execution.Workers == 0 {
		self.Execution.Workers = runtime.NumCPU()
	}
	if self.Execution.MaxAttempts == 0 {
		self.Execution.MaxAttempts = 8
	}
}

func (self *ChainConfig) Validate() error {
	if len(self.Revisions) == 0 {
		return ErrEmptySchedule
	}
	if self.Revisions[0].Block != 0 {
		return ErrGenesisRevision
	}
	for i, a := range self.Revisions {
		if !a.Revision.Valid() {
			return errors.Wrapf(revision.ErrUnknownRevision, "activation %d", i)
		}
		if i == 0 {
			continue
		}
		prev := self.Revisions[i-1]
		if a.Revision <= prev.Revision || a.Block <= prev.Block {
			return errors.Wrapf(ErrRevisionOrder, "%s at %d follows %s at %d", a.Revision, a.Block, prev.Revision, prev.Block)
		}
	}
	if self.Execution.Workers <= 0 {
		return ErrWorkers
	}
	if self.Execution.MaxAttempts == 0 {
		return ErrMaxAttempts
	}
	if _, err := self.ReserveBalance(); err != nil {
		return err
	}
	return nil
}

// RevisionAt is the revision of the latest activation at or before blk_n.
func (self *ChainConfig) RevisionAt(blk_n state_db.BlockNum) revision.ID {
	ret := self.Revisions[0].Revision
	for _, a := range self.Revisions[1:] {
		if a.Block > blk_n {
			break
		}
		ret = a.Revision
	}
	return ret
}

// ReserveBalance is nil when the contract default applies.
func (self *ChainConfig) ReserveBalance() (*uint256.Int, error) {
	if self.Reserve == nil {
		return nil, nil
	}
	v := (*big.Int)(self.Reserve)
	if v.Sign() < 0 {
		return nil, ErrReserve
	}
	ret, overflow := uint256.FromBig(v)
	if overflow {
		return nil, ErrReserve
	}
	return ret, nil
}

// CheckSignature decodes v and rejects chain ids of other chains. Signatures without
// a chain id are accepted.
func (self *ChainConfig) CheckSignature(v *uint256.Int) (types.SignatureAndChain, error) {
	sig, err := types.DecodeV(v)
	if err != nil {
		return sig, err
	}
	if sig.ChainID != nil && !sig.ChainID.Eq(uint256.NewInt(self.ChainID)) {
		return sig, errors.Wrapf(ErrWrongChainID, "got %s, want %d", sig.ChainID.Dec(), self.ChainID)
	}
	return sig, nil
}

// TOML keys are the Go field names.
var toml_settings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Decode reads TOML, fills what it leaves zero with defaults and validates the result.
func Decode(r io.Reader) (*ChainConfig, error) {
	ret := new(ChainConfig)
	if err := toml_settings.NewDecoder(r).Decode(ret); err != nil {
		return nil, err
	}
	ret.fill_defaults()
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

func Load(file string) (*ChainConfig, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrap(err, "open chain config")
	}
	defer f.Close()
	ret, err := Decode(bufio.NewReader(f))
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return ret, err
}
