package revision

import (
	"strings"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util"
)

// ID identifies a protocol revision. Later revisions compare greater.
type ID uint8

const (
	FRONTIER ID = iota
	HOMESTEAD
	TANGERINE_WHISTLE
	SPURIOUS_DRAGON
	BYZANTIUM
	PETERSBURG
	ISTANBUL
	BERLIN
	LONDON
	SHANGHAI
	CANCUN
	PRAGUE
	NEXT
	Count  = int(NEXT) + 1
	LATEST = NEXT
)

const ErrUnknownRevision = util.ErrorString("unknown revision")

var names = [Count]string{
	FRONTIER:          "frontier",
	HOMESTEAD:         "homestead",
	TANGERINE_WHISTLE: "tangerine_whistle",
	SPURIOUS_DRAGON:   "spurious_dragon",
	BYZANTIUM:         "byzantium",
	PETERSBURG:        "petersburg",
	ISTANBUL:          "istanbul",
	BERLIN:            "berlin",
	LONDON:            "london",
	SHANGHAI:          "shanghai",
	CANCUN:            "cancun",
	PRAGUE:            "prague",
	NEXT:              "next",
}

func (self ID) String() string {
	if int(self) < Count {
		return names[self]
	}
	return "unknown"
}

func (self ID) Valid() bool {
	return int(self) < Count
}

func Parse(name string) (ID, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range names {
		if n == name {
			return ID(i), nil
		}
	}
	return 0, ErrUnknownRevision
}

func (self ID) MarshalText() ([]byte, error) {
	if !self.Valid() {
		return nil, ErrUnknownRevision
	}
	return []byte(self.String()), nil
}

func (self *ID) UnmarshalText(text []byte) (err error) {
	*self, err = Parse(string(text))
	return
}

type Capability uint8

const (
	EIP150 Capability = iota
	EIP161
	EXTCODEHASH
	NET_GAS_METERING
	ACCESS_LISTS
	REFUND_REDUCTION
	TRANSIENT_STORAGE
	RESERVE_BALANCE
	capability_count
)

var capability_since = [capability_count]ID{
	EIP150:            TANGERINE_WHISTLE,
	EIP161:            SPURIOUS_DRAGON,
	EXTCODEHASH:       PETERSBURG,
	NET_GAS_METERING:  ISTANBUL,
	ACCESS_LISTS:      BERLIN,
	REFUND_REDUCTION:  LONDON,
	TRANSIENT_STORAGE: CANCUN,
	RESERVE_BALANCE:   NEXT,
}

func (self ID) Has(c Capability) bool {
	return self >= capability_since[c]
}
