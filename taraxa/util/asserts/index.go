package asserts

import (
	"strings"

	"github.com/Taraxa-project/taraxa-evm-state/taraxa/util"
)

func Holds(condition bool, msg ...string) (ret bool) {
	if ret = condition; !ret {
		if len(msg) == 0 {
			panic(util.InvariantViolation{Msg: "assertion error"})
		}
		panic(util.InvariantViolation{Msg: strings.Join(msg, " ")})
	}
	return
}
