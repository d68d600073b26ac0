package util

import (
	"strings"
)

func Assert(condition bool, msg ...string) bool {
	if !condition {
		panic(InvariantViolation{strings.Join(msg, " ")})
	}
	return true
}
