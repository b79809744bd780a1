package recording

import (
	"fmt"
	"strconv"
	"strings"
)

// Call is one recorded operation invocation: the operation name and the
// arguments it was called with, in order.
type Call struct {
	Op   string
	Args []any
}

// String renders the call the way it would be written in a Seed call:
// the operation name with literal arguments, strings quoted.
func (c Call) String() string {
	parts := make([]string, len(c.Args))
	for i, arg := range c.Args {
		parts[i] = renderArg(arg)
	}
	return fmt.Sprintf("%s(%s)", c.Op, strings.Join(parts, ", "))
}

func renderArg(arg any) string {
	switch v := arg.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprintf("%+v", v)
	}
}
