package memo

import (
	"fmt"

	"github.com/roach88/calcdocs/internal/ir"
)

// Arg is one identity-stable builder argument.
type Arg struct {
	kind  string
	value string
}

// Args is the ordered argument tuple of a builder call.
type Args []Arg

// String is a plain string argument (sample, target, well name).
func String(s string) Arg {
	return Arg{kind: "s", value: s}
}

// Optional is a string argument that may be absent. Absent and "" are
// distinct keys.
func Optional(s *string) Arg {
	if s == nil {
		return Arg{kind: "none"}
	}
	return Arg{kind: "s", value: *s}
}

// Raw keys a raw record handle by its RawID.
func Raw(ref ir.RawRef) Arg {
	return Arg{kind: "raw", value: ref.RawID()}
}

// Node keys a calculated node by its handle.
func Node(n *ir.Node) Arg {
	return Arg{kind: "node", value: string(n.ID)}
}

// Of is shorthand for building Args.
func Of(args ...Arg) Args {
	return args
}

func (a Args) canonical() ([]byte, error) {
	tuple := make([]any, len(a))
	for i, arg := range a {
		if arg.kind == "none" {
			tuple[i] = []string{"none"}
			continue
		}
		tuple[i] = []string{arg.kind, arg.value}
	}
	return ir.MarshalCanonical(tuple)
}

// Key returns the memoization key of a builder call.
func Key(builder string, args Args) (string, error) {
	if builder == "" {
		return "", fmt.Errorf("memo key: builder identity is required")
	}
	canonical, err := args.canonical()
	if err != nil {
		return "", fmt.Errorf("memo key %s: %w", builder, err)
	}
	return ir.MemoKey(builder, canonical), nil
}
