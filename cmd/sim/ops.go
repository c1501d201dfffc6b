package sim

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Op is one entry of an operation script.
type Op struct {
	Kind   string
	Arg    int
	Policy string // target of convert
}

func (o Op) String() string {
	switch o.Kind {
	case "convert":
		return fmt.Sprintf("convert:%s", o.Policy)
	case "shrink", "clear", "drain":
		return o.Kind
	default:
		return fmt.Sprintf("%s:%d", o.Kind, o.Arg)
	}
}

// argument requirements per operation
const (
	argNone     = iota // no argument allowed
	argCount           // optional count, defaults to 1
	argRequired        // non-negative integer required
	argPolicy          // policy name required
)

var opArgs = map[string]int{
	"push":     argCount,
	"pop":      argCount,
	"insert":   argRequired,
	"remove":   argRequired,
	"reserve":  argRequired,
	"grow":     argRequired,
	"shrinkby": argRequired,
	"shrink":   argNone,
	"clear":    argNone,
	"drain":    argNone,
	"convert":  argPolicy,
}

// ParseOps parses a script like "push:5,pop:2,insert:0,convert:tight".
func ParseOps(script string) ([]Op, error) {
	var ops []Op
	for _, entry := range strings.Split(script, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		kind, arg, hasArg := strings.Cut(entry, ":")
		kind = strings.ToLower(kind)
		rule, ok := opArgs[kind]
		if !ok {
			return nil, errors.Newf("unknown operation %q", kind)
		}

		op := Op{Kind: kind}
		switch rule {
		case argNone:
			if hasArg {
				return nil, errors.Newf("operation %q takes no argument", kind)
			}
		case argCount, argRequired:
			if !hasArg {
				if rule == argRequired {
					return nil, errors.Newf("operation %q needs an argument", kind)
				}
				op.Arg = 1
				break
			}
			n, err := strconv.Atoi(arg)
			if err != nil || n < 0 {
				return nil, errors.Newf("invalid argument %q for %q", arg, kind)
			}
			op.Arg = n
		case argPolicy:
			if arg == "" {
				return nil, errors.Newf("operation %q needs a policy name", kind)
			}
			op.Policy = arg
		}
		ops = append(ops, op)
	}

	if len(ops) == 0 {
		return nil, errors.New("empty operation script")
	}
	return ops, nil
}
