package clinic

import (
	"errors"
	"fmt"

	"github.com/funvibe/argscope/internal/arguments"
	"github.com/funvibe/argscope/internal/inference"
)

var (
	// ErrParamIssue matches every *ParamIssue: the call does not fit the
	// signature and the native function cannot be modeled for it.
	ErrParamIssue = errors.New("call does not match clinic signature")

	// ErrNotImplemented is returned for signatures the matcher cannot
	// handle, currently `**kwargs`.
	ErrNotImplemented = errors.New("clinic: not implemented")
)

// ParamIssue tells why a call did not match.
type ParamIssue struct {
	Param  string
	Reason string
}

func (e *ParamIssue) Error() string {
	if e.Param == "" {
		return "clinic: " + e.Reason
	}
	return fmt.Sprintf("clinic: %s: %s", e.Param, e.Reason)
}

func (e *ParamIssue) Is(target error) bool {
	return target == ErrParamIssue
}

// Iterate matches the unpacked arguments positionally against params and
// returns one value set per parameter. A `*` parameter collects the
// remaining positional values into a tuple. Keyword arguments are not
// supported. An optional parameter without an argument gets an empty set;
// a required one whose argument infers to nothing fails the match. A star
// argument of unknown length may fill any number of parameters, so after
// one the argument count never fails the match. callee names the function
// in issues found while unpacking.
func Iterate(args arguments.Arguments, callee arguments.Callee, params []Param) ([]inference.ValueSet, error) {
	it := inference.NewPushBackIterator(args.Unpack(callee))
	defer it.Stop()

	var (
		out    = make([]inference.ValueSet, 0, len(params))
		spread inference.LazyValue
		open   bool
	)
	for i, p := range params {
		switch p.Stars {
		case 1:
			var lazies []inference.LazyValue
			for {
				key, lazy, ok := it.Next()
				if !ok {
					break
				}
				if key != "" {
					it.PushBack(key, lazy)
					break
				}
				open = open || inference.IsOpen(lazy)
				lazies = append(lazies, lazy)
			}
			out = append(out, inference.NewValueSet(inference.NewFakeTuple(lazies)))
			continue
		case 2:
			return nil, fmt.Errorf("%w: **%s parameter", ErrNotImplemented, p.Name)
		}

		key, lazy, ok := it.Next()
		if ok && key != "" {
			return nil, &ParamIssue{Param: p.Name, Reason: "keyword arguments are not supported"}
		}
		if !ok {
			switch {
			case p.Optional:
				out = append(out, inference.NoValues)
				continue
			case spread == nil:
				return nil, &ParamIssue{Param: p.Name, Reason: fmt.Sprintf("expected at least %d arguments, got %d", len(params), i)}
			}
			lazy = spread
		}
		if inference.IsOpen(lazy) {
			spread, open = lazy, true
		}

		values := lazy.Infer()
		if values.IsEmpty() && !p.Optional {
			// Unresolvable required arguments stop the model rather than
			// letting it guess.
			return nil, &ParamIssue{Param: p.Name, Reason: "argument not resolvable"}
		}
		out = append(out, values)
	}

	for key, lazy, ok := it.Next(); ok; key, lazy, ok = it.Next() {
		if key != "" {
			return nil, &ParamIssue{Reason: fmt.Sprintf("unexpected keyword argument %q", key)}
		}
		if !open && !inference.IsOpen(lazy) {
			return nil, &ParamIssue{Reason: fmt.Sprintf("takes at most %d arguments", len(params))}
		}
	}
	return out, nil
}
