package arguments

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/config"
	"github.com/funvibe/argscope/internal/diagnostics"
	"github.com/funvibe/argscope/internal/inference"
)

type argKind int

const (
	argPositional argKind = iota
	argKeyword
	argStar
	argStarStar
	argComprehension
)

func (k argKind) stars() int {
	switch k {
	case argStar:
		return 1
	case argStarStar:
		return 2
	}
	return 0
}

// callArg is one classified child of an argument list.
type callArg struct {
	kind argKind
	// node is the value expression: the operand of a star, the right-hand
	// side of a keyword, the entry of a comprehension.
	node *ast.Node
	// name is the keyword name leaf.
	name *ast.Node
	// compFor is the comprehension clause.
	compFor *ast.Node
}

// classifyArglist splits an argument node into classified arguments. The
// node may be an arglist, a testlist (class bases), a single argument or a
// bare expression.
func classifyArglist(arglist *ast.Node) []callArg {
	if arglist == nil {
		return nil
	}
	if arglist.Type != config.ArglistNode && arglist.Type != config.TestlistNode {
		// A lone argument, starred or not, is not wrapped in a list.
		return []callArg{classifyArgument(arglist)}
	}

	var out []callArg
	children := arglist.Children
	for i := 0; i < len(children); i++ {
		child := children[i]
		switch {
		case child.Is(","):
			continue
		case child.Is("*") || child.Is("**"):
			// Older grammars put the star operator directly in the list.
			kind := argStar
			if child.Is("**") {
				kind = argStarStar
			}
			if i+1 < len(children) {
				i++
				out = append(out, callArg{kind: kind, node: children[i]})
			}
		default:
			out = append(out, classifyArgument(child))
		}
	}
	return out
}

func classifyArgument(n *ast.Node) callArg {
	if n.Type != config.ArgumentNode {
		return callArg{kind: argPositional, node: n}
	}
	c := n.Children
	switch {
	case len(c) == 2 && c[0].Is("*"):
		return callArg{kind: argStar, node: c[1]}
	case len(c) == 2 && c[0].Is("**"):
		return callArg{kind: argStarStar, node: c[1]}
	case len(c) == 3 && c[1].Is("="):
		return callArg{kind: argKeyword, name: c[0], node: c[2]}
	case len(c) == 2 && (c[1].Type == config.SyncCompForNode || c[1].Type == config.CompForNode):
		compFor := c[1]
		if compFor.Type == config.CompForNode {
			// `async for`: the synchronous clause follows the keyword.
			if inner := compFor.Child(1); inner != nil {
				compFor = inner
			}
		}
		return callArg{kind: argComprehension, node: c[0], compFor: compFor}
	}
	return callArg{kind: argPositional, node: n}
}

// iterateStarArgs returns the elements `*value` contributes, reporting a
// value that cannot be iterated. open reports that the elements do not
// tell how many arguments value expands to.
func (a *TreeArguments) iterateStarArgs(value inference.Value, input *ast.Node, callee Callee) (elems []inference.LazyValue, open bool) {
	it, ok := value.(inference.Iterable)
	if !ok {
		var msg string
		if name := calleeName(callee); name != "" {
			msg = fmt.Sprintf("TypeError: %s() argument after * must be a sequence, not %s", name, value)
		} else {
			msg = fmt.Sprintf("TypeError: argument after * must be a sequence, not %s", value)
		}
		a.session.report(diagnostics.NewError(diagnostics.ErrT001, input, msg))
		return nil, false
	}
	for lazy := range it.Iterate() {
		elems = append(elems, lazy)
	}
	return elems, !inference.HasKnownLength(value)
}

type keyedLazy struct {
	key   string
	value inference.LazyValue
}

// starStarDict returns the keyword arguments `**value` contributes.
func (a *TreeArguments) starStarDict(value inference.Value, input *ast.Node, callee Callee) []keyedLazy {
	if inference.IsNativeInstanceOf(value, config.DictTypeName) {
		// Keys of an opaque dict are unknown, so nothing can be matched.
		a.session.logger().Debug("** over opaque dict contributes no keywords",
			zap.String("node", input.Code()))
		return nil
	}
	if dct, ok := value.(inference.KeyedItems); ok {
		var out []keyedLazy
		for k, v := range dct.ExactKeyItems() {
			out = append(out, keyedLazy{key: k, value: v})
		}
		return out
	}
	var msg string
	if name := calleeName(callee); name != "" {
		msg = fmt.Sprintf("TypeError: %s argument after ** must be a mapping, not %s", name, value)
	} else {
		msg = fmt.Sprintf("TypeError: argument after ** must be a mapping, not %s", value)
	}
	a.session.report(diagnostics.NewError(diagnostics.ErrT002, input, msg))
	return nil
}

func calleeName(c Callee) string {
	if c == nil {
		return ""
	}
	return c.CalleeName()
}

// zipLongest aligns the element lists position by position. Shorter lists
// are padded with nil.
func zipLongest(lists [][]inference.LazyValue) [][]inference.LazyValue {
	longest := 0
	for _, l := range lists {
		if len(l) > longest {
			longest = len(l)
		}
	}
	out := make([][]inference.LazyValue, longest)
	for i := range out {
		row := make([]inference.LazyValue, len(lists))
		for j, l := range lists {
			if i < len(l) {
				row[j] = l[i]
			}
		}
		out[i] = row
	}
	return out
}

func nonNil(row []inference.LazyValue) []inference.LazyValue {
	out := make([]inference.LazyValue, 0, len(row))
	for _, v := range row {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}
