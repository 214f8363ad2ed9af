package arguments

import (
	"fmt"
	"iter"

	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/diagnostics"
	"github.com/funvibe/argscope/internal/inference"
)

// TreeArguments are the arguments written at a call site. Create them
// through Session.NewTreeArguments or Session.TreeArgumentsCached.
type TreeArguments struct {
	session      *Session
	handle       Handle
	context      inference.Context
	argumentNode *ast.Node
	trailer      *ast.Node
}

func (a *TreeArguments) Context() inference.Context { return a.context }
func (a *TreeArguments) ArgumentNode() *ast.Node    { return a.argumentNode }
func (a *TreeArguments) Trailer() *ast.Node         { return a.trailer }
func (a *TreeArguments) Handle() Handle             { return a.handle }

// Unpack walks the argument list. Keyword arguments are held back and
// yielded after everything positional, because `f(a=1, *rest)` binds rest
// before a.
func (a *TreeArguments) Unpack(callee Callee) iter.Seq2[string, inference.LazyValue] {
	return func(yield func(string, inference.LazyValue) bool) {
		var named []keyedLazy
		for _, arg := range classifyArglist(a.argumentNode) {
			switch arg.kind {
			case argStar:
				arrays := a.context.InferNode(arg.node)
				var (
					lists [][]inference.LazyValue
					open  bool
				)
				for v := range arrays.All() {
					elems, unsized := a.iterateStarArgs(v, arg.node, callee)
					lists = append(lists, elems)
					open = open || unsized
				}
				for _, row := range zipLongest(lists) {
					lazy := inference.MergeLazyValues(nonNil(row))
					if open {
						lazy = &inference.LazyOpenValue{LazyValue: lazy}
					}
					if !yield("", lazy) {
						return
					}
				}
			case argStarStar:
				arrays := a.context.InferNode(arg.node)
				for v := range arrays.All() {
					for _, kv := range a.starStarDict(v, arg.node, callee) {
						if !yield(kv.key, kv.value) {
							return
						}
					}
				}
			case argKeyword:
				named = append(named, keyedLazy{
					key:   arg.name.Value,
					value: inference.NewLazyTreeValue(a.context, arg.node),
				})
			case argComprehension:
				comp := &inference.GeneratorComprehension{
					Context: a.context,
					CompFor: arg.compFor,
					Entry:   arg.node,
				}
				if !yield("", &inference.LazyKnownValue{Value: comp}) {
					return
				}
			default:
				if !yield("", inference.NewLazyTreeValue(a.context, arg.node)) {
					return
				}
			}
		}

		for _, kv := range named {
			if !yield(kv.key, kv.value) {
				return
			}
		}
	}
}

func (a *TreeArguments) ExecutedParamsAndIssues(exec ExecutionContext) ([]ExecutedParam, []*diagnostics.DiagnosticError) {
	return DefaultExecutedParams(a.session, exec, a)
}

// starredCallingNames returns the name leaves expanded with `*` or `**`,
// in source order.
func (a *TreeArguments) starredCallingNames() []*ast.Node {
	var out []*ast.Node
	for _, arg := range classifyArglist(a.argumentNode) {
		if arg.kind.stars() == 0 || !arg.node.IsName() {
			continue
		}
		out = append(out, arg.node)
	}
	return out
}

func (a *TreeArguments) String() string {
	return fmt.Sprintf("<TreeArguments: %s>", a.argumentNode)
}
