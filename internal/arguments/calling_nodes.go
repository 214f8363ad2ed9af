package arguments

import (
	"go.uber.org/zap"

	"github.com/funvibe/argscope/internal/inference"
)

// CallingNodes follows `*args` forwarding back to the call that supplied
// the values. Given
//
//	def a(*args): b(*args)
//	def b(*args): c(*args)
//	a(1, 2)
//
// the arguments of c(*args) report the argument list of a(1, 2). The walk
// stops at the first call that is not itself forwarding a parameter, at a
// call that is not a call site in the tree, and at a call already visited.
// Parameters found by dynamic search end the walk with no result.
func (a *TreeArguments) CallingNodes() []inference.ContextualizedNode {
	visited := make(map[Handle]bool)
	var current Arguments = a

	for {
		tree, ok := current.(*TreeArguments)
		if !ok || visited[tree.handle] {
			break
		}
		visited[tree.handle] = true

		names := tree.starredCallingNames()
		if len(names) == 0 {
			break
		}
		name := names[len(names)-1]
		defs := tree.context.Goto(name)
		if len(defs) != 1 {
			break
		}
		paramName, ok := defs[0].(ParamName)
		if !ok {
			break
		}
		param := paramName.ExecutedParam()
		if param == nil {
			break
		}
		if param.IsDynamic() {
			a.session.logger().Debug("calling nodes hidden behind dynamic parameter",
				zap.String("param", param.Name()))
			return nil
		}
		src := param.VarArgs()
		if src == nil {
			break
		}
		current = src
	}

	return provenance(current)
}
