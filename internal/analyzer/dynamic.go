package analyzer

import (
	"go.uber.org/zap"

	"github.com/funvibe/argscope/internal/arguments"
	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/config"
	"github.com/funvibe/argscope/internal/inference"
	"github.com/funvibe/argscope/internal/params"
)

// callSite is a call trailer at index in a power node.
type callSite struct {
	power *ast.Node
	index int
}

func (s callSite) trailer() *ast.Node { return s.power.Children[s.index] }

// callSites indexes every call in the module by the last name written
// before its trailer: `f(...)` and `obj.f(...)` are both sites of f.
func (e *Engine) callSites(name string) []callSite {
	if e.sites == nil {
		e.sites = make(map[string][]callSite)
		ast.Walk(e.root, func(n *ast.Node) bool {
			if n.Type != config.PowerNode {
				return true
			}
			for i := 1; i < len(n.Children); i++ {
				if !ast.IsCallTrailer(n.Children[i]) {
					continue
				}
				var callee *ast.Node
				switch prev := n.Children[i-1]; {
				case i == 1 && prev.IsName():
					callee = prev
				case prev.Type == config.TrailerNode && prev.Child(0).Is("."):
					callee = prev.Child(1)
				}
				if callee != nil {
					e.sites[callee.Value] = append(e.sites[callee.Value], callSite{power: n, index: i})
				}
			}
			return true
		})
	}
	return e.sites[name]
}

// Search infers the parameters of funcdef from the calls to it found in
// the module. It implements arguments.DynamicSearcher.
func (e *Engine) Search(exec arguments.ExecutionContext, funcdef *ast.Node) []arguments.ExecutedParam {
	name := ast.FuncName(funcdef)
	if !e.cfg.DynamicParams || name == nil {
		return e.defaultParams(exec)
	}
	if e.searching[funcdef] {
		return e.defaultParams(exec)
	}
	e.searching[funcdef] = true
	defer delete(e.searching, funcdef)

	var bound [][]arguments.ExecutedParam
	for _, site := range e.callSites(name.Value) {
		if len(bound) >= e.cfg.MaxCallSites {
			e.logger.Debug("call site limit reached", zap.String("function", name.Value))
			break
		}
		ctx := e.contextOf(site.power)
		trailer := site.trailer()
		for v := range e.inferPower(ctx, site.power, site.index).All() {
			var args arguments.Arguments = e.sess.TreeArgumentsCached(ctx, ast.TrailerArgs(trailer), trailer)
			switch callee := v.(type) {
			case *Function:
				if callee.node != funcdef {
					continue
				}
			case *BoundMethod:
				if callee.fn.node != funcdef {
					continue
				}
				args = callee.arguments(e, args)
			default:
				continue
			}
			ps, _ := e.binder.Bind(exec, args)
			bound = append(bound, ps)
		}
	}

	if len(bound) == 0 {
		return e.defaultParams(exec)
	}

	paramNodes := namedParams(funcdef)
	out := make([]arguments.ExecutedParam, len(paramNodes))
	for i, p := range paramNodes {
		var values inference.ValueSet
		for _, ps := range bound {
			if i < len(ps) {
				values = values.Union(ps[i].Infer())
			}
		}
		out[i] = params.NewDynamicParam(p, values)
	}
	e.logger.Debug("dynamic parameters",
		zap.String("function", name.Value), zap.Int("call_sites", len(bound)))
	return out
}

// defaultParams binds no arguments at all: parameters get their defaults
// or nothing.
func (e *Engine) defaultParams(exec arguments.ExecutionContext) []arguments.ExecutedParam {
	ps, _ := e.binder.Bind(exec, arguments.NewValuesArguments(e.sess))
	return ps
}

func namedParams(funcdef *ast.Node) []*ast.Node {
	var out []*ast.Node
	for _, p := range ast.Params(funcdef) {
		if !ast.IsParamMarker(p) {
			out = append(out, p)
		}
	}
	return out
}
