package analyzer

import (
	"go.uber.org/zap"

	"github.com/funvibe/argscope/internal/arguments"
	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/config"
	"github.com/funvibe/argscope/internal/inference"
)

// ModuleContext evaluates module-level code.
type ModuleContext struct {
	engine *Engine
	node   *ast.Node
}

func (c *ModuleContext) InferNode(n *ast.Node) inference.ValueSet {
	return c.engine.infer(c, n)
}

func (c *ModuleContext) Goto(name *ast.Node) []inference.Name {
	if names, _ := c.engine.lookup(c, c.node, name); len(names) > 0 {
		return names
	}
	if v, ok := c.engine.builtins[name.Value]; ok {
		return []inference.Name{&builtinName{name: name.Value, value: v}}
	}
	return nil
}

func (c *ModuleContext) ComprehensionContext(compFor *ast.Node) inference.Context {
	return c.engine.comprehensionContext(c, compFor)
}

func (c *ModuleContext) String() string { return "<ModuleContext>" }

// ClassContext evaluates a class body.
type ClassContext struct {
	engine *Engine
	class  *Class
}

func (c *ClassContext) InferNode(n *ast.Node) inference.ValueSet {
	return c.engine.infer(c, n)
}

func (c *ClassContext) Goto(name *ast.Node) []inference.Name {
	if names, _ := c.engine.lookup(c, ast.Body(c.class.node), name); len(names) > 0 {
		return names
	}
	return c.class.parent.Goto(name)
}

func (c *ClassContext) ComprehensionContext(compFor *ast.Node) inference.Context {
	return c.engine.comprehensionContext(c, compFor)
}

func (c *ClassContext) String() string { return "<ClassContext: " + c.class.Name() + ">" }

func (c *ClassContext) scope() scope {
	return c.engine.scopeOf(ast.Body(c.class.node))
}

// FunctionExecution evaluates a function body under one set of arguments.
type FunctionExecution struct {
	engine *Engine
	fn     *Function
	args   arguments.Arguments

	bound  bool
	params []arguments.ExecutedParam
}

func newExecution(e *Engine, fn *Function, args arguments.Arguments) *FunctionExecution {
	return &FunctionExecution{engine: e, fn: fn, args: args}
}

func (c *FunctionExecution) FuncNode() *ast.Node { return c.fn.node }

// DefaultParamContext is where parameter defaults are evaluated.
func (c *FunctionExecution) DefaultParamContext() inference.Context { return c.fn.parent }

func (c *FunctionExecution) InferNode(n *ast.Node) inference.ValueSet {
	return c.engine.infer(c, n)
}

func (c *FunctionExecution) ComprehensionContext(compFor *ast.Node) inference.Context {
	return c.engine.comprehensionContext(c, compFor)
}

func (c *FunctionExecution) String() string {
	return "<FunctionExecution: " + c.fn.Name() + ">"
}

// ExecutedParams binds the arguments once and reports binding issues.
func (c *FunctionExecution) ExecutedParams() []arguments.ExecutedParam {
	if !c.bound {
		c.bound = true
		ps, issues := c.args.ExecutedParamsAndIssues(c)
		c.params = ps
		c.engine.report(issues)
	}
	return c.params
}

func (c *FunctionExecution) Goto(name *ast.Node) []inference.Name {
	locals, preceding := c.engine.lookup(c, ast.Body(c.fn.node), name)
	if preceding {
		return locals
	}
	for _, p := range c.ExecutedParams() {
		if p.Name() != name.Value {
			continue
		}
		if n, ok := p.(inference.Name); ok {
			return []inference.Name{n}
		}
	}
	if len(locals) > 0 {
		return locals
	}
	// Class bodies are not visible from the methods defined in them.
	parent := c.fn.parent
	if cls, ok := parent.(*ClassContext); ok {
		parent = cls.class.parent
	}
	return parent.Goto(name)
}

// returnValues infers every return statement of the body. A function
// without one returns None; a generator function returns a generator.
func (c *FunctionExecution) returnValues() inference.ValueSet {
	body := ast.Body(c.fn.node)
	var returns []*ast.Node
	generator := false
	ast.Walk(body, func(n *ast.Node) bool {
		switch n.Type {
		case config.FuncdefNode, config.ClassdefNode, "lambda":
			return false
		case config.ReturnStmtNode:
			returns = append(returns, n)
		case "yield":
			generator = true
		}
		return true
	})

	if generator {
		return inference.NewValueSet(inference.NewInstance(config.GeneratorTypeName, ""))
	}
	if len(returns) == 0 {
		return inference.NewValueSet(inference.NewInstance(config.NoneTypeName, "None"))
	}
	var out inference.ValueSet
	for _, r := range returns {
		if value := r.Child(1); value != nil {
			out = out.Union(c.InferNode(value))
		} else {
			out = out.Union(inference.NewValueSet(inference.NewInstance(config.NoneTypeName, "None")))
		}
	}
	return out
}

// ComprehensionContext binds the loop variables of one for clause.
type ComprehensionContext struct {
	engine  *Engine
	parent  inference.Context
	compFor *ast.Node
}

func (c *ComprehensionContext) InferNode(n *ast.Node) inference.ValueSet {
	return c.engine.infer(c, n)
}

func (c *ComprehensionContext) ComprehensionContext(compFor *ast.Node) inference.Context {
	return c.engine.comprehensionContext(c, compFor)
}

func (c *ComprehensionContext) Goto(name *ast.Node) []inference.Name {
	if target := c.compFor.Child(1); target.IsName() && target.Value == name.Value {
		return []inference.Name{&loopName{ctx: c.parent, name: target, iterable: c.compFor.Child(3)}}
	}
	return c.parent.Goto(name)
}

func (c *ComprehensionContext) String() string {
	return "<ComprehensionContext: " + c.compFor.Code() + ">"
}

// comprehensionContext returns the context of the innermost for clause
// starting at compFor, so the entry sees every loop variable.
func (e *Engine) comprehensionContext(parent inference.Context, compFor *ast.Node) inference.Context {
	ctx := parent
	for cf := compFor; cf != nil; cf = nextFor(cf) {
		if cf.Type == config.CompForNode {
			if cf = cf.Child(1); cf == nil {
				break
			}
		}
		key := defKey{ctx: ctx, node: cf}
		cc, ok := e.comprehensions[key]
		if !ok {
			cc = &ComprehensionContext{engine: e, parent: ctx, compFor: cf}
			e.comprehensions[key] = cc
		}
		ctx = cc
	}
	return ctx
}

// nextFor returns the for clause nested in compFor, looking through if
// clauses.
func nextFor(compFor *ast.Node) *ast.Node {
	last := compFor.Child(len(compFor.Children) - 1)
	for last != nil {
		switch last.Type {
		case config.SyncCompForNode, config.CompForNode:
			return last
		case config.CompIfNode:
			last = last.Child(len(last.Children) - 1)
		default:
			return nil
		}
	}
	return nil
}

// binding is a name leaf bound by a statement of a scope.
type binding struct {
	name *ast.Node
	stmt *ast.Node
}

type scope struct {
	defs map[string][]binding
}

// scopeOf collects the bindings made directly in body.
func (e *Engine) scopeOf(body *ast.Node) scope {
	if s, ok := e.scopes[body]; ok {
		return s
	}
	s := scope{defs: make(map[string][]binding)}
	add := func(name, stmt *ast.Node) {
		s.defs[name.Value] = append(s.defs[name.Value], binding{name: name, stmt: stmt})
	}
	ast.Walk(body, func(n *ast.Node) bool {
		if n == body {
			return true
		}
		switch n.Type {
		case config.FuncdefNode, config.ClassdefNode:
			if name := ast.FuncName(n); name != nil {
				add(name, n)
			}
			return false
		case "lambda":
			return false
		case config.ExprStmtNode:
			for i := 0; i+1 < len(n.Children); i += 2 {
				if n.Children[i+1].Is("=") && n.Children[i].IsName() {
					add(n.Children[i], n)
				}
			}
		case "for_statement":
			if target, _ := forClause(n); target.IsName() {
				add(target, n)
			}
		}
		return true
	})
	e.scopes[body] = s
	return s
}

// forClause returns the target and iterable of a for statement.
func forClause(n *ast.Node) (*ast.Node, *ast.Node) {
	if n.Child(0).Is("for") && n.Child(2).Is("in") {
		return n.Child(1), n.Child(3)
	}
	return nil, nil
}

// lookup resolves ref among the bindings of body. When ref sits in body
// itself and some binding precedes it, only the last such binding counts
// and preceding is true. Otherwise every binding counts.
func (e *Engine) lookup(ctx inference.Context, body *ast.Node, ref *ast.Node) ([]inference.Name, bool) {
	if body == nil {
		return nil, false
	}
	bindings := e.scopeOf(body).defs[ref.Value]
	if len(bindings) == 0 {
		return nil, false
	}

	if innermostBody(ref, e.root) == body {
		var last *binding
		for i := range bindings {
			if !before(bindings[i].name.Start, ref.Start) || within(ref, bindings[i].stmt) {
				continue
			}
			last = &bindings[i]
		}
		if last != nil {
			return []inference.Name{&definition{engine: e, ctx: ctx, binding: *last}}, true
		}
	}

	out := make([]inference.Name, len(bindings))
	for i, b := range bindings {
		out[i] = &definition{engine: e, ctx: ctx, binding: b}
	}
	return out, false
}

// innermostBody returns the body of the nearest function or class whose
// body contains n, or root.
func innermostBody(n, root *ast.Node) *ast.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != config.FuncdefNode && p.Type != config.ClassdefNode {
			continue
		}
		if body := ast.Body(p); within(n, body) {
			return body
		}
	}
	return root
}

func before(a, b ast.Position) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Column <= b.Column)
}

// definition is a name bound by a statement, evaluated in ctx.
type definition struct {
	engine *Engine
	ctx    inference.Context
	binding
}

func (d *definition) StringName() string  { return d.name.Value }
func (d *definition) TreeName() *ast.Node { return d.name }

func (d *definition) Infer() inference.ValueSet {
	key := defKey{ctx: d.ctx, node: d.name}
	if d.engine.inferring[key] {
		return inference.NoValues
	}
	d.engine.inferring[key] = true
	defer delete(d.engine.inferring, key)

	switch d.stmt.Type {
	case config.FuncdefNode:
		return inference.NewValueSet(d.engine.function(d.ctx, d.stmt))
	case config.ClassdefNode:
		return inference.NewValueSet(d.engine.class(d.ctx, d.stmt))
	case config.ExprStmtNode:
		return d.ctx.InferNode(d.stmt.Children[len(d.stmt.Children)-1])
	case "for_statement":
		_, iterable := forClause(d.stmt)
		return iterateContents(d.ctx.InferNode(iterable))
	}
	d.engine.logger.Debug("unsupported binding", zap.String("type", d.stmt.Type))
	return inference.NoValues
}

// loopName is a comprehension variable.
type loopName struct {
	ctx      inference.Context
	name     *ast.Node
	iterable *ast.Node
}

func (n *loopName) StringName() string  { return n.name.Value }
func (n *loopName) TreeName() *ast.Node { return n.name }
func (n *loopName) Infer() inference.ValueSet {
	return iterateContents(n.ctx.InferNode(n.iterable))
}

type builtinName struct {
	name  string
	value inference.Value
}

func (n *builtinName) StringName() string        { return n.name }
func (n *builtinName) TreeName() *ast.Node       { return nil }
func (n *builtinName) Infer() inference.ValueSet { return inference.NewValueSet(n.value) }

// inferName infers a resolved name.
func inferName(n inference.Name) inference.ValueSet {
	if i, ok := n.(interface{ Infer() inference.ValueSet }); ok {
		return i.Infer()
	}
	return inference.NoValues
}

var (
	_ arguments.ExecutionContext    = (*FunctionExecution)(nil)
	_ inference.ComprehensionScoper = (*ModuleContext)(nil)
	_ inference.ComprehensionScoper = (*ClassContext)(nil)
	_ inference.ComprehensionScoper = (*FunctionExecution)(nil)
	_ inference.ComprehensionScoper = (*ComprehensionContext)(nil)
)
