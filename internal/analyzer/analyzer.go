// Package analyzer infers values for a subset of Python so the argument
// resolver has something to resolve against.
//
// The Engine evaluates one module. It understands literals and displays,
// names bound by assignment, def, class and for statements, calls of user
// functions, classes, bound methods and native functions, attribute access
// on instances and builtin values, and subscripts of known sequences.
// Everything else infers to nothing, which callers treat as "unknown".
package analyzer

import (
	"go.uber.org/zap"

	"github.com/funvibe/argscope/internal/arguments"
	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/config"
	"github.com/funvibe/argscope/internal/diagnostics"
	"github.com/funvibe/argscope/internal/inference"
	"github.com/funvibe/argscope/internal/params"
)

type defKey struct {
	ctx  inference.Context
	node *ast.Node
}

// Engine is the inference engine for one module and one session.
type Engine struct {
	sess   *arguments.Session
	cfg    *config.Config
	logger *zap.Logger
	binder *params.Binder

	root   *ast.Node
	module *ModuleContext

	builtins map[string]inference.Value
	methods  map[string]map[string]*NativeFunction

	functions      map[defKey]*Function
	classes        map[defKey]*Class
	anonymous      map[*Function]*FunctionExecution
	bound          map[boundKey]*BoundMethod
	comprehensions map[defKey]*ComprehensionContext
	scopes         map[*ast.Node]scope

	depth     int
	active    map[*ast.Node]int
	searching map[*ast.Node]bool
	inferring map[defKey]bool
	sites     map[string][]callSite
}

// New creates an engine for the module rooted at root. It installs the
// parameter binder and the dynamic searcher on sess.
func New(sess *arguments.Session, cfg *config.Config, root *ast.Node) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	logger := sess.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		sess:           sess,
		cfg:            cfg,
		logger:         logger.Named("analyzer"),
		binder:         params.NewBinder(logger),
		root:           root,
		builtins:       make(map[string]inference.Value),
		methods:        make(map[string]map[string]*NativeFunction),
		functions:      make(map[defKey]*Function),
		classes:        make(map[defKey]*Class),
		anonymous:      make(map[*Function]*FunctionExecution),
		bound:          make(map[boundKey]*BoundMethod),
		comprehensions: make(map[defKey]*ComprehensionContext),
		scopes:         make(map[*ast.Node]scope),
		active:         make(map[*ast.Node]int),
		searching:      make(map[*ast.Node]bool),
		inferring:      make(map[defKey]bool),
	}
	e.module = &ModuleContext{engine: e, node: root}

	if err := e.registerBuiltins(); err != nil {
		return nil, err
	}
	if err := e.registerNatives(cfg.Natives); err != nil {
		return nil, err
	}

	sess.Binder = e.binder
	sess.Searcher = e
	return e, nil
}

// Module returns the module-level context.
func (e *Engine) Module() *ModuleContext {
	return e.module
}

func (e *Engine) report(issues []*diagnostics.DiagnosticError) {
	for _, issue := range issues {
		e.sess.Reporter.Report(issue)
	}
}

func (e *Engine) function(ctx inference.Context, node *ast.Node) *Function {
	key := defKey{ctx: ctx, node: node}
	if fn, ok := e.functions[key]; ok {
		return fn
	}
	fn := &Function{engine: e, node: node, parent: ctx}
	e.functions[key] = fn
	return fn
}

func (e *Engine) class(ctx inference.Context, node *ast.Node) *Class {
	key := defKey{ctx: ctx, node: node}
	if c, ok := e.classes[key]; ok {
		return c
	}
	c := &Class{engine: e, node: node, parent: ctx}
	c.body = &ClassContext{engine: e, class: c}
	e.classes[key] = c
	return c
}

// execute runs fn's body under args and returns what it returns.
func (e *Engine) execute(fn *Function, args arguments.Arguments) inference.ValueSet {
	name := fn.Name()
	if e.depth >= e.cfg.MaxExecutionDepth {
		e.logger.Debug("execution depth reached", zap.String("function", name), zap.Int("depth", e.depth))
		return inference.NoValues
	}
	if e.active[fn.node] > 0 {
		e.logger.Debug("recursive execution skipped", zap.String("function", name))
		return inference.NoValues
	}

	e.depth++
	e.active[fn.node]++
	defer func() {
		e.depth--
		e.active[fn.node]--
	}()

	exec := newExecution(e, fn, args)
	return exec.returnValues()
}

// anonymousExecution is fn executed without a known call. Its parameters
// come from the dynamic searcher.
func (e *Engine) anonymousExecution(fn *Function) *FunctionExecution {
	if exec, ok := e.anonymous[fn]; ok {
		return exec
	}
	exec := newExecution(e, fn, arguments.NewAnonymousArguments(e.sess))
	e.anonymous[fn] = exec
	return exec
}

// contextOf returns the context node is evaluated in: the body of the
// innermost enclosing function (executed anonymously) or class, or the
// module.
func (e *Engine) contextOf(node *ast.Node) inference.Context {
	var chain []*ast.Node
	for p := node.Parent; p != nil; p = p.Parent {
		if p.Type == config.FuncdefNode || p.Type == config.ClassdefNode {
			chain = append(chain, p)
		}
	}

	var ctx inference.Context = e.module
	for i := len(chain) - 1; i >= 0; i-- {
		def := chain[i]
		var inner *ast.Node
		if i > 0 {
			inner = chain[i-1]
		} else {
			inner = node
		}
		if !within(inner, ast.Body(def)) {
			// Defaults, decorators and bases belong to the enclosing scope.
			break
		}
		if def.Type == config.ClassdefNode {
			ctx = e.class(ctx, def).body
			continue
		}
		ctx = e.anonymousExecution(e.function(ctx, def))
	}
	return ctx
}

func within(n, ancestor *ast.Node) bool {
	if ancestor == nil {
		return false
	}
	for ; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}
