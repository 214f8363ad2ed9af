// Package params binds unpacked call arguments to the parameters of a
// function definition.
package params

import (
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/funvibe/argscope/internal/arguments"
	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/config"
	"github.com/funvibe/argscope/internal/diagnostics"
	"github.com/funvibe/argscope/internal/inference"
)

// ExecutedParam is a parameter of an executed function together with the
// value it was bound to.
type ExecutedParam struct {
	param     *ast.Node
	name      string
	lazy      inference.LazyValue
	args      arguments.Arguments
	isDefault bool
	dynamic   bool
}

func (p *ExecutedParam) Name() string                           { return p.name }
func (p *ExecutedParam) Infer() inference.ValueSet              { return p.lazy.Infer() }
func (p *ExecutedParam) VarArgs() arguments.Arguments           { return p.args }
func (p *ExecutedParam) IsDynamic() bool                        { return p.dynamic }
func (p *ExecutedParam) Lazy() inference.LazyValue              { return p.lazy }
func (p *ExecutedParam) Node() *ast.Node                        { return p.param }
func (p *ExecutedParam) TreeName() *ast.Node                    { return ast.ParamName(p.param) }
func (p *ExecutedParam) StringName() string                     { return p.name }
func (p *ExecutedParam) IsDefault() bool                        { return p.isDefault }
func (p *ExecutedParam) ExecutedParam() arguments.ExecutedParam { return p }

func (p *ExecutedParam) String() string {
	return fmt.Sprintf("<ExecutedParam: %s>", p.name)
}

// NewDynamicParam creates a parameter whose value was gathered from the
// calls found by a dynamic search. It has no single source Arguments.
func NewDynamicParam(param *ast.Node, values inference.ValueSet) *ExecutedParam {
	name := ""
	if n := ast.ParamName(param); n != nil {
		name = n.Value
	}
	return &ExecutedParam{
		param:   param,
		name:    name,
		lazy:    &inference.LazyKnownValues{Values: values},
		dynamic: true,
	}
}

// DefaultContexter is implemented by execution contexts whose parameter
// defaults are evaluated somewhere other than the execution itself, which
// is the usual case: defaults belong to the scope enclosing the def.
type DefaultContexter interface {
	DefaultParamContext() inference.Context
}

// Binder implements arguments.Binder.
type Binder struct {
	Logger *zap.Logger
}

// NewBinder returns a Binder logging to logger.
func NewBinder(logger *zap.Logger) *Binder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Binder{Logger: logger.Named("params")}
}

type entry struct {
	key   string
	value inference.LazyValue
}

func entries(list []entry) iter.Seq2[string, inference.LazyValue] {
	return func(yield func(string, inference.LazyValue) bool) {
		for _, e := range list {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Bind matches args against the parameters of exec's function.
//
// Keyed entries are matched by name at every step, so a keyword given
// before the positional values run out still lands on its parameter.
// Missing parameters fall back to their default; required ones without a
// default are reported once per calling node, unless the call was made
// only with keywords and another issue already explains the mismatch.
// A star argument of unknown length may supply any number of values, so
// its calls are never reported for their argument count, and parameters
// left without a value after it take its element.
func (b *Binder) Bind(exec arguments.ExecutionContext, args arguments.Arguments) ([]arguments.ExecutedParam, []*diagnostics.DiagnosticError) {
	funcdef := exec.FuncNode()
	params := namedParams(funcdef)
	funcName := ""
	if n := ast.FuncName(funcdef); n != nil {
		funcName = n.Value
	}

	defaultCtx := inference.Context(exec)
	if dc, ok := exec.(DefaultContexter); ok {
		defaultCtx = dc.DefaultParamContext()
	}

	byName := make(map[string]*ast.Node, len(params))
	for _, p := range params {
		byName[ast.ParamName(p).Value] = p
	}

	var (
		unpacked []entry
		open     bool
	)
	for k, v := range args.Unpack(arguments.FuncdefCallee(funcdef)) {
		unpacked = append(unpacked, entry{k, v})
		open = open || inference.IsOpen(v)
	}
	it := inference.NewPushBackIterator(entries(unpacked))
	defer it.Stop()

	var (
		issues         []*diagnostics.DiagnosticError
		result         []arguments.ExecutedParam
		nonMatching    []entry
		keysUsed       = make(map[string]*ExecutedParam)
		keysOnly       bool
		multipleValues bool
		spread         inference.LazyValue
	)
	atCallers := func(code diagnostics.ErrorCode, msg string) {
		for _, cn := range args.CallingNodes() {
			issues = append(issues, diagnostics.NewError(code, cn.Node, msg))
		}
	}
	tooMany := func(lazy inference.LazyValue) {
		if open {
			return
		}
		msg := argumentCountMessage(funcName, params, len(unpacked))
		if len(args.CallingNodes()) == 0 {
			b.logger().Debug("too many arguments without a call site", zap.String("message", msg))
			return
		}
		if issue := argumentIssue(diagnostics.ErrT006, lazy, msg); issue != nil {
			issues = append(issues, issue)
		}
	}

	for _, p := range params {
		name := ast.ParamName(p).Value
		key, lazy, ok := it.Next()
		for ok && key != "" {
			keysOnly = true
			if target, found := byName[key]; !found {
				nonMatching = appendEntry(nonMatching, key, lazy)
			} else if _, used := keysUsed[key]; used {
				multipleValues = true
				atCallers(diagnostics.ErrT005, fmt.Sprintf(
					"TypeError: %s() got multiple values for keyword argument '%s'.", funcName, key))
			} else {
				keysUsed[key] = &ExecutedParam{param: target, name: key, lazy: lazy, args: args}
			}
			key, lazy, ok = it.Next()
		}

		if bound, found := keysUsed[name]; found {
			result = append(result, bound)
			continue
		}

		var value inference.LazyValue
		isDefault := false
		switch ast.ParamStars(p) {
		case 1:
			var items []inference.LazyValue
			if ok {
				items = append(items, lazy)
				for {
					k, v, more := it.Next()
					if !more {
						break
					}
					if k != "" {
						it.PushBack(k, v)
						break
					}
					items = append(items, v)
				}
			}
			value = &inference.LazyKnownValue{Value: inference.NewFakeTuple(items)}
		case 2:
			if ok {
				tooMany(lazy)
			}
			dict := inference.NewFakeDict()
			for _, e := range nonMatching {
				dict.Set(e.key, e.value)
			}
			nonMatching = nil
			value = &inference.LazyKnownValue{Value: dict}
		default:
			if ok {
				value = lazy
				if inference.IsOpen(lazy) {
					spread = lazy
				}
				break
			}
			if def := ast.ParamDefault(p); def != nil {
				value = inference.NewLazyTreeValue(defaultCtx, def)
				isDefault = true
				break
			}
			if spread != nil {
				value = spread
				break
			}
			isDefault = true
			value = &inference.LazyUnknownValue{}
			if !keysOnly && !open {
				atCallers(diagnostics.ErrT003, argumentCountMessage(funcName, params, len(unpacked)))
			}
		}

		ep := &ExecutedParam{param: p, name: name, lazy: value, args: args, isDefault: isDefault}
		result = append(result, ep)
		if _, unknown := value.(*inference.LazyUnknownValue); !unknown {
			keysUsed[name] = ep
		}
	}

	if keysOnly && !open {
		for _, p := range params {
			name := ast.ParamName(p).Value
			if _, used := keysUsed[name]; used {
				continue
			}
			if len(nonMatching) > 0 || multipleValues || ast.ParamStars(p) > 0 || ast.ParamDefault(p) != nil {
				continue
			}
			atCallers(diagnostics.ErrT003, argumentCountMessage(funcName, params, len(unpacked)))
		}
	}

	for _, e := range nonMatching {
		msg := fmt.Sprintf("TypeError: %s() got an unexpected keyword argument '%s'.", funcName, e.key)
		if issue := argumentIssue(diagnostics.ErrT004, e.value, msg); issue != nil {
			issues = append(issues, issue)
		}
	}

	if _, lazy, ok := it.Next(); ok {
		tooMany(lazy)
	}
	return result, issues
}

func (b *Binder) logger() *zap.Logger {
	if b == nil || b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

// namedParams returns the params of funcdef that bind a name, skipping the
// bare `*` and `/` markers.
func namedParams(funcdef *ast.Node) []*ast.Node {
	var out []*ast.Node
	for _, p := range ast.Params(funcdef) {
		if !ast.IsParamMarker(p) {
			out = append(out, p)
		}
	}
	return out
}

func appendEntry(list []entry, key string, value inference.LazyValue) []entry {
	for i := range list {
		if list[i].key == key {
			list[i].value = value
			return list
		}
	}
	return append(list, entry{key, value})
}

func argumentCountMessage(funcName string, params []*ast.Node, given int) string {
	optional := 0
	for _, p := range params {
		if ast.ParamDefault(p) != nil || ast.ParamStars(p) > 0 {
			optional++
		}
	}
	before := "exactly "
	if optional > 0 {
		before = fmt.Sprintf("from %d to ", len(params)-optional)
	}
	return fmt.Sprintf("TypeError: %s() takes %s%d arguments (%d given).", funcName, before, len(params), given)
}

// argumentIssue anchors an issue on the argument a lazy value was written
// as. Values that do not come from the tree cannot be placed and yield nil.
func argumentIssue(code diagnostics.ErrorCode, lazy inference.LazyValue, msg string) *diagnostics.DiagnosticError {
	tree, ok := lazy.(*inference.LazyTreeValue)
	if !ok || tree.Node == nil {
		return nil
	}
	node := tree.Node
	if node.Parent != nil && node.Parent.Type == config.ArgumentNode {
		node = node.Parent
	}
	return diagnostics.NewError(code, node, msg)
}

var (
	_ arguments.Binder        = (*Binder)(nil)
	_ arguments.ExecutedParam = (*ExecutedParam)(nil)
	_ arguments.ParamName     = (*ExecutedParam)(nil)
)
