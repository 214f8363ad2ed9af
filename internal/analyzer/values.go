package analyzer

import (
	"fmt"
	"iter"

	"github.com/funvibe/argscope/internal/arguments"
	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/clinic"
	"github.com/funvibe/argscope/internal/config"
	"github.com/funvibe/argscope/internal/inference"
)

// Function is a def statement evaluated in its defining context.
type Function struct {
	engine *Engine
	node   *ast.Node
	parent inference.Context
}

func (f *Function) TypeName() string { return "function" }
func (f *Function) String() string   { return "<function " + f.Name() + ">" }
func (f *Function) Name() string     { return ast.FuncName(f.node).Value }

// Node returns the funcdef.
func (f *Function) Node() *ast.Node { return f.node }

func (f *Function) CalleeName() string { return f.Name() }

// Class is a class statement evaluated in its defining context.
type Class struct {
	engine *Engine
	node   *ast.Node
	parent inference.Context
	body   *ClassContext
}

func (c *Class) TypeName() string { return "type" }
func (c *Class) String() string   { return "<class " + c.Name() + ">" }
func (c *Class) Name() string     { return ast.FuncName(c.node).Value }

// lookup returns the values the class body binds to name.
func (c *Class) lookup(name string) inference.ValueSet {
	var out inference.ValueSet
	for _, b := range c.body.scope().defs[name] {
		out = out.Union((&definition{engine: c.engine, ctx: c.body, binding: b}).Infer())
	}
	return out
}

// Instance is an instance of a user-defined class.
type Instance struct {
	class *Class
	args  arguments.Arguments
}

func (i *Instance) TypeName() string { return i.class.Name() }
func (i *Instance) String() string   { return "<" + i.class.Name() + " instance>" }

// attribute returns the class attribute name, with functions bound to i.
func (i *Instance) attribute(name string) inference.ValueSet {
	var out inference.ValueSet
	for v := range i.class.lookup(name).All() {
		if fn, ok := v.(*Function); ok {
			out = out.Union(inference.NewValueSet(i.class.engine.boundMethod(i, fn)))
			continue
		}
		out = out.Union(inference.NewValueSet(v))
	}
	return out
}

// BoundMethod is a function looked up on an instance; calling it passes
// the instance as the first argument.
type BoundMethod struct {
	instance *Instance
	fn       *Function
}

func (m *BoundMethod) TypeName() string   { return "method" }
func (m *BoundMethod) String() string     { return "<bound method " + m.fn.Name() + ">" }
func (m *BoundMethod) CalleeName() string { return m.fn.Name() }

func (e *Engine) boundMethod(inst *Instance, fn *Function) *BoundMethod {
	key := boundKey{inst, fn}
	if m, ok := e.bound[key]; ok {
		return m
	}
	m := &BoundMethod{instance: inst, fn: fn}
	e.bound[key] = m
	return m
}

type boundKey struct {
	inst *Instance
	fn   *Function
}

// arguments prepends the instance to args.
func (m *BoundMethod) arguments(e *Engine, args arguments.Arguments) arguments.Arguments {
	return arguments.NewPrependedArguments(e.sess, args, &inference.LazyKnownValue{Value: m.instance})
}

// NativeFunction is a builtin function modeled by a clinic signature.
type NativeFunction struct {
	name      string
	signature string
	params    []clinic.Param
	call      clinic.Native
}

func (n *NativeFunction) TypeName() string   { return "builtin_function_or_method" }
func (n *NativeFunction) String() string     { return "<built-in function " + n.name + ">" }
func (n *NativeFunction) CalleeName() string { return n.name }

// BuiltinClass is a builtin type used by name, e.g. `int` or `str`.
// Calling it creates an instance.
type BuiltinClass struct {
	name string
}

func (c *BuiltinClass) TypeName() string { return "type" }
func (c *BuiltinClass) String() string   { return "<class '" + c.name + "'>" }

// DictDisplay is the value of a dict literal. Its exact items are the
// entries whose keys infer to string literals, plus those of `**` entries.
type DictDisplay struct {
	ctx  inference.Context
	node *ast.Node
}

func (d *DictDisplay) TypeName() string { return config.DictTypeName }
func (d *DictDisplay) String() string   { return d.node.Code() }

func (d *DictDisplay) ExactKeyItems() iter.Seq2[string, inference.LazyValue] {
	return func(yield func(string, inference.LazyValue) bool) {
		maker := d.node.Child(1)
		if maker == nil || maker.Type != config.DictMakerNode {
			return
		}
		kids := maker.Children
		for i := 0; i < len(kids); i++ {
			switch {
			case kids[i].Is("**") && i+1 < len(kids):
				i++
				for v := range d.ctx.InferNode(kids[i]).All() {
					keyed, ok := v.(inference.KeyedItems)
					if !ok {
						continue
					}
					for k, lazy := range keyed.ExactKeyItems() {
						if !yield(k, lazy) {
							return
						}
					}
				}
			case i+2 < len(kids) && kids[i+1].Is(":"):
				keyNode, valueNode := kids[i], kids[i+2]
				i += 2
				for k := range d.ctx.InferNode(keyNode).All() {
					key, ok := stringLiteral(k)
					if !ok {
						continue
					}
					if !yield(key, inference.NewLazyTreeValue(d.ctx, valueNode)) {
						return
					}
				}
			}
		}
	}
}

// LengthUnknown reports whether some key of the display is not a string
// literal, so iterating the exact keys misses entries.
func (d *DictDisplay) LengthUnknown() bool {
	maker := d.node.Child(1)
	if maker == nil || maker.Type != config.DictMakerNode {
		return false
	}
	kids := maker.Children
	for i := 0; i < len(kids); i++ {
		switch {
		case kids[i].Is("**") && i+1 < len(kids):
			i++
			for v := range d.ctx.InferNode(kids[i]).All() {
				if _, ok := v.(inference.KeyedItems); !ok || !inference.HasKnownLength(v) {
					return true
				}
			}
		case i+2 < len(kids) && kids[i+1].Is(":"):
			for k := range d.ctx.InferNode(kids[i]).All() {
				if _, ok := stringLiteral(k); !ok {
					return true
				}
			}
			i += 2
		}
	}
	return false
}

// Iterate yields the keys.
func (d *DictDisplay) Iterate() iter.Seq[inference.LazyValue] {
	return func(yield func(inference.LazyValue) bool) {
		for k := range d.ExactKeyItems() {
			if !yield(&inference.LazyKnownValue{Value: inference.NewInstance(config.StrTypeName, fmt.Sprintf("%q", k))}) {
				return
			}
		}
	}
}

var (
	_ inference.KeyedItems = (*DictDisplay)(nil)
	_ inference.Iterable   = (*DictDisplay)(nil)
	_ inference.OpenLength = (*DictDisplay)(nil)
	_ arguments.Callee     = (*Function)(nil)
	_ arguments.Callee     = (*NativeFunction)(nil)
)
