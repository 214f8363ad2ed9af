package analyzer

import (
	"fmt"

	"github.com/funvibe/argscope/internal/clinic"
	"github.com/funvibe/argscope/internal/config"
	"github.com/funvibe/argscope/internal/inference"
)

type builtinNative struct {
	name      string
	signature string
	fn        func(e *Engine) clinic.Func
}

var builtinNatives = []builtinNative{
	{"len", "obj, /", returning(config.IntTypeName)},
	{"iter", "object[, sentinel], /", func(e *Engine) clinic.Func {
		return func(call clinic.Call) inference.ValueSet {
			items, open := iterateLazies(call.Values[0])
			return inference.NewValueSet(&inference.FakeSequence{ArrayType: "iterator", Items: items, Open: open})
		}
	}},
	{"tuple", "iterable=(), /", sequenceOf(config.TupleTypeName)},
	{"list", "iterable=(), /", sequenceOf(config.ListTypeName)},
	{"sorted", "iterable, /, *, key=None, reverse=False", func(e *Engine) clinic.Func {
		return func(call clinic.Call) inference.ValueSet {
			items, open := iterateLazies(call.Values[0])
			var merged []inference.LazyValue
			if len(items) > 0 {
				merged = []inference.LazyValue{inference.MergeLazyValues(items)}
			}
			return inference.NewValueSet(&inference.FakeSequence{
				ArrayType: config.ListTypeName,
				Items:     merged,
				Open:      open || len(items) > 1,
			})
		}
	}},
	{"isinstance", "obj, class_or_tuple, /", returning(config.BoolTypeName)},
	{"getattr", "object, name[, default], /", func(e *Engine) clinic.Func {
		return func(call clinic.Call) inference.ValueSet {
			out := call.Values[2]
			for n := range call.Values[1].All() {
				name, ok := stringLiteral(n)
				if !ok {
					continue
				}
				for obj := range call.Values[0].All() {
					out = out.Union(e.attribute(obj, name))
				}
			}
			return out
		}
	}},
	{"print", "*args, sep=' ', end='\\n'", func(e *Engine) clinic.Func {
		return func(clinic.Call) inference.ValueSet {
			return inference.NewValueSet(inference.NewInstance(config.NoneTypeName, "None"))
		}
	}},
	{"dict", "**kwargs", returning(config.DictTypeName)},
	{"str.split", "$self, /, sep=None, maxsplit=-1", func(e *Engine) clinic.Func {
		return func(clinic.Call) inference.ValueSet {
			elem := &inference.LazyKnownValue{Value: inference.NewInstance(config.StrTypeName, "")}
			return inference.NewValueSet(&inference.FakeSequence{ArrayType: config.ListTypeName, Items: []inference.LazyValue{elem}, Open: true})
		}
	}},
}

// builtinClasses can be named and called but are not modeled further.
var builtinClasses = []string{
	config.IntTypeName, config.FloatTypeName, config.StrTypeName,
	config.BoolTypeName, "bytes", "object", "set", "frozenset",
}

func returning(class string) func(*Engine) clinic.Func {
	return func(*Engine) clinic.Func {
		return func(clinic.Call) inference.ValueSet {
			return inference.NewValueSet(inference.NewInstance(class, ""))
		}
	}
}

func sequenceOf(arrayType string) func(*Engine) clinic.Func {
	return func(*Engine) clinic.Func {
		return func(call clinic.Call) inference.ValueSet {
			items, open := iterateLazies(call.Values[0])
			return inference.NewValueSet(&inference.FakeSequence{ArrayType: arrayType, Items: items, Open: open})
		}
	}
}

func (e *Engine) registerBuiltins() error {
	for _, name := range builtinClasses {
		e.builtins[name] = &BuiltinClass{name: name}
	}
	for _, b := range builtinNatives {
		if err := e.addNative(b.name, b.signature, b.fn(e)); err != nil {
			return err
		}
	}
	return nil
}

// registerNatives adds the natives declared in configuration. They
// replace builtins of the same name.
func (e *Engine) registerNatives(natives []config.Native) error {
	for _, n := range natives {
		fn := returning(n.Returns)(e)
		if n.Returns == "" {
			fn = func(clinic.Call) inference.ValueSet { return inference.NoValues }
		}
		if err := e.addNative(n.Name, n.Signature, fn); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) addNative(name, signature string, fn clinic.Func) error {
	params, err := clinic.ParseCached(signature)
	if err != nil {
		return fmt.Errorf("native %s: %w", name, err)
	}
	call, err := clinic.Repack(name, signature, fn, e.logger)
	if err != nil {
		return fmt.Errorf("native %s: %w", name, err)
	}
	native := &NativeFunction{name: name, signature: signature, params: params, call: call}

	recv, member := config.Native{Name: name}.Receiver()
	if recv == "" {
		e.builtins[name] = native
		return nil
	}
	if e.methods[recv] == nil {
		e.methods[recv] = make(map[string]*NativeFunction)
	}
	e.methods[recv][member] = native
	return nil
}
