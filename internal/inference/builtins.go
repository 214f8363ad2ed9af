package inference

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/config"
)

// Instance is an opaque instance of a builtin class, optionally carrying
// the literal it was inferred from.
type Instance struct {
	Class   string
	Literal string
}

func (i *Instance) TypeName() string   { return i.Class }
func (i *Instance) NativeName() string { return i.Class }
func (i *Instance) String() string {
	if i.Literal != "" {
		return i.Literal
	}
	return i.Class + "()"
}

// IterableInstance is an instance of an iterable builtin class. Unless its
// contents are known, iteration yields a single representative element.
type IterableInstance struct {
	Instance
	Elem LazyValue

	chars []rune
	known bool
}

func (i *IterableInstance) Iterate() iter.Seq[LazyValue] {
	return func(yield func(LazyValue) bool) {
		if !i.known {
			yield(i.Elem)
			return
		}
		for _, c := range i.chars {
			if !yield(&LazyKnownValue{Value: NewInstance(config.StrTypeName, strconv.Quote(string(c)))}) {
				return
			}
		}
	}
}

func (i *IterableInstance) LengthUnknown() bool { return !i.known }

// NewInstance creates an instance of a builtin class. A str built from a
// plain literal iterates over its characters; other iterable classes get
// an element of unknown value, except str, whose elements are str.
func NewInstance(class, literal string) Value {
	switch class {
	case config.StrTypeName:
		inst := &IterableInstance{Instance: Instance{Class: class, Literal: literal}}
		inst.Elem = &LazyKnownValue{Value: &Instance{Class: config.StrTypeName}}
		if contents, ok := StringContents(literal); ok {
			inst.chars, inst.known = []rune(contents), true
		}
		return inst
	case config.ListTypeName, config.TupleTypeName, config.SetTypeName,
		config.DictTypeName, config.GeneratorTypeName, "frozenset", "bytes", "range":
		return &IterableInstance{Instance: Instance{Class: class, Literal: literal}, Elem: &LazyUnknownValue{}}
	}
	return &Instance{Class: class, Literal: literal}
}

// StringContents strips the prefix and quotes of a string literal. Escapes
// are kept as written except in plain double-quoted strings. Formatted
// strings have no static contents.
func StringContents(lit string) (string, bool) {
	i := strings.IndexAny(lit, `'"`)
	if i < 0 {
		return "", false
	}
	prefix, body := strings.ToLower(lit[:i]), lit[i:]
	if strings.Contains(prefix, "f") {
		return "", false
	}
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(body) >= 2*len(q) && strings.HasPrefix(body, q) && strings.HasSuffix(body, q) {
			inner := body[len(q) : len(body)-len(q)]
			if q == `"` && !strings.Contains(prefix, "r") {
				if s, err := strconv.Unquote(body); err == nil {
					return s, true
				}
			}
			return inner, true
		}
	}
	return "", false
}

// FakeSequence is a sequence assembled by the analyzer from lazy elements,
// e.g. the tuple captured by a `*args` parameter. An Open sequence holds
// representative elements of a sequence whose length is unknown.
type FakeSequence struct {
	ArrayType string
	Items     []LazyValue
	Open      bool
}

func NewFakeTuple(items []LazyValue) *FakeSequence {
	return &FakeSequence{ArrayType: config.TupleTypeName, Items: items}
}

func (s *FakeSequence) TypeName() string { return s.ArrayType }
func (s *FakeSequence) String() string {
	return fmt.Sprintf("%s(<%d items>)", s.ArrayType, len(s.Items))
}

func (s *FakeSequence) LengthUnknown() bool { return s.Open }

func (s *FakeSequence) Iterate() iter.Seq[LazyValue] {
	return func(yield func(LazyValue) bool) {
		for _, it := range s.Items {
			if !yield(it) {
				return
			}
		}
	}
}

// FakeDict is a dict with statically known string keys, e.g. the mapping
// captured by a `**kwargs` parameter.
type FakeDict struct {
	Keys   []string
	Values map[string]LazyValue
}

func NewFakeDict() *FakeDict {
	return &FakeDict{Values: make(map[string]LazyValue)}
}

// Set adds or replaces a key, keeping first-insertion order.
func (d *FakeDict) Set(key string, value LazyValue) {
	if _, ok := d.Values[key]; !ok {
		d.Keys = append(d.Keys, key)
	}
	d.Values[key] = value
}

func (d *FakeDict) TypeName() string { return config.DictTypeName }
func (d *FakeDict) String() string {
	return "dict(" + strings.Join(d.Keys, ", ") + ")"
}

func (d *FakeDict) ExactKeyItems() iter.Seq2[string, LazyValue] {
	return func(yield func(string, LazyValue) bool) {
		for _, k := range d.Keys {
			if !yield(k, d.Values[k]) {
				return
			}
		}
	}
}

// Iterate yields the keys, as iterating a dict does.
func (d *FakeDict) Iterate() iter.Seq[LazyValue] {
	return func(yield func(LazyValue) bool) {
		for _, k := range d.Keys {
			if !yield(&LazyKnownValue{Value: &Instance{Class: config.StrTypeName, Literal: fmt.Sprintf("%q", k)}}) {
				return
			}
		}
	}
}

// GeneratorComprehension is the value of `(entry for ... in ...)`.
type GeneratorComprehension struct {
	Context Context
	CompFor *ast.Node
	Entry   *ast.Node
}

func (g *GeneratorComprehension) TypeName() string { return config.GeneratorTypeName }
func (g *GeneratorComprehension) String() string {
	return "<generator: " + g.Entry.Code() + ">"
}

// Iterate yields the entry expression once, evaluated with the loop
// variables bound when the context supports it.
func (g *GeneratorComprehension) LengthUnknown() bool { return true }

func (g *GeneratorComprehension) Iterate() iter.Seq[LazyValue] {
	return func(yield func(LazyValue) bool) {
		ctx := g.Context
		if scoper, ok := ctx.(ComprehensionScoper); ok {
			ctx = scoper.ComprehensionContext(g.CompFor)
		}
		yield(NewLazyTreeValue(ctx, g.Entry))
	}
}
