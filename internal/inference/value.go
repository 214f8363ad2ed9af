// Package inference defines the value model the argument resolver works
// on: values, value sets, lazy values and the capabilities a value may
// expose (iteration, exact dictionary items, native class identity).
//
// Turning a syntax node into values is the job of a Context implementation;
// this package only fixes the contract.
package inference

import (
	"iter"
	"sort"
	"strings"

	"github.com/funvibe/argscope/internal/ast"
)

// Value is one inferred value. Implementations must be comparable with ==
// (in practice: pointer types), since value sets deduplicate by identity.
type Value interface {
	// TypeName is the builtin or declared type name, e.g. "tuple" or "int".
	TypeName() string
	String() string
}

// Context turns syntax into values. Implementations are provided by the
// inference engine and must be comparable, as the argument cache is keyed
// on them.
type Context interface {
	InferNode(n *ast.Node) ValueSet
	// Goto resolves a name leaf to its definitions.
	Goto(name *ast.Node) []Name
}

// ComprehensionScoper is implemented by contexts that can bind the loop
// variables of a comprehension clause.
type ComprehensionScoper interface {
	ComprehensionContext(compFor *ast.Node) Context
}

// Name is a resolved definition of a name.
type Name interface {
	StringName() string
	TreeName() *ast.Node
}

// ContextualizedNode pairs a node with the context it is evaluated in.
type ContextualizedNode struct {
	Context Context
	Node    *ast.Node
}

func (c ContextualizedNode) Infer() ValueSet {
	return c.Context.InferNode(c.Node)
}

// ValueSet is an ordered set of values. The zero value is the empty set.
type ValueSet struct {
	values []Value
}

// NoValues is the empty set.
var NoValues = ValueSet{}

// NewValueSet builds a set, dropping nil and duplicate values.
func NewValueSet(values ...Value) ValueSet {
	var s ValueSet
	for _, v := range values {
		s = s.add(v)
	}
	return s
}

func (s ValueSet) add(v Value) ValueSet {
	if v == nil {
		return s
	}
	for _, existing := range s.values {
		if existing == v {
			return s
		}
	}
	return ValueSet{values: append(s.values[:len(s.values):len(s.values)], v)}
}

func (s ValueSet) Len() int      { return len(s.values) }
func (s ValueSet) IsEmpty() bool { return len(s.values) == 0 }

// Values returns a copy of the members in insertion order.
func (s ValueSet) Values() []Value {
	out := make([]Value, len(s.values))
	copy(out, s.values)
	return out
}

// All iterates the members in insertion order.
func (s ValueSet) All() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for _, v := range s.values {
			if !yield(v) {
				return
			}
		}
	}
}

// Union returns the members of s followed by the new members of o.
func (s ValueSet) Union(o ValueSet) ValueSet {
	for _, v := range o.values {
		s = s.add(v)
	}
	return s
}

// UnionAll merges every set.
func UnionAll(sets ...ValueSet) ValueSet {
	var out ValueSet
	for _, s := range sets {
		out = out.Union(s)
	}
	return out
}

// TypeNames returns the sorted, unique type names of the members.
func (s ValueSet) TypeNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, v := range s.values {
		n := v.TypeName()
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

func (s ValueSet) String() string {
	parts := make([]string, len(s.values))
	for i, v := range s.values {
		parts[i] = v.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
