package inference

import (
	"fmt"

	"github.com/funvibe/argscope/internal/ast"
)

// LazyValue defers inference until Infer is called. Constructing one never
// evaluates anything.
type LazyValue interface {
	Infer() ValueSet
}

// LazyKnownValue wraps a single known value.
type LazyKnownValue struct {
	Value Value
}

func (l *LazyKnownValue) Infer() ValueSet { return NewValueSet(l.Value) }
func (l *LazyKnownValue) String() string  { return fmt.Sprintf("<LazyKnownValue: %v>", l.Value) }

// LazyKnownValues wraps an already inferred set.
type LazyKnownValues struct {
	Values ValueSet
}

func (l *LazyKnownValues) Infer() ValueSet { return l.Values }
func (l *LazyKnownValues) String() string  { return fmt.Sprintf("<LazyKnownValues: %v>", l.Values) }

// LazyUnknownValue stands in for an argument that was never supplied.
type LazyUnknownValue struct{}

func (*LazyUnknownValue) Infer() ValueSet { return NoValues }
func (*LazyUnknownValue) String() string  { return "<LazyUnknownValue>" }

// LazyTreeValue infers Node in Context when asked.
type LazyTreeValue struct {
	Context Context
	Node    *ast.Node
}

func NewLazyTreeValue(ctx Context, node *ast.Node) *LazyTreeValue {
	return &LazyTreeValue{Context: ctx, Node: node}
}

func (l *LazyTreeValue) Infer() ValueSet { return l.Context.InferNode(l.Node) }
func (l *LazyTreeValue) String() string  { return fmt.Sprintf("<LazyTreeValue: %s>", l.Node.Code()) }

// LazyOpenValue is an element of a star argument whose length is unknown.
// It stands for any number of unnamed arguments, including none.
type LazyOpenValue struct {
	LazyValue
}

func (l *LazyOpenValue) String() string { return fmt.Sprintf("<LazyOpenValue: %v>", l.LazyValue) }

// IsOpen reports whether lazy stands for an unknown number of arguments.
func IsOpen(lazy LazyValue) bool {
	_, ok := lazy.(*LazyOpenValue)
	return ok
}

// MergedLazyValues is the union of several lazy values.
type MergedLazyValues struct {
	Data []LazyValue
}

func (l *MergedLazyValues) Infer() ValueSet {
	var out ValueSet
	for _, d := range l.Data {
		out = out.Union(d.Infer())
	}
	return out
}

// MergeLazyValues returns the single element of lazies unchanged, and a
// union of them otherwise.
func MergeLazyValues(lazies []LazyValue) LazyValue {
	if len(lazies) == 1 {
		return lazies[0]
	}
	return &MergedLazyValues{Data: lazies}
}
