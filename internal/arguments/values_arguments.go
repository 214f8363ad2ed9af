package arguments

import (
	"fmt"
	"iter"

	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/diagnostics"
	"github.com/funvibe/argscope/internal/inference"
)

// ValuesArguments are positional arguments whose values are already known.
// They are used for calls the analyzer makes on its own behalf.
type ValuesArguments struct {
	session *Session
	values  []inference.ValueSet
}

func NewValuesArguments(sess *Session, values ...inference.ValueSet) *ValuesArguments {
	return &ValuesArguments{session: sess, values: values}
}

func (a *ValuesArguments) Context() inference.Context { return nil }
func (a *ValuesArguments) ArgumentNode() *ast.Node    { return nil }
func (a *ValuesArguments) Trailer() *ast.Node         { return nil }

func (a *ValuesArguments) Unpack(Callee) iter.Seq2[string, inference.LazyValue] {
	return func(yield func(string, inference.LazyValue) bool) {
		for _, vs := range a.values {
			if !yield("", &inference.LazyKnownValues{Values: vs}) {
				return
			}
		}
	}
}

func (a *ValuesArguments) ExecutedParamsAndIssues(exec ExecutionContext) ([]ExecutedParam, []*diagnostics.DiagnosticError) {
	return DefaultExecutedParams(a.session, exec, a)
}

func (a *ValuesArguments) CallingNodes() []inference.ContextualizedNode { return nil }

func (a *ValuesArguments) String() string {
	return fmt.Sprintf("<ValuesArguments: %v>", a.values)
}

// AnonymousArguments stand for a call that is not known, e.g. when a
// function body is analyzed on its own. Parameters are found by searching
// the program for calls of the function.
type AnonymousArguments struct {
	session *Session
}

func NewAnonymousArguments(sess *Session) *AnonymousArguments {
	return &AnonymousArguments{session: sess}
}

func (a *AnonymousArguments) Context() inference.Context { return nil }
func (a *AnonymousArguments) ArgumentNode() *ast.Node    { return nil }
func (a *AnonymousArguments) Trailer() *ast.Node         { return nil }

// Unpack yields nothing: there is no call to unpack.
func (a *AnonymousArguments) Unpack(Callee) iter.Seq2[string, inference.LazyValue] {
	return func(func(string, inference.LazyValue) bool) {}
}

func (a *AnonymousArguments) ExecutedParamsAndIssues(exec ExecutionContext) ([]ExecutedParam, []*diagnostics.DiagnosticError) {
	if a.session == nil || a.session.Searcher == nil {
		return nil, nil
	}
	return a.session.Searcher.Search(exec, exec.FuncNode()), nil
}

func (a *AnonymousArguments) CallingNodes() []inference.ContextualizedNode { return nil }

func (a *AnonymousArguments) String() string { return "AnonymousArguments()" }

// Wrapper forwards accessors and call-site queries to the wrapped
// Arguments. It has no Unpack or ExecutedParamsAndIssues: a type embedding
// Wrapper has to supply both before it satisfies Arguments.
type Wrapper struct {
	Wrapped Arguments
}

func (w *Wrapper) Context() inference.Context { return w.Wrapped.Context() }
func (w *Wrapper) ArgumentNode() *ast.Node    { return w.Wrapped.ArgumentNode() }
func (w *Wrapper) Trailer() *ast.Node         { return w.Wrapped.Trailer() }

func (w *Wrapper) CallingNodes() []inference.ContextualizedNode {
	return w.Wrapped.CallingNodes()
}

// PrependedArguments yields extra positional values before the wrapped
// arguments. Bound-method calls use it to pass the instance as `self`.
type PrependedArguments struct {
	Wrapper
	session *Session
	first   []inference.LazyValue
}

func NewPrependedArguments(sess *Session, wrapped Arguments, first ...inference.LazyValue) *PrependedArguments {
	return &PrependedArguments{Wrapper: Wrapper{Wrapped: wrapped}, session: sess, first: first}
}

func (a *PrependedArguments) Unpack(callee Callee) iter.Seq2[string, inference.LazyValue] {
	return func(yield func(string, inference.LazyValue) bool) {
		for _, v := range a.first {
			if !yield("", v) {
				return
			}
		}
		for k, v := range a.Wrapped.Unpack(callee) {
			if !yield(k, v) {
				return
			}
		}
	}
}

func (a *PrependedArguments) ExecutedParamsAndIssues(exec ExecutionContext) ([]ExecutedParam, []*diagnostics.DiagnosticError) {
	return DefaultExecutedParams(a.session, exec, a)
}

func (a *PrependedArguments) String() string {
	return fmt.Sprintf("<PrependedArguments: %v>", a.Wrapped)
}

var (
	_ Arguments = (*TreeArguments)(nil)
	_ Arguments = (*ValuesArguments)(nil)
	_ Arguments = (*AnonymousArguments)(nil)
	_ Arguments = (*PrependedArguments)(nil)
)
