// Package arguments resolves the actual arguments of a call.
//
// An Arguments value describes where the arguments of one call come from:
// a call site in the syntax tree (TreeArguments), a list of already
// inferred value sets (ValuesArguments), nowhere at all (AnonymousArguments,
// which falls back to searching the program for call sites) or another
// Arguments value seen through a Wrapper.
//
// Unpack streams (key, LazyValue) pairs in binding order: every positional
// and star-expanded value first, then every keyword argument in source
// order. Nothing is inferred until a consumer calls Infer on a pair.
package arguments

import (
	"iter"

	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/diagnostics"
	"github.com/funvibe/argscope/internal/inference"
)

// Arguments is the source of the arguments of one call.
type Arguments interface {
	Context() inference.Context
	// ArgumentNode is the argument list node, or nil.
	ArgumentNode() *ast.Node
	// Trailer is the `( ... )` trailer of the call, or nil.
	Trailer() *ast.Node

	// Unpack yields (key, value) pairs; key is "" for positional values.
	// callee, which may be nil, only names the function in issue messages.
	Unpack(callee Callee) iter.Seq2[string, inference.LazyValue]

	// ExecutedParamsAndIssues binds the arguments to the parameters of the
	// function executed in exec.
	ExecutedParamsAndIssues(exec ExecutionContext) ([]ExecutedParam, []*diagnostics.DiagnosticError)

	// CallingNodes returns the call sites that really supplied these
	// arguments, following `*args` forwarding.
	CallingNodes() []inference.ContextualizedNode
}

// Callee names the function being called.
type Callee interface {
	CalleeName() string
}

// NamedCallee is a Callee known only by name, such as a native function.
type NamedCallee string

func (c NamedCallee) CalleeName() string { return string(c) }

type funcdefCallee struct{ node *ast.Node }

func (c funcdefCallee) CalleeName() string {
	if name := ast.FuncName(c.node); name != nil {
		return name.Value
	}
	return ""
}

// FuncdefCallee adapts a funcdef node into a Callee.
func FuncdefCallee(funcdef *ast.Node) Callee {
	if funcdef == nil {
		return nil
	}
	return funcdefCallee{node: funcdef}
}

// ExecutionContext is the context of a function being executed.
type ExecutionContext interface {
	inference.Context
	// FuncNode returns the funcdef being executed.
	FuncNode() *ast.Node
}

// ExecutedParam is a parameter bound to its argument.
type ExecutedParam interface {
	Name() string
	Infer() inference.ValueSet
	// VarArgs returns the Arguments the parameter was bound from, or nil.
	VarArgs() Arguments
	// IsDynamic reports whether the parameter was synthesized by a dynamic
	// call-site search rather than bound at a real call.
	IsDynamic() bool
}

// ParamName is a Name that resolves to a function parameter.
type ParamName interface {
	inference.Name
	ExecutedParam() ExecutedParam
}

// Binder binds an unpacked argument stream to a function's parameters.
type Binder interface {
	Bind(exec ExecutionContext, args Arguments) ([]ExecutedParam, []*diagnostics.DiagnosticError)
}

// DynamicSearcher infers the parameters of a function from the calls to it
// found elsewhere in the program.
type DynamicSearcher interface {
	Search(exec ExecutionContext, funcdef *ast.Node) []ExecutedParam
}

// DefaultExecutedParams binds args through the session's Binder.
func DefaultExecutedParams(sess *Session, exec ExecutionContext, args Arguments) ([]ExecutedParam, []*diagnostics.DiagnosticError) {
	if sess == nil || sess.Binder == nil {
		return nil, nil
	}
	return sess.Binder.Bind(exec, args)
}

// InferAll infers every argument and walks into iterable contents. It
// exists so static checks see issues nested in arguments.
func InferAll(args Arguments) {
	for _, lazy := range args.Unpack(nil) {
		inference.TryIterContent(lazy.Infer(), 0)
	}
}

func provenance(args Arguments) []inference.ContextualizedNode {
	if n := args.ArgumentNode(); n != nil {
		return []inference.ContextualizedNode{{Context: args.Context(), Node: n}}
	}
	if t := args.Trailer(); t != nil {
		return []inference.ContextualizedNode{{Context: args.Context(), Node: t}}
	}
	return nil
}
