package ast

import "github.com/funvibe/argscope/internal/config"

// Leaf constructors.

func Name(s string) *Node    { return NewLeaf(config.NameNode, s) }
func Op(s string) *Node      { return NewLeaf(config.OperatorNode, s) }
func Keyword(s string) *Node { return NewLeaf(config.KeywordNode, s) }
func Number(s string) *Node  { return NewLeaf(config.NumberNode, s) }
func String(s string) *Node  { return NewLeaf(config.StringNode, s) }

// KeywordArg builds `name=value`.
func KeywordArg(name string, value *Node) *Node {
	return NewNode(config.ArgumentNode, Name(name), Op("="), value)
}

// StarArg builds `*value`.
func StarArg(value *Node) *Node {
	return NewNode(config.ArgumentNode, Op("*"), value)
}

// StarStarArg builds `**value`.
func StarStarArg(value *Node) *Node {
	return NewNode(config.ArgumentNode, Op("**"), value)
}

// Arglist builds an argument list with separating commas. A single
// argument is returned unwrapped, matching what the parser produces for
// `f(x)`; zero arguments return nil.
func Arglist(args ...*Node) *Node {
	switch len(args) {
	case 0:
		return nil
	case 1:
		return args[0]
	}
	children := make([]*Node, 0, 2*len(args)-1)
	for i, a := range args {
		if i > 0 {
			children = append(children, Op(","))
		}
		children = append(children, a)
	}
	return NewNode(config.ArglistNode, children...)
}

// CallTrailer builds the `( args )` trailer around an argument node.
func CallTrailer(args *Node) *Node {
	if args == nil {
		return NewNode(config.TrailerNode, Op("("), Op(")"))
	}
	return NewNode(config.TrailerNode, Op("("), args, Op(")"))
}

// Call builds `callee(args)`.
func Call(callee *Node, args ...*Node) *Node {
	return NewNode(config.PowerNode, callee, CallTrailer(Arglist(args...)))
}

// IsCallTrailer reports whether n is a `( ... )` trailer.
func IsCallTrailer(n *Node) bool {
	return n != nil && n.Type == config.TrailerNode && n.Child(0).Is("(")
}

// TrailerArgs returns the argument node inside a call trailer, or nil when
// the call has no arguments.
func TrailerArgs(trailer *Node) *Node {
	if !IsCallTrailer(trailer) || len(trailer.Children) < 3 {
		return nil
	}
	return trailer.Children[1]
}

// FuncName returns the name leaf of a funcdef or classdef.
func FuncName(def *Node) *Node {
	if def == nil || (def.Type != config.FuncdefNode && def.Type != config.ClassdefNode) {
		return nil
	}
	return def.Child(1)
}

// Body returns the suite of a funcdef or classdef.
func Body(def *Node) *Node {
	if def == nil || len(def.Children) == 0 {
		return nil
	}
	last := def.Children[len(def.Children)-1]
	if last.Type != config.SuiteNode {
		return nil
	}
	return last
}

// Params returns the param nodes of a funcdef, markers (`*`, `/`) included.
func Params(funcdef *Node) []*Node {
	if funcdef == nil || funcdef.Type != config.FuncdefNode {
		return nil
	}
	params := funcdef.Child(2)
	if params == nil || params.Type != config.ParametersNode {
		return nil
	}
	var out []*Node
	for _, c := range params.Children {
		if c.Type == config.ParamNode {
			out = append(out, c)
		}
	}
	return out
}

// ParamName returns the name leaf of a param, or nil for a bare `*` or `/`
// marker.
func ParamName(param *Node) *Node {
	for _, c := range param.Children {
		if c.IsName() {
			return c
		}
		if c.Is("=") {
			break
		}
	}
	return nil
}

// ParamDefault returns the default expression of a param, if any.
func ParamDefault(param *Node) *Node {
	for i, c := range param.Children {
		if c.Is("=") {
			return param.Child(i + 1)
		}
	}
	return nil
}

// ParamStars returns 1 for `*args`, 2 for `**kwargs` and 0 otherwise.
// Bare markers report 0.
func ParamStars(param *Node) int {
	if ParamName(param) == nil {
		return 0
	}
	first := param.Child(0)
	switch {
	case first.Is("*"):
		return 1
	case first.Is("**"):
		return 2
	}
	return 0
}

// IsParamMarker reports whether param is a bare `*` or `/` separator.
func IsParamMarker(param *Node) bool {
	return ParamName(param) == nil
}

// NewParam builds a parameter node: stars is 0, 1 or 2; def may be nil.
func NewParam(name string, stars int, def *Node) *Node {
	var children []*Node
	switch stars {
	case 1:
		children = append(children, Op("*"))
	case 2:
		children = append(children, Op("**"))
	}
	children = append(children, Name(name))
	if def != nil {
		children = append(children, Op("="), def)
	}
	return NewNode(config.ParamNode, children...)
}

// Funcdef builds `def name(params): body`.
func Funcdef(name string, params []*Node, body ...*Node) *Node {
	pchildren := []*Node{Op("(")}
	for i, p := range params {
		if i > 0 {
			pchildren = append(pchildren, Op(","))
		}
		pchildren = append(pchildren, p)
	}
	pchildren = append(pchildren, Op(")"))
	return NewNode(config.FuncdefNode,
		Keyword("def"), Name(name),
		NewNode(config.ParametersNode, pchildren...),
		Op(":"), NewNode(config.SuiteNode, body...))
}

// Return builds `return value`.
func Return(value *Node) *Node {
	if value == nil {
		return NewNode(config.ReturnStmtNode, Keyword("return"))
	}
	return NewNode(config.ReturnStmtNode, Keyword("return"), value)
}

// Assign builds `target = value`.
func Assign(target string, value *Node) *Node {
	return NewNode(config.ExprStmtNode, Name(target), Op("="), value)
}

// Tuple builds a parenthesized tuple display.
func Tuple(items ...*Node) *Node {
	return display("(", ")", items, len(items) == 1)
}

// List builds a list display.
func List(items ...*Node) *Node {
	return display("[", "]", items, false)
}

func display(open, close string, items []*Node, trailingComma bool) *Node {
	if len(items) == 0 {
		return NewNode(config.AtomNode, Op(open), Op(close))
	}
	var children []*Node
	for i, it := range items {
		if i > 0 {
			children = append(children, Op(","))
		}
		children = append(children, it)
	}
	if trailingComma {
		children = append(children, Op(","))
	}
	return NewNode(config.AtomNode, Op(open), NewNode(config.TestlistCompNode, children...), Op(close))
}

// Dict builds a dict display from alternating key and value nodes.
func Dict(kv ...*Node) *Node {
	if len(kv) == 0 {
		return NewNode(config.AtomNode, Op("{"), Op("}"))
	}
	var children []*Node
	for i := 0; i+1 < len(kv); i += 2 {
		if i > 0 {
			children = append(children, Op(","))
		}
		children = append(children, kv[i], Op(":"), kv[i+1])
	}
	return NewNode(config.AtomNode, Op("{"), NewNode(config.DictMakerNode, children...), Op("}"))
}

// Module builds a file_input node.
func Module(stmts ...*Node) *Node {
	return NewNode(config.FileInputNode, stmts...)
}

// ClassBases returns the argument node of a classdef's base list, or nil
// when the class has no bases.
func ClassBases(classdef *Node) *Node {
	if classdef == nil || classdef.Type != config.ClassdefNode || !classdef.Child(2).Is("(") {
		return nil
	}
	if inner := classdef.Child(3); !inner.Is(")") {
		return inner
	}
	return nil
}
