package parser

import (
	"slices"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/config"
)

// lowerer converts tree-sitter nodes into ast nodes.
type lowerer struct {
	src []byte
}

func (l *lowerer) text(n *sitter.Node) string {
	return n.Content(l.src)
}

// leaf builds a leaf carrying n's text and position.
func (l *lowerer) leaf(typ string, n *sitter.Node) *ast.Node {
	return l.leafText(typ, l.text(n), n)
}

func (l *lowerer) leafText(typ, text string, n *sitter.Node) *ast.Node {
	leaf := ast.NewLeaf(typ, text)
	leaf.Start = position(n.StartPoint())
	leaf.End = position(n.EndPoint())
	return leaf
}

// token lowers an anonymous node: words become keywords, the rest
// operators.
func (l *lowerer) token(n *sitter.Node) *ast.Node {
	text := l.text(n)
	if text != "" && unicode.IsLetter(rune(text[0])) {
		return l.leafText(config.KeywordNode, text, n)
	}
	return l.leafText(config.OperatorNode, text, n)
}

func children(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.ChildCount())
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "comment" || (c.IsMissing() && c.EndByte() == c.StartByte()) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, c := range children(n) {
		if c.IsNamed() {
			out = append(out, c)
		}
	}
	return out
}

// childOfType returns the first anonymous child with the given text.
func (l *lowerer) childOfType(n *sitter.Node, typ string) *sitter.Node {
	for _, c := range children(n) {
		if c.Type() == typ {
			return c
		}
	}
	return nil
}

func (l *lowerer) module(n *sitter.Node) *ast.Node {
	var stmts []*ast.Node
	for _, c := range namedChildren(n) {
		if s := l.node(c); s != nil {
			stmts = append(stmts, s)
		}
	}
	mod := ast.NewNode(config.FileInputNode, stmts...)
	if len(stmts) == 0 {
		mod.Start = position(n.StartPoint())
		mod.End = position(n.EndPoint())
	}
	return mod
}

// node lowers any statement or expression.
func (l *lowerer) node(n *sitter.Node) *ast.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "expression_statement":
		return l.expressionStatement(n)
	case "assignment":
		return l.assignment(n)
	case "function_definition":
		return l.funcdef(n)
	case "class_definition":
		return l.classdef(n)
	case "decorated_definition":
		return l.node(n.ChildByFieldName("definition"))
	case "return_statement":
		return l.returnStmt(n)
	case "block":
		return l.suite(n)

	case "identifier":
		return l.leaf(config.NameNode, n)
	case "integer", "float":
		return l.leaf(config.NumberNode, n)
	case "string", "concatenated_string":
		return l.leaf(config.StringNode, n)
	case "true", "false", "none":
		return l.leaf(config.KeywordNode, n)
	case "call":
		return l.call(n)
	case "attribute":
		base := l.node(n.ChildByFieldName("object"))
		attr := n.ChildByFieldName("attribute")
		dot := l.childOfType(n, ".")
		if base == nil || attr == nil || dot == nil {
			return l.generic(n)
		}
		return appendTrailer(base, ast.NewNode(config.TrailerNode, l.token(dot), l.leaf(config.NameNode, attr)))
	case "subscript":
		return l.subscript(n)
	case "parenthesized_expression":
		if inner := namedChildren(n); len(inner) == 1 {
			return l.node(inner[0])
		}
		return l.generic(n)
	case "tuple", "list":
		return l.display(n, config.TestlistCompNode)
	case "set", "dictionary":
		return l.display(n, config.DictMakerNode)
	case "generator_expression", "list_comprehension", "set_comprehension":
		return l.comprehension(n, config.TestlistCompNode)
	case "dictionary_comprehension":
		return l.comprehension(n, config.DictMakerNode)
	case "expression_list":
		return l.generic(n, config.TestlistNode)
	case "ERROR":
		return l.generic(n, config.ErrorNode)
	}
	if n.ChildCount() == 0 {
		if n.IsNamed() {
			return l.leaf(n.Type(), n)
		}
		return l.token(n)
	}
	return l.generic(n)
}

// generic keeps the node's own type (or typ, when given) and lowers every
// child. Calls nested anywhere stay reachable this way.
func (l *lowerer) generic(n *sitter.Node, typ ...string) *ast.Node {
	t := n.Type()
	if len(typ) > 0 {
		t = typ[0]
	}
	var kids []*ast.Node
	for _, c := range children(n) {
		var k *ast.Node
		if c.IsNamed() {
			k = l.node(c)
		} else {
			k = l.token(c)
		}
		if k != nil {
			kids = append(kids, k)
		}
	}
	node := ast.NewNode(t, kids...)
	if len(kids) == 0 {
		node.Start = position(n.StartPoint())
		node.End = position(n.EndPoint())
	}
	return node
}

func (l *lowerer) expressionStatement(n *sitter.Node) *ast.Node {
	inner := namedChildren(n)
	switch {
	case len(inner) == 1:
		return l.node(inner[0])
	case len(inner) == 0:
		return nil
	}
	return l.generic(n, config.TestlistNode)
}

// assignment lowers `a = b = value` into expr_stmt[a, =, b, =, value].
func (l *lowerer) assignment(n *sitter.Node) *ast.Node {
	var kids []*ast.Node
	for n != nil && n.Type() == "assignment" {
		left, right := n.ChildByFieldName("left"), n.ChildByFieldName("right")
		eq := l.childOfType(n, "=")
		if left == nil || right == nil || eq == nil {
			// Bare annotation, `x: int`.
			return l.generic(n)
		}
		kids = append(kids, l.node(left), l.token(eq))
		n = right
	}
	kids = append(kids, l.node(n))
	return ast.NewNode(config.ExprStmtNode, kids...)
}

func (l *lowerer) suite(n *sitter.Node) *ast.Node {
	var stmts []*ast.Node
	for _, c := range namedChildren(n) {
		if s := l.node(c); s != nil {
			stmts = append(stmts, s)
		}
	}
	suite := ast.NewNode(config.SuiteNode, stmts...)
	if len(stmts) == 0 {
		suite.Start = position(n.StartPoint())
		suite.End = position(n.EndPoint())
	}
	return suite
}

func (l *lowerer) funcdef(n *sitter.Node) *ast.Node {
	def := l.childOfType(n, "def")
	name := n.ChildByFieldName("name")
	params := n.ChildByFieldName("parameters")
	colon := l.childOfType(n, ":")
	body := n.ChildByFieldName("body")
	if def == nil || name == nil || params == nil || colon == nil || body == nil {
		return l.generic(n)
	}
	return ast.NewNode(config.FuncdefNode,
		l.token(def), l.leaf(config.NameNode, name),
		l.parameters(params),
		l.token(colon), l.suite(body))
}

func (l *lowerer) parameters(n *sitter.Node) *ast.Node {
	var kids []*ast.Node
	for _, c := range children(n) {
		if !c.IsNamed() {
			kids = append(kids, l.token(c))
			continue
		}
		if p := l.param(c); p != nil {
			kids = append(kids, p)
		}
	}
	return ast.NewNode(config.ParametersNode, kids...)
}

// param lowers one parameter into param[("*"|"**")? name ("=" default)?],
// or param["*"] / param["/"] for the separators. Annotations are dropped.
func (l *lowerer) param(n *sitter.Node) *ast.Node {
	switch n.Type() {
	case "identifier":
		return ast.NewNode(config.ParamNode, l.leaf(config.NameNode, n))
	case "default_parameter", "typed_default_parameter":
		name, value := n.ChildByFieldName("name"), n.ChildByFieldName("value")
		eq := l.childOfType(n, "=")
		if name == nil || value == nil || eq == nil {
			return nil
		}
		p := l.param(name)
		if p == nil {
			return nil
		}
		kids := append(slices.Clone(p.Children), l.token(eq), l.node(value))
		return ast.NewNode(config.ParamNode, kids...)
	case "typed_parameter":
		if inner := namedChildren(n); len(inner) > 0 {
			return l.param(inner[0])
		}
	case "list_splat_pattern", "dictionary_splat_pattern":
		star := n.Child(0)
		inner := namedChildren(n)
		if star == nil || len(inner) != 1 || inner[0].Type() != "identifier" {
			return nil
		}
		return ast.NewNode(config.ParamNode, l.token(star), l.leaf(config.NameNode, inner[0]))
	case "keyword_separator", "positional_separator":
		return ast.NewNode(config.ParamNode, l.leafText(config.OperatorNode, l.text(n), n))
	}
	return nil
}

// classdef lowers into classdef[class, name, ("(" bases? ")")?, ":", suite].
func (l *lowerer) classdef(n *sitter.Node) *ast.Node {
	kw := l.childOfType(n, "class")
	name := n.ChildByFieldName("name")
	colon := l.childOfType(n, ":")
	body := n.ChildByFieldName("body")
	if kw == nil || name == nil || colon == nil || body == nil {
		return l.generic(n)
	}
	kids := []*ast.Node{l.token(kw), l.leaf(config.NameNode, name)}
	if bases := n.ChildByFieldName("superclasses"); bases != nil {
		kids = append(kids, l.callTrailer(bases).Children...)
	}
	kids = append(kids, l.token(colon), l.suite(body))
	return ast.NewNode(config.ClassdefNode, kids...)
}

func (l *lowerer) returnStmt(n *sitter.Node) *ast.Node {
	kw := l.childOfType(n, "return")
	if kw == nil {
		return l.generic(n)
	}
	kids := []*ast.Node{l.token(kw)}
	if inner := namedChildren(n); len(inner) == 1 {
		kids = append(kids, l.node(inner[0]))
	}
	return ast.NewNode(config.ReturnStmtNode, kids...)
}

func (l *lowerer) call(n *sitter.Node) *ast.Node {
	fn := l.node(n.ChildByFieldName("function"))
	args := n.ChildByFieldName("arguments")
	if fn == nil || args == nil {
		return l.generic(n)
	}
	return appendTrailer(fn, l.callTrailer(args))
}

// callTrailer lowers an argument list into trailer["(", args?, ")"]. One
// argument without a trailing comma is kept bare; more become an arglist.
// A generator passed as the only argument becomes argument[entry, comp].
func (l *lowerer) callTrailer(n *sitter.Node) *ast.Node {
	if n.Type() == "generator_expression" {
		atom := l.comprehension(n, config.TestlistCompNode)
		if len(atom.Children) != 3 {
			return ast.NewNode(config.TrailerNode, atom.Children...)
		}
		inner := atom.Children[1]
		arg := ast.NewNode(config.ArgumentNode, inner.Children...)
		return ast.NewNode(config.TrailerNode, atom.Children[0], arg, atom.Children[2])
	}

	var open, close *ast.Node
	var middle []*ast.Node
	for _, c := range children(n) {
		switch {
		case !c.IsNamed() && c.Type() == "(":
			open = l.token(c)
		case !c.IsNamed() && c.Type() == ")":
			close = l.token(c)
		case !c.IsNamed():
			middle = append(middle, l.token(c))
		default:
			if a := l.argument(c); a != nil {
				middle = append(middle, a)
			}
		}
	}
	if open == nil {
		open = l.leafText(config.OperatorNode, "(", n)
	}
	if close == nil {
		close = l.leafText(config.OperatorNode, ")", n)
	}

	switch len(middle) {
	case 0:
		return ast.NewNode(config.TrailerNode, open, close)
	case 1:
		return ast.NewNode(config.TrailerNode, open, middle[0], close)
	}
	return ast.NewNode(config.TrailerNode, open, ast.NewNode(config.ArglistNode, middle...), close)
}

func (l *lowerer) argument(n *sitter.Node) *ast.Node {
	switch n.Type() {
	case "keyword_argument":
		name, value := n.ChildByFieldName("name"), n.ChildByFieldName("value")
		eq := l.childOfType(n, "=")
		if name == nil || value == nil || eq == nil {
			return l.generic(n)
		}
		return ast.NewNode(config.ArgumentNode, l.leaf(config.NameNode, name), l.token(eq), l.node(value))
	case "list_splat", "dictionary_splat":
		star := n.Child(0)
		inner := namedChildren(n)
		if star == nil || len(inner) != 1 {
			return l.generic(n)
		}
		return ast.NewNode(config.ArgumentNode, l.token(star), l.node(inner[0]))
	}
	return l.node(n)
}

func (l *lowerer) subscript(n *sitter.Node) *ast.Node {
	value := l.node(n.ChildByFieldName("value"))
	if value == nil {
		return l.generic(n)
	}
	var kids []*ast.Node
	seenValue := false
	for _, c := range children(n) {
		if !seenValue {
			seenValue = c.IsNamed()
			continue
		}
		if c.IsNamed() {
			kids = append(kids, l.node(c))
		} else {
			kids = append(kids, l.token(c))
		}
	}
	return appendTrailer(value, ast.NewNode(config.TrailerNode, kids...))
}

// display lowers a bracketed display into atom[open, inner?, close], with
// the items, pairs and commas in inner.
func (l *lowerer) display(n *sitter.Node, inner string) *ast.Node {
	kids := children(n)
	if len(kids) < 2 {
		return l.generic(n)
	}
	open, close := l.token(kids[0]), l.token(kids[len(kids)-1])
	var middle []*ast.Node
	for _, c := range kids[1 : len(kids)-1] {
		switch {
		case c.Type() == "pair":
			key, value := c.ChildByFieldName("key"), c.ChildByFieldName("value")
			colon := l.childOfType(c, ":")
			if key == nil || value == nil || colon == nil {
				middle = append(middle, l.generic(c))
				continue
			}
			middle = append(middle, l.node(key), l.token(colon), l.node(value))
		case c.Type() == "dictionary_splat":
			middle = append(middle, l.argument(c).Children...)
		case c.IsNamed():
			middle = append(middle, l.node(c))
		default:
			middle = append(middle, l.token(c))
		}
	}
	if len(middle) == 0 {
		return ast.NewNode(config.AtomNode, open, close)
	}
	return ast.NewNode(config.AtomNode, open, ast.NewNode(inner, middle...), close)
}

// comprehension lowers into atom[open, inner[entry..., sync_comp_for], close]
// with the for and if clauses nested the way they are written.
func (l *lowerer) comprehension(n *sitter.Node, inner string) *ast.Node {
	kids := children(n)
	body := n.ChildByFieldName("body")
	if len(kids) < 3 || body == nil {
		return l.generic(n)
	}

	var entry []*ast.Node
	if body.Type() == "pair" {
		key, value := body.ChildByFieldName("key"), body.ChildByFieldName("value")
		colon := l.childOfType(body, ":")
		if key == nil || value == nil || colon == nil {
			return l.generic(n)
		}
		entry = []*ast.Node{l.node(key), l.token(colon), l.node(value)}
	} else {
		entry = []*ast.Node{l.node(body)}
	}

	var clauses []*sitter.Node
	for _, c := range kids {
		if c.Type() == "for_in_clause" || c.Type() == "if_clause" {
			clauses = append(clauses, c)
		}
	}
	if len(clauses) == 0 || clauses[0].Type() != "for_in_clause" {
		return l.generic(n)
	}

	var next *ast.Node
	for i := len(clauses) - 1; i >= 0; i-- {
		next = l.clause(clauses[i], next)
	}
	middle := append(entry, next)
	return ast.NewNode(config.AtomNode,
		l.token(kids[0]), ast.NewNode(inner, middle...), l.token(kids[len(kids)-1]))
}

// clause lowers a for or if clause; next is the clause that follows it.
func (l *lowerer) clause(n *sitter.Node, next *ast.Node) *ast.Node {
	var kids []*ast.Node
	var async *ast.Node
	for _, c := range children(n) {
		switch {
		case !c.IsNamed() && c.Type() == "async":
			async = l.token(c)
		case c.IsNamed():
			kids = append(kids, l.node(c))
		default:
			kids = append(kids, l.token(c))
		}
	}
	if next != nil {
		kids = append(kids, next)
	}
	if n.Type() == "if_clause" {
		return ast.NewNode(config.CompIfNode, kids...)
	}
	comp := ast.NewNode(config.SyncCompForNode, kids...)
	if async != nil {
		return ast.NewNode(config.CompForNode, async, comp)
	}
	return comp
}

// appendTrailer applies trailer to base, extending base when it already is
// a power node so `a.b(c)` becomes power[a, .b, (c)].
func appendTrailer(base, trailer *ast.Node) *ast.Node {
	if base.Type == config.PowerNode {
		return ast.NewNode(config.PowerNode, append(slices.Clone(base.Children), trailer)...)
	}
	return ast.NewNode(config.PowerNode, base, trailer)
}
