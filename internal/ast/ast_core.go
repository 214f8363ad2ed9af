package ast

import (
	"fmt"
	"strings"

	"github.com/funvibe/argscope/internal/config"
)

// Position is a location in source. Lines start at 1, columns at 0.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node is a syntax tree node. Leaves carry Value; inner nodes carry Children.
// Trees are immutable once built; identity (pointer equality) is what the
// resolver caches on.
type Node struct {
	Type     string
	Value    string
	Children []*Node
	Parent   *Node
	Start    Position
	End      Position
}

// NewLeaf creates a leaf node.
func NewLeaf(typ, value string) *Node {
	return &Node{Type: typ, Value: value}
}

// NewNode creates an inner node and adopts its children.
// Start and End are taken from the first and last child.
func NewNode(typ string, children ...*Node) *Node {
	n := &Node{Type: typ, Children: children}
	for _, c := range children {
		c.Parent = n
	}
	if len(children) > 0 {
		n.Start = children[0].Start
		n.End = children[len(children)-1].End
	}
	return n
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return n != nil && len(n.Children) == 0
}

// Is reports whether n is an operator or keyword leaf with the given text,
// e.g. n.Is(",") or n.Is("**").
func (n *Node) Is(text string) bool {
	if n == nil || (n.Type != config.OperatorNode && n.Type != config.KeywordNode) {
		return false
	}
	return n.Value == text
}

// IsName reports whether n is a name leaf.
func (n *Node) IsName() bool {
	return n != nil && n.Type == config.NameNode
}

// Child returns the i-th child or nil.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// FirstLeaf returns the leftmost leaf below n.
func (n *Node) FirstLeaf() *Node {
	for n != nil && len(n.Children) > 0 {
		n = n.Children[0]
	}
	return n
}

// Code renders n back into compact source text. It is meant for messages,
// not for round-tripping.
func (n *Node) Code() string {
	var sb strings.Builder
	n.writeCode(&sb)
	return sb.String()
}

func (n *Node) writeCode(sb *strings.Builder) {
	if n == nil {
		return
	}
	if n.IsLeaf() {
		switch {
		case n.Type == config.KeywordNode && isWordy(n.Value) && sb.Len() > 0:
			sb.WriteString(" " + n.Value + " ")
		case n.Is(","):
			sb.WriteString(", ")
		default:
			sb.WriteString(n.Value)
		}
		return
	}
	for _, c := range n.Children {
		c.writeCode(sb)
	}
}

func isWordy(s string) bool {
	switch s {
	case "for", "in", "if", "lambda", "and", "or", "not":
		return true
	}
	return false
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.IsLeaf() {
		return fmt.Sprintf("<%s: %s@%s>", n.Type, n.Value, n.Start)
	}
	return fmt.Sprintf("<%s: %s@%s>", n.Type, n.Code(), n.Start)
}

// Walk calls fn for n and its descendants in depth-first order.
// Returning false from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// FindAll returns every descendant of n (including n) with the given type.
func FindAll(n *Node, typ string) []*Node {
	var out []*Node
	Walk(n, func(c *Node) bool {
		if c.Type == typ {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Ancestor returns the nearest ancestor of n having one of the given types.
func Ancestor(n *Node, types ...string) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		for _, t := range types {
			if p.Type == t {
				return p
			}
		}
	}
	return nil
}
