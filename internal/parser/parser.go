// Package parser turns Python source into the syntax tree the resolver
// works on.
//
// Parsing is done by tree-sitter. The concrete tree is then lowered into
// ast.Node values tagged the way the argument resolver expects: calls are
// `power` nodes ending in a `trailer`, a single call argument is not wrapped
// in an `arglist`, keyword and starred arguments are `argument` nodes, and
// displays are `atom`s. Syntax errors do not stop lowering; the parts of the
// tree that could be recognized are still returned.
package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/diagnostics"
)

// SyntaxError is a region of source the grammar could not recognize.
// Lines are 1-based, columns 0-based.
type SyntaxError struct {
	Line        int
	Column      int
	UntilLine   int
	UntilColumn int
	Message     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Diagnostic converts e into a P001 issue.
func (e *SyntaxError) Diagnostic() *diagnostics.DiagnosticError {
	return &diagnostics.DiagnosticError{
		Code:    diagnostics.ErrP001,
		Pos:     ast.Position{Line: e.Line, Column: e.Column},
		End:     ast.Position{Line: e.UntilLine, Column: e.UntilColumn},
		Message: e.Message,
	}
}

// Parse parses source into a file_input node. The returned syntax errors
// describe what could not be parsed; err is only set when tree-sitter
// itself failed, e.g. because ctx was canceled.
func Parse(ctx context.Context, source []byte) (*ast.Node, []*SyntaxError, error) {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())

	tree, err := p.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, nil, fmt.Errorf("tree-sitter returned nil root node")
	}

	l := &lowerer{src: source}
	module := l.module(root)

	var errs []*SyntaxError
	if root.HasError() {
		errs = collectSyntaxErrors(root)
	}
	return module, errs, nil
}

func collectSyntaxErrors(root *sitter.Node) []*SyntaxError {
	var out []*SyntaxError
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch {
		case n.Type() == "ERROR":
			out = append(out, newSyntaxError(n, "invalid syntax"))
			return
		case n.IsMissing():
			out = append(out, newSyntaxError(n, fmt.Sprintf("missing %q", n.Type())))
			return
		case !n.HasError():
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

func newSyntaxError(n *sitter.Node, msg string) *SyntaxError {
	start, end := position(n.StartPoint()), position(n.EndPoint())
	return &SyntaxError{
		Line:        start.Line,
		Column:      start.Column,
		UntilLine:   end.Line,
		UntilColumn: end.Column,
		Message:     msg,
	}
}

func position(p sitter.Point) ast.Position {
	return ast.Position{Line: int(p.Row) + 1, Column: int(p.Column)}
}
