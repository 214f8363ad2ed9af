package diagnostics

import (
	"fmt"
	"sort"

	"github.com/funvibe/argscope/internal/ast"
)

type ErrorCode string

// Parser errors
const (
	ErrP001 ErrorCode = "P001" // syntax error
)

// Call-binding errors found in the analyzed program.
const (
	ErrT001 ErrorCode = "T001" // argument after * is not iterable
	ErrT002 ErrorCode = "T002" // argument after ** is not a mapping
	ErrT003 ErrorCode = "T003" // missing argument
	ErrT004 ErrorCode = "T004" // unexpected keyword argument
	ErrT005 ErrorCode = "T005" // multiple values for argument
	ErrT006 ErrorCode = "T006" // too many positional arguments
)

var codeNames = map[ErrorCode]string{
	ErrP001: "syntax-error",
	ErrT001: "type-error-star",
	ErrT002: "type-error-star-star",
	ErrT003: "type-error-too-few-arguments",
	ErrT004: "type-error-keyword-argument",
	ErrT005: "type-error-multiple-values",
	ErrT006: "type-error-too-many-arguments",
}

// Name returns the long issue name, e.g. "type-error-star".
func (c ErrorCode) Name() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return string(c)
}

// DiagnosticError is one finding about the analyzed program.
type DiagnosticError struct {
	Code    ErrorCode
	File    string
	Pos     ast.Position
	End     ast.Position
	Node    *ast.Node
	Message string
}

// NewError creates a diagnostic anchored at node. node may be nil.
func NewError(code ErrorCode, node *ast.Node, message string) *DiagnosticError {
	e := &DiagnosticError{Code: code, Node: node, Message: message}
	if node != nil {
		e.Pos = node.Start
		e.End = node.End
	}
	return e
}

// NewErrorf is NewError with a formatted message.
func NewErrorf(code ErrorCode, node *ast.Node, format string, args ...interface{}) *DiagnosticError {
	return NewError(code, node, fmt.Sprintf(format, args...))
}

func (e *DiagnosticError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s %s: %s", e.File, e.Pos.Line, e.Pos.Column, e.Code, e.Code.Name(), e.Message)
	}
	return fmt.Sprintf("%d:%d: %s %s: %s", e.Pos.Line, e.Pos.Column, e.Code, e.Code.Name(), e.Message)
}

// Reporter receives analysis issues.
type Reporter interface {
	Report(err *DiagnosticError)
}

// Collector is a Reporter that keeps unique issues in memory.
// Issues at the same position with the same code are reported once.
type Collector struct {
	File   string
	errors map[string]*DiagnosticError
	order  []string
}

func NewCollector(file string) *Collector {
	return &Collector{File: file, errors: make(map[string]*DiagnosticError)}
}

func (c *Collector) Report(err *DiagnosticError) {
	if err.File == "" {
		err.File = c.File
	}
	if c.errors == nil {
		c.errors = make(map[string]*DiagnosticError)
	}
	key := fmt.Sprintf("%d:%d:%s", err.Pos.Line, err.Pos.Column, err.Code)
	if _, ok := c.errors[key]; !ok {
		c.order = append(c.order, key)
	}
	c.errors[key] = err
}

// Len returns the number of unique issues.
func (c *Collector) Len() int {
	return len(c.order)
}

// Errors returns all unique issues sorted by position.
func (c *Collector) Errors() []*DiagnosticError {
	result := make([]*DiagnosticError, 0, len(c.order))
	for _, key := range c.order {
		result = append(result, c.errors[key])
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Pos.Line != result[j].Pos.Line {
			return result[i].Pos.Line < result[j].Pos.Line
		}
		return result[i].Pos.Column < result[j].Pos.Column
	})
	return result
}

// Discard drops every issue.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Report(*DiagnosticError) {}
