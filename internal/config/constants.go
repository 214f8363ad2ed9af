package config

import "strings"

const SourceFileExt = ".py"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".py", ".pyi"}

// HasSourceExt reports whether path ends in a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// ConfigFileNames are searched, in order, by FindConfig.
var ConfigFileNames = []string{"argscope.yaml", "argscope.yml"}

// Recursion ceilings.
const (
	// MaxIterContentDepth bounds TryIterContent. Self-containing sequences
	// are common in analyzed programs.
	MaxIterContentDepth = 10

	DefaultMaxExecutionDepth = 8
	DefaultMaxCallSites      = 20
)

// Syntax node types produced by the parser and consumed by the resolver.
const (
	FileInputNode    = "file_input"
	FuncdefNode      = "funcdef"
	ClassdefNode     = "classdef"
	ParametersNode   = "parameters"
	ParamNode        = "param"
	SuiteNode        = "suite"
	ExprStmtNode     = "expr_stmt"
	ReturnStmtNode   = "return_stmt"
	PowerNode        = "power"
	TrailerNode      = "trailer"
	ArglistNode      = "arglist"
	ArgumentNode     = "argument"
	TestlistNode     = "testlist"
	TestlistCompNode = "testlist_comp"
	DictMakerNode    = "dictorsetmaker"
	AtomNode         = "atom"
	SyncCompForNode  = "sync_comp_for"
	CompForNode      = "comp_for"
	CompIfNode       = "comp_if"
	NameNode         = "name"
	NumberNode       = "number"
	StringNode       = "string"
	KeywordNode      = "keyword"
	OperatorNode     = "operator"
	ErrorNode        = "error_node"
)

// Built-in type names
const (
	TupleTypeName     = "tuple"
	ListTypeName      = "list"
	SetTypeName       = "set"
	DictTypeName      = "dict"
	StrTypeName       = "str"
	IntTypeName       = "int"
	FloatTypeName     = "float"
	BoolTypeName      = "bool"
	NoneTypeName      = "NoneType"
	GeneratorTypeName = "generator"
)
