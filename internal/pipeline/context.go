package pipeline

import (
	"go.uber.org/zap"

	"github.com/funvibe/argscope/internal/arguments"
	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/config"
	"github.com/funvibe/argscope/internal/diagnostics"
)

// PipelineContext carries one file through the pipeline.
type PipelineContext struct {
	FilePath   string
	SourceCode []byte
	Config     *config.Config
	Logger     *zap.Logger

	// Session is the inference run for this file.
	Session *arguments.Session
	// Issues collects every diagnostic, deduplicated.
	Issues *diagnostics.Collector

	AstRoot *ast.Node
	// SyntaxErrors holds the parser's structured errors
	// (*parser.SyntaxError); each also appears in Issues as P001.
	SyntaxErrors []error

	Calls []CallReport
	// DynamicParams lists parameters inferred from call sites found by
	// searching the file, for functions analyzed without a call.
	DynamicParams []FunctionReport
}

// NewPipelineContext prepares a context for one file. cfg may be nil.
func NewPipelineContext(path string, source []byte, cfg *config.Config) *PipelineContext {
	if cfg == nil {
		cfg = config.Default()
	}
	issues := diagnostics.NewCollector(path)
	return &PipelineContext{
		FilePath:   path,
		SourceCode: source,
		Config:     cfg,
		Logger:     zap.NewNop(),
		Session:    arguments.NewSession(issues),
		Issues:     issues,
	}
}

// SetLogger installs logger on the context and its session.
func (c *PipelineContext) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c.Logger = logger.With(zap.String("file", c.FilePath))
	c.Session.SetLogger(c.Logger)
}

// Errors returns the collected issues sorted by position.
func (c *PipelineContext) Errors() []*diagnostics.DiagnosticError {
	return c.Issues.Errors()
}

// CallReport is the resolved binding of one call.
type CallReport struct {
	Pos    ast.Position
	Callee string
	// Kind is "function", "class", "method" or "native".
	Kind   string
	Params []ParamReport
}

// ParamReport is one bound parameter and the type names it infers to.
type ParamReport struct {
	Name    string
	Types   []string
	Default bool
}

// FunctionReport lists the dynamically inferred parameters of a function.
type FunctionReport struct {
	Pos    ast.Position
	Name   string
	Params []ParamReport
}
