package parser

import (
	"context"

	"go.uber.org/zap"

	"github.com/funvibe/argscope/internal/diagnostics"
	"github.com/funvibe/argscope/internal/pipeline"
)

// ParserProcessor parses the context's source into its AST root.
type ParserProcessor struct {
	Ctx context.Context
}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	parent := pp.Ctx
	if parent == nil {
		parent = context.Background()
	}

	root, syntaxErrors, err := Parse(parent, ctx.SourceCode)
	if err != nil {
		ctx.Logger.Error("parse failed", zap.Error(err))
		ctx.Issues.Report(diagnostics.NewError(diagnostics.ErrP001, nil, err.Error()))
		return ctx
	}
	ctx.AstRoot = root

	for _, se := range syntaxErrors {
		ctx.SyntaxErrors = append(ctx.SyntaxErrors, se)
		ctx.Issues.Report(se.Diagnostic())
	}
	if len(syntaxErrors) > 0 {
		ctx.Logger.Debug("syntax errors", zap.Int("count", len(syntaxErrors)))
	}
	return ctx
}
