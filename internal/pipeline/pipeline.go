package pipeline

import (
	"fmt"

	"go.uber.org/zap"
)

// Pipeline runs the stages that turn one file into call reports and
// issues.
type Pipeline struct {
	stages []Processor
}

func New(stages ...Processor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run passes ctx through every stage in order. A stage that reports issues
// does not stop the run: a file with syntax errors still gets its calls
// resolved, and both kinds of issue end up in ctx.Issues.
func (p *Pipeline) Run(ctx *PipelineContext) *PipelineContext {
	for _, stage := range p.stages {
		before := ctx.Issues.Len()
		ctx = stage.Process(ctx)
		ctx.Logger.Debug("stage done",
			zap.String("stage", fmt.Sprintf("%T", stage)),
			zap.Int("new_issues", ctx.Issues.Len()-before))
	}
	return ctx
}
