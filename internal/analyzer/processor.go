package analyzer

import (
	"strings"

	"go.uber.org/zap"

	"github.com/funvibe/argscope/internal/arguments"
	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/clinic"
	"github.com/funvibe/argscope/internal/config"
	"github.com/funvibe/argscope/internal/pipeline"
)

// ResolverProcessor resolves every call of the parsed file.
type ResolverProcessor struct{}

func (rp *ResolverProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil {
		return ctx
	}

	engine, err := New(ctx.Session, ctx.Config, ctx.AstRoot)
	if err != nil {
		ctx.Logger.Error("analyzer setup failed", zap.Error(err))
		return ctx
	}

	ctx.Calls = engine.ResolveCalls()
	if ctx.Config.DynamicParams {
		ctx.DynamicParams = engine.DynamicParams()
	}
	ctx.Logger.Debug("resolved calls",
		zap.Int("calls", len(ctx.Calls)), zap.Int("arguments", ctx.Session.Len()))
	return ctx
}

// ResolveCalls binds the arguments of every call in the module to the
// parameters of what is called, in source order. Binding issues and issues
// found while unpacking go to the session's reporter.
func (e *Engine) ResolveCalls() []pipeline.CallReport {
	var reports []pipeline.CallReport
	ast.Walk(e.root, func(n *ast.Node) bool {
		if n.Type != config.PowerNode {
			return true
		}
		for i := 1; i < len(n.Children); i++ {
			trailer := n.Children[i]
			if !ast.IsCallTrailer(trailer) {
				continue
			}
			reports = append(reports, e.resolveCall(n, i)...)
		}
		return true
	})
	return reports
}

func (e *Engine) resolveCall(power *ast.Node, index int) []pipeline.CallReport {
	ctx := e.contextOf(power)
	trailer := power.Children[index]
	args := e.sess.TreeArgumentsCached(ctx, ast.TrailerArgs(trailer), trailer)
	arguments.InferAll(args)

	var callee strings.Builder
	for _, c := range power.Children[:index] {
		callee.WriteString(c.Code())
	}
	report := func(kind string, ps []pipeline.ParamReport) pipeline.CallReport {
		return pipeline.CallReport{Pos: trailer.Start, Callee: callee.String(), Kind: kind, Params: ps}
	}

	var out []pipeline.CallReport
	for v := range e.inferPower(ctx, power, index).All() {
		switch fn := v.(type) {
		case *Function:
			exec := newExecution(e, fn, args)
			out = append(out, report("function", paramReports(exec.ExecutedParams())))
		case *BoundMethod:
			exec := newExecution(e, fn.fn, fn.arguments(e, args))
			out = append(out, report("method", paramReports(exec.ExecutedParams())))
		case *Class:
			ctor := (&Instance{class: fn, args: args}).attribute("__init__")
			var ps []pipeline.ParamReport
			for m := range ctor.All() {
				if bound, ok := m.(*BoundMethod); ok {
					exec := newExecution(e, bound.fn, bound.arguments(e, args))
					ps = paramReports(exec.ExecutedParams())
				}
			}
			out = append(out, report("class", ps))
		case *NativeFunction:
			values, err := clinic.Iterate(args, fn, fn.params)
			if err != nil {
				e.logger.Debug("native call does not match", zap.String("native", fn.name), zap.Error(err))
				out = append(out, report("native", nil))
				continue
			}
			ps := make([]pipeline.ParamReport, len(fn.params))
			for i, p := range fn.params {
				ps[i] = pipeline.ParamReport{Name: p.Name, Types: values[i].TypeNames()}
			}
			out = append(out, report("native", ps))
		}
	}
	return out
}

// DynamicParams reports, for every function of the module, the parameters
// inferred from the calls found by searching the module.
func (e *Engine) DynamicParams() []pipeline.FunctionReport {
	var reports []pipeline.FunctionReport
	ast.Walk(e.root, func(n *ast.Node) bool {
		if n.Type != config.FuncdefNode {
			return true
		}
		fn := e.function(e.contextOf(n), n)
		exec := e.anonymousExecution(fn)
		reports = append(reports, pipeline.FunctionReport{
			Pos:    n.Start,
			Name:   fn.Name(),
			Params: paramReports(exec.ExecutedParams()),
		})
		return true
	})
	return reports
}

func paramReports(ps []arguments.ExecutedParam) []pipeline.ParamReport {
	out := make([]pipeline.ParamReport, len(ps))
	for i, p := range ps {
		r := pipeline.ParamReport{Name: p.Name(), Types: p.Infer().TypeNames()}
		if d, ok := p.(interface{ IsDefault() bool }); ok {
			r.Default = d.IsDefault()
		}
		out[i] = r
	}
	return out
}
