package pipeline

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/funvibe/argscope/internal/config"
	"github.com/funvibe/argscope/internal/diagnostics"
)

func TestPipeline_RunsEveryStage(t *testing.T) {
	var order []string
	stage := func(name string, fail bool) Processor {
		return ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
			order = append(order, name)
			if fail {
				ctx.Issues.Report(diagnostics.NewError(diagnostics.ErrP001, nil, name+" failed"))
			}
			return ctx
		})
	}

	ctx := New(stage("parse", true), stage("resolve", false)).Run(NewPipelineContext("a.py", nil, nil))
	if len(order) != 2 || order[0] != "parse" || order[1] != "resolve" {
		t.Errorf("stages ran as %v", order)
	}
	if errs := ctx.Errors(); len(errs) != 1 || errs[0].File != "a.py" {
		t.Errorf("issues = %v", errs)
	}
}

func TestPipeline_LogsStages(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := NewPipelineContext("a.py", nil, nil)
	ctx.SetLogger(zap.New(core))

	report := ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
		ctx.Issues.Report(diagnostics.NewError(diagnostics.ErrP001, nil, "bad"))
		return ctx
	})
	quiet := ProcessorFunc(func(ctx *PipelineContext) *PipelineContext { return ctx })
	New(report, quiet).Run(ctx)

	stages := logs.FilterMessage("stage done").All()
	if len(stages) != 2 {
		t.Fatalf("got %d stage logs", len(stages))
	}
	for i, want := range []int64{1, 0} {
		if got := stages[i].ContextMap()["new_issues"]; got != want {
			t.Errorf("stage %d new_issues = %v, want %d", i, got, want)
		}
	}
}

func TestNewPipelineContext(t *testing.T) {
	ctx := NewPipelineContext("a.py", []byte("x"), nil)
	if ctx.Config == nil || ctx.Config.MaxExecutionDepth != config.DefaultMaxExecutionDepth {
		t.Errorf("config = %+v, want defaults", ctx.Config)
	}
	if ctx.Session == nil || ctx.Session.Reporter != ctx.Issues {
		t.Error("the session should report into the context's collector")
	}

	cfg := &config.Config{DynamicParams: true}
	if NewPipelineContext("b.py", nil, cfg).Config != cfg {
		t.Error("an explicit config is kept")
	}
}

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := NewPipelineContext("a.py", nil, nil)
	ctx.SetLogger(zap.New(core))

	ctx.Logger.Debug("hello")
	ctx.Session.Logger.Debug("from session")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	for _, e := range entries {
		if e.ContextMap()["file"] != "a.py" {
			t.Errorf("%q is not tagged with the file: %v", e.Message, e.ContextMap())
		}
	}
	if _, ok := entries[1].ContextMap()["session"]; !ok {
		t.Error("session logs carry the session ID")
	}

	ctx.SetLogger(nil)
	ctx.Logger.Info("dropped")
	if logs.Len() != 2 {
		t.Error("a nil logger should discard")
	}
}
