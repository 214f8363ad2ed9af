package arguments

import (
	"testing"

	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/diagnostics"
	"github.com/funvibe/argscope/internal/inference"
)

func TestTreeArgumentsCached_SameInstancePerKey(t *testing.T) {
	ctx := newFakeContext()
	other := newFakeContext()
	node := ast.Arglist(ast.Name("a"), ast.Name("b"))
	sess := NewSession(nil)

	first := sess.TreeArgumentsCached(ctx, node, nil)
	if sess.TreeArgumentsCached(ctx, node, nil) != first {
		t.Error("identical (context, node) should return the cached instance")
	}
	if sess.TreeArgumentsCached(other, node, nil) == first {
		t.Error("different context must not share the instance")
	}
	if sess.TreeArgumentsCached(ctx, ast.Arglist(ast.Name("a"), ast.Name("b")), nil) == first {
		t.Error("structurally equal but distinct node must not share the instance")
	}
	if sess.Lookup(first.Handle()) != first {
		t.Error("Lookup should return the registered instance")
	}

	a, b := collect(first, nil), collect(first, nil)
	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("unpack lengths %d and %d, want 2", len(a), len(b))
	}
	for i := range a {
		if a[i].value.(*inference.LazyTreeValue).Node != b[i].value.(*inference.LazyTreeValue).Node {
			t.Errorf("pair %d differs between unpack calls", i)
		}
	}

	sess.Reset()
	if sess.Len() != 0 || sess.Lookup(first.Handle()) != nil {
		t.Error("Reset should forget registered arguments")
	}
	if sess.TreeArgumentsCached(ctx, node, nil) == first {
		t.Error("cache must not survive Reset")
	}
}

func TestValuesArguments_Unpack(t *testing.T) {
	s1 := inference.NewValueSet(intValue("1"))
	s2 := inference.NewValueSet(intValue("2"), &inference.Instance{Class: "str"})
	args := NewValuesArguments(nil, s1, s2)

	pairs := collect(args, nil)
	expectKeys(t, pairs, "", "")
	if pairs[1].value.Infer().Len() != 2 {
		t.Errorf("second value = %v", pairs[1].value.Infer())
	}
	if args.CallingNodes() != nil {
		t.Error("values arguments have no call site")
	}
	params, issues := args.ExecutedParamsAndIssues(nil)
	if params != nil || issues != nil {
		t.Error("no binder means nothing is bound")
	}
}

type recordingBinder struct {
	args Arguments
}

func (b *recordingBinder) Bind(exec ExecutionContext, args Arguments) ([]ExecutedParam, []*diagnostics.DiagnosticError) {
	b.args = args
	return []ExecutedParam{&fakeParam{name: "x"}}, nil
}

type fakeExec struct {
	*fakeContext
	funcdef *ast.Node
}

func (e fakeExec) FuncNode() *ast.Node { return e.funcdef }

type fakeSearcher struct {
	funcdef *ast.Node
}

func (s *fakeSearcher) Search(exec ExecutionContext, funcdef *ast.Node) []ExecutedParam {
	s.funcdef = funcdef
	return []ExecutedParam{&fakeParam{name: "found", dynamic: true}}
}

func TestExecutedParams_DelegateToBinder(t *testing.T) {
	sess := NewSession(nil)
	binder := &recordingBinder{}
	sess.Binder = binder
	ctx := newFakeContext()
	args := sess.NewTreeArguments(ctx, ast.Name("a"), nil)

	params, _ := args.ExecutedParamsAndIssues(fakeExec{fakeContext: ctx})
	if len(params) != 1 || binder.args != args {
		t.Error("tree arguments should bind through the session binder")
	}
}

func TestAnonymousArguments_UseDynamicSearch(t *testing.T) {
	sess := NewSession(nil)
	searcher := &fakeSearcher{}
	sess.Searcher = searcher
	funcdef := ast.Funcdef("f", []*ast.Node{ast.NewParam("x", 0, nil)})

	params, issues := NewAnonymousArguments(sess).ExecutedParamsAndIssues(fakeExec{fakeContext: newFakeContext(), funcdef: funcdef})
	if len(params) != 1 || !params[0].IsDynamic() {
		t.Errorf("params = %v", params)
	}
	if len(issues) != 0 {
		t.Errorf("dynamic search reports no issues, got %v", issues)
	}
	if searcher.funcdef != funcdef {
		t.Error("searcher should receive the executed function")
	}
	expectKeys(t, collect(NewAnonymousArguments(sess), nil))
}

func TestPrependedArguments(t *testing.T) {
	ctx := newFakeContext()
	sess := NewSession(nil)
	binder := &recordingBinder{}
	sess.Binder = binder
	node := ast.Arglist(ast.KeywordArg("k", ast.Name("v")), ast.Name("a"))
	trailer := ast.CallTrailer(node)
	inner := sess.NewTreeArguments(ctx, node, trailer)
	self := &inference.LazyKnownValue{Value: &inference.Instance{Class: "C"}}
	args := NewPrependedArguments(sess, inner, self)

	pairs := collect(args, nil)
	expectKeys(t, pairs, "", "", "k")
	if pairs[0].value != self {
		t.Error("prepended value should come first")
	}
	if args.ArgumentNode() != node || args.Trailer() != trailer || args.Context() != ctx {
		t.Error("wrapper should forward accessors")
	}
	if got := args.CallingNodes(); len(got) != 1 || got[0].Node != node {
		t.Errorf("CallingNodes = %v", got)
	}
	args.ExecutedParamsAndIssues(fakeExec{fakeContext: ctx})
	if binder.args != args {
		t.Error("binder should see the wrapper, not the wrapped arguments")
	}
}

func TestInferAll_InfersEveryArgument(t *testing.T) {
	ctx := newFakeContext()
	sess := NewSession(nil)
	args := sess.NewTreeArguments(ctx, ast.Arglist(ast.Name("a"), ast.KeywordArg("k", ast.Name("b"))), nil)

	InferAll(args)
	if ctx.inferred != 2 {
		t.Errorf("inferred %d nodes, want 2", ctx.inferred)
	}
}

func TestFuncdefCallee(t *testing.T) {
	if FuncdefCallee(nil) != nil {
		t.Error("nil funcdef should give nil callee")
	}
	c := FuncdefCallee(ast.Funcdef("spam", nil))
	if c.CalleeName() != "spam" {
		t.Errorf("CalleeName() = %q", c.CalleeName())
	}
}
