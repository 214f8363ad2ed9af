package params

import (
	"testing"

	"github.com/funvibe/argscope/internal/arguments"
	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/diagnostics"
	"github.com/funvibe/argscope/internal/inference"
)

// execContext infers number leaves as int, the name xs as a list of ints
// of unknown length and everything else as nothing.
type execContext struct {
	funcdef *ast.Node
}

func (c *execContext) InferNode(n *ast.Node) inference.ValueSet {
	switch {
	case n == nil:
	case n.Type == "number":
		return inference.NewValueSet(&inference.Instance{Class: "int", Literal: n.Value})
	case n.Type == "name" && n.Value == "xs":
		elem := &inference.LazyKnownValue{Value: &inference.Instance{Class: "int"}}
		return inference.NewValueSet(&inference.FakeSequence{ArrayType: "list", Items: []inference.LazyValue{elem}, Open: true})
	}
	return inference.NoValues
}

func (c *execContext) Goto(*ast.Node) []inference.Name { return nil }
func (c *execContext) FuncNode() *ast.Node             { return c.funcdef }

type fixture struct {
	sess    *arguments.Session
	exec    *execContext
	funcdef *ast.Node
}

func newFixture(funcdef *ast.Node) *fixture {
	sess := arguments.NewSession(nil)
	sess.Binder = NewBinder(nil)
	return &fixture{sess: sess, exec: &execContext{funcdef: funcdef}, funcdef: funcdef}
}

// call builds `name(args...)` and returns its tree arguments.
func (f *fixture) call(args ...*ast.Node) arguments.Arguments {
	call := ast.Call(ast.Name(ast.FuncName(f.funcdef).Value), args...)
	trailer := call.Child(1)
	return f.sess.TreeArgumentsCached(f.exec, ast.TrailerArgs(trailer), trailer)
}

func (f *fixture) bind(t *testing.T, args arguments.Arguments) ([]arguments.ExecutedParam, []*diagnostics.DiagnosticError) {
	t.Helper()
	return args.ExecutedParamsAndIssues(f.exec)
}

func expectCodes(t *testing.T, issues []*diagnostics.DiagnosticError, want ...diagnostics.ErrorCode) {
	t.Helper()
	if len(issues) != len(want) {
		t.Fatalf("got %d issues %v, want %v", len(issues), issues, want)
	}
	for i, issue := range issues {
		if issue.Code != want[i] {
			t.Errorf("issue %d = %s, want %s", i, issue.Code, want[i])
		}
	}
}

func literal(t *testing.T, p arguments.ExecutedParam) string {
	t.Helper()
	vs := p.Infer().Values()
	if len(vs) != 1 {
		t.Fatalf("%s infers to %v, want one value", p.Name(), p.Infer())
	}
	return vs[0].String()
}

func twoParams() *ast.Node {
	return ast.Funcdef("f", []*ast.Node{
		ast.NewParam("a", 0, nil),
		ast.NewParam("b", 0, ast.Number("1")),
	}, ast.Return(ast.Name("a")))
}

func TestBind_PositionalAndDefault(t *testing.T) {
	f := newFixture(twoParams())
	params, issues := f.bind(t, f.call(ast.Number("5")))
	expectCodes(t, issues)
	if len(params) != 2 {
		t.Fatalf("got %d params", len(params))
	}
	if got := literal(t, params[0]); got != "5" {
		t.Errorf("a = %s, want 5", got)
	}
	if got := literal(t, params[1]); got != "1" {
		t.Errorf("b = %s, want default 1", got)
	}
	if !params[1].(*ExecutedParam).IsDefault() {
		t.Error("b should be marked as default")
	}
	if params[0].VarArgs() == nil || params[0].IsDynamic() {
		t.Error("a should record its source arguments")
	}
}

func TestBind_KeywordMatchedByName(t *testing.T) {
	f := newFixture(twoParams())
	params, issues := f.bind(t, f.call(ast.KeywordArg("b", ast.Number("2")), ast.KeywordArg("a", ast.Number("3"))))
	expectCodes(t, issues)
	if got := literal(t, params[0]); got != "3" {
		t.Errorf("a = %s, want 3", got)
	}
	if got := literal(t, params[1]); got != "2" {
		t.Errorf("b = %s, want 2", got)
	}
}

func TestBind_TooFew(t *testing.T) {
	f := newFixture(twoParams())
	args := f.call()
	params, issues := f.bind(t, args)
	expectCodes(t, issues, diagnostics.ErrT003)
	if issues[0].Node != args.Trailer() {
		t.Errorf("issue anchored at %v, want the trailer", issues[0].Node)
	}
	if want := "TypeError: f() takes from 1 to 2 arguments (0 given)."; issues[0].Message != want {
		t.Errorf("message = %q, want %q", issues[0].Message, want)
	}
	if !params[0].Infer().IsEmpty() {
		t.Errorf("missing a infers to %v", params[0].Infer())
	}
}

func TestBind_KeywordsOnlyMissingRequired(t *testing.T) {
	f := newFixture(twoParams())
	_, issues := f.bind(t, f.call(ast.KeywordArg("b", ast.Number("2"))))
	expectCodes(t, issues, diagnostics.ErrT003)
}

func TestBind_TooMany(t *testing.T) {
	f := newFixture(twoParams())
	extra := ast.Number("3")
	_, issues := f.bind(t, f.call(ast.Number("1"), ast.Number("2"), extra))
	expectCodes(t, issues, diagnostics.ErrT006)
	if issues[0].Node != extra {
		t.Errorf("issue anchored at %v, want the first extra argument", issues[0].Node)
	}
}

func TestBind_MultipleValues(t *testing.T) {
	f := newFixture(twoParams())
	params, issues := f.bind(t, f.call(ast.Number("1"), ast.KeywordArg("a", ast.Number("2"))))
	expectCodes(t, issues, diagnostics.ErrT005)
	if got := literal(t, params[0]); got != "1" {
		t.Errorf("a = %s, want the positional 1", got)
	}
}

func TestBind_UnexpectedKeyword(t *testing.T) {
	f := newFixture(twoParams())
	kw := ast.KeywordArg("c", ast.Number("3"))
	_, issues := f.bind(t, f.call(ast.Number("1"), kw))
	expectCodes(t, issues, diagnostics.ErrT004)
	if issues[0].Node != kw {
		t.Errorf("issue anchored at %v, want the argument node", issues[0].Node)
	}
}

func TestBind_StarParams(t *testing.T) {
	funcdef := ast.Funcdef("g", []*ast.Node{
		ast.NewParam("first", 0, nil),
		ast.NewParam("args", 1, nil),
		ast.NewParam("kwargs", 2, nil),
	})
	f := newFixture(funcdef)
	params, issues := f.bind(t, f.call(
		ast.Number("1"), ast.Number("2"), ast.Number("3"),
		ast.KeywordArg("x", ast.Number("4")),
	))
	expectCodes(t, issues)

	tuple, ok := params[1].Infer().Values()[0].(*inference.FakeSequence)
	if !ok || len(tuple.Items) != 2 {
		t.Fatalf("args = %v, want a 2-tuple", params[1].Infer())
	}
	dict, ok := params[2].Infer().Values()[0].(*inference.FakeDict)
	if !ok || len(dict.Keys) != 1 || dict.Keys[0] != "x" {
		t.Fatalf("kwargs = %v, want dict(x)", params[2].Infer())
	}
}

func TestBind_MarkersSkipped(t *testing.T) {
	funcdef := ast.Funcdef("h", []*ast.Node{
		ast.NewParam("a", 0, nil),
		ast.NewNode("param", ast.Op("*")),
		ast.NewParam("key", 0, ast.Number("0")),
	})
	f := newFixture(funcdef)
	params, issues := f.bind(t, f.call(ast.Number("1")))
	expectCodes(t, issues)
	if len(params) != 2 || params[1].Name() != "key" {
		t.Errorf("params = %v", params)
	}
}

func TestBind_NoCallSiteIsSilent(t *testing.T) {
	f := newFixture(twoParams())
	int1 := inference.NewValueSet(&inference.Instance{Class: "int"})
	args := arguments.NewValuesArguments(f.sess, int1, int1, int1)
	_, issues := f.bind(t, args)
	expectCodes(t, issues)
}

func TestBind_OpenStarArgument(t *testing.T) {
	pair := ast.Funcdef("f", []*ast.Node{
		ast.NewParam("a", 0, nil),
		ast.NewParam("b", 0, nil),
	}, ast.Return(ast.Name("a")))

	tests := []struct {
		name    string
		funcdef *ast.Node
		args    []*ast.Node
	}{
		{"fills two params", pair, []*ast.Node{ast.StarArg(ast.Name("xs"))}},
		{"after a positional", pair, []*ast.Node{ast.Number("1"), ast.StarArg(ast.Name("xs"))}},
		{"more than the params", twoParams(), []*ast.Node{ast.Number("1"), ast.Number("2"), ast.StarArg(ast.Name("xs"))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.funcdef)
			params, issues := f.bind(t, f.call(tt.args...))
			expectCodes(t, issues)
			for _, p := range params {
				if p.Infer().IsEmpty() {
					t.Errorf("%s infers to nothing", p.Name())
				}
			}
		})
	}
}

func TestNewDynamicParam(t *testing.T) {
	param := ast.NewParam("x", 0, nil)
	p := NewDynamicParam(param, inference.NewValueSet(&inference.Instance{Class: "str"}))
	if !p.IsDynamic() || p.VarArgs() != nil || p.Name() != "x" {
		t.Errorf("dynamic param = %v", p)
	}
	if p.TreeName() != ast.ParamName(param) {
		t.Error("TreeName should be the param's name leaf")
	}
}
