package arguments

import (
	"testing"

	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/diagnostics"
	"github.com/funvibe/argscope/internal/inference"
)

// fakeContext infers nodes from a fixed table and resolves names from
// another. Unknown nodes infer to nothing.
type fakeContext struct {
	values   map[*ast.Node]inference.ValueSet
	names    map[*ast.Node][]inference.Name
	inferred int
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		values: make(map[*ast.Node]inference.ValueSet),
		names:  make(map[*ast.Node][]inference.Name),
	}
}

func (c *fakeContext) InferNode(n *ast.Node) inference.ValueSet {
	c.inferred++
	return c.values[n]
}

func (c *fakeContext) Goto(name *ast.Node) []inference.Name {
	return c.names[name]
}

func (c *fakeContext) set(n *ast.Node, values ...inference.Value) *ast.Node {
	c.values[n] = inference.NewValueSet(values...)
	return n
}

type fakeParam struct {
	name    string
	varArgs Arguments
	dynamic bool
}

func (p *fakeParam) Name() string                 { return p.name }
func (p *fakeParam) Infer() inference.ValueSet    { return inference.NoValues }
func (p *fakeParam) VarArgs() Arguments           { return p.varArgs }
func (p *fakeParam) IsDynamic() bool              { return p.dynamic }
func (p *fakeParam) StringName() string           { return p.name }
func (p *fakeParam) TreeName() *ast.Node          { return nil }
func (p *fakeParam) ExecutedParam() ExecutedParam { return p }

type plainName struct{ name string }

func (n plainName) StringName() string  { return n.name }
func (n plainName) TreeName() *ast.Node { return nil }

type pair struct {
	key   string
	value inference.LazyValue
}

func collect(a Arguments, callee Callee) []pair {
	var out []pair
	for k, v := range a.Unpack(callee) {
		out = append(out, pair{k, v})
	}
	return out
}

func keys(pairs []pair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.key
	}
	return out
}

func intValue(lit string) inference.Value {
	return &inference.Instance{Class: "int", Literal: lit}
}

func knownSeq(values ...inference.Value) *inference.FakeSequence {
	items := make([]inference.LazyValue, len(values))
	for i, v := range values {
		items[i] = &inference.LazyKnownValue{Value: v}
	}
	return inference.NewFakeTuple(items)
}

func expectKeys(t *testing.T, pairs []pair, want ...string) {
	t.Helper()
	got := keys(pairs)
	if len(got) != len(want) {
		t.Fatalf("keys = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys = %q, want %q", got, want)
		}
	}
}

func expectCodes(t *testing.T, c *diagnostics.Collector, want ...diagnostics.ErrorCode) {
	t.Helper()
	errs := c.Errors()
	if len(errs) != len(want) {
		var msgs []string
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("got %d issues %v, want %v", len(errs), msgs, want)
	}
	for i, e := range errs {
		if e.Code != want[i] {
			t.Errorf("issue %d code = %s, want %s", i, e.Code, want[i])
		}
	}
}
