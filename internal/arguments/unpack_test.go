package arguments

import (
	"strings"
	"testing"

	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/config"
	"github.com/funvibe/argscope/internal/diagnostics"
	"github.com/funvibe/argscope/internal/inference"
)

func TestUnpack_PositionalInSourceOrder(t *testing.T) {
	ctx := newFakeContext()
	a, b, c := ast.Number("1"), ast.Name("x"), ast.String(`"s"`)
	sess := NewSession(nil)
	args := sess.NewTreeArguments(ctx, ast.Arglist(a, b, c), nil)

	pairs := collect(args, nil)
	expectKeys(t, pairs, "", "", "")
	for i, want := range []*ast.Node{a, b, c} {
		tv, ok := pairs[i].value.(*inference.LazyTreeValue)
		if !ok || tv.Node != want {
			t.Errorf("pair %d = %v, want lazy tree value of %v", i, pairs[i].value, want)
		}
	}
	if ctx.inferred != 0 {
		t.Errorf("unpack inferred %d nodes, want none", ctx.inferred)
	}
}

func TestUnpack_SingleArgumentIsNotWrapped(t *testing.T) {
	ctx := newFakeContext()
	sess := NewSession(nil)

	expectKeys(t, collect(sess.NewTreeArguments(ctx, ast.Name("x"), nil), nil), "")
	expectKeys(t, collect(sess.NewTreeArguments(ctx, ast.KeywordArg("k", ast.Number("1")), nil), nil), "k")
	expectKeys(t, collect(sess.NewTreeArguments(ctx, nil, ast.CallTrailer(nil)), nil))
}

func TestUnpack_KeywordsAfterStarExpansion(t *testing.T) {
	ctx := newFakeContext()
	xs := ctx.set(ast.Name("xs"), knownSeq(intValue("1"), intValue("2")))
	sess := NewSession(nil)
	node := ast.Arglist(
		ast.KeywordArg("a", ast.Number("1")),
		ast.StarArg(xs),
		ast.KeywordArg("b", ast.Number("2")),
		ast.Name("c"),
	)
	args := sess.NewTreeArguments(ctx, node, nil)

	expectKeys(t, collect(args, nil), "", "", "", "a", "b")
}

func TestUnpack_StarOverSequence(t *testing.T) {
	ctx := newFakeContext()
	xs := ctx.set(ast.Name("xs"), knownSeq(intValue("1"), intValue("2"), intValue("3")))
	c := diagnostics.NewCollector("")
	sess := NewSession(c)

	pairs := collect(sess.NewTreeArguments(ctx, ast.StarArg(xs), nil), NamedCallee("f"))
	expectKeys(t, pairs, "", "", "")
	for i, p := range pairs {
		got := p.value.Infer()
		if got.Len() != 1 || got.Values()[0].String() != []string{"1", "2", "3"}[i] {
			t.Errorf("element %d = %v", i, got)
		}
	}
	expectCodes(t, c)
}

func TestUnpack_StarOverNonIterable(t *testing.T) {
	ctx := newFakeContext()
	n := ctx.set(ast.Name("n"), intValue("5"))
	c := diagnostics.NewCollector("")
	sess := NewSession(c)

	pairs := collect(sess.NewTreeArguments(ctx, ast.Arglist(ast.Number("0"), ast.StarArg(n)), nil), NamedCallee("f"))
	expectKeys(t, pairs, "")
	expectCodes(t, c, diagnostics.ErrT001)
	if msg := c.Errors()[0].Message; !strings.Contains(msg, "f() argument after *") {
		t.Errorf("message %q should name the callee", msg)
	}
}

func TestUnpack_StarAlignsCandidates(t *testing.T) {
	ctx := newFakeContext()
	xs := ctx.set(ast.Name("xs"),
		knownSeq(intValue("1"), intValue("2")),
		knownSeq(&inference.Instance{Class: "str"}, &inference.Instance{Class: "str"}, &inference.Instance{Class: "float"}))
	sess := NewSession(nil)

	pairs := collect(sess.NewTreeArguments(ctx, ast.StarArg(xs), nil), nil)
	expectKeys(t, pairs, "", "", "")
	want := [][]string{{"int", "str"}, {"int", "str"}, {"float"}}
	for i, p := range pairs {
		got := p.value.Infer().TypeNames()
		if strings.Join(got, ",") != strings.Join(want[i], ",") {
			t.Errorf("position %d types = %v, want %v", i, got, want[i])
		}
	}
}

func TestUnpack_StarOverOpenLength(t *testing.T) {
	ctx := newFakeContext()
	elem := &inference.LazyKnownValue{Value: intValue("")}
	xs := ctx.set(ast.Name("xs"), &inference.FakeSequence{ArrayType: "list", Items: []inference.LazyValue{elem}, Open: true})
	ys := ctx.set(ast.Name("ys"), knownSeq(intValue("1"), intValue("2")))
	sess := NewSession(nil)

	pairs := collect(sess.NewTreeArguments(ctx, ast.StarArg(xs), nil), nil)
	expectKeys(t, pairs, "")
	if !inference.IsOpen(pairs[0].value) {
		t.Errorf("element of an open sequence = %T, want an open value", pairs[0].value)
	}

	// One open candidate leaves every position open.
	zs := ctx.set(ast.Name("zs"), knownSeq(intValue("1"), intValue("2")), inference.NewInstance("list", ""))
	pairs = collect(sess.NewTreeArguments(ctx, ast.StarArg(zs), nil), nil)
	expectKeys(t, pairs, "", "")
	for i, p := range pairs {
		if !inference.IsOpen(p.value) {
			t.Errorf("position %d = %T, want an open value", i, p.value)
		}
	}

	for _, p := range collect(sess.NewTreeArguments(ctx, ast.StarArg(ys), nil), nil) {
		if inference.IsOpen(p.value) {
			t.Error("elements of a known sequence must not be open")
		}
	}
}

func TestUnpack_StarOverStringLiteral(t *testing.T) {
	ctx := newFakeContext()
	s := ctx.set(ast.Name("s"), inference.NewInstance("str", "'ab'"))
	sess := NewSession(nil)

	pairs := collect(sess.NewTreeArguments(ctx, ast.StarArg(s), nil), nil)
	expectKeys(t, pairs, "", "")
	for i, want := range []string{"a", "b"} {
		got := pairs[i].value.Infer().Values()
		if len(got) != 1 {
			t.Fatalf("char %d = %v", i, got)
		}
		if c, _ := inference.StringContents(got[0].String()); c != want {
			t.Errorf("char %d = %s, want %q", i, got[0], want)
		}
		if inference.IsOpen(pairs[i].value) {
			t.Errorf("char %d should not be open", i)
		}
	}
}

func TestUnpack_StarStarOverMapping(t *testing.T) {
	ctx := newFakeContext()
	d := inference.NewFakeDict()
	va := &inference.LazyKnownValue{Value: intValue("1")}
	vb := &inference.LazyKnownValue{Value: intValue("2")}
	d.Set("a", va)
	d.Set("b", vb)
	kw := ctx.set(ast.Name("kw"), d)
	c := diagnostics.NewCollector("")
	sess := NewSession(c)

	pairs := collect(sess.NewTreeArguments(ctx, ast.StarStarArg(kw), nil), nil)
	expectKeys(t, pairs, "a", "b")
	if pairs[0].value != va || pairs[1].value != vb {
		t.Error("star-star should yield the dict's own lazy values")
	}
	expectCodes(t, c)
}

func TestUnpack_StarStarOverNonMapping(t *testing.T) {
	ctx := newFakeContext()
	n := ctx.set(ast.Name("n"), intValue("1"))
	c := diagnostics.NewCollector("")
	sess := NewSession(c)

	pairs := collect(sess.NewTreeArguments(ctx, ast.StarStarArg(n), nil), nil)
	expectKeys(t, pairs)
	expectCodes(t, c, diagnostics.ErrT002)
}

func TestUnpack_StarStarOverOpaqueDictIsSilent(t *testing.T) {
	ctx := newFakeContext()
	n := ctx.set(ast.Name("d"), inference.NewInstance(config.DictTypeName, ""))
	c := diagnostics.NewCollector("")
	sess := NewSession(c)

	expectKeys(t, collect(sess.NewTreeArguments(ctx, ast.StarStarArg(n), nil), nil))
	expectCodes(t, c)
}

func TestUnpack_OldStyleStarOperatorInArglist(t *testing.T) {
	ctx := newFakeContext()
	xs := ctx.set(ast.Name("xs"), knownSeq(intValue("1")))
	node := ast.NewNode(config.ArglistNode, ast.Name("a"), ast.Op(","), ast.Op("*"), xs)
	sess := NewSession(nil)

	expectKeys(t, collect(sess.NewTreeArguments(ctx, node, nil), nil), "", "")
}

func TestUnpack_GeneratorComprehension(t *testing.T) {
	ctx := newFakeContext()
	entry := ast.Name("x")
	compFor := ast.NewNode(config.SyncCompForNode,
		ast.Keyword("for"), ast.Name("x"), ast.Keyword("in"), ast.Name("xs"))
	arg := ast.NewNode(config.ArgumentNode, entry, compFor)
	sess := NewSession(nil)

	pairs := collect(sess.NewTreeArguments(ctx, arg, nil), nil)
	expectKeys(t, pairs, "")
	values := pairs[0].value.Infer().Values()
	if len(values) != 1 {
		t.Fatalf("expected one generator value, got %v", values)
	}
	gen, ok := values[0].(*inference.GeneratorComprehension)
	if !ok {
		t.Fatalf("value = %T, want *GeneratorComprehension", values[0])
	}
	if gen.Entry != entry || gen.CompFor != compFor || gen.Context != ctx {
		t.Error("generator not bound to the call's entry, clause and context")
	}
}

func TestUnpack_StopsWhenConsumerStops(t *testing.T) {
	ctx := newFakeContext()
	sess := NewSession(nil)
	args := sess.NewTreeArguments(ctx, ast.Arglist(ast.Name("a"), ast.KeywordArg("k", ast.Name("b"))), nil)

	n := 0
	for range args.Unpack(nil) {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("n = %d", n)
	}
}
