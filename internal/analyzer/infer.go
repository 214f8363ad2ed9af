package analyzer

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/funvibe/argscope/internal/arguments"
	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/config"
	"github.com/funvibe/argscope/internal/inference"
)

// infer evaluates n in ctx.
func (e *Engine) infer(ctx inference.Context, n *ast.Node) inference.ValueSet {
	if n == nil {
		return inference.NoValues
	}
	switch n.Type {
	case config.NameNode:
		var out inference.ValueSet
		for _, name := range ctx.Goto(n) {
			out = out.Union(inferName(name))
		}
		return out
	case config.NumberNode:
		return inference.NewValueSet(numberLiteral(n.Value))
	case config.StringNode:
		return inference.NewValueSet(stringValue(n.Value))
	case config.KeywordNode:
		switch n.Value {
		case "True", "False":
			return inference.NewValueSet(inference.NewInstance(config.BoolTypeName, n.Value))
		case "None":
			return inference.NewValueSet(inference.NewInstance(config.NoneTypeName, n.Value))
		}
		return inference.NoValues
	case config.PowerNode:
		return e.inferPower(ctx, n, len(n.Children))
	case config.AtomNode:
		return e.inferAtom(ctx, n)
	case config.TestlistNode:
		return inference.NewValueSet(e.sequence(ctx, config.TupleTypeName, n.Children))
	case "conditional_expression":
		// a if cond else b
		return ctx.InferNode(n.Child(0)).Union(ctx.InferNode(n.Child(len(n.Children) - 1)))
	case "boolean_operator":
		return ctx.InferNode(n.Child(0)).Union(ctx.InferNode(n.Child(len(n.Children) - 1)))
	case "not_operator", "comparison_operator":
		return inference.NewValueSet(inference.NewInstance(config.BoolTypeName, ""))
	}
	e.logger.Debug("no inference for node", zap.String("type", n.Type))
	return inference.NoValues
}

// inferPower evaluates power[atom, trailer...] up to (not including) the
// child at index upto.
func (e *Engine) inferPower(ctx inference.Context, power *ast.Node, upto int) inference.ValueSet {
	values := ctx.InferNode(power.Child(0))
	for _, trailer := range power.Children[1:upto] {
		if values.IsEmpty() {
			return values
		}
		values = e.applyTrailer(ctx, values, trailer)
	}
	return values
}

func (e *Engine) applyTrailer(ctx inference.Context, values inference.ValueSet, trailer *ast.Node) inference.ValueSet {
	var out inference.ValueSet
	switch first := trailer.Child(0); {
	case first.Is("("):
		args := e.sess.TreeArgumentsCached(ctx, ast.TrailerArgs(trailer), trailer)
		for v := range values.All() {
			out = out.Union(e.call(ctx, v, args))
		}
	case first.Is("."):
		name := trailer.Child(1)
		for v := range values.All() {
			out = out.Union(e.attribute(v, name.Value))
		}
	case first.Is("["):
		index := trailer.Child(1)
		for v := range values.All() {
			out = out.Union(e.subscript(ctx, v, index))
		}
	}
	return out
}

// call evaluates calling v with args.
func (e *Engine) call(ctx inference.Context, v inference.Value, args arguments.Arguments) inference.ValueSet {
	switch callee := v.(type) {
	case *Function:
		return e.execute(callee, args)
	case *BoundMethod:
		return e.execute(callee.fn, callee.arguments(e, args))
	case *Class:
		return inference.NewValueSet(&Instance{class: callee, args: args})
	case *NativeFunction:
		return callee.call(ctx, args)
	case *BuiltinClass:
		return inference.NewValueSet(inference.NewInstance(callee.name, ""))
	}
	return inference.NoValues
}

// attribute looks name up on v.
func (e *Engine) attribute(v inference.Value, name string) inference.ValueSet {
	switch obj := v.(type) {
	case *Instance:
		return obj.attribute(name)
	case *Class:
		return obj.lookup(name)
	}
	if m, ok := e.methods[v.TypeName()][name]; ok {
		return inference.NewValueSet(m)
	}
	return inference.NoValues
}

// subscript evaluates v[index]. Sequences of known length indexed by an
// int literal give that element; anything else iterable gives all its
// elements.
func (e *Engine) subscript(ctx inference.Context, v inference.Value, index *ast.Node) inference.ValueSet {
	if seq, ok := v.(*inference.FakeSequence); ok && !seq.Open && index != nil && index.Type == config.NumberNode {
		if i, err := strconv.Atoi(index.Value); err == nil {
			if i < 0 {
				i += len(seq.Items)
			}
			if i >= 0 && i < len(seq.Items) {
				return seq.Items[i].Infer()
			}
			return inference.NoValues
		}
	}
	if keyed, ok := v.(inference.KeyedItems); ok && index != nil && index.Type == config.StringNode {
		want, _ := inference.StringContents(index.Value)
		var out inference.ValueSet
		for k, lazy := range keyed.ExactKeyItems() {
			if k == want {
				out = out.Union(lazy.Infer())
			}
		}
		return out
	}
	if _, ok := v.(inference.KeyedItems); ok {
		return inference.NoValues
	}
	return iterateContents(inference.NewValueSet(v))
}

func (e *Engine) inferAtom(ctx inference.Context, atom *ast.Node) inference.ValueSet {
	open := atom.Child(0)
	inner := atom.Child(1)
	if len(atom.Children) == 2 {
		inner = nil
	}

	if inner != nil {
		if compFor := inner.Children[len(inner.Children)-1]; isCompFor(compFor) {
			return e.comprehensionValue(ctx, open.Value, inner, compFor)
		}
	}

	switch {
	case open.Is("("):
		if inner == nil {
			return inference.NewValueSet(inference.NewFakeTuple(nil))
		}
		if inner.Type != config.TestlistCompNode {
			return ctx.InferNode(inner)
		}
		return inference.NewValueSet(e.sequence(ctx, config.TupleTypeName, inner.Children))
	case open.Is("["):
		if inner == nil {
			return inference.NewValueSet(&inference.FakeSequence{ArrayType: config.ListTypeName})
		}
		return inference.NewValueSet(e.sequence(ctx, config.ListTypeName, childrenOf(inner)))
	case open.Is("{"):
		if inner == nil || isDictMaker(inner) {
			return inference.NewValueSet(&DictDisplay{ctx: ctx, node: atom})
		}
		return inference.NewValueSet(e.sequence(ctx, config.SetTypeName, childrenOf(inner)))
	}
	return inference.NoValues
}

// childrenOf returns the items of a display: the children of an inner
// list node, or the node itself for a single item.
func childrenOf(inner *ast.Node) []*ast.Node {
	if inner.Type == config.TestlistCompNode || inner.Type == config.DictMakerNode {
		return inner.Children
	}
	return []*ast.Node{inner}
}

func isCompFor(n *ast.Node) bool {
	return n != nil && (n.Type == config.SyncCompForNode || n.Type == config.CompForNode)
}

// isDictMaker tells a dict display from a set display.
func isDictMaker(inner *ast.Node) bool {
	if inner.Type != config.DictMakerNode {
		return false
	}
	for _, c := range inner.Children {
		if c.Is(":") || c.Is("**") {
			return true
		}
	}
	return false
}

// sequence builds a sequence value from display items, skipping commas.
// A starred item contributes the merged elements of its operand and leaves
// the length unknown.
func (e *Engine) sequence(ctx inference.Context, arrayType string, items []*ast.Node) *inference.FakeSequence {
	seq := &inference.FakeSequence{ArrayType: arrayType}
	for _, it := range items {
		if it.Is(",") {
			continue
		}
		if it.Type == "list_splat" && len(it.Children) == 2 {
			operand := it.Child(1)
			seq.Items = append(seq.Items, &lazyContents{ctx: ctx, node: operand})
			seq.Open = true
			continue
		}
		seq.Items = append(seq.Items, inference.NewLazyTreeValue(ctx, it))
	}
	return seq
}

// lazyContents infers to the elements of whatever node infers to.
type lazyContents struct {
	ctx  inference.Context
	node *ast.Node
}

func (l *lazyContents) Infer() inference.ValueSet {
	return iterateContents(l.ctx.InferNode(l.node))
}

func (e *Engine) comprehensionValue(ctx inference.Context, open string, inner, compFor *ast.Node) inference.ValueSet {
	entry := inner.Child(0)
	switch open {
	case "(":
		return inference.NewValueSet(&inference.GeneratorComprehension{Context: ctx, CompFor: compFor, Entry: entry})
	case "{":
		if inner.Type == config.DictMakerNode && inner.Child(1).Is(":") {
			return inference.NewValueSet(inference.NewInstance(config.DictTypeName, ""))
		}
		return inference.NewValueSet(&inference.FakeSequence{
			ArrayType: config.SetTypeName,
			Items:     []inference.LazyValue{inference.NewLazyTreeValue(e.comprehensionContext(ctx, compFor), entry)},
			Open:      true,
		})
	}
	return inference.NewValueSet(&inference.FakeSequence{
		ArrayType: config.ListTypeName,
		Items:     []inference.LazyValue{inference.NewLazyTreeValue(e.comprehensionContext(ctx, compFor), entry)},
		Open:      true,
	})
}

// iterateContents infers the union of the elements of every iterable in
// values.
func iterateContents(values inference.ValueSet) inference.ValueSet {
	var out inference.ValueSet
	for v := range values.All() {
		it, ok := v.(inference.Iterable)
		if !ok {
			continue
		}
		for lazy := range it.Iterate() {
			out = out.Union(lazy.Infer())
		}
	}
	return out
}

// iterateLazies returns the lazy elements of values: the exact elements of
// a single iterable, or one merged element for several. open reports that
// the elements do not tell the length.
func iterateLazies(values inference.ValueSet) (items []inference.LazyValue, open bool) {
	var per [][]inference.LazyValue
	for v := range values.All() {
		it, ok := v.(inference.Iterable)
		if !ok {
			continue
		}
		var elems []inference.LazyValue
		for lazy := range it.Iterate() {
			elems = append(elems, lazy)
		}
		per = append(per, elems)
		open = open || !inference.HasKnownLength(v)
	}
	switch len(per) {
	case 0:
		return nil, open
	case 1:
		return per[0], open
	}
	var all []inference.LazyValue
	for _, elems := range per {
		all = append(all, elems...)
	}
	return []inference.LazyValue{inference.MergeLazyValues(all)}, true
}

func numberLiteral(text string) inference.Value {
	lower := strings.ToLower(text)
	switch {
	case strings.HasSuffix(lower, "j"):
		return inference.NewInstance("complex", text)
	case strings.HasPrefix(lower, "0x"), strings.HasPrefix(lower, "0o"), strings.HasPrefix(lower, "0b"):
		return inference.NewInstance(config.IntTypeName, text)
	case strings.ContainsAny(lower, ".e"):
		return inference.NewInstance(config.FloatTypeName, text)
	}
	return inference.NewInstance(config.IntTypeName, text)
}

func stringValue(text string) inference.Value {
	prefix := strings.ToLower(text[:strings.IndexAny(text, `'"`)+1])
	if strings.Contains(prefix, "b") {
		return inference.NewInstance("bytes", text)
	}
	return inference.NewInstance(config.StrTypeName, text)
}

// stringLiteral returns the contents of a str instance inferred from a
// literal.
func stringLiteral(v inference.Value) (string, bool) {
	if !inference.IsNativeInstanceOf(v, config.StrTypeName) {
		return "", false
	}
	return inference.StringContents(v.String())
}
