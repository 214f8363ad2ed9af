package inference

import "iter"

// Iterable is implemented by values that can be iterated, e.g. `*x`.
type Iterable interface {
	Value
	Iterate() iter.Seq[LazyValue]
}

// KeyedItems is implemented by dictionaries whose string keys are known
// statically. It is what `**x` expands.
type KeyedItems interface {
	Value
	ExactKeyItems() iter.Seq2[string, LazyValue]
}

// NativeInstance is implemented by instances of builtin classes whose
// contents are opaque to the analyzer.
type NativeInstance interface {
	Value
	NativeName() string
}

// IsNativeInstanceOf reports whether v is an opaque instance of the named
// builtin class.
func IsNativeInstanceOf(v Value, name string) bool {
	ni, ok := v.(NativeInstance)
	return ok && ni.NativeName() == name
}

// OpenLength is implemented by iterables whose element count is not known
// statically. Their Iterate yields representative elements only.
type OpenLength interface {
	LengthUnknown() bool
}

// HasKnownLength reports whether iterating v yields exactly its elements.
func HasKnownLength(v Value) bool {
	ol, ok := v.(OpenLength)
	return !ok || !ol.LengthUnknown()
}

// IsIterable reports whether v can be iterated.
func IsIterable(v Value) bool {
	_, ok := v.(Iterable)
	return ok
}
