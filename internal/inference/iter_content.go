package inference

import "github.com/funvibe/argscope/internal/config"

// TryIterContent infers the elements of every iterable in values,
// recursively, so that nested issues get reported. A value may contain
// itself; descent stops silently below config.MaxIterContentDepth.
func TryIterContent(values ValueSet, depth int) {
	if depth > config.MaxIterContentDepth {
		return
	}
	for v := range values.All() {
		it, ok := v.(Iterable)
		if !ok {
			continue
		}
		for lazy := range it.Iterate() {
			TryIterContent(lazy.Infer(), depth+1)
		}
	}
}
