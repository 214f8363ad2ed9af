package inference

import "iter"

// PushBackIterator pulls pairs from a sequence one at a time and lets the
// consumer return the last pair it could not use.
type PushBackIterator[K, V any] struct {
	next    func() (K, V, bool)
	stop    func()
	pushed  bool
	pushedK K
	pushedV V
}

func NewPushBackIterator[K, V any](seq iter.Seq2[K, V]) *PushBackIterator[K, V] {
	next, stop := iter.Pull2(seq)
	return &PushBackIterator[K, V]{next: next, stop: stop}
}

// Next returns the pushed-back pair if there is one, else the next pair.
func (p *PushBackIterator[K, V]) Next() (K, V, bool) {
	if p.pushed {
		p.pushed = false
		return p.pushedK, p.pushedV, true
	}
	return p.next()
}

// PushBack makes the next call to Next return (k, v).
func (p *PushBackIterator[K, V]) PushBack(k K, v V) {
	p.pushed = true
	p.pushedK, p.pushedV = k, v
}

// Rest drains the remaining pairs.
func (p *PushBackIterator[K, V]) Rest() ([]K, []V) {
	var ks []K
	var vs []V
	for {
		k, v, ok := p.Next()
		if !ok {
			return ks, vs
		}
		ks = append(ks, k)
		vs = append(vs, v)
	}
}

// Stop releases the underlying sequence.
func (p *PushBackIterator[K, V]) Stop() {
	p.stop()
}
