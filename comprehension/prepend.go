package comprehension

import (
	"context"

	"github.com/kbukum/comprehend/pipeline"
)

// Prepend pairs a fixed outer tuple with every element of inner, yielding
// outer extended by that element. It pulls one inner element per Next and
// never modifies outer.
func Prepend(outer Env, inner pipeline.Iterator[any]) pipeline.Iterator[Env] {
	return &prependIter{outer: outer, inner: inner}
}

type prependIter struct {
	outer Env
	inner pipeline.Iterator[any]
	// bound is called for each tuple produced; nil when unobserved
	bound func(ctx context.Context)
}

func (it *prependIter) Next(ctx context.Context) (Env, bool, error) {
	v, ok, err := it.inner.Next(ctx)
	if err != nil || !ok {
		return Env{}, false, err
	}
	if it.bound != nil {
		it.bound(ctx)
	}
	return it.outer.Append(v), true, nil
}

func (it *prependIter) Close() error { return it.inner.Close() }
