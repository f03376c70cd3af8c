package comprehension

import (
	"context"

	"github.com/kbukum/comprehend/pipeline"
)

// assemble builds the pipeline of surviving tuples for clauses[:n].
//
// Level 0 is the single empty tuple. Level k flat-maps every surviving
// level k-1 tuple through a fresh call to generator k, prepending the outer
// tuple to each candidate, then drops candidates failing predicates k.
// Because the filter sits before level k+1's flat-map, a rejected tuple
// never reaches the next generator. Enumeration order is lexicographic with
// the outermost binder varying slowest.
func assemble(clauses []Clause, n int, root Env, obs Observer) *pipeline.Pipeline[Env] {
	if n == 0 {
		return pipeline.FromSlice([]Env{root})
	}
	outer := assemble(clauses, n-1, root, obs)
	c := clauses[n-1]
	level := n

	expanded := pipeline.FlatMap(outer, func(ctx context.Context, env Env) (pipeline.Iterator[Env], error) {
		inner, err := c.Generator(ctx, env)
		if err != nil {
			return nil, err
		}
		if inner == nil {
			inner = pipeline.Empty[any]()
		}
		it := &prependIter{outer: env, inner: inner}
		if obs != nil {
			it.bound = func(ctx context.Context) { obs.Bound(ctx, level, c.Binder) }
		}
		return it, nil
	})
	if len(c.Predicates) == 0 {
		return expanded
	}

	keep := allOf(c.Predicates)
	if obs != nil {
		check := keep
		keep = func(ctx context.Context, env Env) (bool, error) {
			ok, err := check(ctx, env)
			if err == nil && !ok {
				obs.Rejected(ctx, level, c.Binder)
			}
			return ok, err
		}
	}
	return pipeline.TryFilter(expanded, keep)
}
