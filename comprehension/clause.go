package comprehension

import (
	"context"
	"slices"

	"github.com/kbukum/comprehend/pipeline"
)

// Iterator is the element iterator a Generator returns.
type Iterator = pipeline.Iterator[any]

// Generator produces the candidate values for one clause's binder. It is
// called once per surviving outer tuple and must return a fresh iterator
// each time, since its result may depend on the outer values.
//
// Returning a nil iterator with a nil error is treated as an empty sequence.
type Generator func(ctx context.Context, env Env) (Iterator, error)

// Predicate filters tuples at the level of the clause it belongs to. The
// tuple it receives already includes that clause's binder.
type Predicate func(ctx context.Context, env Env) (bool, error)

// MapFunc turns a fully bound tuple into one output element.
type MapFunc[R any] func(ctx context.Context, env Env) (R, error)

// Clause is one "for Binder in Generator if Predicates..." unit.
type Clause struct {
	// Binder names the value this clause introduces. Unique within a list.
	Binder string
	// Generator yields the candidate values for Binder.
	Generator Generator
	// Predicates are applied left to right; a tuple survives only if all pass.
	Predicates []Predicate
	// Refs optionally declares the binders Generator reads. Each must be
	// introduced by a strictly earlier clause; this is checked by New.
	Refs []string
}

// For starts a clause binding name to the values produced by gen.
// Declare the earlier binders gen reads with DependsOn so that New rejects
// forward and unbound references; an undeclared read of a missing binder
// only fails, by panicking in Get, when the clause is first pulled.
func For(name string, gen Generator) Clause {
	return Clause{Binder: name, Generator: gen}
}

// If returns a copy of c with an infallible predicate appended.
func (c Clause) If(fn func(Env) bool) Clause {
	return c.Where(If(fn))
}

// Where returns a copy of c with the given predicates appended.
func (c Clause) Where(preds ...Predicate) Clause {
	c.Predicates = append(slices.Clip(c.Predicates), preds...)
	return c
}

// DependsOn returns a copy of c declaring that its generator reads names.
func (c Clause) DependsOn(names ...string) Clause {
	c.Refs = append(slices.Clip(c.Refs), names...)
	return c
}

// If adapts a plain boolean function into a Predicate.
func If(fn func(Env) bool) Predicate {
	return func(_ context.Context, env Env) (bool, error) {
		return fn(env), nil
	}
}

// Yield adapts a plain function into a MapFunc.
func Yield[R any](fn func(Env) R) MapFunc[R] {
	return func(_ context.Context, env Env) (R, error) {
		return fn(env), nil
	}
}

// Tuple maps every tuple to a copy of its values, outermost binder first.
func Tuple() MapFunc[[]any] {
	return func(_ context.Context, env Env) ([]any, error) {
		return env.Values(), nil
	}
}

// allOf conjoins predicates left to right, stopping at the first failure.
func allOf(preds []Predicate) func(context.Context, Env) (bool, error) {
	if len(preds) == 1 {
		return preds[0]
	}
	return func(ctx context.Context, env Env) (bool, error) {
		for _, p := range preds {
			ok, err := p(ctx, env)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}
