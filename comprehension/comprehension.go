package comprehension

import (
	"context"
	"iter"
	"slices"

	"github.com/google/uuid"

	"github.com/kbukum/comprehend/errors"
	"github.com/kbukum/comprehend/logger"
	"github.com/kbukum/comprehend/pipeline"
)

// Comprehension is an assembled, reusable iteration plan. Each call to Iter
// (or any terminal built on it) starts an independent single-pass run that
// re-evaluates every generator from scratch.
type Comprehension[R any] struct {
	id      string
	name    string
	binders []string
	tuples  *pipeline.Pipeline[Env]
	results *pipeline.Pipeline[R]
}

// Option configures New.
type Option func(*options)

type options struct {
	name     string
	log      *logger.Logger
	observer Observer
}

// WithName labels the comprehension in logs.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger used at assembly time.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithObserver attaches an Observer to every run.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// New validates clauses and assembles them, together with the terminal map
// fn, into a lazy pipeline. Authoring errors are reported here as
// *errors.AppError and no Comprehension is returned. Nothing is evaluated
// until the result is pulled.
func New[R any](clauses []Clause, fn MapFunc[R], opts ...Option) (*Comprehension[R], error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.WithComponent("comprehension")
	}

	if fn == nil {
		return nil, errors.InvalidInput("map", "map function is required")
	}
	names, err := validate(clauses)
	if err != nil {
		return nil, err
	}

	owned := make([]Clause, len(clauses))
	for i, c := range clauses {
		c.Predicates = slices.Clone(c.Predicates)
		c.Refs = slices.Clone(c.Refs)
		owned[i] = c
	}

	root := Env{scope: newScope(names)}
	tuples := assemble(owned, len(owned), root, o.observer)

	mapFn := func(ctx context.Context, env Env) (R, error) { return fn(ctx, env) }
	if obs := o.observer; obs != nil {
		mapFn = func(ctx context.Context, env Env) (R, error) {
			r, err := fn(ctx, env)
			if err == nil {
				obs.Emitted(ctx)
			}
			return r, err
		}
	}

	c := &Comprehension[R]{
		id:      uuid.NewString(),
		name:    o.name,
		binders: names,
		tuples:  tuples,
		results: pipeline.Map(tuples, mapFn),
	}
	o.log.Debug("comprehension assembled", logger.Fields(
		logger.FieldPlanID, c.id,
		logger.FieldPlan, c.name,
		logger.FieldBinders, names,
		logger.FieldDepth, len(names),
	))
	return c, nil
}

// MustNew is like New but panics on authoring errors.
func MustNew[R any](clauses []Clause, fn MapFunc[R], opts ...Option) *Comprehension[R] {
	c, err := New(clauses, fn, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// ID returns the unique identifier assigned at assembly.
func (c *Comprehension[R]) ID() string { return c.id }

// Name returns the label set with WithName.
func (c *Comprehension[R]) Name() string { return c.name }

// Binders returns the binder names, outermost first.
func (c *Comprehension[R]) Binders() []string { return slices.Clone(c.binders) }

// Depth returns the number of clauses.
func (c *Comprehension[R]) Depth() int { return len(c.binders) }

// Iter starts a new run. The caller must Close the iterator, or drain it.
func (c *Comprehension[R]) Iter(ctx context.Context) *ResultIterator[R] {
	return &ResultIterator[R]{source: c.results.Iter(ctx)}
}

// All starts a new run and exposes it as a range-over-func sequence.
// A failure is yielded once as a non-nil error, after which the sequence ends.
func (c *Comprehension[R]) All(ctx context.Context) iter.Seq2[R, error] {
	return pipeline.Seq2[R](ctx, c.Iter(ctx))
}

// Collect starts a new run and gathers every result.
// On error it returns the results produced before the failure.
func (c *Comprehension[R]) Collect(ctx context.Context) ([]R, error) {
	return pipeline.Collect(ctx, c.Pipeline())
}

// ForEach starts a new run and calls fn for each result until fn fails.
func (c *Comprehension[R]) ForEach(ctx context.Context, fn func(context.Context, R) error) error {
	return pipeline.ForEach(ctx, c.Pipeline(), fn)
}

// Pipeline exposes the results for further composition with pipeline operators.
func (c *Comprehension[R]) Pipeline() *pipeline.Pipeline[R] {
	return pipeline.FromFunc(func(ctx context.Context) pipeline.Iterator[R] {
		return c.Iter(ctx)
	})
}

// Tuples exposes the fully bound tuples that survive every predicate,
// before the map is applied.
func (c *Comprehension[R]) Tuples() *pipeline.Pipeline[Env] {
	return pipeline.FromFunc(func(ctx context.Context) pipeline.Iterator[Env] {
		return &ResultIterator[Env]{source: c.tuples.Iter(ctx)}
	})
}

// Fold starts a new run and reduces every result into an accumulator.
func Fold[R, A any](ctx context.Context, c *Comprehension[R], init A, fn func(A, R) A) (A, error) {
	out, err := pipeline.Collect(ctx, pipeline.Reduce(c.Pipeline(), init, fn))
	if err != nil {
		return init, err
	}
	return out[0], nil
}

// ResultIterator is the single-pass iterator over one run. Once it reports
// an error, every later Next returns that same error and no further values;
// once exhausted or closed it stays exhausted.
type ResultIterator[R any] struct {
	source pipeline.Iterator[R]
	err    error
	done   bool
}

// Next pulls the next result, advancing only as many inner stages as needed.
func (it *ResultIterator[R]) Next(ctx context.Context) (R, bool, error) {
	var zero R
	if it.err != nil {
		return zero, false, it.err
	}
	if it.done {
		return zero, false, nil
	}
	if err := ctx.Err(); err != nil {
		it.fail(err)
		return zero, false, err
	}
	v, ok, err := it.source.Next(ctx)
	if err != nil {
		it.fail(err)
		return zero, false, err
	}
	if !ok {
		it.done = true
		_ = it.source.Close()
		return zero, false, nil
	}
	return v, true, nil
}

// Close releases the run. Further calls to Next report exhaustion.
func (it *ResultIterator[R]) Close() error {
	if it.done || it.err != nil {
		return nil
	}
	it.done = true
	return it.source.Close()
}

func (it *ResultIterator[R]) fail(err error) {
	it.err = err
	_ = it.source.Close()
}
