package comprehension

import (
	"context"
	"iter"

	"github.com/kbukum/comprehend/pipeline"
)

// Range yields the ints in [lo, hi).
func Range(lo, hi int) Generator {
	return func(_ context.Context, _ Env) (pipeline.Iterator[any], error) {
		return box(pipeline.RangeIter(lo, hi)), nil
	}
}

// RangeOf yields the ints in [lo, hi) where the bounds are computed from
// the outer tuple.
func RangeOf(bounds func(Env) (lo, hi int)) Generator {
	return func(_ context.Context, env Env) (pipeline.Iterator[any], error) {
		lo, hi := bounds(env)
		return box(pipeline.RangeIter(lo, hi)), nil
	}
}

// Slice yields the elements of items in order.
func Slice[T any](items []T) Generator {
	return func(_ context.Context, _ Env) (pipeline.Iterator[any], error) {
		return box(pipeline.SliceIter(items)), nil
	}
}

// SliceOf yields the elements of the slice computed from the outer tuple.
func SliceOf[T any](fn func(Env) []T) Generator {
	return func(_ context.Context, env Env) (pipeline.Iterator[any], error) {
		return box(pipeline.SliceIter(fn(env))), nil
	}
}

// Values yields the given values in order.
func Values(vals ...any) Generator {
	return Slice(vals)
}

// Seq yields the elements of the sequence computed from the outer tuple.
// The sequence is pulled lazily and stopped if the iterator is abandoned.
func Seq[T any](fn func(Env) iter.Seq[T]) Generator {
	return func(_ context.Context, env Env) (pipeline.Iterator[any], error) {
		return box(pipeline.SeqIter(fn(env))), nil
	}
}

// From adapts a typed iterator factory into a Generator.
func From[T any](fn func(context.Context, Env) (pipeline.Iterator[T], error)) Generator {
	return func(ctx context.Context, env Env) (pipeline.Iterator[any], error) {
		it, err := fn(ctx, env)
		if err != nil || it == nil {
			return nil, err
		}
		return box(it), nil
	}
}

// box erases the element type of an iterator.
func box[T any](it pipeline.Iterator[T]) pipeline.Iterator[any] {
	if a, ok := any(it).(pipeline.Iterator[any]); ok {
		return a
	}
	return &boxIter[T]{source: it}
}

type boxIter[T any] struct {
	source pipeline.Iterator[T]
}

func (it *boxIter[T]) Next(ctx context.Context) (any, bool, error) {
	v, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	return v, true, nil
}

func (it *boxIter[T]) Close() error { return it.source.Close() }
